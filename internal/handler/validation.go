package handler

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// nameSlugPattern 앱/이벤트 이름 형식 (소문자, 숫자, 밑줄)
var nameSlugPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// RegisterValidators registers custom binding validations
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("name_slug", func(fl validator.FieldLevel) bool {
			return nameSlugPattern.MatchString(fl.Field().String())
		})
	}
}
