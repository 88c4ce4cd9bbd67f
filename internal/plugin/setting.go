package plugin

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
)

// 설정 스코프
const (
	ScopeProject     = "PROJECT"
	ScopeUser        = "USER"
	ScopeProjectUser = "PROJECT_USER"
	ScopeSite        = "SITE"
)

// 설정 값 타입
const (
	SettingTypeString  = "STRING"
	SettingTypeInteger = "INTEGER"
	SettingTypeBoolean = "BOOLEAN"
	SettingTypeJSON    = "JSON"
)

// 프로젝트 타입 (SettingDef.ProjectTypes 필터)
const (
	ProjectTypeProject  = "PROJECT"
	ProjectTypeCategory = "CATEGORY"
)

// 설정 스키마 검증 에러. 플러그인 작성자의 프로그래밍 오류이므로 복구하지 않음
var (
	ErrInvalidScope          = errors.New("invalid setting scope")
	ErrInvalidType           = errors.New("invalid setting type")
	ErrInvalidOptions        = errors.New("options are only allowed for STRING and INTEGER settings")
	ErrInvalidValue          = errors.New("value does not match setting type")
	ErrInvalidDefault        = errors.New("invalid default value")
	ErrDefaultNotInOptions   = errors.New("default value not found in options")
	ErrValueNotInOptions     = errors.New("value not found in options")
	ErrInvalidUserModifiable = errors.New("user_modifiable not allowed for PROJECT_USER scope")
)

// Option 설정 선택지 (값 또는 값+라벨 쌍)
type Option struct {
	Value interface{} `json:"value"`
	Label string      `json:"label,omitempty"`
}

// DefaultFunc 프로젝트/사용자 컨텍스트 기반 동적 기본값
type DefaultFunc func(projectUUID, userID string) interface{}

// OptionsFunc 프로젝트/사용자 컨텍스트 기반 동적 선택지
type OptionsFunc func(projectUUID, userID string) []Option

// SettingDef 플러그인이 선언하는 설정 하나의 스키마.
// 플러그인 등록 시점에 Validate()로 검증되며 이후 변경되지 않음
type SettingDef struct {
	Name           string            `json:"name"`
	Scope          string            `json:"scope"`
	Type           string            `json:"type"`
	Default        interface{}       `json:"default,omitempty"`
	DefaultFn      DefaultFunc       `json:"-"`
	Options        []Option          `json:"options,omitempty"`
	OptionsFn      OptionsFunc       `json:"-"`
	UserModifiable *bool             `json:"user_modifiable,omitempty"`
	GlobalEdit     bool              `json:"global_edit"`
	ProjectTypes   []string          `json:"project_types,omitempty"`
	WidgetAttrs    map[string]string `json:"widget_attrs,omitempty"`
	Label          string            `json:"label,omitempty"`
	Description    string            `json:"description,omitempty"`
}

// Validate 스키마 일관성 검증 및 파생 필드 확정.
// 실패 시 문제 필드를 담은 에러를 반환하며, 해당 정의는 사용할 수 없음
func (d *SettingDef) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("setting name is required")
	}
	if err := validateScope(d.Scope); err != nil {
		return fmt.Errorf("setting %s: %w", d.Name, err)
	}
	if err := validateType(d.Type); err != nil {
		return fmt.Errorf("setting %s: %w", d.Name, err)
	}
	if err := validateTypeOptions(d.Type, len(d.Options) > 0 || d.OptionsFn != nil); err != nil {
		return fmt.Errorf("setting %s: %w", d.Name, err)
	}
	if err := d.validateUserModifiable(); err != nil {
		return fmt.Errorf("setting %s: %w", d.Name, err)
	}
	if err := d.validateDefault(); err != nil {
		return fmt.Errorf("setting %s: %w", d.Name, err)
	}
	d.resolveDerived()
	return nil
}

// validateScope 스코프가 인식되는 값인지 확인
func validateScope(scope string) error {
	switch scope {
	case ScopeProject, ScopeUser, ScopeProjectUser, ScopeSite:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidScope, scope)
}

// validateType 값 타입이 인식되는 값인지 확인
func validateType(settingType string) error {
	switch settingType {
	case SettingTypeString, SettingTypeInteger, SettingTypeBoolean, SettingTypeJSON:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidType, settingType)
}

// validateTypeOptions 선택지는 STRING/INTEGER 타입만 허용
func validateTypeOptions(settingType string, hasOptions bool) error {
	if !hasOptions {
		return nil
	}
	if settingType != SettingTypeString && settingType != SettingTypeInteger {
		return fmt.Errorf("%w (type %s)", ErrInvalidOptions, settingType)
	}
	return nil
}

// validateUserModifiable PROJECT_USER 스코프 설정은 항상 계산되는 값이므로
// 사용자 수정 불가. 명시적으로 true를 요청하면 에러
func (d *SettingDef) validateUserModifiable() error {
	if d.Scope == ScopeProjectUser && d.UserModifiable != nil && *d.UserModifiable {
		return ErrInvalidUserModifiable
	}
	return nil
}

// validateDefault 기본값의 타입 검사 및 선택지 포함 여부 검사.
// callable 기본값은 검사 대상이 아님
func (d *SettingDef) validateDefault() error {
	if d.DefaultFn != nil || d.Default == nil {
		return nil
	}
	if err := ValidateValue(d.Type, d.Default); err != nil {
		return fmt.Errorf("%w %v: %v", ErrInvalidDefault, d.Default, err)
	}
	// 기본값과 선택지가 모두 정적일 때만 포함 여부 검사
	if len(d.Options) > 0 && d.OptionsFn == nil {
		if !optionsContain(d.Type, d.Options, d.Default) {
			return fmt.Errorf("%w: %v", ErrDefaultNotInOptions, d.Default)
		}
	}
	return nil
}

// resolveDerived 미지정 파생 필드 확정
func (d *SettingDef) resolveDerived() {
	if d.UserModifiable == nil {
		modifiable := d.Scope != ScopeProjectUser
		d.UserModifiable = &modifiable
	}
	// STRING 기본값 미지정 시 빈 문자열 (렌더링 코드가 null을 보지 않도록)
	if d.Default == nil && d.DefaultFn == nil && d.Type == SettingTypeString {
		d.Default = ""
	}
	if d.ProjectTypes == nil {
		d.ProjectTypes = []string{ProjectTypeProject}
	}
}

// IsUserModifiable 파생 필드 확정 이후의 사용자 수정 가능 여부
func (d *SettingDef) IsUserModifiable() bool {
	if d.UserModifiable == nil {
		return d.Scope != ScopeProjectUser
	}
	return *d.UserModifiable
}

// DefaultValue 컨텍스트를 반영한 기본값 반환
func (d *SettingDef) DefaultValue(projectUUID, userID string) interface{} {
	if d.DefaultFn != nil {
		return d.DefaultFn(projectUUID, userID)
	}
	return d.Default
}

// OptionValues 컨텍스트를 반영한 선택지 반환
func (d *SettingDef) OptionValues(projectUUID, userID string) []Option {
	if d.OptionsFn != nil {
		return d.OptionsFn(projectUUID, userID)
	}
	return d.Options
}

// ValidateValue 타입별 구조 검사.
// BOOLEAN: bool만 허용. INTEGER: 정수 또는 숫자로만 이루어진 문자열.
// JSON: 맵 또는 시퀀스이며 JSON 인코딩 가능해야 함. STRING: 제약 없음
func ValidateValue(settingType string, value interface{}) error {
	switch settingType {
	case SettingTypeString:
		return nil
	case SettingTypeBoolean:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("%w: BOOLEAN requires bool, got %T", ErrInvalidValue, value)
		}
		return nil
	case SettingTypeInteger:
		return validateIntegerValue(value)
	case SettingTypeJSON:
		return validateJSONValue(value)
	}
	return fmt.Errorf("%w: %q", ErrInvalidType, settingType)
}

// validateIntegerValue 정수 계열 또는 숫자 문자열 허용
func validateIntegerValue(value interface{}) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return nil
	case float64:
		// JSON 디코딩된 숫자는 float64로 들어옴
		if v == math.Trunc(v) {
			return nil
		}
		return fmt.Errorf("%w: INTEGER requires whole number, got %v", ErrInvalidValue, v)
	case string:
		if v == "" {
			return fmt.Errorf("%w: INTEGER requires digits, got empty string", ErrInvalidValue)
		}
		for _, c := range v {
			if c < '0' || c > '9' {
				return fmt.Errorf("%w: INTEGER requires digits, got %q", ErrInvalidValue, v)
			}
		}
		return nil
	}
	return fmt.Errorf("%w: INTEGER requires integer or digit string, got %T", ErrInvalidValue, value)
}

// validateJSONValue 맵/시퀀스 구조 + JSON 인코딩 가능 여부 검사
func validateJSONValue(value interface{}) error {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		// ok
	default:
		return fmt.Errorf("%w: JSON requires map or sequence, got %T", ErrInvalidValue, value)
	}
	if _, err := json.Marshal(value); err != nil {
		return fmt.Errorf("%w: not JSON-encodable: %v", ErrInvalidValue, err)
	}
	return nil
}

// optionsContain 값이 선택지에 포함되는지 확인 (라벨 쌍은 Value 기준)
func optionsContain(settingType string, options []Option, value interface{}) bool {
	for _, opt := range options {
		if settingValueEqual(settingType, opt.Value, value) {
			return true
		}
	}
	return false
}

// settingValueEqual 선택지 비교. INTEGER는 숫자 문자열과 정수를 동일 취급
func settingValueEqual(settingType string, a, b interface{}) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	if settingType == SettingTypeInteger {
		return fmt.Sprint(a) == fmt.Sprint(b)
	}
	return false
}
