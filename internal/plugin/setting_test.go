package plugin

import (
	"errors"
	"testing"
)

func validDef() SettingDef {
	return SettingDef{
		Name:  "notify_email",
		Scope: ScopeProject,
		Type:  SettingTypeBoolean,
	}
}

func TestValidateAcceptsMinimalDef(t *testing.T) {
	def := validDef()
	if err := def.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestValidateRejectsUnknownScope(t *testing.T) {
	def := validDef()
	def.Scope = "GLOBAL"
	if err := def.Validate(); !errors.Is(err, ErrInvalidScope) {
		t.Errorf("expected ErrInvalidScope, got %v", err)
	}
}

func TestValidateRejectsUnknownType(t *testing.T) {
	def := validDef()
	def.Type = "FLOAT"
	if err := def.Validate(); !errors.Is(err, ErrInvalidType) {
		t.Errorf("expected ErrInvalidType, got %v", err)
	}
}

func TestValidateRejectsOptionsForBoolean(t *testing.T) {
	def := validDef()
	def.Options = []Option{{Value: true}}
	if err := def.Validate(); !errors.Is(err, ErrInvalidOptions) {
		t.Errorf("expected ErrInvalidOptions, got %v", err)
	}
}

func TestValidateRejectsOptionsForJSON(t *testing.T) {
	def := validDef()
	def.Type = SettingTypeJSON
	def.OptionsFn = func(projectUUID, userID string) []Option {
		return []Option{{Value: "a"}}
	}
	if err := def.Validate(); !errors.Is(err, ErrInvalidOptions) {
		t.Errorf("expected ErrInvalidOptions, got %v", err)
	}
}

func TestValidateRejectsUserModifiableForProjectUser(t *testing.T) {
	modifiable := true
	def := validDef()
	def.Scope = ScopeProjectUser
	def.UserModifiable = &modifiable
	if err := def.Validate(); !errors.Is(err, ErrInvalidUserModifiable) {
		t.Errorf("expected ErrInvalidUserModifiable, got %v", err)
	}
}

func TestValidateRejectsDefaultTypeMismatch(t *testing.T) {
	def := validDef()
	def.Type = SettingTypeInteger
	def.Default = "abc"
	if err := def.Validate(); !errors.Is(err, ErrInvalidDefault) {
		t.Errorf("expected ErrInvalidDefault, got %v", err)
	}
}

func TestValidateRejectsDefaultOutsideOptions(t *testing.T) {
	def := validDef()
	def.Type = SettingTypeString
	def.Default = "purple"
	def.Options = []Option{{Value: "red"}, {Value: "blue"}}
	if err := def.Validate(); !errors.Is(err, ErrDefaultNotInOptions) {
		t.Errorf("expected ErrDefaultNotInOptions, got %v", err)
	}
}

func TestValidateSkipsMembershipForCallableOptions(t *testing.T) {
	def := validDef()
	def.Type = SettingTypeString
	def.Default = "purple"
	def.OptionsFn = func(projectUUID, userID string) []Option {
		return []Option{{Value: "red"}}
	}
	if err := def.Validate(); err != nil {
		t.Errorf("callable options must skip membership check, got %v", err)
	}
}

func TestValidateSkipsTypeCheckForCallableDefault(t *testing.T) {
	def := validDef()
	def.Type = SettingTypeInteger
	def.DefaultFn = func(projectUUID, userID string) interface{} { return "dynamic" }
	if err := def.Validate(); err != nil {
		t.Errorf("callable default must skip type check, got %v", err)
	}
}

func TestValidateIntegerDefaultAsDigitString(t *testing.T) {
	def := validDef()
	def.Type = SettingTypeInteger
	def.Default = "170"
	def.Options = []Option{{Value: 170}, {Value: 190}}
	if err := def.Validate(); err != nil {
		t.Errorf("digit string default must match integer option, got %v", err)
	}
}

func TestResolveDerivedDefaults(t *testing.T) {
	def := SettingDef{Name: "title", Scope: ScopeUser, Type: SettingTypeString}
	if err := def.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !def.IsUserModifiable() {
		t.Error("non PROJECT_USER setting must default to user modifiable")
	}
	if def.Default != "" {
		t.Errorf("STRING default must resolve to empty string, got %v", def.Default)
	}
	if len(def.ProjectTypes) != 1 || def.ProjectTypes[0] != ProjectTypeProject {
		t.Errorf("project types must default to [PROJECT], got %v", def.ProjectTypes)
	}

	puDef := SettingDef{Name: "computed", Scope: ScopeProjectUser, Type: SettingTypeString}
	if err := puDef.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if puDef.IsUserModifiable() {
		t.Error("PROJECT_USER setting must not be user modifiable")
	}
}

func TestValidateValueBoolean(t *testing.T) {
	if err := ValidateValue(SettingTypeBoolean, true); err != nil {
		t.Errorf("bool must be valid: %v", err)
	}
	// 진리값 강제 변환 없음
	for _, v := range []interface{}{1, "true", 0.0} {
		if err := ValidateValue(SettingTypeBoolean, v); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("BOOLEAN must reject %T(%v), got %v", v, v, err)
		}
	}
}

func TestValidateValueInteger(t *testing.T) {
	valid := []interface{}{5, int64(5), "170", float64(42)}
	for _, v := range valid {
		if err := ValidateValue(SettingTypeInteger, v); err != nil {
			t.Errorf("INTEGER must accept %T(%v): %v", v, v, err)
		}
	}
	invalid := []interface{}{"17a", "", 4.5, true, []int{1}}
	for _, v := range invalid {
		if err := ValidateValue(SettingTypeInteger, v); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("INTEGER must reject %T(%v), got %v", v, v, err)
		}
	}
}

func TestValidateValueJSON(t *testing.T) {
	valid := []interface{}{
		map[string]interface{}{"a": 1},
		[]interface{}{"x", "y"},
	}
	for _, v := range valid {
		if err := ValidateValue(SettingTypeJSON, v); err != nil {
			t.Errorf("JSON must accept %T: %v", v, err)
		}
	}
	invalid := []interface{}{"{}", 5, true}
	for _, v := range invalid {
		if err := ValidateValue(SettingTypeJSON, v); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("JSON must reject %T(%v), got %v", v, v, err)
		}
	}
	// 인코딩 불가 값
	if err := ValidateValue(SettingTypeJSON, map[string]interface{}{"ch": make(chan int)}); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("JSON must reject non-encodable value, got %v", err)
	}
}

func TestValidateValueString(t *testing.T) {
	if err := ValidateValue(SettingTypeString, "anything"); err != nil {
		t.Errorf("STRING must accept any string: %v", err)
	}
}

func TestDefaultValueCallable(t *testing.T) {
	def := validDef()
	def.Type = SettingTypeString
	def.DefaultFn = func(projectUUID, userID string) interface{} {
		return projectUUID + ":" + userID
	}
	if got := def.DefaultValue("p1", "u1"); got != "p1:u1" {
		t.Errorf("expected context-aware default, got %v", got)
	}
}
