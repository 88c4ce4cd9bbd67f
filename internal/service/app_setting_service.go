package service

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/groundwork-hq/groundwork-backend/internal/common"
	"github.com/groundwork-hq/groundwork-backend/internal/domain"
	"github.com/groundwork-hq/groundwork-backend/internal/plugin"
	"github.com/groundwork-hq/groundwork-backend/internal/repository"
)

// AppSettingService 선언된 설정 스키마에 대한 값 조회/저장 서비스.
// 값은 항상 해당 SettingDef로 검증된 후에만 영속화됨
type AppSettingService struct {
	repo     *repository.AppSettingRepository
	registry *plugin.Registry
	logger   plugin.Logger
}

// NewAppSettingService 생성자
func NewAppSettingService(repo *repository.AppSettingRepository, registry *plugin.Registry, logger plugin.Logger) *AppSettingService {
	return &AppSettingService{
		repo:     repo,
		registry: registry,
		logger:   logger,
	}
}

// scopeTargets 스코프별 대상 검증 후 영속 키 컬럼 결정
func scopeTargets(def *plugin.SettingDef, project *domain.Project, user *domain.User) (projectID, userID *int64, err error) {
	switch def.Scope {
	case plugin.ScopeProject:
		if project == nil {
			return nil, nil, fmt.Errorf("%w: project required for PROJECT scope", common.ErrInvalidInput)
		}
		return &project.ID, nil, nil
	case plugin.ScopeUser:
		if user.IsAnonymous() {
			return nil, nil, fmt.Errorf("%w: user required for USER scope", common.ErrInvalidInput)
		}
		return nil, &user.ID, nil
	case plugin.ScopeProjectUser:
		if project == nil || user.IsAnonymous() {
			return nil, nil, fmt.Errorf("%w: project and user required for PROJECT_USER scope", common.ErrInvalidInput)
		}
		return &project.ID, &user.ID, nil
	case plugin.ScopeSite:
		return nil, nil, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", plugin.ErrInvalidScope, def.Scope)
}

// Get 설정 값 조회. 저장된 값이 없으면 정의의 기본값 반환
func (s *AppSettingService) Get(pluginName, settingName string, project *domain.Project, user *domain.User) (interface{}, error) {
	def, err := s.registry.GetSettingDef(pluginName, settingName)
	if err != nil {
		return nil, err
	}
	projectID, userID, err := scopeTargets(def, project, user)
	if err != nil {
		return nil, err
	}

	row, err := s.repo.Get(pluginName, settingName, projectID, userID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		projectUUID := ""
		if project != nil {
			projectUUID = project.UUID
		}
		userUUID := ""
		if !user.IsAnonymous() {
			userUUID = user.UUID
		}
		return def.DefaultValue(projectUUID, userUUID), nil
	}

	var value interface{}
	if err := json.Unmarshal(row.Value, &value); err != nil {
		return nil, fmt.Errorf("corrupt setting value for %s.%s: %w", pluginName, settingName, err)
	}
	// JSON 숫자는 float64로 디코딩되므로 INTEGER 설정은 int로 복원
	if def.Type == plugin.SettingTypeInteger {
		if f, ok := value.(float64); ok && f == math.Trunc(f) {
			value = int(f)
		}
	}
	return value, nil
}

// Set 설정 값 저장. 값 타입과 선택지 포함 여부를 정의로 검증한 뒤 upsert
func (s *AppSettingService) Set(pluginName, settingName string, value interface{}, project *domain.Project, user *domain.User) error {
	def, err := s.registry.GetSettingDef(pluginName, settingName)
	if err != nil {
		return err
	}
	if err := plugin.ValidateValue(def.Type, value); err != nil {
		return err
	}
	if len(def.Options) > 0 && def.OptionsFn == nil {
		if !optionsContainValue(def, value) {
			return fmt.Errorf("%w: %v", plugin.ErrValueNotInOptions, value)
		}
	}

	projectID, userID, err := scopeTargets(def, project, user)
	if err != nil {
		return err
	}

	encoded, err := domain.ToJSON(value)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidDataType, err)
	}

	row, err := s.repo.Get(pluginName, settingName, projectID, userID)
	if err != nil {
		return err
	}
	if row == nil {
		row = &domain.AppSetting{
			PluginName: pluginName,
			Name:       settingName,
			ProjectID:  projectID,
			UserID:     userID,
		}
	}
	row.Value = encoded
	if err := s.repo.Save(row); err != nil {
		return err
	}
	s.logger.Debug("Set app setting %s.%s", pluginName, settingName)
	return nil
}

// Delete 저장된 설정 값 삭제 (기본값으로 복귀)
func (s *AppSettingService) Delete(pluginName, settingName string, project *domain.Project, user *domain.User) error {
	def, err := s.registry.GetSettingDef(pluginName, settingName)
	if err != nil {
		return err
	}
	projectID, userID, err := scopeTargets(def, project, user)
	if err != nil {
		return err
	}
	return s.repo.Delete(pluginName, settingName, projectID, userID)
}

// optionsContainValue 정적 선택지 포함 여부 (INTEGER는 숫자 문자열 동일 취급)
func optionsContainValue(def *plugin.SettingDef, value interface{}) bool {
	for _, opt := range def.Options {
		if opt.Value == value {
			return true
		}
		if def.Type == plugin.SettingTypeInteger && fmt.Sprint(opt.Value) == fmt.Sprint(value) {
			return true
		}
	}
	return false
}
