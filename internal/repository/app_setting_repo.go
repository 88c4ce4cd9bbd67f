package repository

import (
	"errors"

	"github.com/groundwork-hq/groundwork-backend/internal/domain"
	"gorm.io/gorm"
)

// AppSettingRepository 앱 설정 값 저장소
type AppSettingRepository struct {
	db *gorm.DB
}

// NewAppSettingRepository 생성자
func NewAppSettingRepository(db *gorm.DB) *AppSettingRepository {
	return &AppSettingRepository{db: db}
}

// scopeQuery 스코프 대상 컬럼을 NULL 포함 정확히 일치시키는 쿼리
func (r *AppSettingRepository) scopeQuery(pluginName, name string, projectID, userID *int64) *gorm.DB {
	q := r.db.Where("plugin_name = ? AND name = ?", pluginName, name)
	if projectID != nil {
		q = q.Where("project_id = ?", *projectID)
	} else {
		q = q.Where("project_id IS NULL")
	}
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	} else {
		q = q.Where("user_id IS NULL")
	}
	return q
}

// Get 설정 값 조회. 없으면 (nil, nil)
func (r *AppSettingRepository) Get(pluginName, name string, projectID, userID *int64) (*domain.AppSetting, error) {
	var setting domain.AppSetting
	err := r.scopeQuery(pluginName, name, projectID, userID).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &setting, nil
}

// Save 설정 값 생성 또는 갱신
func (r *AppSettingRepository) Save(setting *domain.AppSetting) error {
	return r.db.Save(setting).Error
}

// Delete 설정 값 삭제
func (r *AppSettingRepository) Delete(pluginName, name string, projectID, userID *int64) error {
	return r.scopeQuery(pluginName, name, projectID, userID).Delete(&domain.AppSetting{}).Error
}

// ListByPlugin 플러그인의 전체 설정 값
func (r *AppSettingRepository) ListByPlugin(pluginName string) ([]domain.AppSetting, error) {
	var settings []domain.AppSetting
	err := r.db.Where("plugin_name = ?", pluginName).Order("name ASC").Find(&settings).Error
	return settings, err
}
