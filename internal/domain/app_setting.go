package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AppSetting 선언된 SettingDef에 대한 영속 값.
// 스코프에 따라 project/user 컬럼이 채워짐:
// PROJECT는 project만, USER는 user만, PROJECT_USER는 둘 다, SITE는 둘 다 NULL
type AppSetting struct {
	ID         int64          `gorm:"primaryKey" json:"-"`
	UUID       string         `gorm:"uniqueIndex;size:36" json:"uuid"`
	PluginName string         `gorm:"size:100;index:idx_app_setting" json:"plugin_name"`
	Name       string         `gorm:"size:100;index:idx_app_setting" json:"name"`
	ProjectID  *int64         `gorm:"index" json:"-"`
	UserID     *int64         `gorm:"index" json:"-"`
	Value      datatypes.JSON `json:"value"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName GORM 테이블명
func (AppSetting) TableName() string {
	return "app_settings"
}

// BeforeCreate UUID 자동 생성
func (s *AppSetting) BeforeCreate(_ *gorm.DB) error {
	if s.UUID == "" {
		s.UUID = uuid.NewString()
	}
	return nil
}
