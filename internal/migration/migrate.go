package migration

import (
	"gorm.io/gorm"

	"github.com/groundwork-hq/groundwork-backend/internal/domain"
)

// Run executes AutoMigrate for the core tables.
// 플러그인이 자체 테이블을 가지면 extra로 전달
func Run(db *gorm.DB, extra ...interface{}) error {
	models := []interface{}{
		&domain.User{},
		&domain.Project{},
		&domain.PluginState{},
		&domain.TimelineEvent{},
		&domain.TimelineEventStatus{},
		&domain.TimelineObjectRef{},
		&domain.CacheItem{},
		&domain.AppSetting{},
	}
	models = append(models, extra...)
	return db.AutoMigrate(models...)
}
