package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CacheItem (app_name, name, project) 튜플로 식별되는 JSON 문서.
// set은 식별 튜플 기준 upsert이며 data는 통째로 교체됨 (부분 병합 없음).
// 동일 튜플에 대한 동시 쓰기는 last-write-wins (캐시 특성상 staleness 허용)
type CacheItem struct {
	ID           int64          `gorm:"primaryKey" json:"-"`
	UUID         string         `gorm:"uniqueIndex;size:36" json:"uuid"`
	AppName      string         `gorm:"size:100;index:idx_cache_item" json:"app_name"`
	Name         string         `gorm:"size:255;index:idx_cache_item" json:"name"`
	ProjectID    *int64         `gorm:"index" json:"-"`
	Project      *Project       `json:"project,omitempty"`
	Data         datatypes.JSON `json:"data"`
	UserID       *int64         `json:"-"` // 마지막 작성자
	User         *User          `json:"user,omitempty"`
	DateModified time.Time      `gorm:"autoUpdateTime" json:"date_modified"`
}

// TableName GORM 테이블명
func (CacheItem) TableName() string {
	return "cache_items"
}

// BeforeCreate UUID 자동 생성
func (c *CacheItem) BeforeCreate(_ *gorm.DB) error {
	if c.UUID == "" {
		c.UUID = uuid.NewString()
	}
	return nil
}
