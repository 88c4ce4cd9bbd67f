package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 프로젝트 타입
const (
	ProjectTypeProject  = "PROJECT"
	ProjectTypeCategory = "CATEGORY"
)

// Project 이벤트/캐시/설정의 스코프가 되는 프로젝트
type Project struct {
	ID          int64     `gorm:"primaryKey" json:"-"`
	UUID        string    `gorm:"uniqueIndex;size:36" json:"uuid"`
	Title       string    `gorm:"size:255" json:"title"`
	Type        string    `gorm:"size:16;default:PROJECT" json:"type"` // PROJECT, CATEGORY
	Description string    `gorm:"type:text" json:"description"`
	ParentID    *int64    `gorm:"index" json:"-"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName GORM 테이블명
func (Project) TableName() string {
	return "projects"
}

// BeforeCreate UUID 자동 생성
func (p *Project) BeforeCreate(_ *gorm.DB) error {
	if p.UUID == "" {
		p.UUID = uuid.NewString()
	}
	return nil
}
