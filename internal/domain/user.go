package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User 플랫폼 사용자
type User struct {
	ID        int64     `gorm:"primaryKey" json:"-"`
	UUID      string    `gorm:"uniqueIndex;size:36" json:"uuid"`
	Username  string    `gorm:"uniqueIndex;size:150" json:"username"`
	Name      string    `gorm:"size:255" json:"name"`
	Email     string    `gorm:"size:255" json:"email"`
	Level     int       `gorm:"default:1" json:"level"` // 1=일반, 10=관리자
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName GORM 테이블명
func (User) TableName() string {
	return "users"
}

// BeforeCreate UUID 자동 생성
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.UUID == "" {
		u.UUID = uuid.NewString()
	}
	return nil
}

// IsAnonymous 영속화되지 않은 익명 사용자 여부.
// 익명 사용자는 이벤트/캐시에 NULL로 정규화됨
func (u *User) IsAnonymous() bool {
	return u == nil || u.ID == 0
}

// AdminLevel 관리자 권한 최소 레벨
const AdminLevel = 10
