package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 이벤트 상태 타입
const (
	StatusInit   = "INIT"
	StatusSubmit = "SUBMIT"
	StatusOK     = "OK"
	StatusFailed = "FAILED"
	StatusInfo   = "INFO"
	StatusCancel = "CANCEL"
)

// IsValidStatusType 상태 타입 검증
func IsValidStatusType(statusType string) bool {
	switch statusType {
	case StatusInit, StatusSubmit, StatusOK, StatusFailed, StatusInfo, StatusCancel:
		return true
	}
	return false
}

// UnnamedObject 이름 없는 객체 참조의 표시 대체 텍스트
const UnnamedObject = "(unnamed)"

// TimelineEvent 감사 이벤트. 생성 이후 식별 필드는 변경되지 않으며
// 상태 이력과 객체 참조만 추가됨. project가 NULL이면 사이트 전역 이벤트
type TimelineEvent struct {
	ID          int64          `gorm:"primaryKey" json:"-"`
	UUID        string         `gorm:"uniqueIndex;size:36" json:"uuid"`
	ProjectID   *int64         `gorm:"index" json:"-"`
	Project     *Project       `json:"project,omitempty"`
	App         string         `gorm:"size:100;index" json:"app"`
	Plugin      string         `gorm:"size:100" json:"plugin,omitempty"` // 아이콘/링크 해석용 오버라이드
	UserID      *int64         `gorm:"index" json:"-"`
	User        *User          `json:"user,omitempty"`
	EventName   string         `gorm:"size:100;index" json:"event_name"`
	Description string         `gorm:"type:text" json:"description"`
	ExtraData   datatypes.JSON `json:"extra_data,omitempty"`
	Classified  bool           `gorm:"default:false" json:"classified"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`

	Statuses   []TimelineEventStatus `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"statuses,omitempty"`
	ObjectRefs []TimelineObjectRef   `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"object_refs,omitempty"`
}

// TableName GORM 테이블명
func (TimelineEvent) TableName() string {
	return "timeline_events"
}

// BeforeCreate UUID 자동 생성
func (e *TimelineEvent) BeforeCreate(_ *gorm.DB) error {
	if e.UUID == "" {
		e.UUID = uuid.NewString()
	}
	return nil
}

// TimelineEventStatus 이벤트 상태 이력의 한 지점.
// 이벤트는 항상 최소 하나의 상태를 가지며 이력은 추가만 가능.
// 최신 행이 현재 상태
type TimelineEventStatus struct {
	ID          int64          `gorm:"primaryKey" json:"-"`
	UUID        string         `gorm:"uniqueIndex;size:36" json:"uuid"`
	EventID     int64          `gorm:"index" json:"-"`
	Timestamp   time.Time      `gorm:"autoCreateTime;index" json:"timestamp"`
	StatusType  string         `gorm:"size:16" json:"status_type"` // INIT, SUBMIT, OK, FAILED, INFO, CANCEL
	Description string         `gorm:"type:text" json:"description"`
	ExtraData   datatypes.JSON `json:"extra_data,omitempty"`
}

// TableName GORM 테이블명
func (TimelineEventStatus) TableName() string {
	return "timeline_event_statuses"
}

// BeforeCreate UUID 자동 생성
func (s *TimelineEventStatus) BeforeCreate(_ *gorm.DB) error {
	if s.UUID == "" {
		s.UUID = uuid.NewString()
	}
	return nil
}

// TimelineObjectRef 이벤트에서 도메인 객체로의 명명된 포인터.
// 실제 FK가 아니라 이력 기록이므로 대상 객체 삭제 후에도 남음
type TimelineObjectRef struct {
	ID          int64          `gorm:"primaryKey" json:"-"`
	UUID        string         `gorm:"uniqueIndex;size:36" json:"uuid"`
	EventID     int64          `gorm:"index" json:"-"`
	Label       string         `gorm:"size:100" json:"label"`
	Name        string         `gorm:"size:255" json:"name"`
	ObjectModel string         `gorm:"size:100;index:idx_object_ref" json:"object_model"`
	ObjectUUID  string         `gorm:"size:36;index:idx_object_ref" json:"object_uuid"`
	ExtraData   datatypes.JSON `json:"extra_data,omitempty"`
}

// TableName GORM 테이블명
func (TimelineObjectRef) TableName() string {
	return "timeline_object_refs"
}

// BeforeCreate UUID 자동 생성
func (r *TimelineObjectRef) BeforeCreate(_ *gorm.DB) error {
	if r.UUID == "" {
		r.UUID = uuid.NewString()
	}
	return nil
}

// ToJSON 임의 값을 JSON 컬럼 값으로 변환
func ToJSON(v interface{}) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}
