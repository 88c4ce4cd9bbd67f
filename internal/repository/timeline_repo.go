package repository

import (
	"errors"
	"strings"

	"github.com/groundwork-hq/groundwork-backend/internal/common"
	"github.com/groundwork-hq/groundwork-backend/internal/domain"
	"gorm.io/gorm"
)

// TimelineRepository 타임라인 이벤트 저장소
type TimelineRepository struct {
	db *gorm.DB
}

// NewTimelineRepository 생성자
func NewTimelineRepository(db *gorm.DB) *TimelineRepository {
	return &TimelineRepository{db: db}
}

// CreateWithStatus 이벤트와 초기 상태를 한 트랜잭션으로 생성.
// 이벤트는 항상 최소 하나의 상태를 가져야 함
func (r *TimelineRepository) CreateWithStatus(event *domain.TimelineEvent, status *domain.TimelineEventStatus) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(event).Error; err != nil {
			return err
		}
		status.EventID = event.ID
		return tx.Create(status).Error
	})
}

// AddStatus 상태 이력에 행 추가 (기존 행은 변경하지 않음)
func (r *TimelineRepository) AddStatus(status *domain.TimelineEventStatus) error {
	return r.db.Create(status).Error
}

// AddObjectRef 객체 참조 추가
func (r *TimelineRepository) AddObjectRef(ref *domain.TimelineObjectRef) error {
	return r.db.Create(ref).Error
}

// GetByUUID UUID로 이벤트 조회
func (r *TimelineRepository) GetByUUID(eventUUID string) (*domain.TimelineEvent, error) {
	var event domain.TimelineEvent
	err := r.db.Preload("Project").Preload("User").
		Where("uuid = ?", eventUUID).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

// ListByProject 프로젝트별 이벤트 목록 (최신순). projectID가 nil이면 사이트 전역 이벤트
func (r *TimelineRepository) ListByProject(projectID *int64, classified bool, limit, offset int) ([]domain.TimelineEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	q := r.db.Model(&domain.TimelineEvent{})
	if projectID != nil {
		q = q.Where("project_id = ?", *projectID)
	} else {
		q = q.Where("project_id IS NULL")
	}
	if !classified {
		q = q.Where("classified = ?", false)
	}
	var events []domain.TimelineEvent
	err := q.Order("id DESC").Limit(limit).Offset(offset).Find(&events).Error
	return events, err
}

// GetStatusChanges 이벤트의 상태 이력 (삽입 순서 오름차순)
func (r *TimelineRepository) GetStatusChanges(eventID int64) ([]domain.TimelineEventStatus, error) {
	var statuses []domain.TimelineEventStatus
	err := r.db.Where("event_id = ?", eventID).
		Order("timestamp ASC, id ASC").Find(&statuses).Error
	return statuses, err
}

// GetCurrentStatus 가장 최근에 삽입된 상태 행
func (r *TimelineRepository) GetCurrentStatus(eventID int64) (*domain.TimelineEventStatus, error) {
	var status domain.TimelineEventStatus
	err := r.db.Where("event_id = ?", eventID).
		Order("id DESC").First(&status).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return &status, nil
}

// GetObjectRefs 이벤트의 객체 참조 목록
func (r *TimelineRepository) GetObjectRefs(eventID int64) ([]domain.TimelineObjectRef, error) {
	var refs []domain.TimelineObjectRef
	err := r.db.Where("event_id = ?", eventID).Order("id ASC").Find(&refs).Error
	return refs, err
}

// GetObjectEvents 객체 참조를 통해 주어진 객체를 가리키는 모든 이벤트 (최신순)
func (r *TimelineRepository) GetObjectEvents(projectID *int64, objectModel, objectUUID string) ([]domain.TimelineEvent, error) {
	q := r.db.Model(&domain.TimelineEvent{}).
		Where("id IN (?)", r.db.Model(&domain.TimelineObjectRef{}).
			Select("event_id").
			Where("object_model = ? AND object_uuid = ?", objectModel, objectUUID))
	if projectID != nil {
		q = q.Where("project_id = ?", *projectID)
	}
	var events []domain.TimelineEvent
	err := q.Order("id DESC").Find(&events).Error
	return events, err
}

// Find 자유 검색. 각 검색어는 이벤트 이름(원문 및 공백→밑줄 변환),
// 설명, 연결된 객체 참조 이름에 대해 대소문자 무시 부분일치로 비교되며
// 검색어와 필드 전체에 걸쳐 OR로 결합됨. 결과는 최근 상태 시각 내림차순,
// limit 건으로 제한
func (r *TimelineRepository) Find(terms []string, limit int) ([]domain.TimelineEvent, error) {
	if len(terms) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 250
	}

	var conds []string
	var args []interface{}
	for _, term := range terms {
		like := "%" + strings.ToLower(term) + "%"
		underscoreLike := "%" + strings.ReplaceAll(strings.ToLower(term), " ", "_") + "%"
		conds = append(conds,
			"(LOWER(event_name) LIKE ? OR LOWER(event_name) LIKE ? OR LOWER(description) LIKE ?"+
				" OR id IN (SELECT event_id FROM timeline_object_refs WHERE LOWER(name) LIKE ?))")
		args = append(args, like, underscoreLike, like, like)
	}

	var events []domain.TimelineEvent
	err := r.db.Model(&domain.TimelineEvent{}).
		Preload("Project").
		Where(strings.Join(conds, " OR "), args...).
		Order("(SELECT MAX(s.timestamp) FROM timeline_event_statuses s WHERE s.event_id = timeline_events.id) DESC, id DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

// CountEvents 이벤트 행 수 (테스트/관리용)
func (r *TimelineRepository) CountEvents() (int64, error) {
	var count int64
	err := r.db.Model(&domain.TimelineEvent{}).Count(&count).Error
	return count, err
}

// CountStatuses 상태 행 수 (테스트/관리용)
func (r *TimelineRepository) CountStatuses() (int64, error) {
	var count int64
	err := r.db.Model(&domain.TimelineEventStatus{}).Count(&count).Error
	return count, err
}
