package repository

import (
	"errors"

	"github.com/groundwork-hq/groundwork-backend/internal/domain"
	"gorm.io/gorm"
)

// CacheRepository 캐시 항목 저장소
type CacheRepository struct {
	db *gorm.DB
}

// NewCacheRepository 생성자
func NewCacheRepository(db *gorm.DB) *CacheRepository {
	return &CacheRepository{db: db}
}

// GetItem 식별 튜플로 항목 조회. 없으면 (nil, nil)
func (r *CacheRepository) GetItem(appName, name string, projectID *int64) (*domain.CacheItem, error) {
	q := r.db.Where("app_name = ? AND name = ?", appName, name)
	if projectID != nil {
		q = q.Where("project_id = ?", *projectID)
	} else {
		q = q.Where("project_id IS NULL")
	}
	var item domain.CacheItem
	if err := q.First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// Save 항목 생성 또는 갱신
func (r *CacheRepository) Save(item *domain.CacheItem) error {
	return r.db.Save(item).Error
}

// DeleteItems 조건부 일괄 삭제. appName 빈 문자열 / projectID nil은
// 해당 차원 무시. 둘 다 생략하면 전체 삭제. 삭제 건수 반환
func (r *CacheRepository) DeleteItems(appName string, projectID *int64) (int64, error) {
	q := r.db
	if appName != "" {
		q = q.Where("app_name = ?", appName)
	}
	if projectID != nil {
		q = q.Where("project_id = ?", *projectID)
	}
	result := q.Where("1 = 1").Delete(&domain.CacheItem{})
	return result.RowsAffected, result.Error
}

// DeleteItem 식별 튜플 단건 삭제. 삭제 건수 반환
func (r *CacheRepository) DeleteItem(appName, name string, projectID *int64) (int64, error) {
	q := r.db.Where("app_name = ? AND name = ?", appName, name)
	if projectID != nil {
		q = q.Where("project_id = ?", *projectID)
	} else {
		q = q.Where("project_id IS NULL")
	}
	result := q.Delete(&domain.CacheItem{})
	return result.RowsAffected, result.Error
}

// ListByProject 프로젝트의 전체 캐시 항목 (앱 이름 필터 선택)
func (r *CacheRepository) ListByProject(projectID int64, appName string) ([]domain.CacheItem, error) {
	q := r.db.Where("project_id = ?", projectID)
	if appName != "" {
		q = q.Where("app_name = ?", appName)
	}
	var items []domain.CacheItem
	err := q.Order("app_name ASC, name ASC").Find(&items).Error
	return items, err
}

// Count 항목 수 (테스트/관리용)
func (r *CacheRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&domain.CacheItem{}).Count(&count).Error
	return count, err
}
