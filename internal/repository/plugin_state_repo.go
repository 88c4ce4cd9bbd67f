package repository

import (
	"errors"
	"fmt"

	"github.com/groundwork-hq/groundwork-backend/internal/domain"
	"github.com/groundwork-hq/groundwork-backend/internal/plugin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PluginStateRepository 플러그인 상태 저장소 (plugin.StateStore 구현)
type PluginStateRepository struct {
	db *gorm.DB
}

// NewPluginStateRepository 생성자
func NewPluginStateRepository(db *gorm.DB) *PluginStateRepository {
	return &PluginStateRepository{db: db}
}

// EnsureState 상태 레코드 생성 보장. 최초 동기화 시 enabled로 생성
func (r *PluginStateRepository) EnsureState(name, category string) error {
	state := domain.PluginState{
		Name:     name,
		Category: category,
		Status:   plugin.StatusEnabled,
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&state).Error
}

// GetStatus 상태 조회
func (r *PluginStateRepository) GetStatus(name, category string) (string, error) {
	var state domain.PluginState
	err := r.db.Where("name = ? AND category = ?", name, category).First(&state).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: %s (%s)", plugin.ErrPluginNotFound, name, category)
		}
		return "", err
	}
	return state.Status, nil
}

// SetStatus 상태 변경. 동일 값 재설정 시 MySQL이 0 rows affected를
// 보고하므로 존재 확인 후 저장함
func (r *PluginStateRepository) SetStatus(name, category, status string) error {
	var state domain.PluginState
	err := r.db.Where("name = ? AND category = ?", name, category).First(&state).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s (%s)", plugin.ErrPluginNotFound, name, category)
		}
		return err
	}
	state.Status = status
	return r.db.Save(&state).Error
}

// GetStatuses 카테고리 전체 상태 조회
func (r *PluginStateRepository) GetStatuses(category string) (map[string]string, error) {
	var states []domain.PluginState
	if err := r.db.Where("category = ?", category).Find(&states).Error; err != nil {
		return nil, err
	}
	statuses := make(map[string]string, len(states))
	for _, s := range states {
		statuses[s.Name] = s.Status
	}
	return statuses, nil
}

// List 전체 상태 레코드 조회 (관리용)
func (r *PluginStateRepository) List() ([]domain.PluginState, error) {
	var states []domain.PluginState
	err := r.db.Order("category ASC, name ASC").Find(&states).Error
	return states, err
}
