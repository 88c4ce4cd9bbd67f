package repository

import (
	"errors"

	"github.com/groundwork-hq/groundwork-backend/internal/common"
	"github.com/groundwork-hq/groundwork-backend/internal/domain"
	"gorm.io/gorm"
)

// ProjectRepository 프로젝트 저장소
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository 생성자
func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create 프로젝트 생성
func (r *ProjectRepository) Create(project *domain.Project) error {
	return r.db.Create(project).Error
}

// Update 프로젝트 수정
func (r *ProjectRepository) Update(project *domain.Project) error {
	return r.db.Save(project).Error
}

// GetByUUID UUID로 조회
func (r *ProjectRepository) GetByUUID(projectUUID string) (*domain.Project, error) {
	var project domain.Project
	err := r.db.Where("uuid = ?", projectUUID).First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

// List 프로젝트 목록 (제목순). limit이 0 이하이면 전체 반환
func (r *ProjectRepository) List(limit, offset int) ([]domain.Project, error) {
	query := r.db.Order("title ASC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	var projects []domain.Project
	err := query.Find(&projects).Error
	return projects, err
}
