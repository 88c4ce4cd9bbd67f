package repository

import (
	"errors"

	"github.com/groundwork-hq/groundwork-backend/internal/common"
	"github.com/groundwork-hq/groundwork-backend/internal/domain"
	"gorm.io/gorm"
)

// UserRepository 사용자 저장소
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository 생성자
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create 사용자 생성
func (r *UserRepository) Create(user *domain.User) error {
	return r.db.Create(user).Error
}

// GetByUsername 사용자명으로 조회
func (r *UserRepository) GetByUsername(username string) (*domain.User, error) {
	var user domain.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByUUID UUID로 조회
func (r *UserRepository) GetByUUID(userUUID string) (*domain.User, error) {
	var user domain.User
	err := r.db.Where("uuid = ?", userUUID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
