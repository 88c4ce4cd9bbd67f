package filesfolders

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FileItem 프로젝트 내 파일/폴더 항목
type FileItem struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID        string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"uuid"`
	ProjectID   int64     `gorm:"index;not null" json:"project_id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	IsFolder    bool      `gorm:"default:false" json:"is_folder"`
	Description string    `gorm:"type:varchar(512)" json:"description"`
	OwnerID     *int64    `gorm:"index" json:"owner_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName 테이블명
func (FileItem) TableName() string {
	return "filesfolders_items"
}

// BeforeCreate UUID 자동 생성
func (f *FileItem) BeforeCreate(_ *gorm.DB) error {
	if f.UUID == "" {
		f.UUID = uuid.New().String()
	}
	return nil
}

// Repository 파일 항목 저장소
type Repository struct {
	db *gorm.DB
}

// NewRepository 생성자
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create 항목 생성
func (r *Repository) Create(item *FileItem) error {
	return r.db.Create(item).Error
}

// GetByUUID UUID로 조회. 없으면 (nil, nil)
func (r *Repository) GetByUUID(itemUUID string) (*FileItem, error) {
	var item FileItem
	err := r.db.Where("uuid = ?", itemUUID).First(&item).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ListByProject 프로젝트의 전체 항목 (이름순)
func (r *Repository) ListByProject(projectID int64) ([]FileItem, error) {
	var items []FileItem
	err := r.db.Where("project_id = ?", projectID).Order("name ASC").Find(&items).Error
	return items, err
}

// CountByProject 프로젝트의 항목 수
func (r *Repository) CountByProject(projectID int64) (int64, error) {
	var count int64
	err := r.db.Model(&FileItem{}).Where("project_id = ?", projectID).Count(&count).Error
	return count, err
}

// Search 이름 부분 일치 검색 (대소문자 무시)
func (r *Repository) Search(terms []string) ([]FileItem, error) {
	if len(terms) == 0 {
		return nil, nil
	}
	conditions := make([]string, 0, len(terms))
	args := make([]interface{}, 0, len(terms))
	for _, term := range terms {
		conditions = append(conditions, "LOWER(name) LIKE ?")
		args = append(args, "%"+strings.ToLower(term)+"%")
	}
	var items []FileItem
	err := r.db.Where(strings.Join(conditions, " OR "), args...).Order("name ASC").Find(&items).Error
	return items, err
}
