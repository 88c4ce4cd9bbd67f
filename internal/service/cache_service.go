package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/groundwork-hq/groundwork-backend/internal/common"
	"github.com/groundwork-hq/groundwork-backend/internal/domain"
	"github.com/groundwork-hq/groundwork-backend/internal/plugin"
	"github.com/groundwork-hq/groundwork-backend/internal/repository"
	"github.com/redis/go-redis/v9"
)

// CacheTTL Redis 핫 레이어 TTL. DB 행이 원본이므로 staleness는
// TTL 범위 내로 제한됨
const CacheTTL = 5 * time.Minute

// CacheService (app, name, project) 키 기반 JSON 문서 저장 서비스.
// Redis가 설정된 경우 read-through 핫 레이어로 사용하고,
// 항목의 의미는 알지 못하며 키와 영속화만 담당함
type CacheService struct {
	repo     *repository.CacheRepository
	registry *plugin.Registry
	rdb      *redis.Client // nil이면 DB만 사용
	logger   plugin.Logger
}

// NewCacheService 생성자. rdb는 nil 허용
func NewCacheService(repo *repository.CacheRepository, registry *plugin.Registry, rdb *redis.Client, logger plugin.Logger) *CacheService {
	return &CacheService{
		repo:     repo,
		registry: registry,
		rdb:      rdb,
		logger:   logger,
	}
}

// redisKey 핫 레이어 키
func redisKey(appName, name string, project *domain.Project) string {
	scope := "site"
	if project != nil {
		scope = project.UUID
	}
	return fmt.Sprintf("appcache:%s:%s:%s", appName, name, scope)
}

// GetItem 식별 튜플로 항목 조회. 없으면 (nil, nil)
func (s *CacheService) GetItem(appName, name string, project *domain.Project) (*domain.CacheItem, error) {
	if !s.registry.IsInstalled(appName) {
		return nil, fmt.Errorf("%w: %s", common.ErrInvalidAppName, appName)
	}

	if s.rdb != nil {
		if item := s.hotGet(appName, name, project); item != nil {
			return item, nil
		}
	}

	var projectID *int64
	if project != nil {
		projectID = &project.ID
	}
	item, err := s.repo.GetItem(appName, name, projectID)
	if err != nil || item == nil {
		return item, err
	}
	s.hotSet(appName, name, project, item)
	return item, nil
}

// SetItem 항목 생성 또는 통째 교체 (식별 튜플 기준 upsert).
// data는 부분 병합 없이 전체가 교체되며 user/project가 주어지면 갱신됨
func (s *CacheService) SetItem(appName, name string, data map[string]interface{}, project *domain.Project, user *domain.User) (*domain.CacheItem, error) {
	if !s.registry.IsInstalled(appName) {
		return nil, fmt.Errorf("%w: %s", common.ErrInvalidAppName, appName)
	}
	if data == nil {
		return nil, fmt.Errorf("%w: data must be a map", common.ErrInvalidDataType)
	}
	encoded, err := domain.ToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidDataType, err)
	}

	var projectID *int64
	if project != nil {
		projectID = &project.ID
	}

	item, err := s.repo.GetItem(appName, name, projectID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		item = &domain.CacheItem{
			AppName:   appName,
			Name:      name,
			ProjectID: projectID,
		}
	}
	item.Data = encoded
	item.DateModified = time.Now()
	if !user.IsAnonymous() {
		item.UserID = &user.ID
	}

	if err := s.repo.Save(item); err != nil {
		return nil, err
	}
	s.hotSet(appName, name, project, item)
	return item, nil
}

// DeleteCache 조건부 일괄 삭제. appName 빈 문자열 / project nil은
// 해당 차원 무시, 둘 다 생략하면 전체 삭제. 삭제 건수 반환.
// 핫 레이어는 키 단위 무효화가 불가능하므로 TTL 만료에 맡김
func (s *CacheService) DeleteCache(appName string, project *domain.Project) (int64, error) {
	if appName != "" && !s.registry.IsInstalled(appName) {
		return 0, fmt.Errorf("%w: %s", common.ErrInvalidAppName, appName)
	}
	var projectID *int64
	if project != nil {
		projectID = &project.ID
	}
	return s.repo.DeleteItems(appName, projectID)
}

// DeleteItem 식별 튜플 단건 삭제
func (s *CacheService) DeleteItem(appName, name string, project *domain.Project) (int64, error) {
	if !s.registry.IsInstalled(appName) {
		return 0, fmt.Errorf("%w: %s", common.ErrInvalidAppName, appName)
	}
	var projectID *int64
	if project != nil {
		projectID = &project.ID
	}
	count, err := s.repo.DeleteItem(appName, name, projectID)
	if err != nil {
		return 0, err
	}
	s.hotDelete(appName, name, project)
	return count, nil
}

// GetProjectCache 프로젝트의 전체 캐시 항목
func (s *CacheService) GetProjectCache(project *domain.Project, appName string) ([]domain.CacheItem, error) {
	if appName != "" && !s.registry.IsInstalled(appName) {
		return nil, fmt.Errorf("%w: %s", common.ErrInvalidAppName, appName)
	}
	return s.repo.ListByProject(project.ID, appName)
}

// GetUpdateTime 마지막 수정 시각을 epoch 초로 반환. 항목이 없으면 found=false
func (s *CacheService) GetUpdateTime(appName, name string, project *domain.Project) (float64, bool, error) {
	item, err := s.GetItem(appName, name, project)
	if err != nil || item == nil {
		return 0, false, err
	}
	return float64(item.DateModified.UnixMilli()) / 1000.0, true, nil
}

// UpdateCache 활성 project_app 플러그인 중 CacheUpdater를 구현한
// 플러그인에 갱신을 위임. 재계산의 의미는 각 플러그인 소관이며
// 개별 실패는 경고로 남기고 계속 진행함
func (s *CacheService) UpdateCache(name string, project *domain.Project, user *domain.User) error {
	apps, err := s.registry.GetActivePlugins(plugin.TypeProjectApp, false)
	if err != nil {
		return err
	}

	projectUUID := ""
	if project != nil {
		projectUUID = project.UUID
	}
	userID := ""
	if !user.IsAnonymous() {
		userID = user.UUID
	}

	for _, p := range apps {
		updater, ok := p.(plugin.CacheUpdater)
		if !ok {
			continue
		}
		if err := updater.UpdateCache(name, projectUUID, userID); err != nil {
			s.logger.Warn("Cache update failed for plugin %s: %v", p.Name(), err)
		}
	}
	return nil
}

// hotGet Redis 핫 레이어 조회. 실패는 캐시 미스로 취급
func (s *CacheService) hotGet(appName, name string, project *domain.Project) *domain.CacheItem {
	data, err := s.rdb.Get(context.Background(), redisKey(appName, name, project)).Bytes()
	if err != nil {
		return nil
	}
	var item domain.CacheItem
	if err := json.Unmarshal(data, &item); err != nil {
		return nil
	}
	return &item
}

// hotSet Redis 핫 레이어 기록. 실패는 무시 (DB가 원본)
func (s *CacheService) hotSet(appName, name string, project *domain.Project, item *domain.CacheItem) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(item)
	if err != nil {
		return
	}
	if err := s.rdb.Set(context.Background(), redisKey(appName, name, project), data, CacheTTL).Err(); err != nil {
		s.logger.Debug("Redis set failed for %s: %v", redisKey(appName, name, project), err)
	}
}

// hotDelete Redis 핫 레이어 키 삭제
func (s *CacheService) hotDelete(appName, name string, project *domain.Project) {
	if s.rdb == nil {
		return
	}
	_ = s.rdb.Del(context.Background(), redisKey(appName, name, project)).Err()
}
