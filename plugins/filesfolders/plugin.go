// Package filesfolders 프로젝트 파일/폴더 관리 앱 플러그인
package filesfolders

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/groundwork-hq/groundwork-backend/internal/common"
	"github.com/groundwork-hq/groundwork-backend/internal/domain"
	"github.com/groundwork-hq/groundwork-backend/internal/middleware"
	"github.com/groundwork-hq/groundwork-backend/internal/plugin"
	"github.com/groundwork-hq/groundwork-backend/internal/repository"
	"github.com/groundwork-hq/groundwork-backend/internal/service"
)

// StatsCacheItem 프로젝트별 파일 통계 캐시 항목 이름
const StatsCacheItem = "file_stats"

// AppPlugin 파일/폴더 프로젝트 앱 플러그인
type AppPlugin struct {
	repo     *Repository
	projects *repository.ProjectRepository
	users    *repository.UserRepository
	registry *plugin.Registry
	logger   plugin.Logger
}

// New 새 파일/폴더 플러그인 생성
func New(repo *Repository, projects *repository.ProjectRepository, users *repository.UserRepository, registry *plugin.Registry, logger plugin.Logger) *AppPlugin {
	return &AppPlugin{
		repo:     repo,
		projects: projects,
		users:    users,
		registry: registry,
		logger:   logger,
	}
}

// Name 플러그인 이름
func (p *AppPlugin) Name() string { return "filesfolders" }

// Title UI 표시용 제목
func (p *AppPlugin) Title() string { return "Files" }

// Icon UI 아이콘 이름
func (p *AppPlugin) Icon() string { return "folder" }

// Ordering 커스텀 정렬 순서
func (p *AppPlugin) Ordering() int { return 30 }

// SettingDefs 플러그인 설정 스키마
func (p *AppPlugin) SettingDefs() []plugin.SettingDef {
	return []plugin.SettingDef{
		{
			Name:        "allow_public_links",
			Scope:       plugin.ScopeProject,
			Type:        plugin.SettingTypeBoolean,
			Default:     false,
			Label:       "Allow public links",
			Description: "Allow generating public links for files",
		},
		{
			Name:    "default_view",
			Scope:   plugin.ScopeProjectUser,
			Type:    plugin.SettingTypeString,
			Default: "list",
			Options: []plugin.Option{
				{Value: "list", Label: "List"},
				{Value: "grid", Label: "Grid"},
			},
			Label: "Default view",
		},
		{
			Name:    "max_files",
			Scope:   plugin.ScopeProject,
			Type:    plugin.SettingTypeInteger,
			Default: 100,
			Label:   "Maximum file count",
		},
		{
			Name:    "folder_flags",
			Scope:   plugin.ScopeProject,
			Type:    plugin.SettingTypeJSON,
			Default: map[string]interface{}{"locked": []interface{}{}},
			Label:   "Folder flags",
		},
	}
}

// RegisterRoutes 플러그인 라우트 등록
func (p *AppPlugin) RegisterRoutes(r gin.IRouter) {
	group := r.Group("/filesfolders")
	group.GET("/projects/:uuid/items", p.listItems)
	group.POST("/projects/:uuid/items", p.createItem)
	group.GET("/items/:uuid", p.getItem)
}

// timelineAPI 타임라인 백엔드 조회. 허용 목록에 없으면 nil
func (p *AppPlugin) timelineAPI() *service.TimelineService {
	api, err := p.registry.GetBackendAPI("timeline", false, nil)
	if err != nil || api == nil {
		return nil
	}
	svc, ok := api.(*service.TimelineService)
	if !ok {
		return nil
	}
	return svc
}

func (p *AppPlugin) listItems(c *gin.Context) {
	project, err := p.projects.GetByUUID(c.Param("uuid"))
	if err != nil {
		common.ErrorResponse(c, http.StatusNotFound, "Project not found", err)
		return
	}
	items, err := p.repo.ListByProject(project.ID)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to list items", err)
		return
	}
	common.SuccessResponse(c, items, nil)
}

// createItemRequest file item creation payload
type createItemRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=255"`
	IsFolder    bool   `json:"is_folder"`
	Description string `json:"description" binding:"omitempty,max=512"`
}

func (p *AppPlugin) createItem(c *gin.Context) {
	project, err := p.projects.GetByUUID(c.Param("uuid"))
	if err != nil {
		common.ErrorResponse(c, http.StatusNotFound, "Project not found", err)
		return
	}

	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var user *domain.User
	if userUUID := middleware.GetUserUUID(c); userUUID != "" {
		user, _ = p.users.GetByUUID(userUUID)
	}

	item := &FileItem{
		ProjectID:   project.ID,
		Name:        req.Name,
		IsFolder:    req.IsFolder,
		Description: req.Description,
	}
	if user != nil {
		item.OwnerID = &user.ID
	}
	if err := p.repo.Create(item); err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to create item", err)
		return
	}

	// 생성을 감사 이벤트로 기록 (타임라인 백엔드가 비활성이면 생략)
	if timeline := p.timelineAPI(); timeline != nil {
		event, err := timeline.AddEvent(service.EventParams{
			Project:     project,
			AppName:     p.Name(),
			User:        user,
			EventName:   "file_create",
			Description: "create {file}",
			StatusType:  domain.StatusOK,
			StatusDesc:  "Item created",
		})
		if err != nil {
			p.logger.Warn("Audit event failed for item %s: %v", item.UUID, err)
		} else if _, err := timeline.AddObject(event, "file", item.Name, "FileItem", item.UUID, nil); err != nil {
			p.logger.Warn("Object ref failed for item %s: %v", item.UUID, err)
		}
	}

	if err := p.refreshStats(project, user); err != nil {
		p.logger.Warn("Stats cache refresh failed for project %s: %v", project.UUID, err)
	}

	common.CreatedResponse(c, item)
}

func (p *AppPlugin) getItem(c *gin.Context) {
	item, err := p.repo.GetByUUID(c.Param("uuid"))
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to get item", err)
		return
	}
	if item == nil {
		common.ErrorResponse(c, http.StatusNotFound, "Item not found", common.ErrNotFound)
		return
	}
	common.SuccessResponse(c, item, nil)
}

// Search 파일 이름 검색
func (p *AppPlugin) Search(terms []string, _ map[string]string) ([]plugin.SearchResult, error) {
	items, err := p.repo.Search(terms)
	if err != nil {
		return nil, err
	}
	results := make([]plugin.SearchResult, 0, len(items))
	for i := range items {
		results = append(results, plugin.SearchResult{
			Title:       items[i].Name,
			ObjectModel: "FileItem",
			ObjectUUID:  items[i].UUID,
		})
	}
	return results, nil
}

// GetObjectLink 타임라인 객체 참조 링크
func (p *AppPlugin) GetObjectLink(objModel, objUUID string) *plugin.ObjectLink {
	if objModel != "FileItem" {
		return nil
	}
	item, err := p.repo.GetByUUID(objUUID)
	if err != nil || item == nil {
		return nil
	}
	return &plugin.ObjectLink{
		Name: item.Name,
		URL:  "/api/v1/filesfolders/items/" + item.UUID,
	}
}

// UpdateCache 프로젝트별 파일 통계 캐시 항목 갱신
func (p *AppPlugin) UpdateCache(name, projectUUID, userID string) error {
	if name != "" && name != StatsCacheItem {
		return nil
	}
	if projectUUID == "" {
		// 전체 갱신은 프로젝트 목록 순회
		projects, err := p.projects.List(0, 0)
		if err != nil {
			return err
		}
		for i := range projects {
			if err := p.updateProjectStats(&projects[i], userID); err != nil {
				return err
			}
		}
		return nil
	}

	project, err := p.projects.GetByUUID(projectUUID)
	if err != nil {
		return err
	}
	return p.updateProjectStats(project, userID)
}

func (p *AppPlugin) updateProjectStats(project *domain.Project, userUUID string) error {
	var user *domain.User
	if userUUID != "" {
		user, _ = p.users.GetByUUID(userUUID)
	}
	return p.refreshStats(project, user)
}

// refreshStats 캐시 백엔드에 파일 수를 기록
func (p *AppPlugin) refreshStats(project *domain.Project, user *domain.User) error {
	api, err := p.registry.GetBackendAPI("appcache", false, nil)
	if err != nil || api == nil {
		return err
	}
	cache, ok := api.(*service.CacheService)
	if !ok {
		return nil
	}

	count, err := p.repo.CountByProject(project.ID)
	if err != nil {
		return err
	}
	_, err = cache.SetItem(p.Name(), StatsCacheItem, map[string]interface{}{
		"file_count": count,
	}, project, user)
	return err
}

var (
	_ plugin.ProjectApp   = (*AppPlugin)(nil)
	_ plugin.Searchable   = (*AppPlugin)(nil)
	_ plugin.CacheUpdater = (*AppPlugin)(nil)
	_ plugin.ObjectLinker = (*AppPlugin)(nil)
)
