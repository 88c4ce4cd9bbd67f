package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/groundwork-hq/groundwork-backend/internal/common"
	"github.com/groundwork-hq/groundwork-backend/internal/middleware"
	"github.com/groundwork-hq/groundwork-backend/internal/plugin"
	"github.com/groundwork-hq/groundwork-backend/internal/repository"
	"github.com/groundwork-hq/groundwork-backend/internal/service"
)

// CacheHandler handles cache item requests.
// 캐시 서비스는 백엔드 플러그인을 통해서만 접근하므로
// 허용 목록에 없으면 503을 반환함
type CacheHandler struct {
	registry *plugin.Registry
	projects *repository.ProjectRepository
	users    *repository.UserRepository
}

// NewCacheHandler creates a new CacheHandler
func NewCacheHandler(registry *plugin.Registry, projects *repository.ProjectRepository, users *repository.UserRepository) *CacheHandler {
	return &CacheHandler{registry: registry, projects: projects, users: users}
}

// cacheAPI resolves the appcache backend. Writes a 503 response when unavailable.
func (h *CacheHandler) cacheAPI(c *gin.Context) *service.CacheService {
	api, err := h.registry.GetBackendAPI("appcache", false, nil)
	if err != nil || api == nil {
		common.ErrorResponse(c, http.StatusServiceUnavailable, "Cache backend not enabled", err)
		return nil
	}
	svc, ok := api.(*service.CacheService)
	if !ok {
		common.ErrorResponse(c, http.StatusServiceUnavailable, "Cache backend unavailable", nil)
		return nil
	}
	return svc
}

// GetItem handles GET /api/v1/cache/:app/:name
func (h *CacheHandler) GetItem(c *gin.Context) {
	svc := h.cacheAPI(c)
	if svc == nil {
		return
	}
	project, ok := resolveProject(c, h.projects, c.Query("project"))
	if !ok {
		return
	}

	item, err := svc.GetItem(c.Param("app"), c.Param("name"), project)
	if err != nil {
		if errors.Is(err, common.ErrInvalidAppName) {
			common.ErrorResponse(c, http.StatusBadRequest, "Invalid app name", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to get cache item", err)
		return
	}
	if item == nil {
		common.ErrorResponse(c, http.StatusNotFound, "Cache item not found", common.ErrNotFound)
		return
	}
	common.SuccessResponse(c, item, nil)
}

// SetItemRequest cache item upsert payload
type SetItemRequest struct {
	Data        map[string]interface{} `json:"data" binding:"required"`
	ProjectUUID string                 `json:"project_uuid"`
}

// SetItem handles POST /api/v1/cache/:app/:name
func (h *CacheHandler) SetItem(c *gin.Context) {
	svc := h.cacheAPI(c)
	if svc == nil {
		return
	}

	var req SetItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	project, ok := resolveProject(c, h.projects, req.ProjectUUID)
	if !ok {
		return
	}
	user := resolveUser(c, h.users)

	item, err := svc.SetItem(c.Param("app"), c.Param("name"), req.Data, project, user)
	if err != nil {
		if errors.Is(err, common.ErrInvalidAppName) || errors.Is(err, common.ErrInvalidDataType) {
			common.ErrorResponse(c, http.StatusBadRequest, "Failed to set cache item", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to set cache item", err)
		return
	}
	middleware.CountCacheUpsert()
	common.SuccessResponse(c, item, nil)
}

// GetUpdateTime handles GET /api/v1/cache/:app/:name/time
func (h *CacheHandler) GetUpdateTime(c *gin.Context) {
	svc := h.cacheAPI(c)
	if svc == nil {
		return
	}
	project, ok := resolveProject(c, h.projects, c.Query("project"))
	if !ok {
		return
	}

	updateTime, found, err := svc.GetUpdateTime(c.Param("app"), c.Param("name"), project)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to get update time", err)
		return
	}
	if !found {
		common.ErrorResponse(c, http.StatusNotFound, "Cache item not found", common.ErrNotFound)
		return
	}
	common.SuccessResponse(c, gin.H{"update_time": updateTime}, nil)
}

// DeleteItem handles DELETE /api/v1/cache/:app/:name
func (h *CacheHandler) DeleteItem(c *gin.Context) {
	svc := h.cacheAPI(c)
	if svc == nil {
		return
	}
	project, ok := resolveProject(c, h.projects, c.Query("project"))
	if !ok {
		return
	}

	count, err := svc.DeleteItem(c.Param("app"), c.Param("name"), project)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to delete cache item", err)
		return
	}
	common.SuccessResponse(c, gin.H{"deleted": count}, nil)
}

// DeleteCache handles DELETE /api/v1/cache (admin only)
// app/project 쿼리 파라미터로 범위 제한 가능
func (h *CacheHandler) DeleteCache(c *gin.Context) {
	svc := h.cacheAPI(c)
	if svc == nil {
		return
	}
	project, ok := resolveProject(c, h.projects, c.Query("project"))
	if !ok {
		return
	}

	count, err := svc.DeleteCache(c.Query("app"), project)
	if err != nil {
		if errors.Is(err, common.ErrInvalidAppName) {
			common.ErrorResponse(c, http.StatusBadRequest, "Invalid app name", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to delete cache items", err)
		return
	}
	common.SuccessResponse(c, gin.H{"deleted": count}, nil)
}

// UpdateCacheRequest cache refresh payload
type UpdateCacheRequest struct {
	Name        string `json:"name"`
	ProjectUUID string `json:"project_uuid"`
}

// UpdateCache handles POST /api/v1/cache/update (admin only)
// 활성 프로젝트 앱 플러그인에 캐시 재계산을 위임
func (h *CacheHandler) UpdateCache(c *gin.Context) {
	svc := h.cacheAPI(c)
	if svc == nil {
		return
	}

	var req UpdateCacheRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	project, ok := resolveProject(c, h.projects, req.ProjectUUID)
	if !ok {
		return
	}
	user := resolveUser(c, h.users)

	if err := svc.UpdateCache(req.Name, project, user); err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Cache update failed", err)
		return
	}
	common.SuccessResponse(c, gin.H{"updated": true}, nil)
}
