package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/groundwork-hq/groundwork-backend/internal/common"
	"github.com/groundwork-hq/groundwork-backend/internal/domain"
	"github.com/groundwork-hq/groundwork-backend/internal/plugin"
	"github.com/groundwork-hq/groundwork-backend/internal/repository"
	"github.com/groundwork-hq/groundwork-backend/internal/service"
)

// PluginHandler handles plugin administration requests
type PluginHandler struct {
	registry *plugin.Registry
	users    *repository.UserRepository
	timeline *service.TimelineService
}

// NewPluginHandler creates a new PluginHandler
func NewPluginHandler(registry *plugin.Registry, users *repository.UserRepository, timeline *service.TimelineService) *PluginHandler {
	return &PluginHandler{registry: registry, users: users, timeline: timeline}
}

// PluginOverview 플러그인 목록 응답 항목
type PluginOverview struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Icon     string `json:"icon"`
	Category string `json:"category"`
	Status   string `json:"status"`
	Active   bool   `json:"active"`
}

// List handles GET /api/v1/plugins
// category 쿼리 파라미터가 비어 있으면 전체 카테고리 반환
func (h *PluginHandler) List(c *gin.Context) {
	category := c.Query("category")
	categories := plugin.Types
	if category != "" {
		if !plugin.IsValidType(category) {
			common.ErrorResponse(c, http.StatusBadRequest, "Invalid plugin category", plugin.ErrInvalidCategory)
			return
		}
		categories = []string{category}
	}

	var overview []PluginOverview
	for _, cat := range categories {
		active, err := h.registry.GetActivePlugins(cat, false)
		if err != nil {
			common.ErrorResponse(c, http.StatusInternalServerError, "Failed to read plugin states", err)
			return
		}
		activeNames := make(map[string]bool, len(active))
		for _, p := range active {
			activeNames[p.Name()] = true
		}
		for _, name := range h.registry.InstalledApps() {
			p := h.registry.GetPlugin(name, cat)
			if p == nil {
				continue
			}
			status, err := h.registry.GetStatus(name, cat)
			if err != nil {
				status = ""
			}
			overview = append(overview, PluginOverview{
				Name:     p.Name(),
				Title:    p.Title(),
				Icon:     p.Icon(),
				Category: cat,
				Status:   status,
				Active:   activeNames[p.Name()],
			})
		}
	}
	common.SuccessResponse(c, overview, nil)
}

// Get handles GET /api/v1/plugins/:name
func (h *PluginHandler) Get(c *gin.Context) {
	name := c.Param("name")
	p := h.registry.GetPlugin(name, c.Query("category"))
	if p == nil {
		common.ErrorResponse(c, http.StatusNotFound, "Plugin not found", plugin.ErrPluginNotFound)
		return
	}
	common.SuccessResponse(c, gin.H{
		"name":         p.Name(),
		"title":        p.Title(),
		"icon":         p.Icon(),
		"setting_defs": p.SettingDefs(),
	}, nil)
}

// ChangeStatusRequest plugin status change payload
type ChangeStatusRequest struct {
	Category string `json:"category" binding:"required,oneof=project_app site_app backend"`
	Status   string `json:"status" binding:"required,oneof=enabled disabled removed"`
}

// ChangeStatus handles PUT /api/v1/plugins/:name/status (admin only)
func (h *PluginHandler) ChangeStatus(c *gin.Context) {
	name := c.Param("name")

	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.registry.ChangeStatus(name, req.Category, req.Status); err != nil {
		if errors.Is(err, plugin.ErrPluginNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "Plugin not found", err)
			return
		}
		common.ErrorResponse(c, http.StatusBadRequest, "Failed to change plugin status", err)
		return
	}

	user := resolveUser(c, h.users)
	if _, err := h.timeline.AddEvent(service.EventParams{
		AppName:     "core",
		User:        user,
		EventName:   "plugin_status_change",
		Description: "set plugin " + name + " (" + req.Category + ") to " + req.Status,
		StatusType:  domain.StatusOK,
		StatusDesc:  "Status changed",
	}); err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Status changed but audit event failed", err)
		return
	}

	common.SuccessResponse(c, gin.H{"name": name, "category": req.Category, "status": req.Status}, nil)
}
