package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/groundwork-hq/groundwork-backend/internal/common"
	"github.com/groundwork-hq/groundwork-backend/internal/plugin"
	"github.com/groundwork-hq/groundwork-backend/internal/repository"
	"github.com/groundwork-hq/groundwork-backend/internal/service"
)

// SettingHandler handles app setting requests
type SettingHandler struct {
	settings *service.AppSettingService
	projects *repository.ProjectRepository
	users    *repository.UserRepository
}

// NewSettingHandler creates a new SettingHandler
func NewSettingHandler(settings *service.AppSettingService, projects *repository.ProjectRepository, users *repository.UserRepository) *SettingHandler {
	return &SettingHandler{settings: settings, projects: projects, users: users}
}

// Get handles GET /api/v1/settings/:plugin/:name
func (h *SettingHandler) Get(c *gin.Context) {
	project, ok := resolveProject(c, h.projects, c.Query("project"))
	if !ok {
		return
	}
	user := resolveUser(c, h.users)

	value, err := h.settings.Get(c.Param("plugin"), c.Param("name"), project, user)
	if err != nil {
		if errors.Is(err, plugin.ErrPluginNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "Setting not found", err)
			return
		}
		if errors.Is(err, common.ErrInvalidInput) {
			common.ErrorResponse(c, http.StatusBadRequest, "Invalid setting scope target", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to get setting", err)
		return
	}
	common.SuccessResponse(c, gin.H{"value": value}, nil)
}

// SetSettingRequest setting update payload
type SetSettingRequest struct {
	Value       interface{} `json:"value"`
	ProjectUUID string      `json:"project_uuid"`
}

// Set handles PUT /api/v1/settings/:plugin/:name
func (h *SettingHandler) Set(c *gin.Context) {
	var req SetSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	project, ok := resolveProject(c, h.projects, req.ProjectUUID)
	if !ok {
		return
	}
	user := resolveUser(c, h.users)

	err := h.settings.Set(c.Param("plugin"), c.Param("name"), req.Value, project, user)
	if err != nil {
		switch {
		case errors.Is(err, plugin.ErrPluginNotFound):
			common.ErrorResponse(c, http.StatusNotFound, "Setting not found", err)
		case errors.Is(err, plugin.ErrInvalidValue), errors.Is(err, plugin.ErrValueNotInOptions), errors.Is(err, common.ErrInvalidInput):
			common.ErrorResponse(c, http.StatusBadRequest, "Invalid setting value", err)
		default:
			common.ErrorResponse(c, http.StatusInternalServerError, "Failed to set setting", err)
		}
		return
	}
	common.SuccessResponse(c, gin.H{"set": true}, nil)
}

// Delete handles DELETE /api/v1/settings/:plugin/:name
func (h *SettingHandler) Delete(c *gin.Context) {
	project, ok := resolveProject(c, h.projects, c.Query("project"))
	if !ok {
		return
	}
	user := resolveUser(c, h.users)

	if err := h.settings.Delete(c.Param("plugin"), c.Param("name"), project, user); err != nil {
		if errors.Is(err, plugin.ErrPluginNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "Setting not found", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to delete setting", err)
		return
	}
	common.SuccessResponse(c, gin.H{"deleted": true}, nil)
}
