package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/groundwork-hq/groundwork-backend/internal/common"
	"github.com/groundwork-hq/groundwork-backend/internal/domain"
	"github.com/groundwork-hq/groundwork-backend/internal/repository"
	"github.com/groundwork-hq/groundwork-backend/internal/service"
)

// ProjectHandler handles project requests
type ProjectHandler struct {
	projects *repository.ProjectRepository
	users    *repository.UserRepository
	timeline *service.TimelineService
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(projects *repository.ProjectRepository, users *repository.UserRepository, timeline *service.TimelineService) *ProjectHandler {
	return &ProjectHandler{projects: projects, users: users, timeline: timeline}
}

// CreateProjectRequest project creation payload
type CreateProjectRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=255"`
	Type        string `json:"type" binding:"omitempty,oneof=PROJECT CATEGORY"`
	Description string `json:"description" binding:"omitempty,max=512"`
}

// Create handles POST /api/v1/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	projectType := req.Type
	if projectType == "" {
		projectType = domain.ProjectTypeProject
	}

	project := &domain.Project{
		Title:       req.Title,
		Type:        projectType,
		Description: req.Description,
	}
	if err := h.projects.Create(project); err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to create project", err)
		return
	}

	user := resolveUser(c, h.users)
	if _, err := h.timeline.AddEvent(service.EventParams{
		Project:     project,
		AppName:     "core",
		User:        user,
		EventName:   "project_create",
		Description: "create project",
		StatusType:  domain.StatusOK,
		StatusDesc:  "Project created",
	}); err != nil {
		// 감사 실패가 생성 자체를 되돌리지는 않음
		common.ErrorResponse(c, http.StatusInternalServerError, "Project created but audit event failed", err)
		return
	}

	common.CreatedResponse(c, project)
}

// Get handles GET /api/v1/projects/:uuid
func (h *ProjectHandler) Get(c *gin.Context) {
	project, ok := resolveProject(c, h.projects, c.Param("uuid"))
	if !ok {
		return
	}
	common.SuccessResponse(c, project, nil)
}

// List handles GET /api/v1/projects
func (h *ProjectHandler) List(c *gin.Context) {
	limit, offset := paginationParams(c)
	projects, err := h.projects.List(limit, offset)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to list projects", err)
		return
	}
	common.SuccessResponse(c, projects, &common.Meta{Limit: limit})
}
