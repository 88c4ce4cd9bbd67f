package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/groundwork-hq/groundwork-backend/internal/common"
	"github.com/groundwork-hq/groundwork-backend/internal/domain"
	"github.com/groundwork-hq/groundwork-backend/internal/middleware"
	"github.com/groundwork-hq/groundwork-backend/internal/repository"
	"github.com/groundwork-hq/groundwork-backend/internal/service"
)

// TimelineHandler handles audit event requests
type TimelineHandler struct {
	timeline *service.TimelineService
	projects *repository.ProjectRepository
	users    *repository.UserRepository
}

// NewTimelineHandler creates a new TimelineHandler
func NewTimelineHandler(timeline *service.TimelineService, projects *repository.ProjectRepository, users *repository.UserRepository) *TimelineHandler {
	return &TimelineHandler{timeline: timeline, projects: projects, users: users}
}

// AddEventRequest audit event creation payload
type AddEventRequest struct {
	ProjectUUID     string                 `json:"project_uuid"`
	AppName         string                 `json:"app_name" binding:"required,name_slug"`
	PluginName      string                 `json:"plugin_name"`
	EventName       string                 `json:"event_name" binding:"required,name_slug"`
	Description     string                 `json:"description" binding:"required"`
	Classified      bool                   `json:"classified"`
	ExtraData       map[string]interface{} `json:"extra_data"`
	StatusType      string                 `json:"status_type"`
	StatusDesc      string                 `json:"status_desc"`
	StatusExtraData map[string]interface{} `json:"status_extra_data"`
}

// AddEvent handles POST /api/v1/timeline/events
func (h *TimelineHandler) AddEvent(c *gin.Context) {
	var req AddEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	project, ok := resolveProject(c, h.projects, req.ProjectUUID)
	if !ok {
		return
	}
	user := resolveUser(c, h.users)

	event, err := h.timeline.AddEvent(service.EventParams{
		Project:         project,
		AppName:         req.AppName,
		User:            user,
		EventName:       req.EventName,
		Description:     req.Description,
		Classified:      req.Classified,
		ExtraData:       req.ExtraData,
		StatusType:      req.StatusType,
		StatusDesc:      req.StatusDesc,
		StatusExtraData: req.StatusExtraData,
		PluginName:      req.PluginName,
	})
	if err != nil {
		status := http.StatusBadRequest
		if !errors.Is(err, common.ErrInvalidAppName) && !errors.Is(err, common.ErrInvalidStatusType) && !errors.Is(err, common.ErrInvalidDataType) {
			status = http.StatusInternalServerError
		}
		common.ErrorResponse(c, status, "Failed to add event", err)
		return
	}
	middleware.CountTimelineEvent(req.AppName)
	common.CreatedResponse(c, event)
}

// SetStatusRequest event status append payload
type SetStatusRequest struct {
	StatusType  string                 `json:"status_type" binding:"required"`
	Description string                 `json:"description"`
	ExtraData   map[string]interface{} `json:"extra_data"`
}

// SetStatus handles POST /api/v1/timeline/events/:uuid/status
func (h *TimelineHandler) SetStatus(c *gin.Context) {
	event, err := h.timeline.GetByUUID(c.Param("uuid"))
	if err != nil {
		common.ErrorResponse(c, http.StatusNotFound, "Event not found", err)
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	status, err := h.timeline.SetStatus(event, req.StatusType, req.Description, req.ExtraData)
	if err != nil {
		if errors.Is(err, common.ErrInvalidStatusType) {
			common.ErrorResponse(c, http.StatusBadRequest, "Invalid status type", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to set status", err)
		return
	}
	common.CreatedResponse(c, status)
}

// AddObjectRequest object reference payload
type AddObjectRequest struct {
	Label       string                 `json:"label" binding:"required"`
	Name        string                 `json:"name"`
	ObjectModel string                 `json:"object_model" binding:"required"`
	ObjectUUID  string                 `json:"object_uuid" binding:"required"`
	ExtraData   map[string]interface{} `json:"extra_data"`
}

// AddObject handles POST /api/v1/timeline/events/:uuid/objects
func (h *TimelineHandler) AddObject(c *gin.Context) {
	event, err := h.timeline.GetByUUID(c.Param("uuid"))
	if err != nil {
		common.ErrorResponse(c, http.StatusNotFound, "Event not found", err)
		return
	}

	var req AddObjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ref, err := h.timeline.AddObject(event, req.Label, req.Name, req.ObjectModel, req.ObjectUUID, req.ExtraData)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to add object reference", err)
		return
	}
	common.CreatedResponse(c, ref)
}

// GetEvent handles GET /api/v1/timeline/events/:uuid
// 렌더링된 설명과 상태 이력을 함께 반환
func (h *TimelineHandler) GetEvent(c *gin.Context) {
	event, err := h.timeline.GetByUUID(c.Param("uuid"))
	if err != nil {
		common.ErrorResponse(c, http.StatusNotFound, "Event not found", err)
		return
	}
	if event.Classified && middleware.GetUserLevel(c) < domain.AdminLevel {
		common.ErrorResponse(c, http.StatusForbidden, "Classified event", common.ErrForbidden)
		return
	}

	statuses, err := h.timeline.GetStatusChanges(event)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to load status history", err)
		return
	}

	common.SuccessResponse(c, gin.H{
		"event":       event,
		"description": h.timeline.RenderDescription(event),
		"statuses":    statuses,
	}, nil)
}

// ListProject handles GET /api/v1/projects/:uuid/timeline
// classified=true는 관리자만 사용할 수 있음
func (h *TimelineHandler) ListProject(c *gin.Context) {
	project, ok := resolveProject(c, h.projects, c.Param("uuid"))
	if !ok {
		return
	}
	h.list(c, project)
}

// ListSite handles GET /api/v1/timeline/site
func (h *TimelineHandler) ListSite(c *gin.Context) {
	h.list(c, nil)
}

func (h *TimelineHandler) list(c *gin.Context, project *domain.Project) {
	classified := c.Query("classified") == "true"
	if classified && middleware.GetUserLevel(c) < domain.AdminLevel {
		common.ErrorResponse(c, http.StatusForbidden, "Admin privileges required for classified events", common.ErrForbidden)
		return
	}

	limit, offset := paginationParams(c)
	events, err := h.timeline.ListByProject(project, classified, limit, offset)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to list events", err)
		return
	}
	common.SuccessResponse(c, events, &common.Meta{Limit: limit})
}

// ObjectEvents handles GET /api/v1/projects/:uuid/timeline/objects/:model/:object_uuid
func (h *TimelineHandler) ObjectEvents(c *gin.Context) {
	project, ok := resolveProject(c, h.projects, c.Param("uuid"))
	if !ok {
		return
	}
	events, err := h.timeline.GetObjectEvents(project, c.Param("model"), c.Param("object_uuid"))
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to list object events", err)
		return
	}
	common.SuccessResponse(c, events, nil)
}

// Search handles GET /api/v1/timeline/search?s=term&s=term
func (h *TimelineHandler) Search(c *gin.Context) {
	terms := c.QueryArray("s")
	events, err := h.timeline.Find(terms, nil)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Search failed", err)
		return
	}
	common.SuccessResponse(c, events, nil)
}
