package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/groundwork-hq/groundwork-backend/internal/common"
	"github.com/groundwork-hq/groundwork-backend/internal/domain"
	"github.com/groundwork-hq/groundwork-backend/internal/middleware"
	"github.com/groundwork-hq/groundwork-backend/internal/repository"
)

// resolveUser loads the authenticated user from the request context.
// Returns nil for anonymous requests.
func resolveUser(c *gin.Context, users *repository.UserRepository) *domain.User {
	userUUID := middleware.GetUserUUID(c)
	if userUUID == "" {
		return nil
	}
	user, err := users.GetByUUID(userUUID)
	if err != nil {
		return nil
	}
	return user
}

// resolveProject loads a project by UUID, or nil when uuid is empty (site scope).
// Returns (nil, false) after writing the error response when the project does not exist.
func resolveProject(c *gin.Context, projects *repository.ProjectRepository, projectUUID string) (*domain.Project, bool) {
	if projectUUID == "" {
		return nil, true
	}
	project, err := projects.GetByUUID(projectUUID)
	if err != nil {
		if errors.Is(err, common.ErrProjectNotFound) {
			common.ErrorResponse(c, 404, "Project not found", err)
		} else {
			common.ErrorResponse(c, 500, "Failed to load project", err)
		}
		return nil, false
	}
	return project, true
}

// paginationParams reads limit/offset query params with bounded defaults
func paginationParams(c *gin.Context) (limit, offset int) {
	limit = 50
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
