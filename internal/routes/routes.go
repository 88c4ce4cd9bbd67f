package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/groundwork-hq/groundwork-backend/internal/handler"
	"github.com/groundwork-hq/groundwork-backend/internal/middleware"
	"github.com/groundwork-hq/groundwork-backend/internal/plugin"
	"github.com/groundwork-hq/groundwork-backend/pkg/jwt"
)

// Handlers route setup에 필요한 핸들러 묶음
type Handlers struct {
	Project  *handler.ProjectHandler
	Plugin   *handler.PluginHandler
	Timeline *handler.TimelineHandler
	Cache    *handler.CacheHandler
	Setting  *handler.SettingHandler
}

// Setup configures API routes
func Setup(router *gin.Engine, h Handlers, registry *plugin.Registry, jwtManager *jwt.Manager) {
	api := router.Group("/api/v1")
	auth := middleware.JWTAuth(jwtManager)
	optionalAuth := middleware.OptionalJWTAuth(jwtManager)
	admin := middleware.AdminOnly()

	// Projects
	projects := api.Group("/projects")
	projects.GET("", optionalAuth, h.Project.List)
	projects.POST("", auth, h.Project.Create)
	projects.GET("/:uuid", optionalAuth, h.Project.Get)

	// Project timeline
	projects.GET("/:uuid/timeline", optionalAuth, h.Timeline.ListProject)
	projects.GET("/:uuid/timeline/objects/:model/:object_uuid", optionalAuth, h.Timeline.ObjectEvents)

	// Timeline
	timeline := api.Group("/timeline")
	timeline.GET("/site", optionalAuth, h.Timeline.ListSite)
	timeline.GET("/search", auth, h.Timeline.Search)
	timeline.POST("/events", auth, h.Timeline.AddEvent)
	timeline.GET("/events/:uuid", optionalAuth, h.Timeline.GetEvent)
	timeline.POST("/events/:uuid/status", auth, h.Timeline.SetStatus)
	timeline.POST("/events/:uuid/objects", auth, h.Timeline.AddObject)

	// Plugins
	plugins := api.Group("/plugins")
	plugins.GET("", optionalAuth, h.Plugin.List)
	plugins.GET("/:name", optionalAuth, h.Plugin.Get)
	plugins.PUT("/:name/status", auth, admin, h.Plugin.ChangeStatus)

	// Cache
	cache := api.Group("/cache")
	cache.Use(optionalAuth)
	cache.GET("/:app/:name", h.Cache.GetItem)
	cache.GET("/:app/:name/time", h.Cache.GetUpdateTime)
	cache.POST("/:app/:name", auth, h.Cache.SetItem)
	cache.DELETE("/:app/:name", auth, admin, h.Cache.DeleteItem)
	cache.DELETE("", auth, admin, h.Cache.DeleteCache)
	cache.POST("/update", auth, admin, h.Cache.UpdateCache)

	// Settings
	settings := api.Group("/settings")
	settings.Use(optionalAuth)
	settings.GET("/:plugin/:name", h.Setting.Get)
	settings.PUT("/:plugin/:name", auth, h.Setting.Set)
	settings.DELETE("/:plugin/:name", auth, h.Setting.Delete)

	// 활성 프로젝트 앱 플러그인의 자체 라우트 등록
	active, err := registry.GetActivePlugins(plugin.TypeProjectApp, true)
	if err == nil {
		for _, p := range active {
			p.(plugin.ProjectApp).RegisterRoutes(api)
		}
	}
}
