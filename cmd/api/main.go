package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/groundwork-hq/groundwork-backend/internal/config"
	"github.com/groundwork-hq/groundwork-backend/internal/handler"
	"github.com/groundwork-hq/groundwork-backend/internal/middleware"
	"github.com/groundwork-hq/groundwork-backend/internal/migration"
	"github.com/groundwork-hq/groundwork-backend/internal/plugin"
	"github.com/groundwork-hq/groundwork-backend/internal/repository"
	"github.com/groundwork-hq/groundwork-backend/internal/routes"
	"github.com/groundwork-hq/groundwork-backend/internal/service"
	"github.com/groundwork-hq/groundwork-backend/pkg/jwt"
	pkglogger "github.com/groundwork-hq/groundwork-backend/pkg/logger"
	pkgredis "github.com/groundwork-hq/groundwork-backend/pkg/redis"
	"github.com/groundwork-hq/groundwork-backend/plugins/appcache"
	"github.com/groundwork-hq/groundwork-backend/plugins/filesfolders"
	"github.com/groundwork-hq/groundwork-backend/plugins/timeline"
)

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	// 로거 초기화
	pkglogger.Init()
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	pkglogger.Info("APP_ENV=%s, loaded env files: %v", env, dotenvFiles)

	// 설정 로드
	configPath := getConfigPath()
	pkglogger.Info("Loading config from: %s", configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	config.LogResolved(cfg)

	// MySQL 연결
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	pkglogger.Info("Connected to MySQL")
	if err := migration.Run(db, &filesfolders.FileItem{}); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	run(cfg, db)
}

// initRedis Redis 연결. 비활성/실패 시 nil 반환 (DB만으로 동작)
func initRedis(cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	rdb, err := pkgredis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize)
	if err != nil {
		pkglogger.Warn("Failed to connect to Redis: %v (continuing without Redis)", err)
		return nil
	}
	pkglogger.Info("Connected to Redis")
	return rdb
}

// run 의존성 조립 및 서버 기동
func run(cfg *config.Config, db *gorm.DB) {
	// Redis 연결 (선택적; 실패해도 DB만으로 동작)
	rdb := initRedis(cfg)

	// JWT Manager
	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpiresIn)

	// 저장소
	stateRepo := repository.NewPluginStateRepository(db)
	timelineRepo := repository.NewTimelineRepository(db)
	cacheRepo := repository.NewCacheRepository(db)
	settingRepo := repository.NewAppSettingRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	userRepo := repository.NewUserRepository(db)
	filesRepo := filesfolders.NewRepository(db)

	// 플러그인 레지스트리
	registryLogger := pkglogger.ForComponent("plugin")
	registry := plugin.NewRegistry(stateRepo, cfg.Plugins.EnabledBackends, registryLogger)
	registry.AddInstalledApp("core")
	for _, name := range cfg.Plugins.ExtraApps {
		registry.AddInstalledApp(name)
	}

	// 서비스
	timelineSvc := service.NewTimelineService(timelineRepo, registry, pkglogger.ForComponent("timeline"), cfg.Timeline.SearchLimit)
	cacheSvc := service.NewCacheService(cacheRepo, registry, rdb, pkglogger.ForComponent("appcache"))
	settingSvc := service.NewAppSettingService(settingRepo, registry, pkglogger.ForComponent("settings"))

	// 플러그인 등록
	mustRegister := func(category string, p plugin.Plugin) {
		if err := registry.Register(category, p); err != nil {
			log.Fatalf("Failed to register plugin %s: %v", p.Name(), err)
		}
	}
	mustRegister(plugin.TypeBackend, timeline.New(timelineSvc))
	mustRegister(plugin.TypeBackend, appcache.New(cacheSvc))
	mustRegister(plugin.TypeProjectApp, filesfolders.New(filesRepo, projectRepo, userRepo, registry, registryLogger))

	if err := registry.SyncStates(); err != nil {
		log.Fatalf("Failed to sync plugin states: %v", err)
	}

	// Gin 라우터 생성
	handler.RegisterValidators()
	router := gin.Default()

	// CORS 설정
	allowOrigins := cfg.CORS.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = "http://localhost:3000"
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     splitAndTrim(allowOrigins, ","),
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID"},
		MaxAge:           86400,
	}))

	// Middleware
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "groundwork-backend",
			"time":    time.Now().Unix(),
		})
	})

	// Handlers
	h := routes.Handlers{
		Project:  handler.NewProjectHandler(projectRepo, userRepo, timelineSvc),
		Plugin:   handler.NewPluginHandler(registry, userRepo, timelineSvc),
		Timeline: handler.NewTimelineHandler(timelineSvc, projectRepo, userRepo),
		Cache:    handler.NewCacheHandler(registry, projectRepo, userRepo),
		Setting:  handler.NewSettingHandler(settingSvc, projectRepo, userRepo),
	}
	routes.Setup(router, h, registry, jwtManager)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	pkglogger.Info("Starting server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func splitAndTrim(s string, delimiter string) []string {
	parts := []string{}
	for _, part := range strings.Split(s, delimiter) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

// initDB MySQL 연결 초기화
func initDB(cfg *config.Config) (*gorm.DB, error) {
	mysqlCfg, err := mysqldriver.ParseDSN(cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("DSN 파싱 실패: %w", err)
	}
	if mysqlCfg.Params == nil {
		mysqlCfg.Params = map[string]string{}
	}
	mysqlCfg.Params["charset"] = "utf8mb4"

	db, err := gorm.Open(mysql.Open(mysqlCfg.FormatDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	return db, nil
}
