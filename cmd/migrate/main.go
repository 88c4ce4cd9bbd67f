package main

import (
	"fmt"
	"log"
	"os"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/groundwork-hq/groundwork-backend/internal/config"
	"github.com/groundwork-hq/groundwork-backend/internal/migration"
	pkglogger "github.com/groundwork-hq/groundwork-backend/pkg/logger"
	"github.com/groundwork-hq/groundwork-backend/plugins/filesfolders"
)

func main() {
	config.LoadDotEnv()
	pkglogger.Init()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	cfg, err := config.Load(fmt.Sprintf("configs/config.%s.yaml", env))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	mysqlCfg, err := mysqldriver.ParseDSN(cfg.Database.GetDSN())
	if err != nil {
		log.Fatalf("Invalid DSN: %v", err)
	}
	db, err := gorm.Open(mysql.Open(mysqlCfg.FormatDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Info),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := migration.Run(db, &filesfolders.FileItem{}); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	pkglogger.Info("Migration complete")
}
