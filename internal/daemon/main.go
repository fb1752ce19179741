// Package daemon assembles the application: database, session storage,
// counter cache, data API client and the web service.
package daemon

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/storage"
	"github.com/gofiber/storage/memory/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/cache"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/config"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/dataapi"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/db/dsn"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/db/models"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/session"
)

// counterTTL bounds the lifetime of the fetch diagnostic counters.
const counterTTL = 24 * time.Hour

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service.
func (d *Daemon) Start() error {
	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	db := openDatabase(cfg)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Permission{},
		&models.UserGroup{},
		&models.GroupPermission{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	seed(cfg, db)

	session.Init(sessionStorage(cfg))

	counters := cache.New(memory.New(), counterTTL)
	client := dataapi.New(cfg, counters)

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db, client, counters),
	}
}

// openDatabase opens gorm with the configured engine.
func openDatabase(cfg *config.Config) *gorm.DB {
	var dialector gorm.Dialector

	switch cfg.DB.GormEngine {
	case "mysql":
		dialector = gormmysql.Open(dsn.Create(cfg))
	case "postgres":
		dialector = gormpostgres.Open(dsn.CreatePostgres(cfg))
	case "sqlite":
		dialector = sqlite.Open(cfg.DB.SQLitePath)
	default:
		log.Fatal().Str("engine", cfg.DB.GormEngine).Msg("unknown database engine")
		return nil
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
		return nil
	}

	return db
}

// sessionStorage builds the session backend matching the database engine.
// The sqlite engine keeps sessions in process memory.
func sessionStorage(cfg *config.Config) storage.Storage {
	switch cfg.DB.GormEngine {
	case "mysql":
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         "sessions",
		})
	case "postgres":
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.CreatePostgres(cfg),
			Table:         "sessions",
		})
	default:
		return memory.New()
	}
}
