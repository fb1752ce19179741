// Package web wires the fiber application: template engine, static files,
// authentication middleware and every screen handler.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/template/html/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/auth"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/cache"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/config"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/dataapi"
	fiberlogger "github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/logger/adapter/fiber"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/handler/cachereport"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/handler/featuredversions"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/handler/fields"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/handler/graphicsdevices"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/handler/groups"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/handler/home"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/handler/login"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/handler/logout"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/handler/manage"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/handler/products"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/handler/releases"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/handler/skiplist"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/handler/supersearch"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/handler/symbols"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/handler/users"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	authService  *auth.Service
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of the web service.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: go unhealthy first so the LB
	// drains this instance before the listener closes.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB, client *dataapi.Client, counters cache.Store) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	httpFS := http.FS(templateEmbedFS{embeddedTemplates})
	templateEngine := html.NewFileSystem(httpFS, ".gohtml")

	// in dev mode, use local filesystem for templates
	if cfg.DevMode {
		templateEngine = html.New("./internal/web/templates", ".gohtml")
		templateEngine.ShouldReload = true

		log.Warn().Msg("dev mode enabled: using local filesystem for templates")
	}

	// Add template helper functions
	templateEngine.AddFunc("add", func(a, b int) int {
		return a + b
	})
	templateEngine.AddFunc("sub", func(a, b int) int {
		return a - b
	})

	// create fiber app
	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        "GoCrashStats-Admin",
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			Views:          templateEngine,
		},
	)

	// access log
	app.Use(fiberlogger.New(fiberlogger.Config{Config: cfg.Log}))

	// serve embedded static files
	app.Use("/static",
		filesystem.New(
			filesystem.Config{
				Root:       http.FS(embeddedStaticFiles),
				PathPrefix: "static",
				Browse:     false,
			},
		),
	)

	// basic auth middleware
	app.Use(AuthMiddleware)

	// Initialize auth service
	authService := auth.NewService(db)

	// init web service
	service := &Service{
		cfg:         cfg,
		App:         app,
		db:          db,
		authService: authService,
	}

	// init handlers (they register their own routes behind the superuser gate)
	login.Handler.Init(app, cfg, db)
	logout.Handler.Init(app, cfg)
	home.Handler.Init(app, cfg, db)
	manage.Handler.Init(app, cfg, db, authService)
	featuredversions.Handler.Init(app, cfg, db, authService, client)
	fields.Handler.Init(app, cfg, db, authService, client)
	skiplist.Handler.Init(app, cfg, db, authService, client)
	users.Handler.Init(app, cfg, db, authService)
	groups.Handler.Init(app, cfg, db, authService)
	cachereport.Handler.Init(app, cfg, db, authService, counters)
	graphicsdevices.Handler.Init(app, cfg, db, authService, client)
	symbols.Handler.Init(app, cfg, db, authService, client)
	supersearch.Handler.Init(app, cfg, db, authService, client)
	products.Handler.Init(app, cfg, db, authService, client)
	releases.Handler.Init(app, cfg, db, authService, client)

	return service
}
