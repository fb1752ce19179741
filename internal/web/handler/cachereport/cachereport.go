// Package cachereport provides the diagnostic screen showing the hit/miss
// counters of every instrumented data API fetch.
package cachereport

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/auth"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/cache"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/config"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/handler"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/navigation"
)

const (
	// Path is the path to the fetch report page.
	Path = handler.ManagePath + "/analyze-model-fetches"

	// TemplateName is the name of the fetch report template.
	TemplateName = "manage/analyze_model_fetches"
)

// Service is the fetch report handler service.
type Service struct {
	handler.Service
	cfg      *config.Config
	db       *gorm.DB
	counters cache.Store
}

// Handler is the fetch report handler.
var Handler = Service{}

// Init initializes the fetch report handler.
func (s *Service) Init(
	app *fiber.App, cfg *config.Config, db *gorm.DB,
	authService *auth.Service, counters cache.Store,
) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.counters = counters

	app.Get(Path, auth.RequireSuperuser(authService, cfg), s.Get)
}

// Get renders the fetch counter report.
func (s *Service) Get(c *fiber.Ctx) error {
	nav := navigation.NewManageContext("Analyze Model Fetches", "analyze-model-fetches")

	measurements, err := cache.Report(s.counters)
	if err != nil {
		log.Error().Err(err).Msg("failed to assemble fetch report")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to assemble report")
	}

	return c.Render(TemplateName, fiber.Map{
		"Navigation":   nav,
		"Measurements": measurements,
	}, handler.BaseLayout)
}
