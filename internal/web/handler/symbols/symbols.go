// Package symbols provides the read-only listing of uploaded symbols
// archives.
package symbols

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/auth"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/config"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/dataapi"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/handler"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/navigation"
)

const (
	// Path is the path to the symbols uploads page.
	Path = handler.ManagePath + "/symbols-uploads"

	// TemplateName is the name of the symbols uploads template.
	TemplateName = "manage/symbols_uploads"
)

// Service is the symbols uploads handler service.
type Service struct {
	handler.Service
	cfg    *config.Config
	db     *gorm.DB
	client *dataapi.Client
}

// Handler is the symbols uploads handler.
var Handler = Service{}

// Init initializes the symbols uploads handler.
func (s *Service) Init(
	app *fiber.App, cfg *config.Config, db *gorm.DB,
	authService *auth.Service, client *dataapi.Client,
) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.client = client

	app.Get(Path, auth.RequireSuperuser(authService, cfg), s.Get)
}

// Get renders the symbol uploads, newest first.
func (s *Service) Get(c *fiber.Ctx) error {
	nav := navigation.NewManageContext("Symbols Uploads", "symbols-uploads")

	uploads, err := s.client.Symbols.Uploads(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch symbol uploads")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to fetch uploads")
	}

	return c.Render(TemplateName, fiber.Map{
		"Navigation": nav,
		"Uploads":    uploads,
	}, handler.BaseLayout)
}
