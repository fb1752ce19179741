// Package fields provides the raw crash field lookup screen.
package fields

import (
	"strings"

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
	// Path is the path to the fields page.
	Path = handler.ManagePath + "/fields"

	// LookupPath is the JSON lookup endpoint.
	LookupPath = Path + "/lookup"

	// TemplateName is the name of the fields template.
	TemplateName = "manage/fields"
)

// Service is the fields handler service.
type Service struct {
	handler.Service
	cfg    *config.Config
	db     *gorm.DB
	client *dataapi.Client
}

// Handler is the fields handler.
var Handler = Service{}

// Init initializes the fields handler.
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

	gate := auth.RequireSuperuser(authService, cfg)

	app.Get(Path, gate, s.Get)
	app.Get(LookupPath, gate, s.Lookup)
}

// Get renders the field lookup form.
func (s *Service) Get(c *fiber.Ctx) error {
	nav := navigation.NewManageContext("Fields", "fields")

	return c.Render(TemplateName, fiber.Map{
		"Navigation": nav,
	}, handler.BaseLayout)
}

// Lookup answers the field descriptor as JSON. A blank name is an input
// error.
func (s *Service) Lookup(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "name is required",
		})
	}

	info, err := s.client.Fields.Get(c.Context(), name)
	if err != nil {
		log.Error().Err(err).Str("name", name).Msg("failed to look up field")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "field lookup failed",
		})
	}

	return c.JSON(info)
}
