// Package manage provides the management home page linking every
// administrative screen.
package manage

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/auth"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/config"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/handler"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/navigation"
)

const (
	// Path is the path to the management home page.
	Path = handler.ManagePath

	// TemplateName is the name of the management home template.
	TemplateName = "manage/home"
)

// Screen is one entry of the management home page.
type Screen struct {
	Title string
	URL   string
}

// Service is the management home handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the management home handler.
var Handler = Service{}

// Init initializes the management home handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db

	app.Get(Path, auth.RequireSuperuser(authService, cfg), s.Get)
}

// Get renders the management home page.
func (s *Service) Get(c *fiber.Ctx) error {
	nav := navigation.NewManageContext("Admin", "home")

	screens := []Screen{
		{Title: "Featured Versions", URL: Path + "/featured-versions"},
		{Title: "Fields", URL: Path + "/fields"},
		{Title: "Skip List", URL: Path + "/skiplist"},
		{Title: "Users", URL: Path + "/users"},
		{Title: "Groups", URL: Path + "/groups"},
		{Title: "Analyze Model Fetches", URL: Path + "/analyze-model-fetches"},
		{Title: "Graphics Devices", URL: Path + "/graphics-devices"},
		{Title: "Symbols Uploads", URL: Path + "/symbols-uploads"},
		{Title: "Super Search Fields", URL: Path + "/supersearch-fields"},
		{Title: "Products", URL: Path + "/products"},
		{Title: "Releases", URL: Path + "/releases"},
	}

	return c.Render(TemplateName, fiber.Map{
		"Navigation": nav,
		"Screens":    screens,
	}, handler.BaseLayout)
}
