// Package home provides the landing page. It is the redirect target for
// authenticated non-superusers and renders any pending flash notices.
package home

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/config"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/handler"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/navigation"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/session"
)

const (
	// Path is the path to the home page.
	Path = handler.RootPath

	// TemplateName is the name of the home template.
	TemplateName = "home"
)

// Service is the home handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the home handler.
var Handler = Service{}

// Init initializes the home handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New("app, cfg or db is nil")
	}

	s.cfg = cfg
	s.db = db

	app.Get(Path, s.Get)

	return nil
}

// Get renders the landing page with any pending flash notices.
func (s *Service) Get(c *fiber.Ctx) error {
	nav := navigation.NewContext("Home", "home", "home").
		AddBreadcrumb("Home", Path, true)

	var (
		notices     []session.Notice
		isSuperuser bool
		email       string
	)

	if sessionID := c.Cookies("session"); sessionID != "" {
		notices = session.PopFlashes(sessionID, s.cfg.Webserver.Session.ExpiryTime)

		sessionData := new(session.Data)
		if err := sessionData.Read(sessionID); err == nil && sessionData.User.ID > 0 {
			isSuperuser = sessionData.User.Superuser
			email = sessionData.User.Email
		}
	}

	return c.Render(TemplateName, fiber.Map{
		"Navigation":     nav,
		"Title":          s.cfg.Title,
		"Notices":        notices,
		"IsSuperuser":    isSuperuser,
		"Email":          email,
		"DefaultProduct": s.cfg.Admin.DefaultProduct,
	}, handler.BaseLayout)
}
