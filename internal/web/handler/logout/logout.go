package logout

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/config"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/handler"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/handler/login"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/session"
)

const (
	// Path is the path to the logout endpoint.
	Path = "/logout"
)

// Service is the logout handler service.
type Service struct {
	handler.Service
	cfg *config.Config
}

// Handler is the logout handler.
var Handler = Service{}

// Init initializes the logout handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config) error {
	if app == nil || cfg == nil {
		return errors.New("app or cfg is nil")
	}

	s.cfg = cfg

	app.Get(Path, s.Get)

	return nil
}

// Get drops the server side session and clears the cookie.
func (s *Service) Get(c *fiber.Ctx) error {
	sessionID := c.Cookies("session")
	if sessionID != "" {
		_ = session.Store.Storage.Delete(sessionID)
	}

	c.ClearCookie("session")

	return c.Redirect(login.Path)
}
