package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/config"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/session"
)

const (
	// LoginPath is where anonymous requests are sent.
	LoginPath = "/login"

	// HomePath is where authenticated non-superusers are sent.
	HomePath = "/"

	// SuperuserRequiredNotice is flashed when a non-superuser hits a
	// management screen.
	SuperuserRequiredNotice = "You need to be a superuser to access this."
)

// RequireSuperuser creates Fiber middleware that guards a management route.
// Anonymous requests are redirected to the login page, authenticated
// non-superusers get a flash notice and are redirected home; in both cases
// the wrapped handler never runs. Superusers pass through unchanged.
func RequireSuperuser(authService *Service, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get session cookie
		sessionID := c.Cookies("session")
		if sessionID == "" {
			return c.Redirect(LoginPath)
		}

		// Read session data
		sessionData := new(session.Data)
		if err := sessionData.Read(sessionID); err != nil {
			return c.Redirect(LoginPath)
		}

		// Check if the session is valid
		if sessionData.User.ID == 0 {
			return c.Redirect(LoginPath)
		}

		// The flag is read fresh from the store so a revoked superuser
		// loses access without having to log in again.
		isSuperuser, err := authService.IsSuperuser(sessionData.User.ID)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", sessionData.User.ID).
				Msg("Failed to check superuser flag")

			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		}

		if !isSuperuser {
			log.Warn().Uint64("user_id", sessionData.User.ID).
				Str("path", c.Path()).
				Msg("Non-superuser tried to access a management screen")

			if err := session.AddFlash(
				sessionID,
				cfg.Webserver.Session.ExpiryTime,
				session.NoticeError,
				SuperuserRequiredNotice,
			); err != nil {
				log.Error().Err(err).Msg("Failed to flash notice")
			}

			return c.Redirect(HomePath)
		}

		// User is a superuser, proceed
		return c.Next()
	}
}
