// Package releases provides the screen creating new release records at the
// data service.
package releases

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/auth"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/config"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/dataapi"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/handler"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/handler/forms"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/navigation"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/session"
)

const (
	// Path is the path to the releases page.
	Path = handler.ManagePath + "/releases"

	// TemplateName is the name of the releases template.
	TemplateName = "manage/releases"

	// Form defaults.
	DefaultThrottle       = 1.0
	DefaultUpdateChannel  = "Release"
	DefaultReleaseChannel = "release"
)

// errPlatformFetch marks a failed platform list fetch, which is a remote
// failure and not a form input error.
var errPlatformFetch = errors.New("failed to fetch platforms")

// Form is the release creation submission.
type Form struct {
	Product        string `form:"product" validate:"required"`
	Version        string `form:"version" validate:"required"`
	UpdateChannel  string `form:"update_channel" validate:"required"`
	BuildID        string `form:"build_id" validate:"required"`
	Platform       string `form:"platform" validate:"required"`
	BetaNumber     string `form:"beta_number"`
	ReleaseChannel string `form:"release_channel" validate:"required"`
	Throttle       string `form:"throttle" validate:"required"`
}

// Service is the releases handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	client    *dataapi.Client
	validator *validator.Validate
}

// Handler is the releases handler.
var Handler = Service{}

// Init initializes the releases handler.
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
	s.validator = validator.New()

	gate := auth.RequireSuperuser(authService, cfg)

	app.Get(Path, gate, s.Get)
	app.Post(Path, gate, s.Post)
}

// Get renders the release creation form with the platform choices.
func (s *Service) Get(c *fiber.Ctx) error {
	nav := navigation.NewManageContext("Releases", "releases")

	platforms, err := s.client.Platforms.Get(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch platforms")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to fetch platforms")
	}

	return c.Render(TemplateName, fiber.Map{
		"Navigation":     nav,
		"Platforms":      platforms,
		"Throttle":       DefaultThrottle,
		"UpdateChannel":  DefaultUpdateChannel,
		"ReleaseChannel": DefaultReleaseChannel,
	}, handler.BaseLayout)
}

// Post creates a release. The platform must be one of the platforms the
// data service knows about.
func (s *Service) Post(c *fiber.Ctx) error {
	form := new(Form)
	if err := c.BodyParser(form); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid form data")
	}

	if fieldErrors := forms.Validate(s.validator, form); len(fieldErrors) > 0 {
		return c.Status(fiber.StatusBadRequest).
			SendString(strings.Join(forms.Messages(fieldErrors), "\n"))
	}

	payload, err := s.buildPayload(c, form)
	if err != nil {
		if errors.Is(err, errPlatformFetch) {
			return c.Status(fiber.StatusInternalServerError).SendString("Failed to fetch platforms")
		}

		return c.Status(fiber.StatusBadRequest).SendString(err.Error())
	}

	if err := s.client.Releases.Post(c.Context(), *payload); err != nil {
		log.Error().Err(err).
			Str("product", payload.Product).
			Str("version", payload.Version).
			Msg("failed to create release")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to create release")
	}

	if sessionID := c.Cookies("session"); sessionID != "" {
		_ = session.AddFlash(
			sessionID,
			s.cfg.Webserver.Session.ExpiryTime,
			session.NoticeSuccess,
			"New release for "+payload.Product+" "+payload.Version+" created.",
		)
	}

	return c.Redirect(Path)
}

// buildPayload converts the validated form into the wire payload, checking
// the platform against the current platform list.
func (s *Service) buildPayload(c *fiber.Ctx, form *Form) (*dataapi.ReleasePayload, error) {
	platforms, err := s.client.Platforms.Get(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch platforms")

		return nil, errPlatformFetch
	}

	known := false

	for _, platform := range platforms {
		if platform.Name == form.Platform {
			known = true
			break
		}
	}

	if !known {
		return nil, errors.New("unknown platform " + form.Platform)
	}

	throttle, err := strconv.ParseFloat(form.Throttle, 64)
	if err != nil {
		return nil, errors.New("throttle must be a number")
	}

	payload := &dataapi.ReleasePayload{
		Product:        strings.TrimSpace(form.Product),
		Version:        strings.TrimSpace(form.Version),
		UpdateChannel:  form.UpdateChannel,
		BuildID:        strings.TrimSpace(form.BuildID),
		Platform:       form.Platform,
		ReleaseChannel: form.ReleaseChannel,
		Throttle:       throttle,
	}

	if raw := strings.TrimSpace(form.BetaNumber); raw != "" {
		betaNumber, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.New("beta_number must be an integer")
		}

		payload.BetaNumber = &betaNumber
	}

	return payload, nil
}
