// Package featuredversions provides the screen that promotes releases to
// the featured version lists shown on the public crash-stats pages.
package featuredversions

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/auth"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/config"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/dataapi"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/handler"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/navigation"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/session"
)

const (
	// Path is the path to the featured versions page.
	Path = handler.ManagePath + "/featured-versions"

	// UpdatePath is the path of the update form submission.
	UpdatePath = Path + "/update"

	// TemplateName is the name of the featured versions template.
	TemplateName = "manage/featured_versions"
)

// Service is the featured versions handler service.
type Service struct {
	handler.Service
	cfg    *config.Config
	db     *gorm.DB
	client *dataapi.Client
}

// Handler is the featured versions handler.
var Handler = Service{}

// Init initializes the featured versions handler.
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
	app.Post(UpdatePath, gate, s.Post)
}

// Get renders the products with their currently active releases.
func (s *Service) Get(c *fiber.Ctx) error {
	nav := navigation.NewManageContext("Featured Versions", "featured-versions")

	result, err := s.client.Products.Get(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch products")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to fetch products")
	}

	active, err := ActiveReleases(result.Products, result.Hits, time.Now().UTC())
	if err != nil {
		log.Error().Err(err).Msg("failed to filter active releases")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to process releases")
	}

	return c.Render(TemplateName, fiber.Map{
		"Navigation": nav,
		"Products":   result.Products,
		"Releases":   active,
	}, handler.BaseLayout)
}

// Post replaces the featured version lists with the checked versions.
// The form carries one multi-value field per product; products absent from
// the current product list are ignored.
func (s *Service) Post(c *fiber.Ctx) error {
	result, err := s.client.Products.Get(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch products")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to fetch products")
	}

	// one multi-value checkbox group per product
	args := c.Request().PostArgs()
	versionsByProduct := make(map[string][]string, len(result.Products))

	for _, product := range result.Products {
		values := args.PeekMulti(product)
		versions := make([]string, 0, len(values))

		for _, value := range values {
			versions = append(versions, string(value))
		}

		versionsByProduct[product] = versions
	}

	if _, err := s.client.Featured.Put(c.Context(), versionsByProduct); err != nil {
		log.Error().Err(err).Msg("failed to update featured versions")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to update featured versions")
	}

	if sessionID := c.Cookies("session"); sessionID != "" {
		_ = session.AddFlash(
			sessionID,
			s.cfg.Webserver.Session.ExpiryTime,
			session.NoticeSuccess,
			"Featured versions successfully updated. "+
				"Cache might take some time to update.",
		)
	}

	return c.Redirect(Path)
}
