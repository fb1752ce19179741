// Package products provides the screen creating new products at the data
// service.
package products

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
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
	// Path is the path to the products page.
	Path = handler.ManagePath + "/products"

	// TemplateName is the name of the products template.
	TemplateName = "manage/products"

	// DefaultInitialVersion pre-fills the version field of the create form.
	DefaultInitialVersion = "1.0"
)

// Form is the product creation submission.
type Form struct {
	Product        string `form:"product" validate:"required"`
	InitialVersion string `form:"initial_version" validate:"required"`
}

// Service is the products handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	client    *dataapi.Client
	validator *validator.Validate
}

// Handler is the products handler.
var Handler = Service{}

// Init initializes the products handler.
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

// Get renders the product list and the create form.
func (s *Service) Get(c *fiber.Ctx) error {
	nav := navigation.NewManageContext("Products", "products")

	result, err := s.client.Products.Get(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch products")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to fetch products")
	}

	return c.Render(TemplateName, fiber.Map{
		"Navigation":     nav,
		"Products":       result.Products,
		"InitialVersion": DefaultInitialVersion,
	}, handler.BaseLayout)
}

// Post creates a product. Products already present are rejected.
func (s *Service) Post(c *fiber.Ctx) error {
	form := new(Form)
	if err := c.BodyParser(form); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid form data")
	}

	form.Product = strings.TrimSpace(form.Product)
	form.InitialVersion = strings.TrimSpace(form.InitialVersion)

	if fieldErrors := forms.Validate(s.validator, form); len(fieldErrors) > 0 {
		return c.Status(fiber.StatusBadRequest).
			SendString(strings.Join(forms.Messages(fieldErrors), "\n"))
	}

	result, err := s.client.Products.Get(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch products")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to fetch products")
	}

	for _, existing := range result.Products {
		if strings.EqualFold(existing, form.Product) {
			return c.Status(fiber.StatusBadRequest).
				SendString("Product " + form.Product + " already exists")
		}
	}

	if err := s.client.Products.Post(c.Context(), form.Product, form.InitialVersion); err != nil {
		log.Error().Err(err).Str("product", form.Product).Msg("failed to create product")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to create product")
	}

	if sessionID := c.Cookies("session"); sessionID != "" {
		_ = session.AddFlash(
			sessionID,
			s.cfg.Webserver.Session.ExpiryTime,
			session.NoticeSuccess,
			"Product "+form.Product+" created.",
		)
	}

	return c.Redirect(Path)
}
