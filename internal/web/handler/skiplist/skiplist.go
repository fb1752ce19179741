// Package skiplist provides the screen managing the signature generation
// suppression rules.
package skiplist

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
	// Path is the path to the skip list page.
	Path = handler.ManagePath + "/skiplist"

	// DataPath is the JSON listing endpoint.
	DataPath = Path + "/data"

	// AddPath is the JSON rule creation endpoint.
	AddPath = Path + "/add"

	// DeletePath is the JSON rule deletion endpoint.
	DeletePath = Path + "/delete"

	// TemplateName is the name of the skip list template.
	TemplateName = "manage/skiplist"
)

// Service is the skip list handler service.
type Service struct {
	handler.Service
	cfg    *config.Config
	db     *gorm.DB
	client *dataapi.Client
}

// Handler is the skip list handler.
var Handler = Service{}

// Init initializes the skip list handler.
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
	app.Get(DataPath, gate, s.Data)
	app.Post(AddPath, gate, s.Add)
	app.Post(DeletePath, gate, s.Delete)
}

// Get renders the skip list page.
func (s *Service) Get(c *fiber.Ctx) error {
	nav := navigation.NewManageContext("Skip List", "skiplist")

	return c.Render(TemplateName, fiber.Map{
		"Navigation": nav,
	}, handler.BaseLayout)
}

// Data answers the skip list rules as JSON; category and rule narrow the
// result and are both optional.
func (s *Service) Data(c *fiber.Ctx) error {
	result, err := s.client.SkipList.Get(
		c.Context(),
		strings.TrimSpace(c.Query("category")),
		strings.TrimSpace(c.Query("rule")),
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch skip list")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "skip list fetch failed",
		})
	}

	return c.JSON(result)
}

// Add creates a skip list rule. Category and rule are both required.
func (s *Service) Add(c *fiber.Ctx) error {
	category, rule, ok := ruleParams(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "category and rule are required",
		})
	}

	ok, err := s.client.SkipList.Post(c.Context(), category, rule)
	if err != nil {
		log.Error().Err(err).Str("category", category).Str("rule", rule).
			Msg("failed to add skip list rule")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "skip list update failed",
		})
	}

	return c.JSON(ok)
}

// Delete removes a skip list rule. Category and rule are both required.
func (s *Service) Delete(c *fiber.Ctx) error {
	category, rule, ok := ruleParams(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "category and rule are required",
		})
	}

	ok, err := s.client.SkipList.Delete(c.Context(), category, rule)
	if err != nil {
		log.Error().Err(err).Str("category", category).Str("rule", rule).
			Msg("failed to delete skip list rule")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "skip list update failed",
		})
	}

	return c.JSON(ok)
}

// ruleParams reads the category/rule pair from the form body.
func ruleParams(c *fiber.Ctx) (category, rule string, ok bool) {
	category = strings.TrimSpace(c.FormValue("category"))
	rule = strings.TrimSpace(c.FormValue("rule"))

	return category, rule, category != "" && rule != ""
}
