// Package supersearch provides the screens maintaining the crash search
// field catalog.
package supersearch

import (
	"sort"
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
	// ListPath is the path to the field catalog page.
	ListPath = handler.ManagePath + "/supersearch-fields"

	// MissingPath is the path of the missing fields report.
	MissingPath = ListPath + "/missing"

	// FieldPath is the path of the field detail form.
	FieldPath = handler.ManagePath + "/supersearch-field"

	// CreatePath is the field creation endpoint.
	CreatePath = FieldPath + "/create"

	// UpdatePath is the field update endpoint.
	UpdatePath = FieldPath + "/update"

	// DeletePath is the field deletion endpoint.
	DeletePath = FieldPath + "/delete"

	// TemplateList is the name of the catalog template.
	TemplateList = "manage/supersearch_fields"

	// TemplateForm is the name of the field form template.
	TemplateForm = "manage/supersearch_field"

	// TemplateMissing is the name of the missing fields template.
	TemplateMissing = "manage/supersearch_fields_missing"
)

// Form is the field create/update submission.
type Form struct {
	Name               string `form:"name" validate:"required"`
	InDatabaseName     string `form:"in_database_name" validate:"required"`
	Namespace          string `form:"namespace"`
	Description        string `form:"description"`
	QueryType          string `form:"query_type"`
	DataValidationType string `form:"data_validation_type"`
	PermissionsNeeded  string `form:"permissions_needed"`
	FormFieldChoices   string `form:"form_field_choices"`
	IsExposedInWebUI   bool   `form:"is_exposed_in_webui"`
	IsReturned         bool   `form:"is_returned"`
	HasFullVersion     bool   `form:"has_full_version"`
}

// Service is the super search fields handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	client    *dataapi.Client
	validator *validator.Validate
}

// Handler is the super search fields handler.
var Handler = Service{}

// Init initializes the super search fields handler.
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

	app.Get(ListPath, gate, s.List)
	app.Get(MissingPath, gate, s.Missing)
	app.Get(FieldPath, gate, s.Field)
	app.Post(CreatePath, gate, s.Create)
	app.Post(UpdatePath, gate, s.Update)
	app.Get(DeletePath, gate, s.Delete)
}

// List renders the field catalog sorted case-insensitively by name.
func (s *Service) List(c *fiber.Ctx) error {
	nav := navigation.NewManageContext("Super Search Fields", "supersearch-fields")

	catalog, err := s.client.SuperSearch.Fields(c.Context(), false)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch field catalog")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to fetch fields")
	}

	fields := make([]dataapi.SuperSearchField, 0, len(catalog))
	for _, field := range catalog {
		fields = append(fields, field)
	}

	sort.Slice(fields, func(i, j int) bool {
		return strings.ToLower(fields[i].Name) < strings.ToLower(fields[j].Name)
	})

	return c.Render(TemplateList, fiber.Map{
		"Navigation": nav,
		"Fields":     fields,
	}, handler.BaseLayout)
}

// Missing renders the fields present in the crash storage but absent from
// the catalog.
func (s *Service) Missing(c *fiber.Ctx) error {
	nav := navigation.NewManageContext("Missing Super Search Fields", "supersearch-fields")

	missing, err := s.client.SuperSearch.MissingFields(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch missing fields")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to fetch missing fields")
	}

	return c.Render(TemplateMissing, fiber.Map{
		"Navigation":         nav,
		"MissingFields":      missing,
		"MissingFieldsCount": len(missing),
	}, handler.BaseLayout)
}

// Field renders the detail form, pre-filled when name or full_name points at
// an existing field. A full_name splits on its last dot into namespace and
// in-database name.
func (s *Service) Field(c *fiber.Ctx) error {
	nav := navigation.NewManageContext("Super Search Field", "supersearch-fields")

	field := dataapi.SuperSearchField{}

	if name := strings.TrimSpace(c.Query("name")); name != "" {
		catalog, err := s.client.SuperSearch.Fields(c.Context(), false)
		if err != nil {
			log.Error().Err(err).Msg("failed to fetch field catalog")

			return c.Status(fiber.StatusInternalServerError).SendString("Failed to fetch fields")
		}

		existing, ok := catalog[name]
		if !ok {
			return c.Status(fiber.StatusBadRequest).SendString("No field named " + name)
		}

		field = existing
	} else if fullName := strings.TrimSpace(c.Query("full_name")); fullName != "" {
		namespace, inDatabaseName := dataapi.SplitFullName(fullName)
		field.Namespace = namespace
		field.InDatabaseName = inDatabaseName
		field.Name = inDatabaseName
	}

	return c.Render(TemplateForm, fiber.Map{
		"Navigation": nav,
		"Field":      field,
	}, handler.BaseLayout)
}

// Create adds a new field to the catalog.
func (s *Service) Create(c *fiber.Ctx) error {
	field, fieldErrors, err := s.parseForm(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid form data")
	}

	if len(fieldErrors) > 0 {
		return c.Status(fiber.StatusBadRequest).
			SendString(strings.Join(forms.Messages(fieldErrors), "\n"))
	}

	if err := s.client.SuperSearch.CreateField(c.Context(), field); err != nil {
		log.Error().Err(err).Str("name", field.Name).Msg("failed to create field")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to create field")
	}

	s.flash(c, "Super Search Field saved.")

	return c.Redirect(ListPath)
}

// Update replaces an existing field.
func (s *Service) Update(c *fiber.Ctx) error {
	field, fieldErrors, err := s.parseForm(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid form data")
	}

	if len(fieldErrors) > 0 {
		return c.Status(fiber.StatusBadRequest).
			SendString(strings.Join(forms.Messages(fieldErrors), "\n"))
	}

	if err := s.client.SuperSearch.UpdateField(c.Context(), field); err != nil {
		log.Error().Err(err).Str("name", field.Name).Msg("failed to update field")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to update field")
	}

	s.flash(c, "Super Search Field updated.")

	return c.Redirect(ListPath)
}

// Delete removes a field by name.
func (s *Service) Delete(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		return c.Status(fiber.StatusBadRequest).SendString("name is required")
	}

	if err := s.client.SuperSearch.DeleteField(c.Context(), name); err != nil {
		log.Error().Err(err).Str("name", name).Msg("failed to delete field")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to delete field")
	}

	s.flash(c, "Super Search Field deleted.")

	return c.Redirect(ListPath)
}

// parseForm reads and validates the shared create/update form.
func (s *Service) parseForm(c *fiber.Ctx) (dataapi.SuperSearchField, []forms.FieldError, error) {
	form := new(Form)
	if err := c.BodyParser(form); err != nil {
		return dataapi.SuperSearchField{}, nil, err
	}

	if fieldErrors := forms.Validate(s.validator, form); len(fieldErrors) > 0 {
		return dataapi.SuperSearchField{}, fieldErrors, nil
	}

	return dataapi.SuperSearchField{
		Name:               strings.TrimSpace(form.Name),
		InDatabaseName:     strings.TrimSpace(form.InDatabaseName),
		Namespace:          strings.TrimSpace(form.Namespace),
		Description:        strings.TrimSpace(form.Description),
		QueryType:          form.QueryType,
		DataValidationType: form.DataValidationType,
		PermissionsNeeded:  splitList(form.PermissionsNeeded),
		FormFieldChoices:   splitList(form.FormFieldChoices),
		IsExposedInWebUI:   form.IsExposedInWebUI,
		IsReturned:         form.IsReturned,
		HasFullVersion:     form.HasFullVersion,
	}, nil, nil
}

// flash records a success notice for the next rendered page.
func (s *Service) flash(c *fiber.Ctx, message string) {
	if sessionID := c.Cookies("session"); sessionID != "" {
		_ = session.AddFlash(
			sessionID,
			s.cfg.Webserver.Session.ExpiryTime,
			session.NoticeSuccess,
			message,
		)
	}
}

// splitList turns a comma separated form value into a trimmed string slice.
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}

	return out
}
