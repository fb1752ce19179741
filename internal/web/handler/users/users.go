// Package users provides the users admin listing and the per-user edit
// screen.
package users

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/auth"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/config"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/db/controller/user"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/db/models"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/handler"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/handler/forms"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/navigation"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/session"
)

const (
	// Path is the path to the users listing page.
	Path = handler.ManagePath + "/users"

	// DataPath is the JSON listing endpoint.
	DataPath = Path + "/data"

	// TemplateList is the name of the users listing template.
	TemplateList = "manage/users"

	// TemplateForm is the name of the user edit template.
	TemplateForm = "manage/user_edit"
)

// Service is the users handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the users handler.
var Handler = Service{}

// Init initializes the users handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db

	gate := auth.RequireSuperuser(authService, cfg)

	// the data route must come before the :id route
	app.Get(Path, gate, s.Get)
	app.Get(DataPath, gate, s.Data)
	app.Get(Path+"/:id", gate, s.Edit)
	app.Post(Path+"/:id", gate, s.Save)
}

// Get renders the users listing page with all groups for the filter UI.
func (s *Service) Get(c *fiber.Ctx) error {
	nav := navigation.NewManageContext("Users", "users")

	var groups []models.Group
	if err := s.db.Order("name ASC").Find(&groups).Error; err != nil {
		log.Error().Err(err).Msg("failed to load groups")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load groups")
	}

	return c.Render(TemplateList, fiber.Map{
		"Navigation": nav,
		"Groups":     groups,
		"BatchSize":  s.cfg.Admin.UsersBatchSize,
	}, handler.BaseLayout)
}

// Data answers one page of the filtered users listing as JSON.
func (s *Service) Data(c *fiber.Ctx) error {
	opts, err := s.queryOptions(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	result, err := user.Query(s.db, opts)
	if err != nil {
		if user.IsInputError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		log.Error().Err(err).Msg("failed to query users")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "user query failed",
		})
	}

	return c.JSON(result)
}

// Edit renders the edit form of one user.
func (s *Service) Edit(c *fiber.Ctx) error {
	target, status := s.loadUser(c)
	if target == nil {
		return c.SendStatus(status)
	}

	nav := navigation.NewManageContext("Edit User", "users")

	var groups []models.Group
	if err := s.db.Order("name ASC").Find(&groups).Error; err != nil {
		log.Error().Err(err).Msg("failed to load groups")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load groups")
	}

	memberships, err := auth.NewService(s.db).UserGroups(target.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to load group memberships")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load memberships")
	}

	memberOf := make(map[uint]bool, len(memberships))
	for _, g := range memberships {
		memberOf[g.ID] = true
	}

	return c.Render(TemplateForm, fiber.Map{
		"Navigation": nav,
		"User":       target,
		"Groups":     groups,
		"MemberOf":   memberOf,
	}, handler.BaseLayout)
}

// Save applies the superuser/active flags and the group membership set.
func (s *Service) Save(c *fiber.Ctx) error {
	target, status := s.loadUser(c)
	if target == nil {
		return c.SendStatus(status)
	}

	target.Superuser = c.FormValue("superuser") != ""
	target.Active = c.FormValue("active") != ""

	groupIDs, err := postedGroupIDs(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid group id")
	}

	if err := s.db.Model(target).
		Select("superuser", "active").
		Updates(map[string]any{
			"superuser": target.Superuser,
			"active":    target.Active,
		}).Error; err != nil {
		log.Error().Err(err).Uint64("user_id", target.ID).Msg("failed to update user")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to update user")
	}

	if err := auth.NewService(s.db).SetUserGroups(target.ID, groupIDs); err != nil {
		log.Error().Err(err).Uint64("user_id", target.ID).Msg("failed to update memberships")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to update memberships")
	}

	if sessionID := c.Cookies("session"); sessionID != "" {
		_ = session.AddFlash(
			sessionID,
			s.cfg.Webserver.Session.ExpiryTime,
			session.NoticeSuccess,
			"User "+target.Email+" update saved.",
		)
	}

	return c.Redirect(Path)
}

// queryOptions maps the listing query parameters onto controller options.
func (s *Service) queryOptions(c *fiber.Ctx) (user.Options, error) {
	opts := user.Options{
		OrderBy:   c.Query("order_by", user.OrderByLastLogin),
		Email:     strings.TrimSpace(c.Query("email")),
		Page:      1,
		BatchSize: s.cfg.Admin.UsersBatchSize,
	}

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return opts, err
		}

		opts.Page = page
	}

	superuser, err := forms.TriState(c.Query("superuser"))
	if err != nil {
		return opts, err
	}

	active, err := forms.TriState(c.Query("active"))
	if err != nil {
		return opts, err
	}

	opts.Superuser = superuser
	opts.Active = active

	if raw := c.Query("group"); raw != "" {
		groupID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return opts, err
		}

		opts.GroupID = uint(groupID)
	}

	return opts, nil
}

// loadUser resolves the :id route parameter. A nil user means the request
// was already answered with the returned status.
func (s *Service) loadUser(c *fiber.Ctx) (*models.User, int) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return nil, fiber.StatusBadRequest
	}

	target := new(models.User)
	if err := s.db.First(target, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.StatusNotFound
		}

		log.Error().Err(err).Uint64("user_id", id).Msg("failed to load user")

		return nil, fiber.StatusInternalServerError
	}

	return target, fiber.StatusOK
}

// postedGroupIDs reads the multi-value groups field.
func postedGroupIDs(c *fiber.Ctx) ([]uint, error) {
	values := c.Request().PostArgs().PeekMulti("groups")
	groupIDs := make([]uint, 0, len(values))

	for _, value := range values {
		id, err := strconv.ParseUint(string(value), 10, 32)
		if err != nil {
			return nil, err
		}

		groupIDs = append(groupIDs, uint(id))
	}

	return groupIDs, nil
}
