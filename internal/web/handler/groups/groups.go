// Package groups provides the screen managing groups and their permission
// sets.
package groups

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/auth"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/config"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/db/models"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/handler"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/navigation"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/session"
)

const (
	// Path is the path to the groups page.
	Path = handler.ManagePath + "/groups"

	// TemplateList is the name of the groups listing template.
	TemplateList = "manage/groups"

	// TemplateForm is the name of the group edit template.
	TemplateForm = "manage/group_edit"
)

// Service is the groups handler service.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
}

// Handler is the groups handler.
var Handler = Service{}

// Init initializes the groups handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.authService = authService

	gate := auth.RequireSuperuser(authService, cfg)

	app.Get(Path, gate, s.Get)
	app.Post(Path, gate, s.Post)
	app.Get(Path+"/:id", gate, s.Edit)
	app.Post(Path+"/:id", gate, s.Save)
}

// Get renders the groups listing with per-group permission sets.
func (s *Service) Get(c *fiber.Ctx) error {
	nav := navigation.NewManageContext("Groups", "groups")

	var groups []models.Group
	if err := s.db.Order("name ASC").Find(&groups).Error; err != nil {
		log.Error().Err(err).Msg("failed to load groups")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load groups")
	}

	permissionsByGroup := make(map[uint][]models.Permission, len(groups))

	for _, group := range groups {
		permissions, err := s.authService.GroupPermissions(group.ID)
		if err != nil {
			log.Error().Err(err).Uint("group_id", group.ID).Msg("failed to load group permissions")

			return c.Status(fiber.StatusInternalServerError).SendString("Failed to load permissions")
		}

		permissionsByGroup[group.ID] = permissions
	}

	var permissions []models.Permission
	if err := s.db.Order("name ASC").Find(&permissions).Error; err != nil {
		log.Error().Err(err).Msg("failed to load permissions")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load permissions")
	}

	return c.Render(TemplateList, fiber.Map{
		"Navigation":         nav,
		"Groups":             groups,
		"PermissionsByGroup": permissionsByGroup,
		"Permissions":        permissions,
	}, handler.BaseLayout)
}

// Post either deletes a group (delete=<id> form field) or creates one.
func (s *Service) Post(c *fiber.Ctx) error {
	if rawID := c.FormValue("delete"); rawID != "" {
		return s.delete(c, rawID)
	}

	return s.create(c)
}

// Edit renders the edit form of one group.
func (s *Service) Edit(c *fiber.Ctx) error {
	group, status := s.loadGroup(c)
	if group == nil {
		return c.SendStatus(status)
	}

	nav := navigation.NewManageContext("Edit Group", "groups")

	var permissions []models.Permission
	if err := s.db.Order("name ASC").Find(&permissions).Error; err != nil {
		log.Error().Err(err).Msg("failed to load permissions")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load permissions")
	}

	assigned, err := s.authService.GroupPermissions(group.ID)
	if err != nil {
		log.Error().Err(err).Uint("group_id", group.ID).Msg("failed to load group permissions")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load permissions")
	}

	hasPermission := make(map[uint]bool, len(assigned))
	for _, p := range assigned {
		hasPermission[p.ID] = true
	}

	return c.Render(TemplateForm, fiber.Map{
		"Navigation":    nav,
		"Group":         group,
		"Permissions":   permissions,
		"HasPermission": hasPermission,
	}, handler.BaseLayout)
}

// Save renames a group and replaces its permission set.
func (s *Service) Save(c *fiber.Ctx) error {
	group, status := s.loadGroup(c)
	if group == nil {
		return c.SendStatus(status)
	}

	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" {
		return c.Status(fiber.StatusBadRequest).SendString("Name is required")
	}

	permissionIDs, err := postedPermissionIDs(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid permission id")
	}

	if err := s.db.Model(group).Update("name", name).Error; err != nil {
		log.Error().Err(err).Uint("group_id", group.ID).Msg("failed to rename group")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to save group")
	}

	if err := s.authService.SetGroupPermissions(group.ID, permissionIDs); err != nil {
		log.Error().Err(err).Uint("group_id", group.ID).Msg("failed to set group permissions")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to save permissions")
	}

	s.flash(c, "Group saved.")

	return c.Redirect(Path)
}

// create adds a new group with an optional initial permission set.
func (s *Service) create(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" {
		return c.Status(fiber.StatusBadRequest).SendString("Name is required")
	}

	permissionIDs, err := postedPermissionIDs(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid permission id")
	}

	group := &models.Group{Name: name}
	if err := s.db.Create(group).Error; err != nil {
		log.Error().Err(err).Str("name", name).Msg("failed to create group")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to create group")
	}

	if len(permissionIDs) > 0 {
		if err := s.authService.SetGroupPermissions(group.ID, permissionIDs); err != nil {
			log.Error().Err(err).Uint("group_id", group.ID).Msg("failed to set group permissions")

			return c.Status(fiber.StatusInternalServerError).SendString("Failed to save permissions")
		}
	}

	s.flash(c, "Group created.")

	return c.Redirect(Path)
}

// delete removes a group together with its memberships and permission
// assignments.
func (s *Service) delete(c *fiber.Ctx, rawID string) error {
	id, err := strconv.ParseUint(rawID, 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid group id")
	}

	groupID := uint(id)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", groupID).Delete(&models.UserGroup{}).Error; err != nil {
			return err
		}

		if err := tx.Where("group_id = ?", groupID).Delete(&models.GroupPermission{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Group{}, groupID).Error
	})
	if err != nil {
		log.Error().Err(err).Uint("group_id", groupID).Msg("failed to delete group")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to delete group")
	}

	s.flash(c, "Group deleted.")

	return c.Redirect(Path)
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

// loadGroup resolves the :id route parameter. A nil group means the request
// was already answered with the returned status.
func (s *Service) loadGroup(c *fiber.Ctx) (*models.Group, int) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return nil, fiber.StatusBadRequest
	}

	group := new(models.Group)
	if err := s.db.First(group, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.StatusNotFound
		}

		log.Error().Err(err).Uint64("group_id", id).Msg("failed to load group")

		return nil, fiber.StatusInternalServerError
	}

	return group, fiber.StatusOK
}

// postedPermissionIDs reads the multi-value permissions field.
func postedPermissionIDs(c *fiber.Ctx) ([]uint, error) {
	values := c.Request().PostArgs().PeekMulti("permissions")
	permissionIDs := make([]uint, 0, len(values))

	for _, value := range values {
		id, err := strconv.ParseUint(string(value), 10, 32)
		if err != nil {
			return nil, err
		}

		permissionIDs = append(permissionIDs, uint(id))
	}

	return permissionIDs, nil
}
