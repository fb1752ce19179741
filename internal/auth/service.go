// Package auth provides the superuser gate for the management screens and
// group membership queries over the identity store.
package auth

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/db/models"
)

// Service provides authorization lookups over the identity store.
type Service struct {
	db *gorm.DB
}

// NewService creates a new auth service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// IsSuperuser reports whether the given user holds the superuser flag.
// Unknown users are not superusers.
func (s *Service) IsSuperuser(userID uint64) (bool, error) {
	var count int64

	err := s.db.Model(&models.User{}).
		Where("id = ? AND superuser = ?", userID, true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check superuser flag: %w", err)
	}

	return count > 0, nil
}

// UserGroups retrieves all groups a user belongs to.
func (s *Service) UserGroups(userID uint64) ([]models.Group, error) {
	var groups []models.Group

	err := s.db.Table("groups").
		Joins("JOIN user_groups ON user_groups.group_id = groups.id").
		Where("user_groups.user_id = ?", userID).
		Order("groups.name ASC").
		Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user groups: %w", err)
	}

	return groups, nil
}

// SetUserGroups replaces a user's group memberships with the given set.
func (s *Service) SetUserGroups(userID uint64, groupIDs []uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).
			Delete(&models.UserGroup{}).Error; err != nil {
			return fmt.Errorf("failed to remove old group memberships: %w", err)
		}

		for _, groupID := range groupIDs {
			if err := tx.Create(&models.UserGroup{
				UserID:  userID,
				GroupID: groupID,
			}).Error; err != nil {
				return fmt.Errorf("failed to add group membership: %w", err)
			}
		}

		return nil
	})
}

// GroupPermissions retrieves all permissions assigned to a group.
func (s *Service) GroupPermissions(groupID uint) ([]models.Permission, error) {
	var permissions []models.Permission

	err := s.db.Table("permissions").
		Joins("JOIN group_permissions ON group_permissions.permission_id = permissions.id").
		Where("group_permissions.group_id = ?", groupID).
		Order("permissions.name ASC").
		Find(&permissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get group permissions: %w", err)
	}

	return permissions, nil
}

// SetGroupPermissions replaces a group's permission set with the given one.
func (s *Service) SetGroupPermissions(groupID uint, permissionIDs []uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", groupID).
			Delete(&models.GroupPermission{}).Error; err != nil {
			return fmt.Errorf("failed to remove old permission assignments: %w", err)
		}

		for _, permissionID := range permissionIDs {
			if err := tx.Create(&models.GroupPermission{
				GroupID:      groupID,
				PermissionID: permissionID,
			}).Error; err != nil {
				return fmt.Errorf("failed to add permission assignment: %w", err)
			}
		}

		return nil
	})
}
