// Package models contains database model definitions.
package models

import "time"

// GroupPermission represents the many-to-many relationship between groups
// and permissions. Rows are rewritten whenever a group is saved from the
// group form.
type GroupPermission struct {
	// GroupID is the ID of the group in this assignment.
	GroupID uint `gorm:"primaryKey;column:group_id"`
	// PermissionID is the ID of the permission in this assignment.
	PermissionID uint `gorm:"primaryKey;column:permission_id"`
	// Group is the associated group (loaded via foreign key).
	Group Group `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	// Permission is the associated permission (loaded via foreign key).
	Permission Permission `gorm:"foreignKey:PermissionID;constraint:OnDelete:CASCADE"`
	// CreatedAt is the timestamp when the permission was assigned (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the GroupPermission model.
// This overrides GORM's default pluralized table naming.
func (GroupPermission) TableName() string {
	return "group_permissions"
}
