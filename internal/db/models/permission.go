package models

import "time"

// Permission is read-only reference data describing an access right that can
// be attached to groups. The set of permissions is seeded at startup and
// never mutated from the management screens.
type Permission struct {
	// ID is the unique identifier for the permission.
	ID uint `gorm:"primaryKey"`
	// Codename is the unique machine name of the permission (e.g. "view_pii").
	Codename string `gorm:"unique;size:100;not null"`
	// Name is the human readable name of the permission.
	Name string `gorm:"size:255;not null"`
	// CreatedAt is the timestamp when the permission was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the permission was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Permission model.
// This overrides GORM's default pluralized table naming.
func (Permission) TableName() string {
	return "permissions"
}
