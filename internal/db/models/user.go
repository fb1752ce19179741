package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// User represents an account in the admin panel. Accounts are created by the
// identity sync outside of this panel; the management screens only toggle the
// Superuser and Active flags and edit group memberships.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey"`
	// Email is the unique address the user logs in with.
	Email string `gorm:"unique;size:255;not null"`
	// Password is the Argon2id hashed password for local login.
	Password string `gorm:"size:255"`
	// Superuser grants access to the management screens.
	Superuser bool `gorm:"not null;default:false"`
	// Active indicates whether the account can log in at all.
	Active bool `gorm:"not null;default:true"`
	// LastLogin is the timestamp of the most recent login, nil if the user never logged in.
	LastLogin *time.Time
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
// It uses the default Argon2id parameters for secure password hashing.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// VerifyPassword verifies a plaintext password against the user's stored hashed password.
// It uses constant-time comparison to prevent timing attacks.
// Returns true if the password matches, false otherwise.
func (u *User) VerifyPassword(password string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}
