// Package user implements the filtered, ordered and paginated query over the
// user store that backs the users admin listing.
package user

import (
	"time"

	"gorm.io/gorm"

	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/db/models"
)

const (
	// OrderByLastLogin sorts users by most recent login first.
	OrderByLastLogin = "last_login"
	// OrderByEmail sorts users ascending by email.
	OrderByEmail = "email"
)

// Options select and slice the user listing. Superuser and Active are
// tri-state: nil means "do not filter".
type Options struct {
	OrderBy   string
	Email     string // case-insensitive substring match
	Superuser *bool
	Active    *bool
	GroupID   uint // 0 means "do not filter"
	Page      int  // 1-based
	BatchSize int
}

// GroupRef is the id/name pair of a group membership in a listing row.
type GroupRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Item is one row of the users listing.
type Item struct {
	ID        uint64     `json:"id"`
	Email     string     `json:"email"`
	Superuser bool       `json:"is_superuser"`
	Active    bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login"`
	Groups    []GroupRef `json:"groups"`
}

// Result is the paginated outcome of a Query call.
type Result struct {
	Users     []Item `json:"users"`
	Count     int64  `json:"count"`
	BatchSize int    `json:"batch_size"`
	Page      int    `json:"page"`
}

// Query applies the filters conjunctively, counts the full match set and
// returns the requested page. A page beyond the end yields empty Users, not
// an error. Invalid OrderBy or Page values are rejected before any query
// runs.
func Query(db *gorm.DB, opts Options) (*Result, error) {
	if opts.OrderBy != OrderByLastLogin && opts.OrderBy != OrderByEmail {
		return nil, ErrInvalidOrderBy
	}

	if opts.Page < 1 {
		return nil, ErrInvalidPage
	}

	tx := db.Model(&models.User{})

	if opts.Email != "" {
		tx = tx.Where("LOWER(email) LIKE LOWER(?)", "%"+opts.Email+"%")
	}

	if opts.Superuser != nil {
		tx = tx.Where("superuser = ?", *opts.Superuser)
	}

	if opts.Active != nil {
		tx = tx.Where("active = ?", *opts.Active)
	}

	if opts.GroupID != 0 {
		tx = tx.Where(
			"id IN (SELECT user_id FROM user_groups WHERE group_id = ?)",
			opts.GroupID,
		)
	}

	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return nil, err //nolint:wrapcheck
	}

	// "IS NULL" first keeps never-logged-in users at the bottom on both
	// MySQL and SQLite.
	switch opts.OrderBy {
	case OrderByLastLogin:
		tx = tx.Order("last_login IS NULL, last_login DESC")
	case OrderByEmail:
		tx = tx.Order("LOWER(email) ASC")
	}

	offset := (opts.Page - 1) * opts.BatchSize

	var users []models.User
	if err := tx.Limit(opts.BatchSize).Offset(offset).Find(&users).Error; err != nil {
		return nil, err //nolint:wrapcheck
	}

	items := make([]Item, 0, len(users))

	for i := range users {
		groups, err := groupRefs(db, users[i].ID)
		if err != nil {
			return nil, err
		}

		items = append(items, Item{
			ID:        users[i].ID,
			Email:     users[i].Email,
			Superuser: users[i].Superuser,
			Active:    users[i].Active,
			LastLogin: users[i].LastLogin,
			Groups:    groups,
		})
	}

	return &Result{
		Users:     items,
		Count:     count,
		BatchSize: opts.BatchSize,
		Page:      opts.Page,
	}, nil
}

// groupRefs loads the id/name pairs of all groups a user belongs to.
func groupRefs(db *gorm.DB, userID uint64) ([]GroupRef, error) {
	refs := make([]GroupRef, 0)

	err := db.Table("groups").
		Select("groups.id, groups.name").
		Joins("JOIN user_groups ON user_groups.group_id = groups.id").
		Where("user_groups.user_id = ?", userID).
		Order("groups.name ASC").
		Scan(&refs).Error
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return refs, nil
}
