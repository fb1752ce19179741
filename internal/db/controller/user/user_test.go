package user

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.UserGroup{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func boolPtr(b bool) *bool {
	return &b
}

// seedUsers creates n users with emails user01@example.com ... and
// staggered last logins (user01 logged in most recently).
func seedUsers(t *testing.T, db *gorm.DB, n int) {
	t.Helper()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 1; i <= n; i++ {
		lastLogin := base.Add(-time.Duration(i) * time.Hour)
		u := models.User{
			Email:     fmt.Sprintf("user%02d@example.com", i),
			Active:    true,
			LastLogin: &lastLogin,
		}
		require.NoError(t, db.Create(&u).Error)
	}
}

func TestQuery_InvalidOrderBy(t *testing.T) {
	db := setupTestDB(t)

	_, err := Query(db, Options{OrderBy: "password", Page: 1, BatchSize: 10})
	assert.ErrorIs(t, err, ErrInvalidOrderBy)
}

func TestQuery_InvalidPage(t *testing.T) {
	db := setupTestDB(t)

	for _, page := range []int{0, -1, -100} {
		_, err := Query(db, Options{OrderBy: OrderByEmail, Page: page, BatchSize: 10})
		assert.ErrorIs(t, err, ErrInvalidPage)
	}
}

func TestQuery_EmailOrderingAndPagination(t *testing.T) {
	db := setupTestDB(t)
	seedUsers(t, db, 25)

	// 25 users, batch size 10, page 2 should return users 11..20.
	res, err := Query(db, Options{OrderBy: OrderByEmail, Page: 2, BatchSize: 10})
	require.NoError(t, err)

	assert.Equal(t, int64(25), res.Count)
	assert.Equal(t, 10, res.BatchSize)
	assert.Equal(t, 2, res.Page)
	require.Len(t, res.Users, 10)
	assert.Equal(t, "user11@example.com", res.Users[0].Email)
	assert.Equal(t, "user20@example.com", res.Users[9].Email)
}

func TestQuery_LastLoginOrdering(t *testing.T) {
	db := setupTestDB(t)
	seedUsers(t, db, 5)

	// A user that never logged in sorts last.
	require.NoError(t, db.Create(&models.User{Email: "never@example.com", Active: true}).Error)

	res, err := Query(db, Options{OrderBy: OrderByLastLogin, Page: 1, BatchSize: 10})
	require.NoError(t, err)

	require.Len(t, res.Users, 6)
	assert.Equal(t, "user01@example.com", res.Users[0].Email, "most recent login first")
	assert.Equal(t, "never@example.com", res.Users[5].Email, "never logged in sorts last")
}

func TestQuery_OutOfRangePage(t *testing.T) {
	db := setupTestDB(t)
	seedUsers(t, db, 3)

	res, err := Query(db, Options{OrderBy: OrderByEmail, Page: 99, BatchSize: 10})
	require.NoError(t, err)

	assert.Empty(t, res.Users)
	assert.Equal(t, int64(3), res.Count)
	assert.Equal(t, 99, res.Page)
}

func TestQuery_EmailFilterIsCaseInsensitive(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Create(&models.User{Email: "Peter@Example.COM", Active: true}).Error)
	require.NoError(t, db.Create(&models.User{Email: "paul@example.com", Active: true}).Error)

	res, err := Query(db, Options{OrderBy: OrderByEmail, Email: "PETER", Page: 1, BatchSize: 10})
	require.NoError(t, err)

	require.Len(t, res.Users, 1)
	assert.Equal(t, "Peter@Example.COM", res.Users[0].Email)
}

func TestQuery_TriStateFilters(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Create(&models.User{Email: "root@example.com", Superuser: true, Active: true}).Error)
	require.NoError(t, db.Create(&models.User{Email: "gone@example.com", Active: false}).Error)
	require.NoError(t, db.Create(&models.User{Email: "plain@example.com", Active: true}).Error)

	// unset: all three
	res, err := Query(db, Options{OrderBy: OrderByEmail, Page: 1, BatchSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Count)

	// superuser=true
	res, err = Query(db, Options{OrderBy: OrderByEmail, Superuser: boolPtr(true), Page: 1, BatchSize: 10})
	require.NoError(t, err)
	require.Len(t, res.Users, 1)
	assert.Equal(t, "root@example.com", res.Users[0].Email)

	// active=false
	res, err = Query(db, Options{OrderBy: OrderByEmail, Active: boolPtr(false), Page: 1, BatchSize: 10})
	require.NoError(t, err)
	require.Len(t, res.Users, 1)
	assert.Equal(t, "gone@example.com", res.Users[0].Email)

	// conjunction: superuser=false AND active=true
	res, err = Query(db, Options{
		OrderBy:   OrderByEmail,
		Superuser: boolPtr(false),
		Active:    boolPtr(true),
		Page:      1,
		BatchSize: 10,
	})
	require.NoError(t, err)
	require.Len(t, res.Users, 1)
	assert.Equal(t, "plain@example.com", res.Users[0].Email)
}

func TestQuery_GroupFilterAndMemberships(t *testing.T) {
	db := setupTestDB(t)

	group := models.Group{Name: "Hackers"}
	require.NoError(t, db.Create(&group).Error)

	member := models.User{Email: "member@example.com", Active: true}
	require.NoError(t, db.Create(&member).Error)
	require.NoError(t, db.Create(&models.User{Email: "other@example.com", Active: true}).Error)
	require.NoError(t, db.Create(&models.UserGroup{UserID: member.ID, GroupID: group.ID}).Error)

	res, err := Query(db, Options{OrderBy: OrderByEmail, GroupID: group.ID, Page: 1, BatchSize: 10})
	require.NoError(t, err)

	require.Len(t, res.Users, 1)
	assert.Equal(t, "member@example.com", res.Users[0].Email)
	require.Len(t, res.Users[0].Groups, 1)
	assert.Equal(t, group.ID, res.Users[0].Groups[0].ID)
	assert.Equal(t, "Hackers", res.Users[0].Groups[0].Name)
}

func TestQuery_SliceIsContiguous(t *testing.T) {
	db := setupTestDB(t)
	seedUsers(t, db, 7)

	var all []string

	for page := 1; ; page++ {
		res, err := Query(db, Options{OrderBy: OrderByEmail, Page: page, BatchSize: 3})
		require.NoError(t, err)

		if len(res.Users) == 0 {
			break
		}

		assert.LessOrEqual(t, len(res.Users), 3)

		for _, u := range res.Users {
			all = append(all, u.Email)
		}
	}

	require.Len(t, all, 7)

	for i := 0; i < len(all)-1; i++ {
		assert.Less(t, all[i], all[i+1], "pages concatenate into a sorted, gapless sequence")
	}
}
