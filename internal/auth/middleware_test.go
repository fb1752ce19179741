package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/memory/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/config"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/db/models"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/session"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.User{}, &models.Group{}, &models.UserGroup{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Webserver.Session.ExpiryTime = time.Hour

	return cfg
}

// loginAs writes a session for the given user and returns its session ID.
func loginAs(t *testing.T, user models.User) string {
	t.Helper()

	sessionID, err := session.GenerateSessionID()
	require.NoError(t, err)

	data := &session.Data{User: user}
	require.NoError(t, data.Write(sessionID, time.Hour))

	return sessionID
}

// guardedApp wires a protected route whose handler increments calls,
// standing in for a remote write the gate must prevent.
func guardedApp(db *gorm.DB, calls *int) *fiber.App {
	app := fiber.New()
	app.Get("/manage/protected",
		RequireSuperuser(NewService(db), testConfig()),
		func(c *fiber.Ctx) error {
			*calls++
			return c.SendString("ok")
		},
	)

	return app
}

func TestRequireSuperuser_Anonymous(t *testing.T) {
	session.Init(memory.New())
	db := setupTestDB(t)

	var calls int

	app := guardedApp(db, &calls)

	req := httptest.NewRequest(http.MethodGet, "/manage/protected", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()

	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, LoginPath, resp.Header.Get(fiber.HeaderLocation))
	assert.Zero(t, calls, "wrapped operation must not run")
}

func TestRequireSuperuser_NonSuperuser(t *testing.T) {
	session.Init(memory.New())
	db := setupTestDB(t)

	u := models.User{Email: "plain@example.com", Active: true}
	require.NoError(t, db.Create(&u).Error)

	sessionID := loginAs(t, u)

	var calls int

	app := guardedApp(db, &calls)

	req := httptest.NewRequest(http.MethodGet, "/manage/protected", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: sessionID})

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()

	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, HomePath, resp.Header.Get(fiber.HeaderLocation))
	assert.Zero(t, calls, "wrapped operation must not run")

	// the rejection leaves a flash notice for the next page
	notices := session.PopFlashes(sessionID, time.Hour)
	require.Len(t, notices, 1)
	assert.Equal(t, session.NoticeError, notices[0].Level)
	assert.Equal(t, SuperuserRequiredNotice, notices[0].Message)

	// flashes are one-shot
	assert.Empty(t, session.PopFlashes(sessionID, time.Hour))
}

func TestRequireSuperuser_Superuser(t *testing.T) {
	session.Init(memory.New())
	db := setupTestDB(t)

	u := models.User{Email: "root@example.com", Active: true, Superuser: true}
	require.NoError(t, db.Create(&u).Error)

	sessionID := loginAs(t, u)

	var calls int

	app := guardedApp(db, &calls)

	req := httptest.NewRequest(http.MethodGet, "/manage/protected", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: sessionID})

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, calls)
}

func TestRequireSuperuser_RevokedFlagIsReadFresh(t *testing.T) {
	session.Init(memory.New())
	db := setupTestDB(t)

	u := models.User{Email: "demoted@example.com", Active: true, Superuser: true}
	require.NoError(t, db.Create(&u).Error)

	// session still claims superuser, the store says otherwise
	sessionID := loginAs(t, u)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", u.ID).
		Update("superuser", false).Error)

	var calls int

	app := guardedApp(db, &calls)

	req := httptest.NewRequest(http.MethodGet, "/manage/protected", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: sessionID})

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()

	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Zero(t, calls)
}
