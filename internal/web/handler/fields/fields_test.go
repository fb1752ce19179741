package fields

import (
	"io"
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

	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/auth"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/config"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/dataapi"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/db/models"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/session"
)

type noOpViews struct{}

func (noOpViews) Load() error { return nil }

func (noOpViews) Render(w io.Writer, name string, _ interface{}, _ ...string) error {
	_, _ = io.WriteString(w, name)
	return nil
}

func setupApp(t *testing.T, remote http.Handler) (*fiber.App, string) {
	t.Helper()

	session.Init(memory.New())

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	admin := models.User{Email: "root@example.com", Active: true, Superuser: true}
	require.NoError(t, db.Create(&admin).Error)

	sessionID, err := session.GenerateSessionID()
	require.NoError(t, err)

	data := &session.Data{User: admin}
	require.NoError(t, data.Write(sessionID, time.Hour))

	srv := httptest.NewServer(remote)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.Webserver.Session.ExpiryTime = time.Hour
	cfg.DataAPI.BaseURL = srv.URL

	app := fiber.New(fiber.Config{Views: noOpViews{}})

	var s Service
	s.Init(app, cfg, db, auth.NewService(db), dataapi.New(cfg, nil))

	return app, sessionID
}

func TestLookupRequiresName(t *testing.T) {
	app, sessionID := setupApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("remote must not be called")
	}))

	for _, query := range []string{"", "?name=", "?name=%20"} {
		req := httptest.NewRequest(http.MethodGet, LookupPath+query, nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: sessionID})

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, query)
		_ = resp.Body.Close()
	}
}

func TestLookupProxiesField(t *testing.T) {
	app, sessionID := setupApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Android_Model", r.URL.Query().Get("name"))
		_, _ = w.Write([]byte(`{"name": "Android_Model", "product": "Firefox", "transforms": {}}`))
	}))

	req := httptest.NewRequest(http.MethodGet, LookupPath+"?name=Android_Model", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: sessionID})

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	defer func() {
		_ = resp.Body.Close()
	}()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "Android_Model")
	assert.Contains(t, string(body), "Firefox")
}
