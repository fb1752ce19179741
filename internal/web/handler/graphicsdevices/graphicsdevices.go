// Package graphicsdevices provides the screen maintaining the PCI
// vendor/adapter lookup table, fed one record at a time or by CSV upload.
package graphicsdevices

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/auth"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/config"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/dataapi"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/handler"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/navigation"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/web/session"
)

const (
	// Path is the path to the graphics devices page.
	Path = handler.ManagePath + "/graphics-devices"

	// LookupPath is the JSON lookup endpoint.
	LookupPath = Path + "/lookup"

	// TemplateName is the name of the graphics devices template.
	TemplateName = "manage/graphics_devices"
)

// Service is the graphics devices handler service.
type Service struct {
	handler.Service
	cfg    *config.Config
	db     *gorm.DB
	client *dataapi.Client
}

// Handler is the graphics devices handler.
var Handler = Service{}

// Init initializes the graphics devices handler.
func (s *Service) Init(
	app *fiber.App, cfg *config.Config, db *gorm.DB,
	authService *auth.Service, client *dataapi.Client,
) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.client = client

	gate := auth.RequireSuperuser(authService, cfg)

	app.Get(Path, gate, s.Get)
	app.Post(Path, gate, s.Post)
	app.Get(LookupPath, gate, s.Lookup)
}

// Get renders the device form and upload page.
func (s *Service) Get(c *fiber.Ctx) error {
	nav := navigation.NewManageContext("Graphics Devices", "graphics-devices")

	return c.Render(TemplateName, fiber.Map{
		"Navigation": nav,
	}, handler.BaseLayout)
}

// Post writes devices from either a CSV upload or the single-record form.
// Both paths converge on one batch write.
func (s *Service) Post(c *fiber.Ctx) error {
	devices, badRows, err := s.postedDevices(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString(err.Error())
	}

	if len(devices) == 0 {
		return c.Status(fiber.StatusBadRequest).SendString("No devices to save")
	}

	if _, err := s.client.GraphicsDevices.Post(c.Context(), devices); err != nil {
		log.Error().Err(err).Int("devices", len(devices)).
			Msg("failed to save graphics devices")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to save devices")
	}

	message := "Graphics device saved."
	if len(devices) > 1 || len(badRows) > 0 {
		message = strconv.Itoa(len(devices)) + " graphics devices saved."
	}

	if len(badRows) > 0 {
		message += " " + strconv.Itoa(len(badRows)) + " rows skipped."
	}

	if sessionID := c.Cookies("session"); sessionID != "" {
		_ = session.AddFlash(
			sessionID,
			s.cfg.Webserver.Session.ExpiryTime,
			session.NoticeSuccess,
			message,
		)
	}

	return c.Redirect(Path)
}

// Lookup answers the device names of one hex pair as JSON. Both hex values
// are required.
func (s *Service) Lookup(c *fiber.Ctx) error {
	vendorHex := strings.TrimSpace(c.Query("vendor_hex"))
	adapterHex := strings.TrimSpace(c.Query("adapter_hex"))

	if vendorHex == "" || adapterHex == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "vendor_hex and adapter_hex are required",
		})
	}

	result, err := s.client.GraphicsDevices.Get(c.Context(), vendorHex, adapterHex)
	if err != nil {
		log.Error().Err(err).Str("vendor_hex", vendorHex).Str("adapter_hex", adapterHex).
			Msg("failed to look up graphics device")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "device lookup failed",
		})
	}

	return c.JSON(result)
}

// postedDevices extracts the device batch from the request: the uploaded CSV
// file when present, the single-record form otherwise.
func (s *Service) postedDevices(c *fiber.Ctx) ([]dataapi.GraphicsDevice, []error, error) {
	fileHeader, err := c.FormFile("file")
	if err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			return nil, nil, errors.New("could not read the uploaded file")
		}

		defer func() {
			_ = file.Close()
		}()

		devices, badRows := ReadAll(NewDeviceReader(file))

		return devices, badRows, nil
	}

	device := dataapi.GraphicsDevice{
		VendorHex:   strings.TrimSpace(c.FormValue("vendor_hex")),
		AdapterHex:  strings.TrimSpace(c.FormValue("adapter_hex")),
		VendorName:  strings.TrimSpace(c.FormValue("vendor_name")),
		AdapterName: strings.TrimSpace(c.FormValue("adapter_name")),
	}

	if device.VendorHex == "" || device.AdapterHex == "" {
		return nil, nil, errors.New("vendor_hex and adapter_hex are required")
	}

	return []dataapi.GraphicsDevice{device}, nil, nil
}
