package daemon

import (
	"gorm.io/gorm"

	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/config"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/db/models"
)

// referencePermissions is the fixed permission set groups can grant. It is
// seeded once and never edited from the screens.
var referencePermissions = []models.Permission{
	{Codename: "view_pii", Name: "View Personal Identifiable Information"},
	{Codename: "view_rawdump", Name: "View Raw Dumps"},
	{Codename: "view_exploitability", Name: "View Exploitability Results"},
	{Codename: "view_flash_exploitability", Name: "View Flash Exploitability Results"},
	{Codename: "reprocess_crashes", Name: "Reprocess Crashes"},
}

func seed(_ *config.Config, db *gorm.DB) {
	var count int64

	db.Model(&models.User{}).Count(&count)
	if count == 0 {
		// Default superuser; the password must be changed after first login.
		db.Create(
			&models.User{
				Email:     "admin@localhost",
				Password:  models.HashPassword("changeme"),
				Superuser: true,
				Active:    true,
			},
		)
	}

	for _, permission := range referencePermissions {
		record := permission
		db.Where(models.Permission{Codename: permission.Codename}).
			FirstOrCreate(&record)
	}
}
