package config

import (
	"time"

	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/logger"
)

const (
	// DefaultUsersBatchSize is the page size of the users admin listing.
	DefaultUsersBatchSize = 10

	// DefaultProduct is the product the panel redirects to when none is configured.
	DefaultProduct = "Firefox"

	// DefaultDataAPITimeoutSeconds bounds every call to the remote data API.
	DefaultDataAPITimeoutSeconds = 30
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	DataAPI   DataAPI
	Admin     Admin
}

// Webserver implement webserver settings.
type Webserver struct {
	CleanPath           bool    // use clean path middleware to allow multi slash requests
	DisableRecover      bool    // disable recover middleware
	Domain              string  // domain name for the webserver
	Port                int     // listening port for the webserver
	ShutDownTime        int     // wait time for shutdown
	URL                 string  // base url for the webserver
	CookieEncryptionKey string  // encryption key for cookies
	Argon2Salt          string  // salt for argon2 hashing
	Session             Session // session settings
}

// DataAPI holds the connection settings for the remote crash-stats data service.
type DataAPI struct {
	BaseURL        string // base url of the data service, e.g. https://crash-stats.internal/api
	Token          string // auth token sent with every request
	TimeoutSeconds int    // request timeout in seconds
}

// Admin holds settings of the management screens.
type Admin struct {
	UsersBatchSize int    // page size for the users admin listing
	DefaultProduct string // landing product for non-superuser redirects
}
