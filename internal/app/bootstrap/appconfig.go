// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, logging, CORS, body limits); the
// fields here are specific to the CRM API.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Token configuration
	JWTSecret       string        // HMAC signing secret; startup fails when empty
	JWTExpire       time.Duration // Lifetime of a signed token
	JWTCookieExpire time.Duration // Lifetime of the token cookie
	CookieDomain    string        // Cookie domain (blank means current host)

	// HTTP surface
	APIPrefix      string // Prefix for the REST routes (default /api/v1)
	MetricsEnabled bool   // Serve Prometheus metrics on /metrics

	// Login throttling
	LoginPerIP    int
	LoginPerEmail int

	// Audit destinations per category: all, db, log or off
	AuditAuth      string
	AuditData      string
	AuditRetention time.Duration // events older than this are purged; 0 keeps them

	// Store timeouts
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration

	// Admin bootstrap: when AdminEmail is set, that user is created or
	// promoted to admin on startup.
	AdminEmail    string
	AdminName     string
	AdminPassword string
}
