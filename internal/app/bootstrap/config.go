// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/purplesmurf1998/crm-api/internal/app/system/auditlog"
	"github.com/purplesmurf1998/crm-api/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the CRM API.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: CRMAPI_MONGO_URI, CRMAPI_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "crm_api", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size"},

	// Tokens
	{Name: "jwt_secret", Default: "", Desc: "Token signing secret (required)"},
	{Name: "jwt_expire", Default: "720h", Desc: "Token lifetime (e.g., 720h, 30m)"},
	{Name: "jwt_cookie_expire", Default: "720h", Desc: "Token cookie lifetime"},
	{Name: "cookie_domain", Default: "", Desc: "Token cookie domain (blank means current host)"},

	// HTTP surface
	{Name: "api_prefix", Default: "/api/v1", Desc: "Path prefix for the REST routes"},
	{Name: "metrics_enabled", Default: true, Desc: "Expose Prometheus metrics on /metrics"},

	// Login throttling
	{Name: "login_attempts_per_ip", Default: 10, Desc: "Login attempts allowed per client IP per minute"},
	{Name: "login_attempts_per_email", Default: 5, Desc: "Login attempts allowed per email per 5 minutes"},

	// Audit trail
	{Name: "audit_auth", Default: "all", Desc: "Audit destination for auth events: all, db, log, off"},
	{Name: "audit_data", Default: "all", Desc: "Audit destination for deletions: all, db, log, off"},
	{Name: "audit_retention", Default: "2160h", Desc: "Age after which audit events are purged (0 keeps them)"},

	// Store timeouts
	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single-document operations"},
	{Name: "timeout_medium", Default: "10s", Desc: "Timeout for list queries"},

	// Admin bootstrap
	{Name: "admin_email", Default: "", Desc: "Email of the admin user (promotes/creates on startup)"},
	{Name: "admin_name", Default: "Administrator", Desc: "Display name used when the admin user is created"},
	{Name: "admin_password", Default: "", Desc: "Password used when the admin user is created"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, CRMAPI_* for the app) and
// command-line flags, merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CRMAPI", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret:       appValues.String("jwt_secret"),
		JWTExpire:       appValues.Duration("jwt_expire", 720*time.Hour),
		JWTCookieExpire: appValues.Duration("jwt_cookie_expire", 720*time.Hour),
		CookieDomain:    appValues.String("cookie_domain"),

		APIPrefix:      normalizePrefix(appValues.String("api_prefix")),
		MetricsEnabled: appValues.Bool("metrics_enabled"),

		LoginPerIP:    appValues.Int("login_attempts_per_ip"),
		LoginPerEmail: appValues.Int("login_attempts_per_email"),

		AuditAuth:      strings.ToLower(appValues.String("audit_auth")),
		AuditData:      strings.ToLower(appValues.String("audit_data")),
		AuditRetention: appValues.Duration("audit_retention", 90*24*time.Hour),

		TimeoutShort:  appValues.Duration("timeout_short", timeouts.DefaultShort),
		TimeoutMedium: appValues.Duration("timeout_medium", timeouts.DefaultMedium),

		AdminEmail:    strings.TrimSpace(appValues.String("admin_email")),
		AdminName:     appValues.String("admin_name"),
		AdminPassword: appValues.String("admin_password"),
	}

	return coreCfg, appCfg, nil
}

// normalizePrefix returns p with a leading slash and no trailing slash.
func normalizePrefix(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return "/api/v1"
	}
	return "/" + p
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The Mongo URI is checked before connecting, and a missing token secret
// stops the process instead of signing with an empty key.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.JWTSecret == "" {
		return errors.New("jwt_secret must be set (CRMAPI_JWT_SECRET)")
	}
	if coreCfg != nil && coreCfg.Env == "prod" && len(appCfg.JWTSecret) < 32 {
		logger.Warn("jwt_secret is shorter than 32 bytes in production")
	}
	if appCfg.JWTExpire <= 0 || appCfg.JWTCookieExpire <= 0 {
		return errors.New("jwt_expire and jwt_cookie_expire must be positive durations")
	}
	for key, mode := range map[string]string{"audit_auth": appCfg.AuditAuth, "audit_data": appCfg.AuditData} {
		switch mode {
		case "", auditlog.ModeAll, auditlog.ModeDB, auditlog.ModeLog, auditlog.ModeOff:
		default:
			return fmt.Errorf("%s must be one of all, db, log, off (got %q)", key, mode)
		}
	}
	if appCfg.AdminEmail != "" && appCfg.AdminPassword == "" {
		return errors.New("admin_email requires admin_password")
	}
	return nil
}
