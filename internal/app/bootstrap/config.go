// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"time"

	registrationfeature "github.com/dalemusser/admissions/internal/app/features/registration"
	"github.com/dalemusser/admissions/internal/app/system/psgc"
	"github.com/dalemusser/admissions/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the admissions portal.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: ADMISSIONS_MONGO_URI, ADMISSIONS_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "admissions", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size (default: 5)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "admissions-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session and draft cookie lifetime"},
	{Name: "site_name", Default: viewdata.DefaultSiteName, Desc: "Site name shown in titles and the header"},

	// PSGC
	{Name: "psgc_base_url", Default: psgc.DefaultBaseURL, Desc: "PSGC API base URL"},
	{Name: "psgc_timeout", Default: "10s", Desc: "Per-request timeout for PSGC calls"},
	{Name: "psgc_rate_per_sec", Default: 10, Desc: "Outbound PSGC requests per second (0 disables throttling)"},

	// Drafts
	{Name: "draft_backend", Default: registrationfeature.DraftBackendSession, Desc: "Draft storage: 'session' (signed cookie) or 'mongo'"},
	{Name: "draft_ttl", Default: "720h", Desc: "Mongo drafts untouched this long are deleted"},
	{Name: "draft_cleanup_interval", Default: "1h", Desc: "How often expired mongo drafts are purged"},

	// Registration form
	{Name: "form_definition", Default: "", Desc: "YAML form definition path (blank uses the built-in form)"},
	{Name: "submit_rate_limit", Default: 10, Desc: "Registration submissions allowed per client IP per minute"},

	// Admin login
	{Name: "admin_username", Default: "admin", Desc: "Administrator username"},
	{Name: "admin_password_hash", Default: "", Desc: "Administrator bcrypt password hash"},
	{Name: "admin_password", Default: "", Desc: "Administrator plain password (dev only)"},

	{Name: "countdown_seconds", Default: 10, Desc: "Landing page countdown before the form opens (0 redirects at once)"},

	// Maintenance
	{Name: "scale_chance_on_startup", Default: false, Desc: "Rewrite enrollment chances stored as 0..1 probabilities as percentages at startup"},
	{Name: "scale_chance_dry_run", Default: true, Desc: "Only report what scale_chance_on_startup would change"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, ADMISSIONS_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "ADMISSIONS", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		SessionMaxAge:    appValues.Duration("session_max_age", 30*24*time.Hour),
		SiteName:         appValues.String("site_name"),

		// PSGC
		PSGCBaseURL:    appValues.String("psgc_base_url"),
		PSGCTimeout:    appValues.Duration("psgc_timeout", 10*time.Second),
		PSGCRatePerSec: appValues.Int("psgc_rate_per_sec"),

		// Drafts
		DraftBackend:         appValues.String("draft_backend"),
		DraftTTL:             appValues.Duration("draft_ttl", 30*24*time.Hour),
		DraftCleanupInterval: appValues.Duration("draft_cleanup_interval", time.Hour),

		// Form
		FormDefinition:  appValues.String("form_definition"),
		SubmitRateLimit: appValues.Int("submit_rate_limit"),

		// Admin
		AdminUsername:     appValues.String("admin_username"),
		AdminPasswordHash: appValues.String("admin_password_hash"),
		AdminPassword:     appValues.String("admin_password"),

		CountdownSeconds: appValues.Int("countdown_seconds"),

		ScaleChanceOnStartup: appValues.Bool("scale_chance_on_startup"),
		ScaleChanceDryRun:    appValues.Bool("scale_chance_dry_run"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// It rejects a malformed MongoDB URI before any connection is attempted,
// an unknown draft backend, and a missing administrator password.
// The plain admin_password is refused in production.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	switch appCfg.DraftBackend {
	case registrationfeature.DraftBackendSession, registrationfeature.DraftBackendMongo:
	default:
		return fmt.Errorf("draft_backend must be %q or %q, got %q",
			registrationfeature.DraftBackendSession, registrationfeature.DraftBackendMongo, appCfg.DraftBackend)
	}

	if appCfg.AdminPasswordHash == "" && appCfg.AdminPassword == "" {
		return errors.New("admin_password_hash (or admin_password in dev) must be set")
	}
	if appCfg.AdminPasswordHash == "" && coreCfg.Env == "prod" {
		return errors.New("admin_password is for development only; set admin_password_hash in production")
	}

	if appCfg.DraftBackend == registrationfeature.DraftBackendMongo && appCfg.DraftCleanupInterval <= 0 {
		return errors.New("draft_cleanup_interval must be positive")
	}

	return nil
}
