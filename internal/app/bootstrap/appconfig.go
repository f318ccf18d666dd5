// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers
// the framework side: ports, TLS, logging, CORS and body limits.
// Everything below belongs to the admissions portal itself.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: admissions-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Lifetime of the session and draft cookies

	SiteName string // Shown in page titles and the header

	// PSGC geographic API
	PSGCBaseURL    string
	PSGCTimeout    time.Duration
	PSGCRatePerSec int // 0 disables outbound throttling

	// Registration drafts
	DraftBackend         string        // "session" (signed cookie) or "mongo"
	DraftTTL             time.Duration // mongo drafts untouched this long are purged
	DraftCleanupInterval time.Duration

	// Registration form
	FormDefinition  string // optional YAML path replacing the embedded form
	SubmitRateLimit int    // submissions per client IP per minute

	// Administrator login
	AdminUsername     string
	AdminPasswordHash string // bcrypt
	AdminPassword     string // plain text, dev only

	// Landing page countdown before redirecting to the form, in seconds
	CountdownSeconds int

	// One-shot maintenance: rewrite probability-style enrollment chances as percentages
	ScaleChanceOnStartup bool
	ScaleChanceDryRun    bool
}
