// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers
// ports, TLS, logging and CORS; everything below is ours.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: profilecompletion-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// CSRFKey authenticates CSRF tokens. 32 bytes.
	CSRFKey string

	// Audit logging destinations per category: "all", "db", "log" or "off".
	AuditLogAuth  string
	AuditLogAdmin string

	// Google sign-in. Disabled when the client id is empty.
	GoogleClientID     string
	GoogleClientSecret string
	BaseURL            string // e.g., "https://profiles.example.com"; used for the OAuth callback

	// Admin bootstrap: ensures this account exists with the admin role.
	AdminEmail    string
	AdminPassword string

	// Handler timeouts (zero keeps the defaults).
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}

// GoogleEnabled reports whether Google sign-in is configured.
func (c AppConfig) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}
