// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (HTTP/HTTPS ports,
// TLS, logging level, CORS, body size limits). AppConfig is everything
// specific to this service: the MongoDB mirror it evaluates against, the
// operator console session, and decision recording.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connections in the driver pool
	MongoMinPoolSize uint64 // Min connections kept warm in the pool

	// Operator console session configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for operator sessions
	SessionDomain string        // Cookie domain (blank means current host)
	SessionTTL    time.Duration // How long an operator session stays valid

	// Operator console access
	ConsoleEnabled       bool   // Mount the /console what-if surface
	OperatorLogin        string // Login id for the console operator
	OperatorPasswordHash string // bcrypt hash of the operator password

	// Decision recording: "all" (db+log), "db", "log", or "off"
	AuditDecisions string
}
