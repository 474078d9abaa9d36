// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig covers framework-level settings (HTTP ports, TLS,
// logging, request limits). AppConfig is everything specific to
// Bucketshare: the MongoDB connection, session cookie signing, the base
// URL invite links are built from, and the optional Google sign-in
// credentials.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionDomain string // Cookie domain (blank means current host)

	// Base URL for invite links (e.g. "https://bucketshare.app").
	// Invite URLs are built from configuration rather than the incoming
	// request's Host header, which is client-controlled.
	BaseURL string

	// Google OAuth configuration (sign-in disabled when blank)
	GoogleClientID     string
	GoogleClientSecret string

	// Invite sweep worker
	InviteSweepInterval time.Duration // how often to clear long-expired invites
	InviteSweepGrace    time.Duration // how long past expiry an invite is kept
}
