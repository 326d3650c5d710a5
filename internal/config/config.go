package config

import (
	"context"
	"time"
)

// Version is reported by the /config endpoint.
const Version = "3.0"

// ListenerConfig holds the network/TLS settings for a single listener (main or management).
type ListenerConfig struct {
	Port              int
	EnablePlainText   bool
	EnableTLS         bool
	TLSCertFile       string
	TLSKeyFile        string
	ReadHeaderTimeout time.Duration
}

type contextKey struct{}

// WithContext returns a new context carrying the given Config.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, contextKey{}, cfg)
}

// FromContext retrieves the Config from the context.
func FromContext(ctx context.Context) *Config {
	cfg, _ := ctx.Value(contextKey{}).(*Config)
	return cfg
}

// Config holds all configuration for the admin service.
type Config struct {
	// Database
	DBURL  string
	DBName string

	// Backend store type. "mongo" is the only built-in backend.
	DatastoreType string

	// Run datastore migrations on startup.
	DatastoreMigrateAtStart bool

	// DB pool
	DBMaxOpenConns int
	DBMaxIdleConns int

	// Default number of conversation summaries returned by the aggregator.
	ConversationListLimit int

	// Default number of media records returned by /media.
	MediaListLimit int

	// Hard ceiling applied to every limit query parameter.
	ListMaxLimit int

	// Cost parameter for bcrypt credential hashing.
	BcryptCost int

	// Server
	Listener           ListenerConfig
	ManagementListener ListenerConfig
	// ManagementListenerEnabled is true when --management-port (or ADMIN_SERVICE_MANAGEMENT_PORT)
	// was explicitly provided. When false, management endpoints are served on the main port.
	ManagementListenerEnabled bool
	// ManagementAccessLog enables HTTP access logging for management endpoints (/health, /ready, /metrics).
	// Disabled by default to suppress high-frequency probe noise from the access log.
	ManagementAccessLog bool
	CORSEnabled         bool
	CORSOrigins         string

	// Body size limit (bytes)
	MaxBodySize int64

	// Graceful shutdown drain timeout (seconds)
	DrainTimeout int

	// MetricsLabels is a comma-separated list of key=value pairs added as
	// constant labels to all Prometheus metrics. Values support ${VAR} expansion.
	MetricsLabels string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DBName:                  "heavensy_prod",
		DatastoreType:           "mongo",
		DatastoreMigrateAtStart: true,
		DBMaxOpenConns:          25,
		DBMaxIdleConns:          5,
		ConversationListLimit:   100,
		MediaListLimit:          50,
		ListMaxLimit:            200,
		BcryptCost:              12,
		Listener: ListenerConfig{
			Port:              8080,
			EnablePlainText:   true,
			EnableTLS:         true,
			ReadHeaderTimeout: 5 * time.Second,
		},
		ManagementListener: ListenerConfig{
			EnablePlainText: true,
			EnableTLS:       true,
		},
		MaxBodySize:  4 * 1024 * 1024,
		DrainTimeout: 30,
	}
}

// ClampLimit normalizes a requested list limit: non-positive values fall back
// to def, anything above ListMaxLimit is silently capped.
func (c *Config) ClampLimit(requested, def int) int {
	limit := requested
	if limit <= 0 {
		limit = def
	}
	if c != nil && c.ListMaxLimit > 0 && limit > c.ListMaxLimit {
		limit = c.ListMaxLimit
	}
	return limit
}
