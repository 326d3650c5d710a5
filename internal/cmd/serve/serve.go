package serve

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/heavensy/admin-service/internal/config"
	registrystore "github.com/heavensy/admin-service/internal/registry/store"
	"github.com/urfave/cli/v3"

	// Import all plugins to trigger init() registration
	_ "github.com/heavensy/admin-service/internal/plugin/route/system"
	_ "github.com/heavensy/admin-service/internal/plugin/store/mongo"
)

// Command returns the serve sub-command.
func Command() *cli.Command {
	cfg := config.DefaultConfig()
	var readHeaderTimeoutSecs int = 5
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the admin backend HTTP server",
		Flags: flags(&cfg, &readHeaderTimeoutSecs),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg.Listener.ReadHeaderTimeout = time.Duration(readHeaderTimeoutSecs) * time.Second
			cfg.ManagementListener.ReadHeaderTimeout = cfg.Listener.ReadHeaderTimeout
			cfg.ManagementListenerEnabled = cmd.IsSet("management-port")
			return run(config.WithContext(ctx, &cfg), cfg)
		},
	}
}

func flags(cfg *config.Config, readHeaderTimeoutSecs *int) []cli.Flag {
	return []cli.Flag{

		// ── Server ────────────────────────────────────────────────
		&cli.StringFlag{
			Name:        "tls-cert-file",
			Category:    "Server:",
			Sources:     cli.EnvVars("ADMIN_SERVICE_TLS_CERT_FILE"),
			Destination: &cfg.Listener.TLSCertFile,
			Usage:       "TLS certificate file for single-port TLS mode",
		},
		&cli.StringFlag{
			Name:        "tls-key-file",
			Category:    "Server:",
			Sources:     cli.EnvVars("ADMIN_SERVICE_TLS_KEY_FILE"),
			Destination: &cfg.Listener.TLSKeyFile,
			Usage:       "TLS private key file for single-port TLS mode",
		},
		&cli.IntFlag{
			Name:        "read-header-timeout-seconds",
			Category:    "Server:",
			Sources:     cli.EnvVars("ADMIN_SERVICE_READ_HEADER_TIMEOUT_SECONDS"),
			Destination: readHeaderTimeoutSecs,
			Value:       *readHeaderTimeoutSecs,
			Usage:       "HTTP read header timeout in seconds",
		},
		&cli.IntFlag{
			Name:        "drain-timeout-seconds",
			Category:    "Server:",
			Sources:     cli.EnvVars("ADMIN_SERVICE_DRAIN_TIMEOUT_SECONDS"),
			Destination: &cfg.DrainTimeout,
			Value:       cfg.DrainTimeout,
			Usage:       "Seconds to wait for in-flight requests during shutdown",
		},
		&cli.Int64Flag{
			Name:        "max-body-size",
			Category:    "Server:",
			Sources:     cli.EnvVars("ADMIN_SERVICE_MAX_BODY_SIZE"),
			Destination: &cfg.MaxBodySize,
			Value:       cfg.MaxBodySize,
			Usage:       "Maximum accepted request body size in bytes",
		},
		&cli.BoolFlag{
			Name:        "management-access-log",
			Category:    "Server:",
			Sources:     cli.EnvVars("ADMIN_SERVICE_MANAGEMENT_ACCESS_LOG"),
			Destination: &cfg.ManagementAccessLog,
			Usage:       "Enable HTTP access logging for management endpoints (/health, /ready, /metrics)",
		},

		// ── Network Listener ──────────────────────────────────────
		&cli.IntFlag{
			Name:        "port",
			Category:    "Network Listener:",
			Sources:     cli.EnvVars("ADMIN_SERVICE_PORT"),
			Destination: &cfg.Listener.Port,
			Value:       cfg.Listener.Port,
			Usage:       "HTTP server port",
		},
		&cli.BoolFlag{
			Name:        "plain-text",
			Category:    "Network Listener:",
			Sources:     cli.EnvVars("ADMIN_SERVICE_PLAIN_TEXT"),
			Destination: &cfg.Listener.EnablePlainText,
			Value:       cfg.Listener.EnablePlainText,
			Usage:       "Enable plaintext HTTP/1.1 + h2c",
		},
		&cli.BoolFlag{
			Name:        "tls",
			Category:    "Network Listener:",
			Sources:     cli.EnvVars("ADMIN_SERVICE_TLS"),
			Destination: &cfg.Listener.EnableTLS,
			Value:       cfg.Listener.EnableTLS,
			Usage:       "Enable TLS HTTP/1.1 + HTTP/2",
		},

		// ── Management Network Listener ───────────────────────────
		&cli.IntFlag{
			Name:        "management-port",
			Category:    "Management Network Listener:",
			Sources:     cli.EnvVars("ADMIN_SERVICE_MANAGEMENT_PORT"),
			Destination: &cfg.ManagementListener.Port,
			Value:       cfg.ManagementListener.Port,
			Usage:       "Dedicated port for health and metrics (0 = OS-assigned random port); when unset, served on the main port",
		},
		&cli.BoolFlag{
			Name:        "management-plain-text",
			Category:    "Management Network Listener:",
			Sources:     cli.EnvVars("ADMIN_SERVICE_MANAGEMENT_PLAIN_TEXT"),
			Destination: &cfg.ManagementListener.EnablePlainText,
			Value:       cfg.ManagementListener.EnablePlainText,
			Usage:       "Enable plaintext HTTP for management server",
		},
		&cli.BoolFlag{
			Name:        "management-tls",
			Category:    "Management Network Listener:",
			Sources:     cli.EnvVars("ADMIN_SERVICE_MANAGEMENT_TLS"),
			Destination: &cfg.ManagementListener.EnableTLS,
			Value:       cfg.ManagementListener.EnableTLS,
			Usage:       "Enable TLS for management server",
		},

		// ── Database ───────────────────────────────────────────────
		&cli.StringFlag{
			Name:        "db-kind",
			Category:    "Database:",
			Sources:     cli.EnvVars("ADMIN_SERVICE_DB_KIND"),
			Destination: &cfg.DatastoreType,
			Value:       cfg.DatastoreType,
			Usage:       "Backend store (" + strings.Join(registrystore.Names(), "|") + ")",
		},
		&cli.StringFlag{
			Name:        "db-url",
			Category:    "Database:",
			Sources:     cli.EnvVars("ADMIN_SERVICE_DB_URL"),
			Destination: &cfg.DBURL,
			Usage:       "Database connection URL",
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "db-name",
			Category:    "Database:",
			Sources:     cli.EnvVars("ADMIN_SERVICE_DB_NAME"),
			Destination: &cfg.DBName,
			Value:       cfg.DBName,
			Usage:       "Database name",
		},
		&cli.IntFlag{
			Name:        "db-max-open-conns",
			Category:    "Database:",
			Sources:     cli.EnvVars("ADMIN_SERVICE_DB_MAX_OPEN_CONNS"),
			Destination: &cfg.DBMaxOpenConns,
			Value:       cfg.DBMaxOpenConns,
			Usage:       "Maximum number of open database connections",
		},
		&cli.IntFlag{
			Name:        "db-max-idle-conns",
			Category:    "Database:",
			Sources:     cli.EnvVars("ADMIN_SERVICE_DB_MAX_IDLE_CONNS"),
			Destination: &cfg.DBMaxIdleConns,
			Value:       cfg.DBMaxIdleConns,
			Usage:       "Maximum number of idle database connections",
		},
		&cli.BoolFlag{
			Name:        "db-migrate-at-start",
			Category:    "Database:",
			Sources:     cli.EnvVars("ADMIN_SERVICE_DB_MIGRATE_AT_START"),
			Destination: &cfg.DatastoreMigrateAtStart,
			Value:       cfg.DatastoreMigrateAtStart,
			Usage:       "Ensure collections and indexes exist at startup",
		},

		// ── Query Limits ──────────────────────────────────────────
		&cli.IntFlag{
			Name:        "conversation-list-limit",
			Category:    "Query Limits:",
			Sources:     cli.EnvVars("ADMIN_SERVICE_CONVERSATION_LIST_LIMIT"),
			Destination: &cfg.ConversationListLimit,
			Value:       cfg.ConversationListLimit,
			Usage:       "Default number of conversation summaries returned",
		},
		&cli.IntFlag{
			Name:        "media-list-limit",
			Category:    "Query Limits:",
			Sources:     cli.EnvVars("ADMIN_SERVICE_MEDIA_LIST_LIMIT"),
			Destination: &cfg.MediaListLimit,
			Value:       cfg.MediaListLimit,
			Usage:       "Default number of media records returned",
		},
		&cli.IntFlag{
			Name:        "list-max-limit",
			Category:    "Query Limits:",
			Sources:     cli.EnvVars("ADMIN_SERVICE_LIST_MAX_LIMIT"),
			Destination: &cfg.ListMaxLimit,
			Value:       cfg.ListMaxLimit,
			Usage:       "Hard upper bound applied to every list limit",
		},

		// ── Security ──────────────────────────────────────────────
		&cli.IntFlag{
			Name:        "bcrypt-cost",
			Category:    "Security:",
			Sources:     cli.EnvVars("ADMIN_SERVICE_BCRYPT_COST"),
			Destination: &cfg.BcryptCost,
			Value:       cfg.BcryptCost,
			Usage:       "bcrypt cost factor for password hashing",
		},
		&cli.BoolFlag{
			Name:        "cors-enabled",
			Category:    "Security:",
			Sources:     cli.EnvVars("ADMIN_SERVICE_CORS_ENABLED"),
			Destination: &cfg.CORSEnabled,
			Value:       cfg.CORSEnabled,
			Usage:       "Enable CORS handling for browser dashboards",
		},
		&cli.StringFlag{
			Name:        "cors-origins",
			Category:    "Security:",
			Sources:     cli.EnvVars("ADMIN_SERVICE_CORS_ORIGINS"),
			Destination: &cfg.CORSOrigins,
			Value:       cfg.CORSOrigins,
			Usage:       "Comma-separated allowed CORS origins; empty allows any origin",
		},

		// ── Monitoring ────────────────────────────────────────────
		&cli.StringFlag{
			Name:        "metrics-labels",
			Category:    "Monitoring:",
			Sources:     cli.EnvVars("ADMIN_SERVICE_METRICS_LABELS"),
			Destination: &cfg.MetricsLabels,
			Value:       "service=admin-service",
			Usage:       "Comma-separated key=value pairs added as constant labels to all Prometheus metrics. Supports ${VAR} expansion.",
		},
	}
}

func run(ctx context.Context, cfg config.Config) error {
	srv, err := StartServer(ctx, &cfg)
	if err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("Shutting down...")

	drainCtx, drainCancel := context.WithTimeout(context.Background(), time.Duration(cfg.DrainTimeout)*time.Second)
	defer drainCancel()
	if err := srv.Shutdown(drainCtx); err != nil {
		log.Error("Shutdown error", "err", err)
	}
	log.Info("Server stopped")
	return nil
}

func maxBodySizeMiddleware(maxBodySize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
		c.Next()
	}
}
