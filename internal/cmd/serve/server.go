package serve

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/heavensy/admin-service/internal/config"
	"github.com/heavensy/admin-service/internal/plugin/route/companies"
	"github.com/heavensy/admin-service/internal/plugin/route/contacts"
	"github.com/heavensy/admin-service/internal/plugin/route/conversations"
	"github.com/heavensy/admin-service/internal/plugin/route/dashboard"
	"github.com/heavensy/admin-service/internal/plugin/route/media"
	routesystem "github.com/heavensy/admin-service/internal/plugin/route/system"
	"github.com/heavensy/admin-service/internal/plugin/route/users"
	storemetrics "github.com/heavensy/admin-service/internal/plugin/store/metrics"
	registrymigrate "github.com/heavensy/admin-service/internal/registry/migrate"
	registryroute "github.com/heavensy/admin-service/internal/registry/route"
	registrystore "github.com/heavensy/admin-service/internal/registry/store"
	"github.com/heavensy/admin-service/internal/security"
)

// Server holds the running server and its subsystems.
type Server struct {
	Config          *config.Config
	Store           registrystore.AdminStore
	Router          *gin.Engine
	Running         *RunningServers
	closeManagement func(context.Context) error
}

// Shutdown gracefully shuts down the server and closes the store.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.closeManagement != nil {
		_ = s.closeManagement(ctx)
	}
	err := s.Running.Close(ctx)
	if closeErr := s.Store.Close(ctx); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// StartServer initializes all subsystems and starts the HTTP server.
// Use cfg.Listener.Port=0 for a random port. Actual port: Server.Running.Port.
func StartServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	log.Info("Starting admin service",
		"httpPort", cfg.Listener.Port,
		"db", cfg.DatastoreType,
		"dbName", cfg.DBName,
	)

	// Initialize Prometheus metrics with configured constant labels.
	metricsLabels, err := security.ParseMetricsLabels(cfg.MetricsLabels)
	if err != nil {
		return nil, fmt.Errorf("invalid --metrics-labels: %w", err)
	}
	security.InitMetrics(metricsLabels)

	// Ensure collections and indexes
	if cfg.DatastoreMigrateAtStart {
		if err := registrymigrate.RunAll(ctx); err != nil {
			return nil, fmt.Errorf("migrations failed: %w", err)
		}
	}

	// Initialize store
	storeLoader, err := registrystore.Select(cfg.DatastoreType)
	if err != nil {
		return nil, err
	}
	store, err := storeLoader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	store = storemetrics.Wrap(store)

	// Set up gin
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(security.RequestIDMiddleware())
	if cfg.ManagementAccessLog {
		router.Use(security.AccessLogMiddleware())
	} else {
		router.Use(security.AccessLogMiddleware("/health", "/ready", "/metrics"))
	}
	router.Use(security.MetricsMiddleware())
	router.Use(maxBodySizeMiddleware(cfg.MaxBodySize))
	if cfg.CORSEnabled {
		router.Use(corsMiddleware(cfg.CORSOrigins))
	}

	// Mount main route plugins on the main router.
	for _, loader := range registryroute.MainRouteLoaders() {
		if err := loader(router); err != nil {
			return nil, fmt.Errorf("failed to load routes: %w", err)
		}
	}

	// Mount Admin API routes
	dashboard.MountRoutes(router, cfg, store)
	conversations.MountRoutes(router, store)
	contacts.MountRoutes(router, store)
	companies.MountRoutes(router, store)
	users.MountRoutes(router, store)
	media.MountRoutes(router, store)

	// Mount management route plugins. If a dedicated management port is configured,
	// run them on a bare gin engine served by the management server. Otherwise,
	// mount them on the main router so existing single-port behaviour is unchanged.
	var closeManagement func(context.Context) error
	if cfg.ManagementListenerEnabled {
		mgmtRouter := gin.New()
		mgmtRouter.Use(gin.Recovery())
		if cfg.ManagementAccessLog {
			mgmtRouter.Use(security.AccessLogMiddleware())
		}
		for _, loader := range registryroute.ManagementRouteLoaders() {
			if err := loader(mgmtRouter); err != nil {
				return nil, fmt.Errorf("failed to load management routes: %w", err)
			}
		}
		// Management listener shares TLS cert/key with the main listener.
		mgmtCfg := cfg.ManagementListener
		mgmtCfg.TLSCertFile = cfg.Listener.TLSCertFile
		mgmtCfg.TLSKeyFile = cfg.Listener.TLSKeyFile
		_, closeManagement, err = startManagementServer(mgmtCfg, mgmtRouter)
		if err != nil {
			return nil, fmt.Errorf("failed to start management server: %w", err)
		}
	} else {
		for _, loader := range registryroute.ManagementRouteLoaders() {
			if err := loader(router); err != nil {
				return nil, fmt.Errorf("failed to load management routes: %w", err)
			}
		}
	}

	running, err := StartSinglePortHTTP(ctx, cfg.Listener, router)
	if err != nil {
		return nil, err
	}

	log.Info("Server listening",
		"port", running.Port,
		"plaintext", cfg.Listener.EnablePlainText,
		"tls", cfg.Listener.EnableTLS,
	)

	routesystem.MarkReady()
	return &Server{
		Config:          cfg,
		Store:           store,
		Router:          router,
		Running:         running,
		closeManagement: closeManagement,
	}, nil
}
