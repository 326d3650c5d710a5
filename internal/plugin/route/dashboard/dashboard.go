package dashboard

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/heavensy/admin-service/internal/config"
	registrystore "github.com/heavensy/admin-service/internal/registry/store"
)

// MountRoutes mounts the dashboard and runtime config routes on the given router.
func MountRoutes(r *gin.Engine, cfg *config.Config, store registrystore.AdminStore) {
	r.GET("/dashboard", func(c *gin.Context) {
		dashboardStats(c, store)
	})
	r.GET("/config", func(c *gin.Context) {
		configSnapshot(c, cfg)
	})
}

func dashboardStats(c *gin.Context, store registrystore.AdminStore) {
	stats, err := store.DashboardStats(c.Request.Context())
	if err != nil {
		log.Error("dashboard request failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"stats":     stats,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// configSnapshot reports the non-sensitive runtime configuration. Connection
// strings and credentials never appear here.
func configSnapshot(c *gin.Context, cfg *config.Config) {
	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"version": config.Version,
		"database": gin.H{
			"kind": cfg.DatastoreType,
			"name": cfg.DBName,
		},
		"limits": gin.H{
			"conversations": cfg.ConversationListLimit,
			"media":         cfg.MediaListLimit,
			"max":           cfg.ListMaxLimit,
		},
		"features": gin.H{
			"dashboard":     true,
			"conversations": true,
			"companies":     true,
			"users":         true,
			"media":         true,
		},
	})
}
