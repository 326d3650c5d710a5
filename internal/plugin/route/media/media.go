package media

import (
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/heavensy/admin-service/internal/model"
	registrystore "github.com/heavensy/admin-service/internal/registry/store"
)

// MountRoutes mounts the media query routes on the given router.
func MountRoutes(r *gin.Engine, store registrystore.AdminStore) {
	r.GET("/media", func(c *gin.Context) {
		listMedia(c, store)
	})
	r.GET("/media/stats", func(c *gin.Context) {
		mediaStats(c, store)
	})
}

func listMedia(c *gin.Context, store registrystore.AdminStore) {
	category := model.MediaCategory(c.Query("type"))
	if !category.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":    false,
			"code":  "validation_error",
			"error": "type must be one of image, video, audio, document",
		})
		return
	}
	limit := queryInt(c, "limit", 0)

	records, err := store.ListMedia(c.Request.Context(), category, limit)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "total": len(records), "media": records})
}

func mediaStats(c *gin.Context, store registrystore.AdminStore) {
	stats, err := store.MediaStats(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "stats": stats})
}

func handleError(c *gin.Context, err error) {
	log.Error("media request failed", "path", c.Request.URL.Path, "err", err)
	c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal server error"})
}

func queryInt(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
