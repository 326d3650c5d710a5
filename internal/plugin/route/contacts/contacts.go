// Package contacts serves the WhatsApp roster: every sender seen in the
// message log, plus a recent-history view per sender.
package contacts

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	registrystore "github.com/heavensy/admin-service/internal/registry/store"
)

// MountRoutes mounts the roster routes on the given router.
func MountRoutes(r *gin.Engine, store registrystore.AdminStore) {
	r.GET("/whatsapp-users", func(c *gin.Context) {
		listContacts(c, store)
	})
	r.GET("/whatsapp-users/:phone", func(c *gin.Context) {
		contactHistory(c, store)
	})
}

func listContacts(c *gin.Context, store registrystore.AdminStore) {
	contacts, err := store.ListContacts(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "total": len(contacts), "users": contacts})
}

func contactHistory(c *gin.Context, store registrystore.AdminStore) {
	limit := queryInt(c, "limit", 0)

	conv, err := store.ContactHistory(c.Request.Context(), c.Param("phone"), limit)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":             true,
		"user_id":        conv.SenderID,
		"phone":          conv.Phone,
		"profile_name":   conv.ProfileName,
		"total_messages": conv.TotalMessages,
		"messages":       conv.Messages,
	})
}

func handleError(c *gin.Context, err error) {
	var notFound *registrystore.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "code": "not_found", "error": err.Error()})
		return
	}
	log.Error("contact request failed", "path", c.Request.URL.Path, "err", err)
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
