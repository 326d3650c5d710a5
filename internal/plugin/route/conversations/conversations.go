package conversations

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	registrystore "github.com/heavensy/admin-service/internal/registry/store"
)

// MountRoutes mounts the conversation aggregator routes on the given router.
func MountRoutes(r *gin.Engine, store registrystore.AdminStore) {
	r.GET("/conversations", func(c *gin.Context) {
		listConversations(c, store)
	})
	r.GET("/conversations/:senderId", func(c *gin.Context) {
		conversationDetail(c, store)
	})
}

func listConversations(c *gin.Context, store registrystore.AdminStore) {
	// An absent or malformed limit falls through to the store's default;
	// out-of-range values are clamped there, never rejected.
	limit := queryInt(c, "limit", 0)

	summaries, err := store.SummarizeConversations(c.Request.Context(), limit)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "total": len(summaries), "conversations": summaries})
}

func conversationDetail(c *gin.Context, store registrystore.AdminStore) {
	conv, err := store.ConversationDetail(c.Request.Context(), c.Param("senderId"))
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
	log.Error("conversation request failed", "path", c.Request.URL.Path, "err", err)
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
