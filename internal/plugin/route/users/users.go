package users

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	registrystore "github.com/heavensy/admin-service/internal/registry/store"
)

// MountRoutes mounts system user routes on the given router.
// Credential hashes never appear in any response; the store strips them on
// every read path.
func MountRoutes(r *gin.Engine, store registrystore.AdminStore) {
	r.GET("/users", func(c *gin.Context) {
		listUsers(c, store)
	})
	r.GET("/users/:username", func(c *gin.Context) {
		getUser(c, store)
	})
	r.POST("/users", func(c *gin.Context) {
		createUser(c, store)
	})
	r.PUT("/users/:username", func(c *gin.Context) {
		updateUser(c, store)
	})
	r.DELETE("/users/:username", func(c *gin.Context) {
		deleteUser(c, store)
	})
}

func listUsers(c *gin.Context, store registrystore.AdminStore) {
	activeOnly := c.Query("active") == "true"

	users, err := store.ListUsers(c.Request.Context(), activeOnly)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "total": len(users), "users": users})
}

func getUser(c *gin.Context, store registrystore.AdminStore) {
	user, err := store.GetUser(c.Request.Context(), c.Param("username"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": user})
}

func createUser(c *gin.Context, store registrystore.AdminStore) {
	var req registrystore.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "code": "validation_error", "error": err.Error()})
		return
	}

	user, err := store.CreateUser(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "username": user.Username, "user": user})
}

func updateUser(c *gin.Context, store registrystore.AdminStore) {
	var update registrystore.UserUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "code": "validation_error", "error": err.Error()})
		return
	}

	user, err := store.UpdateUser(c.Request.Context(), c.Param("username"), update)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": user})
}

func deleteUser(c *gin.Context, store registrystore.AdminStore) {
	if err := store.DeactivateUser(c.Request.Context(), c.Param("username")); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "user deactivated"})
}

func handleError(c *gin.Context, err error) {
	var notFound *registrystore.NotFoundError
	var validation *registrystore.ValidationError
	var conflict *registrystore.ConflictError

	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "code": "not_found", "error": err.Error()})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "code": "validation_error", "error": err.Error(), "field": validation.Field})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "code": "conflict", "error": err.Error()})
	default:
		log.Error("user request failed", "path", c.Request.URL.Path, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal server error"})
	}
}
