package companies

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/heavensy/admin-service/internal/model"
	registrystore "github.com/heavensy/admin-service/internal/registry/store"
)

// MountRoutes mounts company routes on the given router.
// Called after store initialization so the store is available.
func MountRoutes(r *gin.Engine, store registrystore.AdminStore) {
	r.GET("/companies", func(c *gin.Context) {
		listCompanies(c, store)
	})
	r.GET("/companies/:companyId", func(c *gin.Context) {
		getCompany(c, store)
	})
	r.POST("/companies", func(c *gin.Context) {
		createCompany(c, store)
	})
	r.PUT("/companies/:companyId", func(c *gin.Context) {
		updateCompany(c, store)
	})
	r.DELETE("/companies/:companyId", func(c *gin.Context) {
		deleteCompany(c, store)
	})
}

func listCompanies(c *gin.Context, store registrystore.AdminStore) {
	activeOnly := c.Query("active") == "true"

	companies, err := store.ListCompanies(c.Request.Context(), activeOnly)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "total": len(companies), "companies": companies})
}

func getCompany(c *gin.Context, store registrystore.AdminStore) {
	company, err := store.GetCompany(c.Request.Context(), c.Param("companyId"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "company": company})
}

func createCompany(c *gin.Context, store registrystore.AdminStore) {
	var req struct {
		CompanyID    string         `json:"company_id"`
		Name         string         `json:"name"`
		Industry     string         `json:"industry"`
		ContactEmail string         `json:"contact_email"`
		Phone        string         `json:"phone"`
		Metadata     map[string]any `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "code": "validation_error", "error": err.Error()})
		return
	}

	company, err := store.CreateCompany(c.Request.Context(), model.Company{
		CompanyID:    req.CompanyID,
		Name:         req.Name,
		Industry:     req.Industry,
		ContactEmail: req.ContactEmail,
		Phone:        req.Phone,
		Metadata:     req.Metadata,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "company_id": company.CompanyID, "company": company})
}

func updateCompany(c *gin.Context, store registrystore.AdminStore) {
	var update registrystore.CompanyUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "code": "validation_error", "error": err.Error()})
		return
	}

	company, err := store.UpdateCompany(c.Request.Context(), c.Param("companyId"), update)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "company": company})
}

func deleteCompany(c *gin.Context, store registrystore.AdminStore) {
	if err := store.DeactivateCompany(c.Request.Context(), c.Param("companyId")); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "company deactivated"})
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
		log.Error("company request failed", "path", c.Request.URL.Path, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal server error"})
	}
}
