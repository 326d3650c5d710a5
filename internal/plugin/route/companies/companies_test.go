package companies_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/heavensy/admin-service/internal/model"
	"github.com/heavensy/admin-service/internal/plugin/route/companies"
	registrystore "github.com/heavensy/admin-service/internal/registry/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore overrides only the methods a test exercises; calling anything
// else panics through the embedded nil interface.
type fakeStore struct {
	registrystore.AdminStore
	listCompanies     func(ctx context.Context, activeOnly bool) ([]model.Company, error)
	getCompany        func(ctx context.Context, companyID string) (*model.Company, error)
	createCompany     func(ctx context.Context, company model.Company) (*model.Company, error)
	updateCompany     func(ctx context.Context, companyID string, update registrystore.CompanyUpdate) (*model.Company, error)
	deactivateCompany func(ctx context.Context, companyID string) error
}

func (f *fakeStore) ListCompanies(ctx context.Context, activeOnly bool) ([]model.Company, error) {
	return f.listCompanies(ctx, activeOnly)
}

func (f *fakeStore) GetCompany(ctx context.Context, companyID string) (*model.Company, error) {
	return f.getCompany(ctx, companyID)
}

func (f *fakeStore) CreateCompany(ctx context.Context, company model.Company) (*model.Company, error) {
	return f.createCompany(ctx, company)
}

func (f *fakeStore) UpdateCompany(ctx context.Context, companyID string, update registrystore.CompanyUpdate) (*model.Company, error) {
	return f.updateCompany(ctx, companyID, update)
}

func (f *fakeStore) DeactivateCompany(ctx context.Context, companyID string) error {
	return f.deactivateCompany(ctx, companyID)
}

func setupRouter(store registrystore.AdminStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	companies.MountRoutes(r, store)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestListCompanies(t *testing.T) {
	store := &fakeStore{
		listCompanies: func(_ context.Context, activeOnly bool) ([]model.Company, error) {
			assert.False(t, activeOnly)
			return []model.Company{
				{CompanyID: "A_001", Name: "A", Active: true},
				{CompanyID: "B_001", Name: "B", Active: false},
			}, nil
		},
	}

	w, resp := doJSON(t, setupRouter(store), http.MethodGet, "/companies", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["ok"])
	assert.Equal(t, float64(2), resp["total"])
}

func TestListCompaniesActiveFilter(t *testing.T) {
	var gotActiveOnly bool
	store := &fakeStore{
		listCompanies: func(_ context.Context, activeOnly bool) ([]model.Company, error) {
			gotActiveOnly = activeOnly
			return []model.Company{}, nil
		},
	}

	w, resp := doJSON(t, setupRouter(store), http.MethodGet, "/companies?active=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gotActiveOnly)
	assert.Equal(t, float64(0), resp["total"])
}

func TestGetCompanyNotFound(t *testing.T) {
	store := &fakeStore{
		getCompany: func(_ context.Context, companyID string) (*model.Company, error) {
			return nil, &registrystore.NotFoundError{Resource: "company", ID: companyID}
		},
	}

	w, resp := doJSON(t, setupRouter(store), http.MethodGet, "/companies/missing", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, resp["ok"])
	assert.Equal(t, "not_found", resp["code"])
}

func TestCreateCompany(t *testing.T) {
	store := &fakeStore{
		createCompany: func(_ context.Context, company model.Company) (*model.Company, error) {
			company.Active = true
			return &company, nil
		},
	}

	w, resp := doJSON(t, setupRouter(store), http.MethodPost, "/companies", gin.H{
		"company_id": "ACME_001",
		"name":       "Acme",
		"metadata":   gin.H{"tier": "gold"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, resp["ok"])
	assert.Equal(t, "ACME_001", resp["company_id"])
}

func TestCreateCompanyConflict(t *testing.T) {
	store := &fakeStore{
		createCompany: func(_ context.Context, company model.Company) (*model.Company, error) {
			return nil, &registrystore.ConflictError{Resource: "company", ID: company.CompanyID}
		},
	}

	w, resp := doJSON(t, setupRouter(store), http.MethodPost, "/companies", gin.H{"company_id": "DUP_001"})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", resp["code"])
}

func TestCreateCompanyValidation(t *testing.T) {
	store := &fakeStore{
		createCompany: func(_ context.Context, _ model.Company) (*model.Company, error) {
			return nil, &registrystore.ValidationError{Field: "company_id", Message: "company_id is required"}
		},
	}

	w, resp := doJSON(t, setupRouter(store), http.MethodPost, "/companies", gin.H{"name": "anon"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", resp["code"])
	assert.Equal(t, "company_id", resp["field"])
}

func TestUpdateCompanyPartial(t *testing.T) {
	var gotUpdate registrystore.CompanyUpdate
	store := &fakeStore{
		updateCompany: func(_ context.Context, companyID string, update registrystore.CompanyUpdate) (*model.Company, error) {
			gotUpdate = update
			return &model.Company{CompanyID: companyID, Name: *update.Name, Industry: "logistics", Active: true}, nil
		},
	}

	w, resp := doJSON(t, setupRouter(store), http.MethodPut, "/companies/ACME_001", gin.H{"name": "Acme v2"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["ok"])

	// Only the provided field reaches the store.
	require.NotNil(t, gotUpdate.Name)
	assert.Equal(t, "Acme v2", *gotUpdate.Name)
	assert.Nil(t, gotUpdate.Industry)
	assert.Nil(t, gotUpdate.Active)
}

func TestDeleteCompany(t *testing.T) {
	store := &fakeStore{
		deactivateCompany: func(_ context.Context, companyID string) error {
			assert.Equal(t, "ACME_001", companyID)
			return nil
		},
	}

	w, resp := doJSON(t, setupRouter(store), http.MethodDelete, "/companies/ACME_001", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "company deactivated", resp["message"])
}

func TestInternalErrorIsGeneric(t *testing.T) {
	store := &fakeStore{
		getCompany: func(_ context.Context, _ string) (*model.Company, error) {
			return nil, context.DeadlineExceeded
		},
	}

	w, resp := doJSON(t, setupRouter(store), http.MethodGet, "/companies/any", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, false, resp["ok"])
	assert.Equal(t, "internal server error", resp["error"])
}
