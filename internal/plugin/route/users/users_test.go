package users_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/heavensy/admin-service/internal/model"
	"github.com/heavensy/admin-service/internal/plugin/route/users"
	registrystore "github.com/heavensy/admin-service/internal/registry/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	registrystore.AdminStore
	listUsers      func(ctx context.Context, activeOnly bool) ([]model.SystemUser, error)
	getUser        func(ctx context.Context, username string) (*model.SystemUser, error)
	createUser     func(ctx context.Context, req registrystore.CreateUserRequest) (*model.SystemUser, error)
	updateUser     func(ctx context.Context, username string, update registrystore.UserUpdate) (*model.SystemUser, error)
	deactivateUser func(ctx context.Context, username string) error
}

func (f *fakeStore) ListUsers(ctx context.Context, activeOnly bool) ([]model.SystemUser, error) {
	return f.listUsers(ctx, activeOnly)
}

func (f *fakeStore) GetUser(ctx context.Context, username string) (*model.SystemUser, error) {
	return f.getUser(ctx, username)
}

func (f *fakeStore) CreateUser(ctx context.Context, req registrystore.CreateUserRequest) (*model.SystemUser, error) {
	return f.createUser(ctx, req)
}

func (f *fakeStore) UpdateUser(ctx context.Context, username string, update registrystore.UserUpdate) (*model.SystemUser, error) {
	return f.updateUser(ctx, username, update)
}

func (f *fakeStore) DeactivateUser(ctx context.Context, username string) error {
	return f.deactivateUser(ctx, username)
}

func setupRouter(store registrystore.AdminStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	users.MountRoutes(r, store)
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

func TestCreateUser(t *testing.T) {
	store := &fakeStore{
		createUser: func(_ context.Context, req registrystore.CreateUserRequest) (*model.SystemUser, error) {
			assert.Equal(t, "jdoe", req.Username)
			assert.Equal(t, "s3cret!", req.Password)
			return &model.SystemUser{
				Username: req.Username,
				Email:    req.Email,
				FullName: "Jane Doe",
				Status:   model.UserStatusActive,
			}, nil
		},
	}

	w, resp := doJSON(t, setupRouter(store), http.MethodPost, "/users", gin.H{
		"username":   "jdoe",
		"password":   "s3cret!",
		"email":      "jdoe@acme.test",
		"first_name": "Jane",
		"last_name":  "Doe",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, resp["ok"])
	assert.Equal(t, "jdoe", resp["username"])
}

func TestCreateUserResponseOmitsCredential(t *testing.T) {
	store := &fakeStore{
		createUser: func(_ context.Context, req registrystore.CreateUserRequest) (*model.SystemUser, error) {
			// Even if a hash leaks into the returned struct, serialization
			// must drop it.
			return &model.SystemUser{Username: req.Username, PasswordHash: "$2a$10$leaked"}, nil
		},
	}

	w, _ := doJSON(t, setupRouter(store), http.MethodPost, "/users", gin.H{"username": "jdoe", "password": "pw"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "leaked")
	assert.NotContains(t, strings.ToLower(w.Body.String()), "password")
}

func TestCreateUserConflict(t *testing.T) {
	store := &fakeStore{
		createUser: func(_ context.Context, req registrystore.CreateUserRequest) (*model.SystemUser, error) {
			return nil, &registrystore.ConflictError{Resource: "user", ID: req.Username}
		},
	}

	w, resp := doJSON(t, setupRouter(store), http.MethodPost, "/users", gin.H{"username": "dup", "password": "pw"})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", resp["code"])
}

func TestGetUserNotFound(t *testing.T) {
	store := &fakeStore{
		getUser: func(_ context.Context, username string) (*model.SystemUser, error) {
			return nil, &registrystore.NotFoundError{Resource: "user", ID: username}
		},
	}

	w, resp := doJSON(t, setupRouter(store), http.MethodGet, "/users/ghost", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", resp["code"])
}

func TestListUsers(t *testing.T) {
	store := &fakeStore{
		listUsers: func(_ context.Context, activeOnly bool) ([]model.SystemUser, error) {
			assert.True(t, activeOnly)
			return []model.SystemUser{{Username: "a"}, {Username: "b"}}, nil
		},
	}

	w, resp := doJSON(t, setupRouter(store), http.MethodGet, "/users?active=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), resp["total"])
}

func TestUpdateUserPartial(t *testing.T) {
	var gotUpdate registrystore.UserUpdate
	store := &fakeStore{
		updateUser: func(_ context.Context, username string, update registrystore.UserUpdate) (*model.SystemUser, error) {
			gotUpdate = update
			return &model.SystemUser{Username: username}, nil
		},
	}

	w, resp := doJSON(t, setupRouter(store), http.MethodPut, "/users/jdoe", gin.H{"email": "new@acme.test"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["ok"])

	require.NotNil(t, gotUpdate.Email)
	assert.Equal(t, "new@acme.test", *gotUpdate.Email)
	assert.Nil(t, gotUpdate.Password)
	assert.Nil(t, gotUpdate.Status)
}

func TestUpdateUserInvalidStatus(t *testing.T) {
	store := &fakeStore{
		updateUser: func(_ context.Context, _ string, _ registrystore.UserUpdate) (*model.SystemUser, error) {
			return nil, &registrystore.ValidationError{Field: "status", Message: "status must be A or I"}
		},
	}

	w, resp := doJSON(t, setupRouter(store), http.MethodPut, "/users/jdoe", gin.H{"status": "X"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", resp["code"])
	assert.Equal(t, "status", resp["field"])
}

func TestDeleteUser(t *testing.T) {
	store := &fakeStore{
		deactivateUser: func(_ context.Context, username string) error {
			assert.Equal(t, "jdoe", username)
			return nil
		},
	}

	w, resp := doJSON(t, setupRouter(store), http.MethodDelete, "/users/jdoe", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user deactivated", resp["message"])
}
