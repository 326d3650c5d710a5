package media_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/heavensy/admin-service/internal/model"
	"github.com/heavensy/admin-service/internal/plugin/route/media"
	registrystore "github.com/heavensy/admin-service/internal/registry/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	registrystore.AdminStore
	listMedia  func(ctx context.Context, category model.MediaCategory, limit int) ([]model.MediaRecord, error)
	mediaStats func(ctx context.Context) (*model.MediaStats, error)
}

func (f *fakeStore) ListMedia(ctx context.Context, category model.MediaCategory, limit int) ([]model.MediaRecord, error) {
	return f.listMedia(ctx, category, limit)
}

func (f *fakeStore) MediaStats(ctx context.Context) (*model.MediaStats, error) {
	return f.mediaStats(ctx)
}

func setupRouter(store registrystore.AdminStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	media.MountRoutes(r, store)
	return r
}

func doGet(t *testing.T, r *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestListMedia(t *testing.T) {
	store := &fakeStore{
		listMedia: func(_ context.Context, category model.MediaCategory, limit int) ([]model.MediaRecord, error) {
			assert.Equal(t, model.MediaCategoryImage, category)
			assert.Equal(t, 10, limit)
			return []model.MediaRecord{
				{MediaID: "m1", MimeType: "image/jpeg", CreatedAt: time.Now()},
			}, nil
		},
	}

	w, resp := doGet(t, setupRouter(store), "/media?type=image&limit=10")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["ok"])
	assert.Equal(t, float64(1), resp["total"])
}

func TestListMediaInvalidType(t *testing.T) {
	store := &fakeStore{
		listMedia: func(_ context.Context, _ model.MediaCategory, _ int) ([]model.MediaRecord, error) {
			t.Fatal("store must not be called for an invalid type")
			return nil, nil
		},
	}

	w, resp := doGet(t, setupRouter(store), "/media?type=spreadsheet")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, resp["ok"])
	assert.Equal(t, "validation_error", resp["code"])
}

func TestListMediaDefaults(t *testing.T) {
	store := &fakeStore{
		listMedia: func(_ context.Context, category model.MediaCategory, limit int) ([]model.MediaRecord, error) {
			assert.Equal(t, model.MediaCategoryAll, category)
			assert.Equal(t, 0, limit)
			return []model.MediaRecord{}, nil
		},
	}

	w, resp := doGet(t, setupRouter(store), "/media")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), resp["total"])
}

func TestMediaStats(t *testing.T) {
	store := &fakeStore{
		mediaStats: func(_ context.Context) (*model.MediaStats, error) {
			return &model.MediaStats{Total: 5, Images: 2, Videos: 1, Audios: 1, Documents: 1}, nil
		},
	}

	w, resp := doGet(t, setupRouter(store), "/media/stats")
	require.Equal(t, http.StatusOK, w.Code)
	stats, ok := resp["stats"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(5), stats["total"])
	assert.Equal(t, float64(2), stats["images"])
}
