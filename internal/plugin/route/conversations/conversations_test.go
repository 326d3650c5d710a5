package conversations_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/heavensy/admin-service/internal/model"
	"github.com/heavensy/admin-service/internal/plugin/route/conversations"
	registrystore "github.com/heavensy/admin-service/internal/registry/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	registrystore.AdminStore
	summarize func(ctx context.Context, limit int) ([]model.ConversationSummary, error)
	detail    func(ctx context.Context, senderID string) (*model.Conversation, error)
}

func (f *fakeStore) SummarizeConversations(ctx context.Context, limit int) ([]model.ConversationSummary, error) {
	return f.summarize(ctx, limit)
}

func (f *fakeStore) ConversationDetail(ctx context.Context, senderID string) (*model.Conversation, error) {
	return f.detail(ctx, senderID)
}

func setupRouter(store registrystore.AdminStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	conversations.MountRoutes(r, store)
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

func TestListConversations(t *testing.T) {
	store := &fakeStore{
		summarize: func(_ context.Context, limit int) ([]model.ConversationSummary, error) {
			assert.Equal(t, 0, limit)
			return []model.ConversationSummary{
				{SenderID: "555200", LastMessage: "buenas", LastTimestamp: "2024-05-01T09:10:00", ProfileName: "Unknown", MessageCount: 1},
				{SenderID: "555100", LastMessage: "sigues ahi?", LastTimestamp: "2024-05-01T09:05:00", ProfileName: "Ana", MessageCount: 2},
			}, nil
		},
	}

	w, resp := doGet(t, setupRouter(store), "/conversations")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["ok"])
	assert.Equal(t, float64(2), resp["total"])

	convs, ok := resp["conversations"].([]any)
	require.True(t, ok)
	first := convs[0].(map[string]any)
	assert.Equal(t, "555200", first["user_id"])
	assert.Equal(t, float64(1), first["message_count"])
}

func TestListConversationsLimitForwarded(t *testing.T) {
	var gotLimit int
	store := &fakeStore{
		summarize: func(_ context.Context, limit int) ([]model.ConversationSummary, error) {
			gotLimit = limit
			return []model.ConversationSummary{}, nil
		},
	}

	w, _ := doGet(t, setupRouter(store), "/conversations?limit=5")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, gotLimit)
}

func TestListConversationsBadLimitIgnored(t *testing.T) {
	var gotLimit int
	store := &fakeStore{
		summarize: func(_ context.Context, limit int) ([]model.ConversationSummary, error) {
			gotLimit = limit
			return []model.ConversationSummary{}, nil
		},
	}

	w, _ := doGet(t, setupRouter(store), "/conversations?limit=abc")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, gotLimit)
}

func TestConversationDetail(t *testing.T) {
	store := &fakeStore{
		detail: func(_ context.Context, senderID string) (*model.Conversation, error) {
			assert.Equal(t, "555100", senderID)
			return &model.Conversation{
				SenderID:      "555100",
				Phone:         "555100",
				ProfileName:   "Ana",
				TotalMessages: 2,
				Messages: []model.Message{
					{SenderID: "555100", Text: "hola", Timestamp: "2024-05-01T09:00:00"},
					{SenderID: "555100", Text: "sigues ahi?", Timestamp: "2024-05-01T09:05:00"},
				},
			}, nil
		},
	}

	w, resp := doGet(t, setupRouter(store), "/conversations/555100")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["ok"])
	assert.Equal(t, "555100", resp["user_id"])
	assert.Equal(t, "Ana", resp["profile_name"])
	assert.Equal(t, float64(2), resp["total_messages"])

	messages, ok := resp["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	first := messages[0].(map[string]any)
	assert.Equal(t, "hola", first["text"])
}

func TestConversationDetailNotFound(t *testing.T) {
	store := &fakeStore{
		detail: func(_ context.Context, senderID string) (*model.Conversation, error) {
			return nil, &registrystore.NotFoundError{Resource: "conversation", ID: senderID}
		},
	}

	w, resp := doGet(t, setupRouter(store), "/conversations/nobody")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, resp["ok"])
	assert.Equal(t, "not_found", resp["code"])
}
