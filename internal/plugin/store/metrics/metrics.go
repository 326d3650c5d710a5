// Package metrics wraps an AdminStore to record per-operation latency.
package metrics

import (
	"context"
	"time"

	"github.com/heavensy/admin-service/internal/model"
	"github.com/heavensy/admin-service/internal/registry/store"
	"github.com/heavensy/admin-service/internal/security"
)

// Wrap returns an AdminStore that records StoreLatency for every operation.
func Wrap(inner store.AdminStore) store.AdminStore {
	return &metricsStore{inner: inner}
}

type metricsStore struct {
	inner store.AdminStore
}

func observe(op string, start time.Time) {
	security.StoreLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *metricsStore) ListCompanies(ctx context.Context, activeOnly bool) ([]model.Company, error) {
	defer observe("list_companies", time.Now())
	return m.inner.ListCompanies(ctx, activeOnly)
}

func (m *metricsStore) GetCompany(ctx context.Context, companyID string) (*model.Company, error) {
	defer observe("get_company", time.Now())
	return m.inner.GetCompany(ctx, companyID)
}

func (m *metricsStore) CreateCompany(ctx context.Context, company model.Company) (*model.Company, error) {
	defer observe("create_company", time.Now())
	return m.inner.CreateCompany(ctx, company)
}

func (m *metricsStore) UpdateCompany(ctx context.Context, companyID string, update store.CompanyUpdate) (*model.Company, error) {
	defer observe("update_company", time.Now())
	return m.inner.UpdateCompany(ctx, companyID, update)
}

func (m *metricsStore) DeactivateCompany(ctx context.Context, companyID string) error {
	defer observe("deactivate_company", time.Now())
	return m.inner.DeactivateCompany(ctx, companyID)
}

func (m *metricsStore) ListUsers(ctx context.Context, activeOnly bool) ([]model.SystemUser, error) {
	defer observe("list_users", time.Now())
	return m.inner.ListUsers(ctx, activeOnly)
}

func (m *metricsStore) GetUser(ctx context.Context, username string) (*model.SystemUser, error) {
	defer observe("get_user", time.Now())
	return m.inner.GetUser(ctx, username)
}

func (m *metricsStore) CreateUser(ctx context.Context, req store.CreateUserRequest) (*model.SystemUser, error) {
	defer observe("create_user", time.Now())
	return m.inner.CreateUser(ctx, req)
}

func (m *metricsStore) UpdateUser(ctx context.Context, username string, update store.UserUpdate) (*model.SystemUser, error) {
	defer observe("update_user", time.Now())
	return m.inner.UpdateUser(ctx, username, update)
}

func (m *metricsStore) DeactivateUser(ctx context.Context, username string) error {
	defer observe("deactivate_user", time.Now())
	return m.inner.DeactivateUser(ctx, username)
}

func (m *metricsStore) VerifyUserPassword(ctx context.Context, username, password string) (bool, error) {
	defer observe("verify_user_password", time.Now())
	return m.inner.VerifyUserPassword(ctx, username, password)
}

func (m *metricsStore) SummarizeConversations(ctx context.Context, limit int) ([]model.ConversationSummary, error) {
	defer observe("summarize_conversations", time.Now())
	return m.inner.SummarizeConversations(ctx, limit)
}

func (m *metricsStore) ConversationDetail(ctx context.Context, senderID string) (*model.Conversation, error) {
	defer observe("conversation_detail", time.Now())
	return m.inner.ConversationDetail(ctx, senderID)
}

func (m *metricsStore) ListContacts(ctx context.Context) ([]model.Contact, error) {
	defer observe("list_contacts", time.Now())
	return m.inner.ListContacts(ctx)
}

func (m *metricsStore) ContactHistory(ctx context.Context, senderID string, limit int) (*model.Conversation, error) {
	defer observe("contact_history", time.Now())
	return m.inner.ContactHistory(ctx, senderID, limit)
}

func (m *metricsStore) DashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	defer observe("dashboard_stats", time.Now())
	return m.inner.DashboardStats(ctx)
}

func (m *metricsStore) ListMedia(ctx context.Context, category model.MediaCategory, limit int) ([]model.MediaRecord, error) {
	defer observe("list_media", time.Now())
	return m.inner.ListMedia(ctx, category, limit)
}

func (m *metricsStore) MediaStats(ctx context.Context) (*model.MediaStats, error) {
	defer observe("media_stats", time.Now())
	return m.inner.MediaStats(ctx)
}

func (m *metricsStore) Close(ctx context.Context) error {
	return m.inner.Close(ctx)
}
