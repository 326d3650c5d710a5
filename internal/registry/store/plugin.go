package store

import (
	"context"
	"fmt"

	"github.com/heavensy/admin-service/internal/model"
)

// CreateUserRequest is the input for creating a system user. Password is the
// raw credential; the store hashes it before persisting and never returns it.
type CreateUserRequest struct {
	Username  string                    `json:"username"`
	Password  string                    `json:"password"`
	Email     string                    `json:"email"`
	FirstName string                    `json:"first_name"`
	LastName  string                    `json:"last_name"`
	Phone     string                    `json:"phone"`
	Companies []model.CompanyAssignment `json:"companies"`
}

// CompanyUpdate is a partial field set for updating a company. Nil pointers
// leave the stored value untouched; provided fields overwrite it wholesale.
type CompanyUpdate struct {
	Name         *string        `json:"name"`
	Industry     *string        `json:"industry"`
	ContactEmail *string        `json:"contact_email"`
	Phone        *string        `json:"phone"`
	Active       *bool          `json:"active"`
	Metadata     map[string]any `json:"metadata"`
}

// UserUpdate is a partial field set for updating a system user. A blank
// Password means "no change requested"; a non-blank one is hashed and stored.
type UserUpdate struct {
	Email     *string                    `json:"email"`
	Password  *string                    `json:"password"`
	FirstName *string                    `json:"first_name"`
	LastName  *string                    `json:"last_name"`
	Phone     *string                    `json:"phone"`
	Companies *[]model.CompanyAssignment `json:"companies"`
	Status    *string                    `json:"status"`
}

// AdminStore is the persistence contract for the admin API. Implementations
// must perform each update as a single atomic match-on-identity write and
// rely on a storage-level uniqueness constraint for create collisions.
type AdminStore interface {
	// Companies
	ListCompanies(ctx context.Context, activeOnly bool) ([]model.Company, error)
	GetCompany(ctx context.Context, companyID string) (*model.Company, error)
	CreateCompany(ctx context.Context, company model.Company) (*model.Company, error)
	UpdateCompany(ctx context.Context, companyID string, update CompanyUpdate) (*model.Company, error)
	DeactivateCompany(ctx context.Context, companyID string) error

	// System users
	ListUsers(ctx context.Context, activeOnly bool) ([]model.SystemUser, error)
	GetUser(ctx context.Context, username string) (*model.SystemUser, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*model.SystemUser, error)
	UpdateUser(ctx context.Context, username string, update UserUpdate) (*model.SystemUser, error)
	DeactivateUser(ctx context.Context, username string) error
	VerifyUserPassword(ctx context.Context, username, password string) (bool, error)

	// Conversation aggregation
	SummarizeConversations(ctx context.Context, limit int) ([]model.ConversationSummary, error)
	ConversationDetail(ctx context.Context, senderID string) (*model.Conversation, error)

	// WhatsApp roster
	ListContacts(ctx context.Context) ([]model.Contact, error)
	ContactHistory(ctx context.Context, senderID string, limit int) (*model.Conversation, error)

	// Dashboard
	DashboardStats(ctx context.Context) (*model.DashboardStats, error)

	// Media
	ListMedia(ctx context.Context, category model.MediaCategory, limit int) ([]model.MediaRecord, error)
	MediaStats(ctx context.Context) (*model.MediaStats, error)

	Close(ctx context.Context) error
}

// Loader creates an AdminStore from config carried in the context.
type Loader func(ctx context.Context) (AdminStore, error)

// Plugin represents a store plugin.
type Plugin struct {
	Name   string
	Loader Loader
}

var plugins []Plugin

// Register adds a store plugin. Called from init() in plugin packages.
func Register(p Plugin) {
	plugins = append(plugins, p)
}

// Names returns all registered store plugin names.
func Names() []string {
	names := make([]string, len(plugins))
	for i, p := range plugins {
		names[i] = p.Name
	}
	return names
}

// Select returns the loader for the named store plugin.
func Select(name string) (Loader, error) {
	for _, p := range plugins {
		if p.Name == name {
			return p.Loader, nil
		}
	}
	return nil, fmt.Errorf("unknown store %q; valid: %v", name, Names())
}
