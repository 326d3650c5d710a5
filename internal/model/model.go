// Package model defines the API and persistence types shared by the store
// backends and the HTTP routes.
package model

import (
	"encoding/json"
	"time"
)

// UnknownProfileName is the sentinel display name for senders whose messages
// never carried a profile name.
const UnknownProfileName = "Unknown"

// Message is a single chat event from the append-only message log. The log is
// written by the ingestion pipeline; this service only reads it. Fields the
// pipeline writes beyond the ones modeled here are carried in Extra and pass
// through responses unchanged.
type Message struct {
	MessageID   string `bson:"message_id,omitempty" json:"message_id,omitempty"`
	SenderID    string `bson:"user_id" json:"user_id"`
	ProfileName string `bson:"profile_name,omitempty" json:"profile_name,omitempty"`
	Text        string `bson:"text" json:"text"`
	// Timestamp is an ISO-8601 UTC string; lexical order equals chronological
	// order, and it is the sole ordering key for the log.
	Timestamp string `bson:"timestamp" json:"timestamp"`
	Direction string `bson:"direction,omitempty" json:"direction,omitempty"`

	Extra map[string]any `bson:",inline" json:"-"`
}

// MarshalJSON flattens Extra into the top-level object. Modeled fields win on
// key collisions.
func (m Message) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+6)
	for k, v := range m.Extra {
		out[k] = v
	}
	delete(out, "_id")
	if m.MessageID != "" {
		out["message_id"] = m.MessageID
	}
	out["user_id"] = m.SenderID
	if m.ProfileName != "" {
		out["profile_name"] = m.ProfileName
	}
	out["text"] = m.Text
	out["timestamp"] = m.Timestamp
	if m.Direction != "" {
		out["direction"] = m.Direction
	}
	return json.Marshal(out)
}

// ConversationSummary is the derived per-sender rollup produced by the
// aggregator. It is recomputed on every query and never stored.
type ConversationSummary struct {
	SenderID      string `json:"user_id"`
	Phone         string `json:"phone"`
	ProfileName   string `json:"profile_name"`
	LastMessage   string `json:"last_message"`
	LastTimestamp string `json:"last_timestamp"`
	MessageCount  int64  `json:"message_count"`
}

// Contact is one WhatsApp sender on the roster, keyed by phone, with the
// most recent message attached.
type Contact struct {
	SenderID        string `json:"user_id"`
	Phone           string `json:"phone"`
	ProfileName     string `json:"profile_name"`
	LastMessage     string `json:"last_message"`
	LastInteraction string `json:"last_interaction"`
	MessageCount    int64  `json:"message_count"`
}

// Conversation is the full history for one sender, oldest message first.
type Conversation struct {
	SenderID      string    `json:"user_id"`
	Phone         string    `json:"phone"`
	ProfileName   string    `json:"profile_name"`
	TotalMessages int       `json:"total_messages"`
	Messages      []Message `json:"messages"`
}

// Company is a managed tenant record keyed by CompanyID.
type Company struct {
	CompanyID    string         `bson:"company_id" json:"company_id"`
	Name         string         `bson:"name,omitempty" json:"name,omitempty"`
	Industry     string         `bson:"industry,omitempty" json:"industry,omitempty"`
	ContactEmail string         `bson:"contact_email,omitempty" json:"contact_email,omitempty"`
	Phone        string         `bson:"phone,omitempty" json:"phone,omitempty"`
	Active       bool           `bson:"active" json:"active"`
	Metadata     map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt    time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `bson:"updated_at" json:"updated_at"`
	DeletedAt    *time.Time     `bson:"deleted_at,omitempty" json:"deleted_at,omitempty"`
}

// SystemUser status flag values.
const (
	UserStatusActive   = "A"
	UserStatusInactive = "I"
)

// CompanyAssignment links a system user to a company with a role set.
type CompanyAssignment struct {
	CompanyID string    `bson:"company_id" json:"company_id"`
	Roles     []string  `bson:"roles,omitempty" json:"roles,omitempty"`
	IsPrimary bool      `bson:"is_primary" json:"is_primary"`
	JoinedAt  time.Time `bson:"joined_at" json:"joined_at"`
}

// SystemUser is an operator account keyed by Username. PasswordHash is never
// serialized to JSON; store reads additionally project it out.
type SystemUser struct {
	Username      string              `bson:"username" json:"username"`
	Email         string              `bson:"email,omitempty" json:"email,omitempty"`
	PasswordHash  string              `bson:"password,omitempty" json:"-"`
	FirstName     string              `bson:"first_name,omitempty" json:"first_name,omitempty"`
	LastName      string              `bson:"last_name,omitempty" json:"last_name,omitempty"`
	FullName      string              `bson:"full_name,omitempty" json:"full_name,omitempty"`
	Phone         string              `bson:"phone,omitempty" json:"phone,omitempty"`
	Companies     []CompanyAssignment `bson:"companies,omitempty" json:"companies,omitempty"`
	Status        string              `bson:"status" json:"status"`
	IsVerified    bool                `bson:"is_verified" json:"is_verified"`
	EmailVerified bool                `bson:"email_verified" json:"email_verified"`
	LoginAttempts int                 `bson:"login_attempts" json:"login_attempts"`
	LockedUntil   *time.Time          `bson:"locked_until" json:"locked_until,omitempty"`
	CreatedAt     time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time           `bson:"updated_at" json:"updated_at"`
}

// Active reports whether the user's status flag is the enabled value.
func (u *SystemUser) Active() bool { return u.Status == UserStatusActive }

// MediaCategory is the coarse MIME grouping used by the media endpoints.
type MediaCategory string

const (
	MediaCategoryAll      MediaCategory = ""
	MediaCategoryImage    MediaCategory = "image"
	MediaCategoryVideo    MediaCategory = "video"
	MediaCategoryAudio    MediaCategory = "audio"
	MediaCategoryDocument MediaCategory = "document"
)

// Valid reports whether the category is one of the supported filters.
func (c MediaCategory) Valid() bool {
	switch c {
	case MediaCategoryAll, MediaCategoryImage, MediaCategoryVideo, MediaCategoryAudio, MediaCategoryDocument:
		return true
	}
	return false
}

// MediaRecord is a stored media attachment reference.
type MediaRecord struct {
	MediaID   string    `bson:"media_id" json:"media_id"`
	SenderID  string    `bson:"user_id,omitempty" json:"user_id,omitempty"`
	MimeType  string    `bson:"mime_type" json:"mime_type"`
	FileName  string    `bson:"file_name,omitempty" json:"file_name,omitempty"`
	SizeBytes int64     `bson:"size_bytes,omitempty" json:"size_bytes,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// MediaStats are per-category media record counts.
type MediaStats struct {
	Total     int64 `json:"total"`
	Images    int64 `json:"images"`
	Videos    int64 `json:"videos"`
	Audios    int64 `json:"audios"`
	Documents int64 `json:"documents"`
}

// DashboardStats is a snapshot of independent counts. The counts are read
// separately and may reflect slightly different instants under concurrent
// writes.
type DashboardStats struct {
	TotalMessages    int64 `json:"total_messages"`
	UniqueUsers      int64 `json:"unique_users"`
	TotalCompanies   int64 `json:"total_companies"`
	TotalSystemUsers int64 `json:"total_system_users"`
	MessagesToday    int64 `json:"messages_today"`
}
