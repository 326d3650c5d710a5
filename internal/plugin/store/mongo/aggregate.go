package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/heavensy/admin-service/internal/model"
	registrystore "github.com/heavensy/admin-service/internal/registry/store"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// summaryRow is the shape produced by the grouping stage of the summary
// pipeline.
type summaryRow struct {
	SenderID      string `bson:"_id"`
	LastMessage   string `bson:"last_message"`
	LastTimestamp string `bson:"last_timestamp"`
	ProfileName   string `bson:"profile_name"`
	MessageCount  int64  `bson:"message_count"`
}

// SummarizeConversations reduces the message log into one summary per sender,
// most recently active first. The per-sender count covers the sender's entire
// history, not just the returned window.
func (s *MongoStore) SummarizeConversations(ctx context.Context, limit int) ([]model.ConversationSummary, error) {
	limit = s.clampLimit(limit, s.cfg.ConversationListLimit)

	// Sorting before grouping makes $first pick the newest message per
	// sender; the _id tiebreak keeps equal timestamps deterministic.
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "timestamp", Value: -1},
			{Key: "_id", Value: -1},
		}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$user_id"},
			{Key: "last_message", Value: bson.D{{Key: "$first", Value: "$text"}}},
			{Key: "last_timestamp", Value: bson.D{{Key: "$first", Value: "$timestamp"}}},
			{Key: "profile_name", Value: bson.D{{Key: "$first", Value: "$profile_name"}}},
			{Key: "message_count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "last_timestamp", Value: -1}}}},
		bson.D{{Key: "$limit", Value: int64(limit)}},
	}

	cursor, err := s.chat().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize conversations: %w", err)
	}
	rows := []summaryRow{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode conversation summaries: %w", err)
	}

	summaries := make([]model.ConversationSummary, 0, len(rows))
	for _, row := range rows {
		name := row.ProfileName
		if name == "" {
			name = model.UnknownProfileName
		}
		summaries = append(summaries, model.ConversationSummary{
			SenderID:      row.SenderID,
			Phone:         row.SenderID,
			ProfileName:   name,
			LastMessage:   row.LastMessage,
			LastTimestamp: row.LastTimestamp,
			MessageCount:  row.MessageCount,
		})
	}
	return summaries, nil
}

// ConversationDetail returns the full history for one sender, oldest first.
// The summary view prioritizes recency; the detail view prioritizes narrative
// order.
func (s *MongoStore) ConversationDetail(ctx context.Context, senderID string) (*model.Conversation, error) {
	cursor, err := s.chat().Find(ctx, bson.M{"user_id": senderID},
		options.Find().
			SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}}).
			SetProjection(bson.M{"_id": 0}))
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	messages := []model.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode conversation: %w", err)
	}
	if len(messages) == 0 {
		return nil, &registrystore.NotFoundError{Resource: "conversation", ID: senderID}
	}

	// Same convention as the summary view: the display name comes from the
	// most recent message that carries one.
	profileName := model.UnknownProfileName
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].ProfileName != "" {
			profileName = messages[i].ProfileName
			break
		}
	}

	return &model.Conversation{
		SenderID:      senderID,
		Phone:         senderID,
		ProfileName:   profileName,
		TotalMessages: len(messages),
		Messages:      messages,
	}, nil
}

// contactHistoryDefault caps how much history the roster detail view pulls
// when the caller does not ask for a specific window.
const contactHistoryDefault = 50

// ListContacts returns the full WhatsApp roster, one entry per sender with
// their newest message attached, most recently active first. Unlike the
// conversation summary this never truncates the roster.
func (s *MongoStore) ListContacts(ctx context.Context) ([]model.Contact, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "timestamp", Value: -1},
			{Key: "_id", Value: -1},
		}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$user_id"},
			{Key: "last_message", Value: bson.D{{Key: "$first", Value: "$text"}}},
			{Key: "last_timestamp", Value: bson.D{{Key: "$first", Value: "$timestamp"}}},
			{Key: "profile_name", Value: bson.D{{Key: "$first", Value: "$profile_name"}}},
			{Key: "message_count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "last_timestamp", Value: -1}}}},
	}

	cursor, err := s.chat().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	rows := []summaryRow{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode contacts: %w", err)
	}

	contacts := make([]model.Contact, 0, len(rows))
	for _, row := range rows {
		name := row.ProfileName
		if name == "" {
			name = model.UnknownProfileName
		}
		contacts = append(contacts, model.Contact{
			SenderID:        row.SenderID,
			Phone:           row.SenderID,
			ProfileName:     name,
			LastMessage:     row.LastMessage,
			LastInteraction: row.LastTimestamp,
			MessageCount:    row.MessageCount,
		})
	}
	return contacts, nil
}

// ContactHistory returns the most recent messages for one sender, newest
// first. TotalMessages counts only the returned window.
func (s *MongoStore) ContactHistory(ctx context.Context, senderID string, limit int) (*model.Conversation, error) {
	limit = s.clampLimit(limit, contactHistoryDefault)

	cursor, err := s.chat().Find(ctx, bson.M{"user_id": senderID},
		options.Find().
			SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
			SetLimit(int64(limit)).
			SetProjection(bson.M{"_id": 0}))
	if err != nil {
		return nil, fmt.Errorf("failed to load contact history: %w", err)
	}
	messages := []model.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode contact history: %w", err)
	}
	if len(messages) == 0 {
		return nil, &registrystore.NotFoundError{Resource: "contact", ID: senderID}
	}

	// Newest message first, so the first non-empty name wins.
	profileName := model.UnknownProfileName
	for _, msg := range messages {
		if msg.ProfileName != "" {
			profileName = msg.ProfileName
			break
		}
	}

	return &model.Conversation{
		SenderID:      senderID,
		Phone:         senderID,
		ProfileName:   profileName,
		TotalMessages: len(messages),
		Messages:      messages,
	}, nil
}

// DashboardStats reads each count independently; the snapshot carries no
// cross-count consistency guarantee under concurrent writes.
func (s *MongoStore) DashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	totalMessages, err := s.chat().EstimatedDocumentCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count messages: %w", err)
	}

	var senders []string
	if err := s.chat().Distinct(ctx, "user_id", bson.D{}).Decode(&senders); err != nil {
		return nil, fmt.Errorf("failed to count distinct senders: %w", err)
	}

	totalCompanies, err := s.companies().CountDocuments(ctx, bson.M{"active": true})
	if err != nil {
		return nil, fmt.Errorf("failed to count active companies: %w", err)
	}

	totalSystemUsers, err := s.users().CountDocuments(ctx, bson.M{"status": model.UserStatusActive})
	if err != nil {
		return nil, fmt.Errorf("failed to count active users: %w", err)
	}

	// Message timestamps are ISO-8601 strings, so the start-of-day boundary
	// compares lexically. The boundary is written without a zone suffix to
	// keep the comparison a pure prefix match.
	todayStart := time.Now().UTC().Truncate(24 * time.Hour).Format("2006-01-02T15:04:05")
	messagesToday, err := s.chat().CountDocuments(ctx, bson.M{
		"timestamp": bson.M{"$gte": todayStart},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count today's messages: %w", err)
	}

	return &model.DashboardStats{
		TotalMessages:    totalMessages,
		UniqueUsers:      int64(len(senders)),
		TotalCompanies:   totalCompanies,
		TotalSystemUsers: totalSystemUsers,
		MessagesToday:    messagesToday,
	}, nil
}

// mimeFilter maps a coarse category to its MIME type filter. The document
// category matches "application" anywhere in the type, the rest anchor at the
// start.
func mimeFilter(category model.MediaCategory) bson.M {
	switch category {
	case model.MediaCategoryImage:
		return bson.M{"mime_type": bson.M{"$regex": "^image"}}
	case model.MediaCategoryVideo:
		return bson.M{"mime_type": bson.M{"$regex": "^video"}}
	case model.MediaCategoryAudio:
		return bson.M{"mime_type": bson.M{"$regex": "^audio"}}
	case model.MediaCategoryDocument:
		return bson.M{"mime_type": bson.M{"$regex": "application"}}
	default:
		return bson.M{}
	}
}

func (s *MongoStore) ListMedia(ctx context.Context, category model.MediaCategory, limit int) ([]model.MediaRecord, error) {
	limit = s.clampLimit(limit, s.cfg.MediaListLimit)

	cursor, err := s.media().Find(ctx, mimeFilter(category),
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}}).
			SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	records := []model.MediaRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode media records: %w", err)
	}
	return records, nil
}

func (s *MongoStore) MediaStats(ctx context.Context) (*model.MediaStats, error) {
	total, err := s.media().EstimatedDocumentCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count media: %w", err)
	}

	stats := &model.MediaStats{Total: total}
	counts := []struct {
		category model.MediaCategory
		dest     *int64
	}{
		{model.MediaCategoryImage, &stats.Images},
		{model.MediaCategoryVideo, &stats.Videos},
		{model.MediaCategoryAudio, &stats.Audios},
		{model.MediaCategoryDocument, &stats.Documents},
	}
	for _, c := range counts {
		n, err := s.media().CountDocuments(ctx, mimeFilter(c.category))
		if err != nil {
			return nil, fmt.Errorf("failed to count %s media: %w", c.category, err)
		}
		*c.dest = n
	}
	return stats, nil
}
