package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/heavensy/admin-service/internal/config"
	"github.com/heavensy/admin-service/internal/model"
	registrymigrate "github.com/heavensy/admin-service/internal/registry/migrate"
	registrystore "github.com/heavensy/admin-service/internal/registry/store"
	"github.com/heavensy/admin-service/internal/security"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	collCompanies = "companies"
	collUsers     = "users"
	collChat      = "chat"
	collMedia     = "media_records"
)

func init() {
	registrystore.Register(registrystore.Plugin{
		Name: "mongo",
		Loader: func(ctx context.Context) (registrystore.AdminStore, error) {
			cfg := config.FromContext(ctx)
			return Connect(ctx, cfg)
		},
	})

	registrymigrate.Register(registrymigrate.Plugin{Order: 100, Migrator: &mongoMigrator{}})
}

// ForceImport is a no-op variable that can be referenced to ensure this package's init() runs.
var ForceImport = 0

// Connect opens a MongoDB-backed AdminStore using the given config.
func Connect(ctx context.Context, cfg *config.Config) (*MongoStore, error) {
	opts := options.Client().ApplyURI(cfg.DBURL)
	if cfg.DBMaxOpenConns > 0 {
		opts.SetMaxPoolSize(uint64(cfg.DBMaxOpenConns))
	}
	if cfg.DBMaxIdleConns > 0 {
		opts.SetMinPoolSize(uint64(cfg.DBMaxIdleConns))
	}
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoStore{
		client: client,
		db:     client.Database(cfg.DBName),
		cfg:    cfg,
	}, nil
}

type mongoMigrator struct{}

func (m *mongoMigrator) Name() string { return "mongo-schema" }

func (m *mongoMigrator) Migrate(ctx context.Context) error {
	cfg := config.FromContext(ctx)
	if cfg == nil || cfg.DatastoreType != "mongo" {
		return nil
	}

	log.Info("Running migration", "name", m.Name())
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.DBURL))
	if err != nil {
		return fmt.Errorf("mongo migration: failed to connect: %w", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.DBName)

	// The unique indexes on the identity fields are the correctness mechanism
	// for at-most-one create per identity; everything else is query support.
	collections := map[string][]mongo.IndexModel{
		collCompanies: {
			{
				Keys:    bson.D{{Key: "company_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "active", Value: 1}}},
		},
		collUsers: {
			{
				Keys:    bson.D{{Key: "username", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		collChat: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		},
		collMedia: {
			{Keys: bson.D{{Key: "mime_type", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
	}

	for name, indexes := range collections {
		db.CreateCollection(ctx, name)
		if len(indexes) > 0 {
			if _, err := db.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
				return fmt.Errorf("mongo migration: failed to create indexes for %s: %w", name, err)
			}
		}
	}

	log.Info("MongoDB schema migration complete")
	return nil
}

// MongoStore implements AdminStore on a MongoDB database.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	cfg    *config.Config
}

func (s *MongoStore) companies() *mongo.Collection { return s.db.Collection(collCompanies) }
func (s *MongoStore) users() *mongo.Collection     { return s.db.Collection(collUsers) }
func (s *MongoStore) chat() *mongo.Collection      { return s.db.Collection(collChat) }
func (s *MongoStore) media() *mongo.Collection     { return s.db.Collection(collMedia) }

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func (s *MongoStore) clampLimit(requested, def int) int {
	return s.cfg.ClampLimit(requested, def)
}

// --- Companies ---

func (s *MongoStore) ListCompanies(ctx context.Context, activeOnly bool) ([]model.Company, error) {
	filter := bson.M{}
	if activeOnly {
		filter["active"] = true
	}
	cursor, err := s.companies().Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "company_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	companies := []model.Company{}
	if err := cursor.All(ctx, &companies); err != nil {
		return nil, fmt.Errorf("failed to decode companies: %w", err)
	}
	return companies, nil
}

func (s *MongoStore) GetCompany(ctx context.Context, companyID string) (*model.Company, error) {
	var company model.Company
	err := s.companies().FindOne(ctx, bson.M{"company_id": companyID}).Decode(&company)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &registrystore.NotFoundError{Resource: "company", ID: companyID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return &company, nil
}

func (s *MongoStore) CreateCompany(ctx context.Context, company model.Company) (*model.Company, error) {
	company.CompanyID = strings.TrimSpace(company.CompanyID)
	if company.CompanyID == "" {
		return nil, &registrystore.ValidationError{Field: "company_id", Message: "company_id is required"}
	}

	ts := now()
	company.Active = true
	company.CreatedAt = ts
	company.UpdatedAt = ts
	company.DeletedAt = nil

	_, err := s.companies().InsertOne(ctx, company)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, &registrystore.ConflictError{Resource: "company", ID: company.CompanyID}
		}
		return nil, fmt.Errorf("failed to create company: %w", err)
	}
	return &company, nil
}

func (s *MongoStore) UpdateCompany(ctx context.Context, companyID string, update registrystore.CompanyUpdate) (*model.Company, error) {
	set := bson.M{"updated_at": now()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Industry != nil {
		set["industry"] = *update.Industry
	}
	if update.ContactEmail != nil {
		set["contact_email"] = *update.ContactEmail
	}
	if update.Phone != nil {
		set["phone"] = *update.Phone
	}
	if update.Active != nil {
		set["active"] = *update.Active
	}
	if update.Metadata != nil {
		set["metadata"] = update.Metadata
	}

	ops := bson.M{"$set": set}
	if update.Active != nil && *update.Active {
		ops["$unset"] = bson.M{"deleted_at": ""}
	}

	result, err := s.companies().UpdateOne(ctx, bson.M{"company_id": companyID}, ops)
	if err != nil {
		return nil, fmt.Errorf("failed to update company: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, &registrystore.NotFoundError{Resource: "company", ID: companyID}
	}
	return s.GetCompany(ctx, companyID)
}

func (s *MongoStore) DeactivateCompany(ctx context.Context, companyID string) error {
	ts := now()
	result, err := s.companies().UpdateOne(ctx,
		bson.M{"company_id": companyID},
		bson.M{"$set": bson.M{"active": false, "deleted_at": ts, "updated_at": ts}},
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate company: %w", err)
	}
	if result.MatchedCount == 0 {
		return &registrystore.NotFoundError{Resource: "company", ID: companyID}
	}
	return nil
}

// --- System users ---

// userProjection strips the credential hash from every read path.
var userProjection = bson.M{"password": 0}

func (s *MongoStore) ListUsers(ctx context.Context, activeOnly bool) ([]model.SystemUser, error) {
	filter := bson.M{}
	if activeOnly {
		filter["status"] = model.UserStatusActive
	}
	cursor, err := s.users().Find(ctx, filter,
		options.Find().
			SetProjection(userProjection).
			SetSort(bson.D{{Key: "username", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := []model.SystemUser{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (s *MongoStore) GetUser(ctx context.Context, username string) (*model.SystemUser, error) {
	var user model.SystemUser
	err := s.users().FindOne(ctx, bson.M{"username": username},
		options.FindOne().SetProjection(userProjection)).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &registrystore.NotFoundError{Resource: "user", ID: username}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *MongoStore) CreateUser(ctx context.Context, req registrystore.CreateUserRequest) (*model.SystemUser, error) {
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		return nil, &registrystore.ValidationError{Field: "username", Message: "username is required"}
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, &registrystore.ValidationError{Field: "password", Message: "password is required"}
	}

	hash, err := security.HashPassword(req.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	ts := now()
	user := model.SystemUser{
		Username:      req.Username,
		Email:         req.Email,
		PasswordHash:  hash,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		FullName:      strings.TrimSpace(req.FirstName + " " + req.LastName),
		Phone:         req.Phone,
		Companies:     req.Companies,
		Status:        model.UserStatusActive,
		IsVerified:    true,
		EmailVerified: true,
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}

	if _, err := s.users().InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, &registrystore.ConflictError{Resource: "user", ID: req.Username}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user.PasswordHash = ""
	return &user, nil
}

// literal shields a client-supplied value from aggregation-expression
// parsing inside an update pipeline. Without it a string beginning with
// "$" (every bcrypt hash does) is read as a field path and the server
// rejects the write.
func literal(v any) bson.M { return bson.M{"$literal": v} }

func (s *MongoStore) UpdateUser(ctx context.Context, username string, update registrystore.UserUpdate) (*model.SystemUser, error) {
	set := bson.M{"updated_at": literal(now())}
	if update.Email != nil {
		set["email"] = literal(*update.Email)
	}
	if update.FirstName != nil {
		set["first_name"] = literal(*update.FirstName)
	}
	if update.LastName != nil {
		set["last_name"] = literal(*update.LastName)
	}
	if update.Phone != nil {
		set["phone"] = literal(*update.Phone)
	}
	if update.Companies != nil {
		set["companies"] = literal(*update.Companies)
	}
	if update.Status != nil {
		switch *update.Status {
		case model.UserStatusActive, model.UserStatusInactive:
			set["status"] = literal(*update.Status)
		default:
			return nil, &registrystore.ValidationError{Field: "status", Message: "status must be A or I"}
		}
	}
	// A blank password means "no change requested"; a non-blank one is hashed
	// before it enters the merge.
	if update.Password != nil && strings.TrimSpace(*update.Password) != "" {
		hash, err := security.HashPassword(*update.Password, s.cfg.BcryptCost)
		if err != nil {
			return nil, err
		}
		set["password"] = literal(hash)
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$set", Value: set}},
	}
	if update.FirstName != nil || update.LastName != nil {
		// full_name stays derived from the merged name fields without a
		// separate read, keeping the update a single atomic write.
		pipeline = append(pipeline, bson.D{{Key: "$set", Value: bson.M{
			"full_name": bson.M{"$trim": bson.M{"input": bson.M{"$concat": bson.A{
				bson.M{"$ifNull": bson.A{"$first_name", ""}},
				" ",
				bson.M{"$ifNull": bson.A{"$last_name", ""}},
			}}}},
		}}})
	}

	result, err := s.users().UpdateOne(ctx, bson.M{"username": username}, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, &registrystore.NotFoundError{Resource: "user", ID: username}
	}
	return s.GetUser(ctx, username)
}

func (s *MongoStore) DeactivateUser(ctx context.Context, username string) error {
	result, err := s.users().UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$set": bson.M{"status": model.UserStatusInactive, "updated_at": now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	if result.MatchedCount == 0 {
		return &registrystore.NotFoundError{Resource: "user", ID: username}
	}
	return nil
}

func (s *MongoStore) VerifyUserPassword(ctx context.Context, username, password string) (bool, error) {
	var doc struct {
		PasswordHash string `bson:"password"`
	}
	err := s.users().FindOne(ctx, bson.M{"username": username},
		options.FindOne().SetProjection(bson.M{"password": 1})).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, &registrystore.NotFoundError{Resource: "user", ID: username}
	}
	if err != nil {
		return false, fmt.Errorf("failed to read user credential: %w", err)
	}
	return security.CheckPassword(doc.PasswordHash, password), nil
}
