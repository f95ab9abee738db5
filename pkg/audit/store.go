package audit

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CollectionName is the audit trail collection.
const CollectionName = "audit_logs"

// retentionSeconds enforces the 365-day retention window through a
// store-native TTL index on createdAt.
const retentionSeconds = 365 * 24 * 60 * 60

// Store persists audit records in MongoDB. Writes are best-effort: failures
// go to the diagnostic log and are never surfaced to callers, so a degraded
// audit backend cannot break the request path.
type Store struct {
	coll *mongo.Collection
	log  *slog.Logger
}

// NewStore creates a Store over the given database.
func NewStore(db *mongo.Database, log *slog.Logger) *Store {
	if db == nil {
		panic("audit: database cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{coll: db.Collection(CollectionName), log: log}
}

// EnsureIndexes creates the query indexes and the retention TTL index.
// Call once at startup; index creation is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("createdAt_desc"),
		},
		{
			Keys:    bson.D{{Key: "principal.orgId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("org_createdAt"),
		},
		{
			Keys:    bson.D{{Key: "principal.userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("user_createdAt"),
		},
		{
			Keys:    bson.D{{Key: "action", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("action_createdAt"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: 1}},
			Options: options.Index().SetName("retention_ttl").SetExpireAfterSeconds(retentionSeconds),
		},
	})
	return err
}

// Insert persists a record. It never returns an error: validation and
// persistence failures are logged to the diagnostic sink and the record is
// dropped. Retrying is deliberately left out — audit delivery is
// at-most-once.
func (s *Store) Insert(ctx context.Context, rec Record) {
	if err := rec.Validate(); err != nil {
		s.log.ErrorContext(ctx, "audit record rejected", slog.Any("error", err))
		return
	}
	if rec.CreatedAt.IsZero() {
		// Assigned at write time so createdAt follows wall-clock order of
		// actual persistence, not of record construction.
		rec.CreatedAt = time.Now()
	}
	if _, err := s.coll.InsertOne(ctx, rec); err != nil {
		s.log.ErrorContext(ctx, "audit record write failed",
			slog.String("action", string(rec.Action)),
			slog.Any("error", err),
		)
	}
}

// Criteria filters audit queries. Zero-valued fields are ignored.
type Criteria struct {
	OrgID     string
	UserID    string
	Action    Action
	Actions   []Action
	StartDate time.Time
	EndDate   time.Time
	Limit     int64
	Offset    int64
}

func (c Criteria) filter() bson.M {
	filter := bson.M{}
	if c.OrgID != "" {
		filter["principal.orgId"] = c.OrgID
	}
	if c.UserID != "" {
		filter["principal.userId"] = c.UserID
	}
	if c.Action != "" {
		filter["action"] = c.Action
	} else if len(c.Actions) > 0 {
		filter["action"] = bson.M{"$in": c.Actions}
	}

	created := bson.M{}
	if !c.StartDate.IsZero() {
		created["$gte"] = c.StartDate
	}
	if !c.EndDate.IsZero() {
		created["$lte"] = c.EndDate
	}
	if len(created) > 0 {
		filter["createdAt"] = created
	}
	return filter
}

// Query returns records matching the criteria, newest first.
func (s *Store) Query(ctx context.Context, c Criteria) ([]Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if c.Limit > 0 {
		opts.SetLimit(c.Limit)
	}
	if c.Offset > 0 {
		opts.SetSkip(c.Offset)
	}

	cursor, err := s.coll.Find(ctx, c.filter(), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := make([]Record, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Count returns the number of records matching the criteria.
func (s *Store) Count(ctx context.Context, c Criteria) (int64, error) {
	return s.coll.CountDocuments(ctx, c.filter())
}
