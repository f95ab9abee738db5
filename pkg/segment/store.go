package segment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// SegmentsCollection holds the saved segment definitions.
const SegmentsCollection = "segments"

// Store persists segment definitions.
type Store struct {
	coll *mongo.Collection
}

// NewStore creates a Store over the given database.
func NewStore(db *mongo.Database) *Store {
	if db == nil {
		panic("segment: database cannot be nil")
	}
	return &Store{coll: db.Collection(SegmentsCollection)}
}

// EnsureIndexes creates the per-org unique name index and the staleness
// scan index. Call once at startup; index creation is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "orgId", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetName("org_name_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "cache.isStale", Value: 1}},
			Options: options.Index().SetName("status_stale"),
		},
	})
	return err
}

// Create inserts a new segment. ID, status, timestamps and the initial
// stale cache are assigned here; a name collision within the org returns
// ErrNameTaken.
func (s *Store) Create(ctx context.Context, seg *Segment) error {
	now := time.Now()
	seg.ID = uuid.NewString()
	if seg.Status == "" {
		seg.Status = StatusActive
	}
	if seg.Type == "" {
		seg.Type = TypeDynamic
	}
	if seg.RootOperator == "" {
		seg.RootOperator = OperatorAnd
	}
	seg.Cache = CacheInfo{IsStale: true}
	seg.CreatedAt = now
	seg.UpdatedAt = now

	if _, err := s.coll.InsertOne(ctx, seg); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrNameTaken
		}
		return fmt.Errorf("segment: create: %w", err)
	}
	return nil
}

// GetByID fetches a segment scoped to its organization. Soft-deleted
// segments behave as missing.
func (s *Store) GetByID(ctx context.Context, orgID, id string) (*Segment, error) {
	filter := bson.M{
		"_id":    id,
		"orgId":  orgID,
		"status": bson.M{"$ne": StatusDeleted},
	}
	var seg Segment
	if err := s.coll.FindOne(ctx, filter).Decode(&seg); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("segment: get: %w", err)
	}
	return &seg, nil
}

// List returns the organization's segments, newest first. An empty status
// lists everything except deleted.
func (s *Store) List(ctx context.Context, orgID string, status Status) ([]Segment, error) {
	filter := bson.M{"orgId": orgID}
	if status != "" {
		filter["status"] = status
	} else {
		filter["status"] = bson.M{"$ne": StatusDeleted}
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("segment: list: %w", err)
	}
	defer cur.Close(ctx)

	var segments []Segment
	if err := cur.All(ctx, &segments); err != nil {
		return nil, fmt.Errorf("segment: decode list: %w", err)
	}
	return segments, nil
}

// Update holds the mutable segment fields. Nil pointers and nil slices are
// left untouched.
type Update struct {
	Name            *string
	Status          *Status
	RootOperator    *BoolOperator
	ConditionGroups []ConditionGroup
	StaticMembers   *StaticMembers
	BaseFilter      *BaseFilter
}

// touchesMembership reports whether the update changes anything that can
// alter which contacts match the segment.
func (u Update) touchesMembership() bool {
	return u.ConditionGroups != nil || u.StaticMembers != nil || u.BaseFilter != nil || u.RootOperator != nil
}

// Update applies a partial update. Any change that can alter membership
// marks the cache stale in the same write, so readers never see a fresh
// cache over changed rules.
func (s *Store) Update(ctx context.Context, orgID, id string, u Update) (*Segment, error) {
	set := bson.M{"updatedAt": time.Now()}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Status != nil {
		set["status"] = *u.Status
	}
	if u.RootOperator != nil {
		set["rootOperator"] = *u.RootOperator
	}
	if u.ConditionGroups != nil {
		set["conditionGroups"] = u.ConditionGroups
	}
	if u.StaticMembers != nil {
		set["staticMembers"] = *u.StaticMembers
	}
	if u.BaseFilter != nil {
		set["baseFilter"] = *u.BaseFilter
	}
	if u.touchesMembership() {
		set["cache.isStale"] = true
	}

	filter := bson.M{
		"_id":    id,
		"orgId":  orgID,
		"status": bson.M{"$ne": StatusDeleted},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var seg Segment
	err := s.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&seg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("segment: update: %w", err)
	}
	return &seg, nil
}

// Delete soft-deletes a segment. The document stays for audit purposes but
// disappears from reads and the refresh cycle.
func (s *Store) Delete(ctx context.Context, orgID, id string) error {
	filter := bson.M{
		"_id":    id,
		"orgId":  orgID,
		"status": bson.M{"$ne": StatusDeleted},
	}
	update := bson.M{"$set": bson.M{
		"status":    StatusDeleted,
		"updatedAt": time.Now(),
	}}
	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("segment: delete: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateCache writes a freshly calculated cache in a single update.
func (s *Store) UpdateCache(ctx context.Context, id string, cache CacheInfo) error {
	update := bson.M{"$set": bson.M{"cache": cache}}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("segment: update cache: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkStale flags a segment for the next refresh cycle without touching
// its definition.
func (s *Store) MarkStale(ctx context.Context, id string) error {
	update := bson.M{"$set": bson.M{"cache.isStale": true}}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("segment: mark stale: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// FindStale returns active segments whose cache needs recalculating.
func (s *Store) FindStale(ctx context.Context, limit int64) ([]Segment, error) {
	filter := bson.M{
		"status":        StatusActive,
		"cache.isStale": true,
	}
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: 1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("segment: find stale: %w", err)
	}
	defer cur.Close(ctx)

	var segments []Segment
	if err := cur.All(ctx, &segments); err != nil {
		return nil, fmt.Errorf("segment: decode stale: %w", err)
	}
	return segments, nil
}
