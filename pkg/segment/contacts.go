package segment

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ContactsCollection is the contact base this package evaluates segments
// against. The collection is owned by the contacts domain; this package
// only reads it.
const ContactsCollection = "contacts"

// ContactStore runs compiled segment queries against the contact base.
type ContactStore struct {
	coll *mongo.Collection
}

// NewContactStore creates a read-only view over the contacts collection.
func NewContactStore(db *mongo.Database) *ContactStore {
	if db == nil {
		panic("segment: database cannot be nil")
	}
	return &ContactStore{coll: db.Collection(ContactsCollection)}
}

// Count returns the number of contacts matching the filter.
func (cs *ContactStore) Count(ctx context.Context, filter bson.M) (int64, error) {
	n, err := cs.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("segment: count contacts: %w", err)
	}
	return n, nil
}

// Find returns up to limit matching contacts, newest first. A limit of zero
// or less means no limit.
func (cs *ContactStore) Find(ctx context.Context, filter bson.M, limit int64) ([]Contact, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}
	cur, err := cs.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("segment: find contacts: %w", err)
	}
	defer cur.Close(ctx)

	var contacts []Contact
	if err := cur.All(ctx, &contacts); err != nil {
		return nil, fmt.Errorf("segment: decode contacts: %w", err)
	}
	return contacts, nil
}

// FindIDs returns up to limit matching contact IDs using an _id-only
// projection, for membership snapshots and cache samples.
func (cs *ContactStore) FindIDs(ctx context.Context, filter bson.M, limit int64) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}
	cur, err := cs.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("segment: find contact ids: %w", err)
	}
	defer cur.Close(ctx)

	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("segment: decode contact ids: %w", err)
	}
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}
