package segment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// sampleSize is how many contact IDs a refresh stores as the cache preview.
const sampleSize = 10

// ContactSource is the contact-base surface the manager needs.
// *ContactStore satisfies it; tests substitute fakes.
type ContactSource interface {
	Count(ctx context.Context, filter bson.M) (int64, error)
	Find(ctx context.Context, filter bson.M, limit int64) ([]Contact, error)
	FindIDs(ctx context.Context, filter bson.M, limit int64) ([]string, error)
}

// DefinitionStore is the segment-store surface the manager needs.
type DefinitionStore interface {
	GetByID(ctx context.Context, orgID, id string) (*Segment, error)
	UpdateCache(ctx context.Context, id string, cache CacheInfo) error
	FindStale(ctx context.Context, limit int64) ([]Segment, error)
}

// Manager evaluates segments against the contact base and maintains their
// caches.
type Manager struct {
	store    DefinitionStore
	contacts ContactSource
	log      *slog.Logger
}

// NewManager wires a manager over the segment store and the contact base.
func NewManager(store DefinitionStore, contacts ContactSource, log *slog.Logger) *Manager {
	if store == nil {
		panic("segment: store cannot be nil")
	}
	if contacts == nil {
		panic("segment: contact source cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Manager{store: store, contacts: contacts, log: log}
}

// Count evaluates the segment live and returns the current cardinality
// without touching the cache.
func (m *Manager) Count(ctx context.Context, seg *Segment) (int64, error) {
	filter, err := BuildQuery(seg)
	if err != nil {
		return 0, err
	}
	return m.contacts.Count(ctx, filter)
}

// Preview returns up to limit contacts currently matching the segment.
func (m *Manager) Preview(ctx context.Context, seg *Segment, limit int64) ([]Contact, error) {
	filter, err := BuildQuery(seg)
	if err != nil {
		return nil, err
	}
	return m.contacts.Find(ctx, filter, limit)
}

// Refresh recalculates the segment's cardinality and sample, then writes
// the whole cache in one update so readers never observe a half-refreshed
// state.
func (m *Manager) Refresh(ctx context.Context, seg *Segment) (CacheInfo, error) {
	filter, err := BuildQuery(seg)
	if err != nil {
		return CacheInfo{}, err
	}
	count, err := m.contacts.Count(ctx, filter)
	if err != nil {
		return CacheInfo{}, err
	}
	samples, err := m.contacts.FindIDs(ctx, filter, sampleSize)
	if err != nil {
		return CacheInfo{}, err
	}
	cache := CacheInfo{
		ContactCount:     count,
		LastCalculatedAt: time.Now(),
		IsStale:          false,
		SampleIDs:        samples,
	}
	if err := m.store.UpdateCache(ctx, seg.ID, cache); err != nil {
		return CacheInfo{}, err
	}
	return cache, nil
}

// RefreshByID loads the segment and refreshes its cache.
func (m *Manager) RefreshByID(ctx context.Context, orgID, id string) (CacheInfo, error) {
	seg, err := m.store.GetByID(ctx, orgID, id)
	if err != nil {
		return CacheInfo{}, err
	}
	return m.Refresh(ctx, seg)
}

// RefreshStale recalculates all stale active segments, up to limit, and
// returns how many succeeded. Individual failures are logged and skipped so
// one broken definition cannot starve the rest of the cycle.
func (m *Manager) RefreshStale(ctx context.Context, limit int64) (int, error) {
	stale, err := m.store.FindStale(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("segment: list stale: %w", err)
	}
	refreshed := 0
	for i := range stale {
		if ctx.Err() != nil {
			return refreshed, ctx.Err()
		}
		if _, err := m.Refresh(ctx, &stale[i]); err != nil {
			m.log.ErrorContext(ctx, "segment refresh failed",
				slog.String("segment_id", stale[i].ID),
				slog.Any("error", err))
			continue
		}
		refreshed++
	}
	return refreshed, nil
}
