package segment

import (
	"context"
	"log/slog"
	"time"
)

// Refresher options.
const (
	defaultRefreshInterval = 5 * time.Minute
	defaultRefreshBatch    = 100
)

// Refresher periodically recalculates stale segment caches in the
// background. It runs until its context is cancelled.
type Refresher struct {
	manager  *Manager
	interval time.Duration
	batch    int64
	log      *slog.Logger
}

// RefresherOption customizes a Refresher.
type RefresherOption func(*Refresher)

// WithInterval sets the cycle interval. Panics on non-positive values.
func WithInterval(d time.Duration) RefresherOption {
	if d <= 0 {
		panic("segment: refresh interval must be positive")
	}
	return func(r *Refresher) { r.interval = d }
}

// WithBatchSize caps how many stale segments one cycle handles.
func WithBatchSize(n int64) RefresherOption {
	if n <= 0 {
		panic("segment: refresh batch size must be positive")
	}
	return func(r *Refresher) { r.batch = n }
}

// NewRefresher creates a Refresher over the given manager.
func NewRefresher(manager *Manager, log *slog.Logger, opts ...RefresherOption) *Refresher {
	if manager == nil {
		panic("segment: manager cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	r := &Refresher{
		manager:  manager,
		interval: defaultRefreshInterval,
		batch:    defaultRefreshBatch,
		log:      log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run blocks, refreshing stale segments every interval until ctx is
// cancelled. It always returns ctx.Err(). Suitable for errgroup-style
// supervision.
func (r *Refresher) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := r.manager.RefreshStale(ctx, r.batch)
			if err != nil && ctx.Err() == nil {
				r.log.ErrorContext(ctx, "segment refresh cycle failed", slog.Any("error", err))
				continue
			}
			if n > 0 {
				r.log.InfoContext(ctx, "segment caches refreshed", slog.Int("count", n))
			}
		}
	}
}
