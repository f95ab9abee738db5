package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"time"
)

var (
	// ErrStoreRequired is returned when a limiter is built without a store.
	ErrStoreRequired = errors.New("ratelimit: store is required")
	// ErrInvalidLimit is returned for non-positive limits.
	ErrInvalidLimit = errors.New("ratelimit: limit must be positive")
	// ErrInvalidWindow is returned for non-positive windows.
	ErrInvalidWindow = errors.New("ratelimit: window must be positive")
	// ErrKeyRequired is returned when a request key is empty.
	ErrKeyRequired = errors.New("ratelimit: key is required")
)

// Result describes the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns how long the caller should wait before retrying.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Limiter checks whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
}

// KeyFunc derives the rate limit key from a request (typically client IP or
// API key). Returning an empty string skips limiting for that request.
type KeyFunc func(r *http.Request) string

// Store records request hits inside a sliding window.
type Store interface {
	// Record prunes entries older than the window, then records n hits at
	// now if doing so keeps the count within limit. It returns whether the
	// hits were recorded and the resulting in-window count.
	Record(ctx context.Context, key string, now time.Time, window time.Duration, limit, n int) (allowed bool, count int64, err error)

	// Reset clears all recorded hits for the key.
	Reset(ctx context.Context, key string) error
}
