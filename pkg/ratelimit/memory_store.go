package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sliding window state in process memory. Suitable for
// single-instance deployments and tests; multi-instance deployments should
// use RedisStore so all replicas share one window.
type MemoryStore struct {
	mu   sync.Mutex
	hits map[string][]time.Time
}

// NewMemoryStore creates an in-memory sliding window store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{hits: make(map[string][]time.Time)}
}

// Record implements Store.
func (s *MemoryStore) Record(_ context.Context, key string, now time.Time, window time.Duration, limit, n int) (bool, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-window)
	kept := s.hits[key][:0]
	for _, ts := range s.hits[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept)+n > limit {
		s.hits[key] = kept
		return false, int64(len(kept)), nil
	}

	for range n {
		kept = append(kept, now)
	}
	s.hits[key] = kept
	return true, int64(len(kept)), nil
}

// Reset implements Store.
func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hits, key)
	return nil
}
