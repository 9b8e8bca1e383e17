// internal/app/system/ratelimit/memory.go
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps failure timestamps in process memory. Expired entries are
// pruned lazily whenever their key is touched.
type MemoryStore struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	window   time.Duration
	max      int
	now      func() time.Time
}

// NewMemoryStore allows max failures per window.
func NewMemoryStore(window time.Duration, max int) *MemoryStore {
	if window <= 0 {
		window = DefaultWindow
	}
	if max <= 0 {
		max = DefaultMaxAttempts
	}
	return &MemoryStore{
		attempts: make(map[string][]time.Time),
		window:   window,
		max:      max,
		now:      time.Now,
	}
}

// prune drops timestamps outside the window. Caller holds mu.
func (s *MemoryStore) prune(key string) []time.Time {
	cutoff := s.now().Add(-s.window)
	kept := s.attempts[key][:0]
	for _, ts := range s.attempts[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) == 0 {
		delete(s.attempts, key)
		return nil
	}
	s.attempts[key] = kept
	return kept
}

func (s *MemoryStore) IsLimited(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prune(key)) >= s.max, nil
}

func (s *MemoryStore) RecordFailure(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[key] = append(s.prune(key), s.now())
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, key)
	return nil
}
