package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// MemoryStore is a process-local Store. Limits are not shared between
// instances; use the Redis store for multi-instance deployments.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*window
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*window),
		now:     time.Now,
	}
}

// WithClock replaces the time source, for tests
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

// Hit implements Store
func (s *MemoryStore) Hit(_ context.Context, key string, max int, win time.Duration) (Result, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || now.After(entry.resetAt) {
		entry = &window{count: 1, resetAt: now.Add(win)}
		s.entries[key] = entry
		return Result{Allowed: true, Limit: max, Remaining: max - 1, ResetAt: entry.resetAt}, nil
	}

	if entry.count >= max {
		return Result{Allowed: false, Limit: max, Remaining: 0, ResetAt: entry.resetAt}, nil
	}

	entry.count++
	return Result{Allowed: true, Limit: max, Remaining: max - entry.count, ResetAt: entry.resetAt}, nil
}

// Sweep drops every expired window and returns how many were removed
func (s *MemoryStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, entry := range s.entries {
		if now.After(entry.resetAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Start sweeps expired windows every interval until ctx is done
func (s *MemoryStore) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}
