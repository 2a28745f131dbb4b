package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// MemoryStore is an in-process Store with passive expiry.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	now     func() time.Time
	logger  zerolog.Logger
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*Entry),
		now:     time.Now,
		logger:  log.With().Str("component", "memory-cache").Logger(),
	}
}

// SetClock replaces the time source (for testing).
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Get returns the entry under key, or ErrCacheMiss if absent or expired.
func (s *MemoryStore) Get(ctx context.Context, key ResultKey) (*Entry, error) {
	s.mu.RLock()
	entry, ok := s.entries[key.String()]
	now := s.now()
	s.mu.RUnlock()

	if !ok || entry.ExpiredAt(now) {
		CacheMisses.WithLabelValues("memory").Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues("memory").Inc()
	cp := *entry
	return &cp, nil
}

// Set stores or overwrites the entry under key.
func (s *MemoryStore) Set(ctx context.Context, key ResultKey, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	cp := *entry

	s.mu.Lock()
	defer s.mu.Unlock()

	if cp.ExpiredAt(s.now()) {
		return nil
	}
	s.entries[key.String()] = &cp
	CacheEntries.WithLabelValues("memory").Set(float64(len(s.entries)))

	return nil
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep drops expired entries and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for k, e := range s.entries {
		if e.ExpiredAt(now) {
			delete(s.entries, k)
			removed++
		}
	}
	CacheEntries.WithLabelValues("memory").Set(float64(len(s.entries)))

	return removed
}

// RunSweeper calls Sweep every interval until ctx is cancelled.
func (s *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug().Int("removed", n).Msg("Swept expired cache entries")
			}
		}
	}
}
