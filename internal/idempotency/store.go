// Package idempotency stores serialized responses under a client-supplied
// Idempotency-Key so that retries inside the window replay the first answer.
package idempotency

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL is how long a stored response can be replayed.
const DefaultTTL = 60 * time.Second

// Entry is a stored response.
type Entry struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

type Store interface {
	// Get returns the live entry for key. Expired entries are reported as missing.
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, e Entry, ttl time.Duration) error
}

// MemoryStore keeps entries in process memory. Expired entries are removed
// when they are looked up and by an amortized sweep on writes.
type MemoryStore struct {
	mu        sync.Mutex
	entries   map[string]*memoryEntry
	lastSweep time.Time
	now       func() time.Time
}

type memoryEntry struct {
	entry     Entry
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return Entry{}, false, nil
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return Entry{}, false, nil
	}
	return e.entry, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, e Entry, ttl time.Duration) error {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastSweep.IsZero() || now.Sub(s.lastSweep) > time.Minute {
		for k, v := range s.entries {
			if !now.Before(v.expiresAt) {
				delete(s.entries, k)
			}
		}
		s.lastSweep = now
	}

	s.entries[key] = &memoryEntry{
		entry:     Entry{Status: e.Status, Body: append([]byte(nil), e.Body...)},
		expiresAt: now.Add(ttl),
	}
	return nil
}

// Len is the number of stored entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
