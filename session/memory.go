package session

import (
	"context"
	"sync"
	"time"

	"github.com/ZaguanLabs/formlingo"
)

// entry holds an encoded snapshot with its timestamp.
type entry struct {
	data      []byte
	timestamp time.Time
}

// MemoryStore is a thread-safe in-memory Store with TTL support.
type MemoryStore struct {
	entries map[string]entry
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates a new in-memory store with the specified TTL.
// If ttl is 0 or negative, snapshots never expire.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl < 0 {
		ttl = 0 // No expiration
	}
	return &MemoryStore{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Load retrieves a snapshot.
func (s *MemoryStore) Load(ctx context.Context, id string) (formlingo.State, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok {
		return formlingo.State{}, false, nil
	}

	if s.expired(e, s.now()) {
		// Entry expired - clean it up
		s.mu.Lock()
		delete(s.entries, id)
		s.mu.Unlock()
		return formlingo.State{}, false, nil
	}

	state, err := decode(e.data)
	if err != nil {
		return formlingo.State{}, false, err
	}
	return state, true, nil
}

// Save stores a snapshot.
func (s *MemoryStore) Save(ctx context.Context, id string, state formlingo.State) error {
	data, err := encode(state)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[id] = entry{
		data:      data,
		timestamp: s.now(),
	}
	return nil
}

// Delete removes a snapshot.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// Len returns the number of snapshots in the store (including expired ones).
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep removes expired snapshots and returns how many were dropped.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) expired(e entry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.timestamp) > s.ttl
}

// Verify MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
