package tokenstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tolutally/matchbox-web/internal/core"
	"github.com/tolutally/matchbox-web/internal/models"
	"github.com/tolutally/matchbox-web/internal/token"
)

// Compile-time interface check.
var _ core.TokenStore = (*MemoryStore)(nil)

type memoryEntry struct {
	value    []byte
	deadline time.Time
}

// MemoryStore keeps encoded records in process memory with lazy TTL eviction.
// Suitable for single-instance deployments and tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty store using the wall clock for TTLs.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock creates an empty store whose TTLs follow now.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     now,
	}
}

// lookup returns a live entry; caller must hold mu.
func (s *MemoryStore) lookup(id string) (memoryEntry, bool) {
	e, ok := s.entries[id]
	if !ok {
		return memoryEntry{}, false
	}
	if s.now().After(e.deadline) {
		delete(s.entries, id)
		return memoryEntry{}, false
	}
	return e, true
}

// Create stores t unless the id is already live.
func (s *MemoryStore) Create(ctx context.Context, t *models.DemoToken, ttl time.Duration) error {
	raw, err := token.Encode(t)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lookup(t.ID); ok {
		return fmt.Errorf("%w: %s", ErrTokenExists, t.ID)
	}
	s.entries[t.ID] = memoryEntry{value: raw, deadline: s.now().Add(ttl)}
	return nil
}

// Get loads one record.
func (s *MemoryStore) Get(ctx context.Context, id string) (*models.DemoToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(id)
	if !ok {
		return nil, ErrTokenNotFound
	}
	return token.Decode(id, e.value)
}

// Consume checks and marks the record used while holding the lock.
func (s *MemoryStore) Consume(
	ctx context.Context,
	id string,
	now time.Time,
) (*models.DemoToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(id)
	if !ok {
		return nil, ErrTokenNotFound
	}

	t, err := token.Decode(id, e.value)
	if err != nil {
		return nil, err
	}
	if t.Used {
		return t, ErrTokenAlreadyUsed
	}
	if t.IsExpired(now) {
		return t, ErrTokenExpired
	}

	t.MarkUsed(now)
	raw, err := token.Encode(t)
	if err != nil {
		return nil, err
	}
	// Deadline is kept as-is, mirroring KEEPTTL
	s.entries[id] = memoryEntry{value: raw, deadline: e.deadline}
	return t, nil
}

// List decodes every live record.
func (s *MemoryStore) List(ctx context.Context) ([]*models.DemoToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.DemoToken, 0, len(s.entries))
	for id := range s.entries {
		e, ok := s.lookup(id)
		if !ok {
			continue
		}
		t, err := token.Decode(id, e.value)
		if err != nil {
			slog.Warn("Skipping malformed token record", "id", id, "error", err)
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// Delete removes ids and counts the ones that were live.
func (s *MemoryStore) Delete(ctx context.Context, ids ...string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for _, id := range ids {
		if _, ok := s.lookup(id); ok {
			delete(s.entries, id)
			deleted++
		}
	}
	return deleted, nil
}

// Health always succeeds for the memory store.
func (s *MemoryStore) Health(ctx context.Context) error {
	return nil
}

// Close drops every record.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]memoryEntry)
	return nil
}

// Name identifies the backend in logs and health output.
func (s *MemoryStore) Name() string {
	return "memory"
}
