package cache

import (
	"context"
	"sync"
	"time"

	"github.com/tolutally/matchbox-web/internal/core"
)

// sweepEvery is the number of writes between scans for expired entries.
const sweepEvery = 256

var _ core.Cache[struct{}] = (*MemoryCache[struct{}])(nil)

type entry[T any] struct {
	value    T
	deadline time.Time
}

func (e entry[T]) live(now time.Time) bool {
	return !now.After(e.deadline)
}

// MemoryCache keeps entries in process memory. Lead fingerprints and token
// aggregates are only shared within one instance.
type MemoryCache[T any] struct {
	mu      sync.RWMutex
	entries map[string]entry[T]
	writes  int
	now     func() time.Time
}

// NewMemoryCache returns an empty cache.
func NewMemoryCache[T any]() *MemoryCache[T] {
	return &MemoryCache[T]{
		entries: make(map[string]entry[T]),
		now:     time.Now,
	}
}

func (m *MemoryCache[T]) Get(_ context.Context, key string) (T, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || !e.live(m.now()) {
		var zero T
		return zero, ErrCacheMiss
	}
	return e.value, nil
}

func (m *MemoryCache[T]) Set(_ context.Context, key string, value T, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.put(now, key, value, ttl)
	return nil
}

// SetNX reports false while a live entry holds key.
func (m *MemoryCache[T]) SetNX(_ context.Context, key string, value T, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if e, ok := m.entries[key]; ok && e.live(now) {
		return false, nil
	}
	m.put(now, key, value, ttl)
	return true, nil
}

func (m *MemoryCache[T]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Len counts live entries.
func (m *MemoryCache[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now()
	n := 0
	for _, e := range m.entries {
		if e.live(now) {
			n++
		}
	}
	return n
}

// Close drops every entry; the cache stays usable.
func (m *MemoryCache[T]) Close() error {
	m.mu.Lock()
	m.entries = make(map[string]entry[T])
	m.writes = 0
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache[T]) Health(context.Context) error {
	return nil
}

func (m *MemoryCache[T]) GetWithFetch(
	ctx context.Context,
	key string,
	ttl time.Duration,
	fetch func(ctx context.Context, key string) (T, error),
) (T, error) {
	return fetchThrough[T](ctx, m, key, ttl, fetch)
}

// put must be called with mu held.
func (m *MemoryCache[T]) put(now time.Time, key string, value T, ttl time.Duration) {
	m.entries[key] = entry[T]{value: value, deadline: now.Add(ttl)}

	m.writes++
	if m.writes < sweepEvery {
		return
	}
	m.writes = 0
	for k, e := range m.entries {
		if !e.live(now) {
			delete(m.entries, k)
		}
	}
}
