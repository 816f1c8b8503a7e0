package core

import (
	"context"
	"time"
)

// Cache is a TTL key-value store. The lead service keeps submission
// fingerprints in a Cache[bool]; the metrics wrapper shares token counts
// through a Cache[int64]; the demo gate keeps its local dedup set in one.
type Cache[T any] interface {
	// Get reports a missing or expired key as cache.ErrCacheMiss.
	Get(ctx context.Context, key string) (T, error)
	Set(ctx context.Context, key string, value T, ttl time.Duration) error
	// SetNX stores value only when key holds no live entry, reporting
	// whether it did.
	SetNX(ctx context.Context, key string, value T, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error

	// GetWithFetch serves key, calling fetch and storing its result on a miss.
	GetWithFetch(
		ctx context.Context,
		key string,
		ttl time.Duration,
		fetch func(ctx context.Context, key string) (T, error),
	) (T, error)

	Health(ctx context.Context) error
	Close() error
}
