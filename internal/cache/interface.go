package cache

import (
	"context"
	"time"

	"github.com/tolutally/matchbox-web/internal/core"
)

// Cache is core.Cache, re-exported so bootstrap only imports this package.
type Cache[T any] = core.Cache[T]

// fetchThrough serves key from c, falling back to fetch and storing its
// result. A failed store is ignored; the fetched value is still returned.
// Concurrent misses each call fetch.
func fetchThrough[T any](
	ctx context.Context,
	c core.Cache[T],
	key string,
	ttl time.Duration,
	fetch func(ctx context.Context, key string) (T, error),
) (T, error) {
	if v, err := c.Get(ctx, key); err == nil {
		return v, nil
	}

	v, err := fetch(ctx, key)
	if err != nil {
		return v, err
	}
	_ = c.Set(ctx, key, v, ttl)
	return v, nil
}
