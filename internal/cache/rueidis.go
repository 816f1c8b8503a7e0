package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/rueidis"
)

var _ Cache[struct{}] = (*RueidisCache[struct{}])(nil)

// RueidisCache stores JSON-encoded values under a key prefix in Redis, so
// lead fingerprints and token aggregates are shared between instances.
type RueidisCache[T any] struct {
	client rueidis.Client
	prefix string
	owned  bool
}

// NewRueidisCache dials its own connection; Close releases it.
func NewRueidisCache[T any](ctx context.Context, addr, password string, db int, prefix string) (*RueidisCache[T], error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{addr},
		Password:     password,
		SelectDB:     db,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}

	c := &RueidisCache[T]{client: client, prefix: prefix, owned: true}
	if err := c.Health(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return c, nil
}

// NewRueidisCacheWithClient shares client; Close leaves it open.
func NewRueidisCacheWithClient[T any](client rueidis.Client, prefix string) *RueidisCache[T] {
	return &RueidisCache[T]{client: client, prefix: prefix}
}

func (r *RueidisCache[T]) Get(ctx context.Context, key string) (T, error) {
	var v T
	raw, err := r.client.Do(ctx, r.client.B().Get().Key(r.prefix+key).Build()).ToString()
	switch {
	case rueidis.IsRedisNil(err):
		return v, ErrCacheMiss
	case err != nil:
		return v, unavailable(err)
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return v, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return v, nil
}

func (r *RueidisCache[T]) Set(ctx context.Context, key string, value T, ttl time.Duration) error {
	_, err := r.set(ctx, key, value, ttl, false)
	return err
}

// SetNX is SET NX EX; false means a live entry already holds key.
func (r *RueidisCache[T]) SetNX(ctx context.Context, key string, value T, ttl time.Duration) (bool, error) {
	return r.set(ctx, key, value, ttl, true)
}

func (r *RueidisCache[T]) set(ctx context.Context, key string, value T, ttl time.Duration, nx bool) (bool, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}

	b := r.client.B().Set().Key(r.prefix + key).Value(string(raw))
	var cmd rueidis.Completed
	if nx {
		cmd = b.Nx().ExSeconds(ttlSeconds(ttl)).Build()
	} else {
		cmd = b.ExSeconds(ttlSeconds(ttl)).Build()
	}

	err = r.client.Do(ctx, cmd).Error()
	switch {
	case err == nil:
		return true, nil
	case nx && rueidis.IsRedisNil(err):
		return false, nil
	default:
		return false, unavailable(err)
	}
}

func (r *RueidisCache[T]) Delete(ctx context.Context, key string) error {
	if err := r.client.Do(ctx, r.client.B().Del().Key(r.prefix+key).Build()).Error(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (r *RueidisCache[T]) Close() error {
	if r.owned {
		r.client.Close()
	}
	return nil
}

func (r *RueidisCache[T]) Health(ctx context.Context) error {
	if err := r.client.Do(ctx, r.client.B().Ping().Build()).Error(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (r *RueidisCache[T]) GetWithFetch(
	ctx context.Context,
	key string,
	ttl time.Duration,
	fetch func(ctx context.Context, key string) (T, error),
) (T, error) {
	return fetchThrough[T](ctx, r, key, ttl, fetch)
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
}

// ttlSeconds rounds up to whole seconds, minimum one.
func ttlSeconds(ttl time.Duration) int64 {
	return max(int64((ttl+time.Second-1)/time.Second), 1)
}
