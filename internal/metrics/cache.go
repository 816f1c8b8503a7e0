package metrics

import (
	"context"
	"time"

	"github.com/tolutally/matchbox-web/internal/core"
)

// Cache keys for token aggregates
const (
	KeyTokensTotal   = "tokens:total"
	KeyTokensActive  = "tokens:active"
	KeyTokensUsed    = "tokens:used"
	KeyTokensExpired = "tokens:expired"
)

// CacheWrapper provides a read-through cache for token aggregates so that
// several instances refreshing gauges share one store scan per TTL.
type CacheWrapper struct {
	source core.StatsSource
	cache  core.Cache[int64]
}

// NewCacheWrapper creates a new cache wrapper for metrics.
func NewCacheWrapper(source core.StatsSource, cache core.Cache[int64]) *CacheWrapper {
	return &CacheWrapper{
		source: source,
		cache:  cache,
	}
}

// GetTokenStats returns aggregates, scanning the store at most once per ttl.
// On a miss all four keys are refreshed from one scan.
func (m *CacheWrapper) GetTokenStats(ctx context.Context, ttl time.Duration) (core.TokenStats, error) {
	var fresh *core.TokenStats

	fetch := func(field func(core.TokenStats) int64) func(context.Context, string) (int64, error) {
		return func(ctx context.Context, key string) (int64, error) {
			if fresh == nil {
				stats, err := m.source.Stats(ctx)
				if err != nil {
					return 0, err
				}
				fresh = &stats
			}
			return field(*fresh), nil
		}
	}

	total, err := m.cache.GetWithFetch(ctx, KeyTokensTotal, ttl,
		fetch(func(s core.TokenStats) int64 { return s.Total }))
	if err != nil {
		return core.TokenStats{}, err
	}
	active, err := m.cache.GetWithFetch(ctx, KeyTokensActive, ttl,
		fetch(func(s core.TokenStats) int64 { return s.Active }))
	if err != nil {
		return core.TokenStats{}, err
	}
	used, err := m.cache.GetWithFetch(ctx, KeyTokensUsed, ttl,
		fetch(func(s core.TokenStats) int64 { return s.Used }))
	if err != nil {
		return core.TokenStats{}, err
	}
	expired, err := m.cache.GetWithFetch(ctx, KeyTokensExpired, ttl,
		fetch(func(s core.TokenStats) int64 { return s.Expired }))
	if err != nil {
		return core.TokenStats{}, err
	}

	return core.TokenStats{Total: total, Active: active, Used: used, Expired: expired}, nil
}

// UpdateGauges pushes aggregates into the recorder's gauges.
func UpdateGauges(m Recorder, stats core.TokenStats) {
	m.SetTokensCount("total", int(stats.Total))
	m.SetTokensCount("active", int(stats.Active))
	m.SetTokensCount("used", int(stats.Used))
	m.SetTokensCount("expired", int(stats.Expired))
}
