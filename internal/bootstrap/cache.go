package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tolutally/matchbox-web/internal/cache"
	"github.com/tolutally/matchbox-web/internal/config"
	"github.com/tolutally/matchbox-web/internal/core"
	"github.com/tolutally/matchbox-web/internal/metrics"

	"github.com/redis/rueidis"
)

const (
	metricsCachePrefix = "demogate:metrics:"
	leadCachePrefix    = "demogate:leads:"
)

// initializeMetrics initializes Prometheus metrics
func initializeMetrics(cfg *config.Config) core.Recorder {
	m := metrics.Init(cfg.MetricsEnabled)
	if cfg.MetricsEnabled {
		slog.Info("Prometheus metrics initialized")
	} else {
		slog.Info("Metrics disabled (using noop implementation)")
	}
	return m
}

// initializeMetricsCache picks where gauge aggregates are cached. With a Redis
// token store the cache shares its client so every instance sees one scan per
// interval.
func initializeMetricsCache(
	ctx context.Context,
	cfg *config.Config,
	client rueidis.Client,
) (core.Cache[int64], error) {
	if !cfg.MetricsEnabled || !cfg.MetricsGaugeUpdateEnabled {
		return nil, nil
	}
	if client != nil {
		slog.Info("Metrics cache: redis (shared with token store)")
		return cache.NewRueidisCacheWithClient[int64](client, metricsCachePrefix), nil
	}
	slog.Info("Metrics cache: memory (single instance only)")
	return cache.NewMemoryCache[int64](), nil
}

// initializeLeadCache builds the lead dedup cache.
func initializeLeadCache(
	ctx context.Context,
	cfg *config.Config,
	client rueidis.Client,
) (core.Cache[bool], error) {
	if cfg.LeadCacheType != config.LeadCacheTypeRedis {
		slog.Info("Lead cache: memory (single instance only)")
		return cache.NewMemoryCache[bool](), nil
	}

	if client != nil {
		slog.Info("Lead cache: redis (shared with token store)")
		return cache.NewRueidisCacheWithClient[bool](client, leadCachePrefix), nil
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.RedisConnTimeout)
	defer cancel()

	c, err := cache.NewRueidisCache[bool](
		ctx,
		cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
		leadCachePrefix,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis lead cache: %w", err)
	}
	slog.Info("Lead cache: redis", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
	return c, nil
}
