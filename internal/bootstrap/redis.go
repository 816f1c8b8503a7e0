package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tolutally/matchbox-web/internal/config"
	"github.com/tolutally/matchbox-web/internal/core"
	"github.com/tolutally/matchbox-web/internal/middleware"
	"github.com/tolutally/matchbox-web/internal/tokenstore"

	"github.com/redis/go-redis/v9"
	"github.com/redis/rueidis"
)

// initializeTokenStore opens the configured token backend. Both return values
// are nil for TOKEN_STORE=none; the rueidis client is only set for redis.
func initializeTokenStore(
	ctx context.Context,
	cfg *config.Config,
	log *slog.Logger,
) (core.TokenStore, rueidis.Client, error) {
	switch cfg.TokenStore {
	case config.TokenStoreRedis:
		ctx, cancel := context.WithTimeout(ctx, cfg.RedisConnTimeout)
		defer cancel()

		s, err := tokenstore.NewRedisStore(ctx, tokenstore.RedisOptions{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.TokenKeyPrefix,
			Logger:    log,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize token store: %w", err)
		}
		slog.Info("Token store: redis", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		return s, s.Client(), nil

	case config.TokenStoreMemory:
		slog.Warn("Token store: memory (single instance only, lost on restart)")
		return tokenstore.NewMemoryStore(), nil, nil

	default:
		slog.Warn("Token store: none")
		return nil, nil, nil
	}
}

// initializeRateLimitRedisClient initializes the go-redis client for rate limiting.
// Returns nil if rate limiting is disabled or using memory store.
// ulule/limiter only speaks go-redis, so this client is separate from rueidis.
func initializeRateLimitRedisClient(
	ctx context.Context,
	cfg *config.Config,
) (*redis.Client, error) {
	if !cfg.EnableRateLimit {
		return nil, nil //nolint:nilnil // redis client not needed in this configuration
	}
	if cfg.RateLimitStore != string(middleware.RateLimitStoreRedis) {
		return nil, nil //nolint:nilnil // redis client not needed in this configuration
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(ctx, cfg.RedisConnTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr, err)
	}

	slog.Info("Rate limiting Redis client initialized", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
	return client, nil
}
