package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/tolutally/matchbox-web/internal/config"
	"github.com/tolutally/matchbox-web/internal/middleware"
	"github.com/tolutally/matchbox-web/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// rateLimitMiddlewares holds rate limiting middlewares for different endpoints
type rateLimitMiddlewares struct {
	validate gin.HandlerFunc
	admin    gin.HandlerFunc
	lead     gin.HandlerFunc
}

// setupRateLimiting configures rate limiting middlewares based on configuration
func setupRateLimiting(
	cfg *config.Config,
	auditService *services.AuditService,
	redisClient *redis.Client,
) (rateLimitMiddlewares, error) {
	if !cfg.EnableRateLimit {
		noOpMiddleware := func(c *gin.Context) { c.Next() }
		return rateLimitMiddlewares{
			validate: noOpMiddleware,
			admin:    noOpMiddleware,
			lead:     noOpMiddleware,
		}, nil
	}
	return createRateLimiters(cfg, auditService, redisClient)
}

// createRateLimiters creates rate limiting middlewares for all endpoints
func createRateLimiters(
	cfg *config.Config,
	auditService *services.AuditService,
	redisClient *redis.Client,
) (rateLimitMiddlewares, error) {
	storeType := middleware.RateLimitStoreType(cfg.RateLimitStore)
	if storeType == middleware.RateLimitStoreRedis {
		slog.Info("Rate limiting enabled (store: redis, shared across instances)")
	} else {
		slog.Info("Rate limiting enabled (store: memory, single instance only)")
	}

	var firstErr error
	createLimiter := func(requestsPerMinute int, endpoint string) gin.HandlerFunc {
		limiter, err := middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerMinute: requestsPerMinute,
			StoreType:         storeType,
			RedisClient:       redisClient,
			CleanupInterval:   cfg.RateLimitCleanupInterval,
			Endpoint:          endpoint,
			AuditService:      auditService,
		})
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to create rate limiter for %s: %w", endpoint, err)
		}
		return limiter
	}

	limiters := rateLimitMiddlewares{
		validate: createLimiter(cfg.ValidateRateLimit, "validate"),
		admin:    createLimiter(cfg.AdminRateLimit, "admin"),
		lead:     createLimiter(cfg.LeadRateLimit, "leads"),
	}
	if firstErr != nil {
		return rateLimitMiddlewares{}, firstErr
	}
	return limiters, nil
}
