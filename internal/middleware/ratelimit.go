package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/tolutally/matchbox-web/internal/models"
	"github.com/tolutally/matchbox-web/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	limiterRedis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// RateLimitStoreType defines the type of rate limit store
type RateLimitStoreType string

const (
	// RateLimitStoreMemory uses in-memory storage (single instance only)
	RateLimitStoreMemory RateLimitStoreType = "memory"
	// RateLimitStoreRedis uses Redis storage shared by every instance
	RateLimitStoreRedis RateLimitStoreType = "redis"
)

const msgTooManyRequests = "Too many requests. Please try again later."

// RateLimitConfig configures one per-IP limiter.
type RateLimitConfig struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration // memory store only

	StoreType   RateLimitStoreType
	RedisClient *redis.Client // required for the redis store

	// Endpoint namespaces the counters and labels audit entries.
	Endpoint string

	AuditService *services.AuditService // optional
}

// NewRateLimiter creates a per-IP limiter. Over-limit requests get a JSON 429.
func NewRateLimiter(config RateLimitConfig) (gin.HandlerFunc, error) {
	rate := limiter.Rate{
		Period: 1 * time.Minute,
		Limit:  int64(config.RequestsPerMinute),
	}

	prefix := "ratelimit"
	if config.Endpoint != "" {
		prefix += ":" + config.Endpoint
	}
	opts := limiter.StoreOptions{
		Prefix:          prefix,
		CleanUpInterval: config.CleanupInterval,
	}

	var store limiter.Store
	switch config.StoreType {
	case RateLimitStoreRedis:
		if config.RedisClient == nil {
			return nil, fmt.Errorf("redis rate limit store for %q needs a redis client", config.Endpoint)
		}
		var err error
		store, err = limiterRedis.NewStoreWithOptions(config.RedisClient, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis store: %w", err)
		}
	default:
		if opts.CleanUpInterval <= 0 {
			opts.CleanUpInterval = limiter.DefaultCleanUpInterval
		}
		store = memory.NewStoreWithOptions(opts)
	}

	instance := limiter.New(store, rate)

	return mgin.NewMiddleware(instance, mgin.WithLimitReachedHandler(func(c *gin.Context) {
		config.AuditService.Log(c, services.AuditLogEntry{
			EventType:    models.EventRateLimitExceeded,
			Severity:     models.SeverityWarning,
			Actor:        services.ActorVisitor,
			ResourceType: models.ResourceEndpoint,
			ResourceID:   config.Endpoint,
			Action:       "Rate limit exceeded",
			Details: models.AuditDetails{
				"limit_per_minute": config.RequestsPerMinute,
			},
			Success: false,
		})
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": msgTooManyRequests})
	})), nil
}

// NewMemoryRateLimiter creates an in-memory rate limiter (single instance)
func NewMemoryRateLimiter(requestsPerMinute int) (gin.HandlerFunc, error) {
	return NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: requestsPerMinute,
		StoreType:         RateLimitStoreMemory,
		CleanupInterval:   5 * time.Minute,
	})
}
