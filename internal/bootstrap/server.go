package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/tolutally/matchbox-web/internal/config"
	"github.com/tolutally/matchbox-web/internal/core"
	"github.com/tolutally/matchbox-web/internal/metrics"
	"github.com/tolutally/matchbox-web/internal/services"
	"github.com/tolutally/matchbox-web/internal/store"

	"github.com/appleboy/graceful"
	"github.com/redis/go-redis/v9"
)

const auditCleanupInterval = 24 * time.Hour

// createHTTPServer creates the HTTP server instance
func createHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// addServerRunningJob adds the HTTP server running job
func addServerRunningJob(m *graceful.Manager, srv *http.Server) {
	m.AddRunningJob(func(ctx context.Context) error {
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Failed to start server", "error", err)
				os.Exit(1)
			}
		}()
		<-ctx.Done()
		return nil
	})
}

// addServerShutdownJob adds HTTP server shutdown handler
func addServerShutdownJob(m *graceful.Manager, cfg *config.Config, srv *http.Server) {
	m.AddShutdownJob(func() error {
		slog.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("Server forced to shutdown", "error", err)
			return err
		}

		slog.Info("Server exited")
		return nil
	})
}

// addRedisClientShutdownJob adds Redis client shutdown handler
func addRedisClientShutdownJob(m *graceful.Manager, redisClient *redis.Client) {
	if redisClient == nil {
		return
	}

	m.AddShutdownJob(func() error {
		if err := redisClient.Close(); err != nil {
			slog.Error("Error closing rate limit Redis client", "error", err)
			return err
		}
		slog.Info("Rate limit Redis connection closed")
		return nil
	})
}

// addTokenStoreShutdownJob closes the token store and its shared client
func addTokenStoreShutdownJob(m *graceful.Manager, ts core.TokenStore) {
	if ts == nil {
		return
	}

	m.AddShutdownJob(func() error {
		if err := ts.Close(); err != nil {
			slog.Error("Error closing token store", "store", ts.Name(), "error", err)
			return err
		}
		slog.Info("Token store closed", "store", ts.Name())
		return nil
	})
}

// addDatabaseShutdownJob closes the audit database
func addDatabaseShutdownJob(m *graceful.Manager, db *store.Store) {
	if db == nil {
		return
	}

	m.AddShutdownJob(func() error {
		if err := db.Close(); err != nil {
			slog.Error("Error closing audit database", "error", err)
			return err
		}
		return nil
	})
}

// addAuditServiceShutdownJob flushes buffered audit entries
func addAuditServiceShutdownJob(
	m *graceful.Manager,
	cfg *config.Config,
	auditService *services.AuditService,
) {
	m.AddShutdownJob(func() error {
		slog.Info("Shutting down audit service...")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.AuditShutdownTimeout)
		defer cancel()

		if err := auditService.Shutdown(ctx); err != nil {
			slog.Error("Error shutting down audit service", "error", err)
			return err
		}
		return nil
	})
}

// addAuditLogCleanupJob adds periodic audit log cleanup job
func addAuditLogCleanupJob(
	m *graceful.Manager,
	cfg *config.Config,
	auditService *services.AuditService,
) {
	if !auditService.Enabled() || cfg.AuditLogRetention <= 0 {
		return
	}

	m.AddRunningJob(func(ctx context.Context) error {
		ticker := time.NewTicker(auditCleanupInterval)
		defer ticker.Stop()

		// Run cleanup immediately on startup
		cleanupAuditLogs(ctx, auditService, cfg.AuditLogRetention)

		for {
			select {
			case <-ticker.C:
				cleanupAuditLogs(ctx, auditService, cfg.AuditLogRetention)
			case <-ctx.Done():
				return nil
			}
		}
	})
}

func cleanupAuditLogs(ctx context.Context, auditService *services.AuditService, retention time.Duration) {
	deleted, err := auditService.CleanupOldLogs(ctx, retention)
	switch {
	case err != nil:
		slog.Error("Failed to cleanup old audit logs", "error", err)
	case deleted > 0:
		slog.Info("Cleaned up old audit logs", "deleted", deleted)
	}
}

// addMetricsGaugeUpdateJob adds periodic metrics gauge update job
func addMetricsGaugeUpdateJob(
	m *graceful.Manager,
	cfg *config.Config,
	tokenService *services.DemoTokenService,
	recorder core.Recorder,
	metricsCache core.Cache[int64],
) {
	if !cfg.MetricsEnabled || !cfg.MetricsGaugeUpdateEnabled || metricsCache == nil {
		return
	}
	if !tokenService.StoreConfigured() {
		return
	}

	m.AddRunningJob(func(ctx context.Context) error {
		ticker := time.NewTicker(cfg.MetricsGaugeUpdateInterval)
		defer ticker.Stop()

		cacheWrapper := metrics.NewCacheWrapper(tokenService, metricsCache)

		// Update immediately on startup
		updateGaugeMetricsWithCache(ctx, cacheWrapper, recorder, cfg.MetricsGaugeUpdateInterval)

		for {
			select {
			case <-ticker.C:
				updateGaugeMetricsWithCache(ctx, cacheWrapper, recorder, cfg.MetricsGaugeUpdateInterval)
			case <-ctx.Done():
				return nil
			}
		}
	})
}

// addCacheCleanupJob closes a cache on shutdown
func addCacheCleanupJob[T any](m *graceful.Manager, name string, c core.Cache[T]) {
	if c == nil {
		return
	}

	m.AddShutdownJob(func() error {
		if err := c.Close(); err != nil {
			slog.Error("Error closing cache", "cache", name, "error", err)
		} else {
			slog.Info("Cache closed", "cache", name)
		}
		return nil
	})
}

// errorLogger handles rate-limited error logging
type errorLogger struct {
	mu              sync.Mutex
	lastErrorTimes  map[string]time.Time
	rateLimitWindow time.Duration
}

// newErrorLogger creates a new error logger with rate limiting
func newErrorLogger() *errorLogger {
	return &errorLogger{
		lastErrorTimes:  make(map[string]time.Time),
		rateLimitWindow: 5 * time.Minute,
	}
}

// logIfNeeded logs an error only if rate limit allows
func (e *errorLogger) logIfNeeded(operation string, err error) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	lastTime, exists := e.lastErrorTimes[operation]
	if exists && now.Sub(lastTime) < e.rateLimitWindow {
		return false
	}

	slog.Error("Token store query failed",
		"operation", operation,
		"error", err,
		"suppressed_for", e.rateLimitWindow,
	)
	e.lastErrorTimes[operation] = now
	return true
}

var gaugeErrorLogger = newErrorLogger()

// updateGaugeMetricsWithCache refreshes token gauges. The cache TTL matches
// the update interval so instances sharing a Redis cache scan once between them.
func updateGaugeMetricsWithCache(
	ctx context.Context,
	cacheWrapper *metrics.CacheWrapper,
	m core.Recorder,
	cacheTTL time.Duration,
) {
	stats, err := cacheWrapper.GetTokenStats(ctx, cacheTTL)
	if err != nil {
		m.RecordStoreError("token_stats")
		gaugeErrorLogger.logIfNeeded("token_stats", err)
		return
	}
	metrics.UpdateGauges(m, stats)
}
