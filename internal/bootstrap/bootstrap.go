package bootstrap

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/tolutally/matchbox-web/internal/auth"
	"github.com/tolutally/matchbox-web/internal/config"
	"github.com/tolutally/matchbox-web/internal/core"
	"github.com/tolutally/matchbox-web/internal/logger"
	"github.com/tolutally/matchbox-web/internal/services"
	"github.com/tolutally/matchbox-web/internal/store"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/redis/rueidis"
)

// Application holds all initialized components
type Application struct {
	Config *config.Config
	Logger *slog.Logger

	// Core infrastructure
	DB                   *store.Store // nil when audit logging is off
	TokenStore           core.TokenStore
	RedisClient          rueidis.Client // shared by the token store and caches
	MetricsRecorder      core.Recorder
	MetricsCache         core.Cache[int64]
	LeadCache            core.Cache[bool]
	RateLimitRedisClient *redis.Client

	// Services
	AuditService  *services.AuditService
	TokenService  *services.DemoTokenService
	LeadService   *services.LeadService
	Authenticator *auth.AdminAuthenticator

	// HTTP
	HandlerSet handlerSet
	Router     *gin.Engine
	Server     *http.Server
}

// Run initializes and starts the application
func Run(cfg *config.Config) error {
	app := &Application{Config: cfg}

	// Phase 1: Logging and configuration
	app.Logger = logger.Init(logger.Options{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		SentryDSN: cfg.SentryDSN,
	})
	if err := validateAllConfiguration(cfg); err != nil {
		return err
	}

	ctx := context.Background()

	// Phase 2: Initialize infrastructure
	if err := app.initializeInfrastructure(ctx); err != nil {
		app.closeInfrastructure()
		return err
	}

	// Phase 3: Initialize business layer
	if err := app.initializeBusinessLayer(); err != nil {
		app.closeInfrastructure()
		return err
	}

	// Phase 4: Initialize HTTP layer
	if err := app.initializeHTTPLayer(); err != nil {
		app.closeInfrastructure()
		return err
	}

	// Phase 5: Start server with graceful shutdown
	app.startWithGracefulShutdown()

	return nil
}

// initializeInfrastructure sets up the audit database, token store, caches
// and the rate limit Redis client
func (app *Application) initializeInfrastructure(ctx context.Context) error {
	var err error

	// Audit database
	app.DB, err = initializeDatabase(ctx, app.Config)
	if err != nil {
		return err
	}

	// Token store
	app.TokenStore, app.RedisClient, err = initializeTokenStore(ctx, app.Config, app.Logger)
	if err != nil {
		return err
	}

	// Metrics
	app.MetricsRecorder = initializeMetrics(app.Config)
	app.MetricsCache, err = initializeMetricsCache(ctx, app.Config, app.RedisClient)
	if err != nil {
		return err
	}

	// Lead dedup cache
	app.LeadCache, err = initializeLeadCache(ctx, app.Config, app.RedisClient)
	if err != nil {
		return err
	}

	// Redis (for rate limiting)
	app.RateLimitRedisClient, err = initializeRateLimitRedisClient(ctx, app.Config)
	if err != nil {
		return err
	}

	return nil
}

// initializeBusinessLayer sets up services
func (app *Application) initializeBusinessLayer() error {
	// Audit service (required by other services)
	app.AuditService = services.NewAuditService(
		app.DB,
		app.Config.EnableAuditLogging,
		app.Config.AuditLogBufferSize,
	)

	var err error
	app.TokenService, app.LeadService, app.Authenticator, err = initializeServices(
		app.Config,
		app.TokenStore,
		app.LeadCache,
		app.AuditService,
		app.MetricsRecorder,
	)
	return err
}

// initializeHTTPLayer sets up handlers, router, and server
func (app *Application) initializeHTTPLayer() error {
	app.HandlerSet = initializeHandlers(
		app.DB,
		app.TokenService,
		app.LeadService,
		app.AuditService,
		app.Authenticator,
		app.MetricsRecorder,
	)

	var err error
	app.Router, err = setupRouter(
		app.Config,
		app.HandlerSet,
		app.MetricsRecorder,
		app.AuditService,
		app.RateLimitRedisClient,
	)
	if err != nil {
		return err
	}

	app.Server = createHTTPServer(app.Config, app.Router)
	return nil
}

// startWithGracefulShutdown starts the server and handles graceful shutdown
func (app *Application) startWithGracefulShutdown() {
	m := graceful.NewManager()

	addServerRunningJob(m, app.Server)
	addServerShutdownJob(m, app.Config, app.Server)
	addRedisClientShutdownJob(m, app.RateLimitRedisClient)
	addAuditServiceShutdownJob(m, app.Config, app.AuditService)
	addAuditLogCleanupJob(m, app.Config, app.AuditService)
	addMetricsGaugeUpdateJob(m, app.Config, app.TokenService, app.MetricsRecorder, app.MetricsCache)
	addCacheCleanupJob(m, "Metrics cache", app.MetricsCache)
	addCacheCleanupJob(m, "Lead cache", app.LeadCache)
	addTokenStoreShutdownJob(m, app.TokenStore)
	addDatabaseShutdownJob(m, app.DB)

	<-m.Done()
}

// closeInfrastructure releases whatever was opened before a failed startup.
func (app *Application) closeInfrastructure() {
	if app.RateLimitRedisClient != nil {
		_ = app.RateLimitRedisClient.Close()
	}
	if app.LeadCache != nil {
		_ = app.LeadCache.Close()
	}
	if app.MetricsCache != nil {
		_ = app.MetricsCache.Close()
	}
	if app.TokenStore != nil {
		_ = app.TokenStore.Close()
	}
	if app.DB != nil {
		_ = app.DB.Close()
	}
}
