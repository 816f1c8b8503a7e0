package bootstrap

import (
	"log/slog"
	"net/http"

	"github.com/tolutally/matchbox-web/internal/config"
	"github.com/tolutally/matchbox-web/internal/core"
	"github.com/tolutally/matchbox-web/internal/handlers"
	"github.com/tolutally/matchbox-web/internal/metrics"
	"github.com/tolutally/matchbox-web/internal/middleware"
	"github.com/tolutally/matchbox-web/internal/services"
	"github.com/tolutally/matchbox-web/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// setupRouter configures the Gin router with all routes and middleware
func setupRouter(
	cfg *config.Config,
	h handlerSet,
	m core.Recorder,
	auditService *services.AuditService,
	rateLimitRedisClient *redis.Client,
) (*gin.Engine, error) {
	setupGinMode(cfg)
	r := gin.New()

	// Every token endpoint is POST only; other methods get a JSON 405
	r.HandleMethodNotAllowed = true
	r.NoMethod(handlers.MethodNotAllowed)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	r.Use(metrics.HTTPMetricsMiddleware(m))
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(util.IPMiddleware())

	r.GET("/health", h.health.Check)

	setupMetricsEndpoint(r, cfg)

	rateLimiters, err := setupRateLimiting(cfg, auditService, rateLimitRedisClient)
	if err != nil {
		return nil, err
	}

	setupAllRoutes(r, h, rateLimiters)

	logServerStartup(cfg)

	return r, nil
}

// setupMetricsEndpoint configures the Prometheus metrics endpoint
func setupMetricsEndpoint(r *gin.Engine, cfg *config.Config) {
	switch {
	case !cfg.MetricsEnabled:
		slog.Info("Prometheus metrics disabled")
	case cfg.MetricsToken != "":
		slog.Info("Prometheus metrics enabled at /metrics with Bearer token authentication")
		r.GET(
			"/metrics",
			middleware.MetricsAuthMiddleware(cfg.MetricsToken),
			gin.WrapH(promhttp.Handler()),
		)
	default:
		slog.Warn("Prometheus metrics enabled at /metrics (no authentication)")
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// setupAllRoutes configures all application routes
func setupAllRoutes(r *gin.Engine, h handlerSet, rateLimiters rateLimitMiddlewares) {
	api := r.Group("/api")

	tokens := api.Group("/tokens")
	{
		tokens.POST("/generate", rateLimiters.admin, h.token.Generate)
		tokens.POST("/validate", rateLimiters.validate, h.token.Validate)
		tokens.POST("/list", rateLimiters.admin, h.token.List)
		tokens.POST("/delete", rateLimiters.admin, h.token.Delete)
	}

	api.POST("/leads", rateLimiters.lead, h.lead.Submit)

	audit := api.Group("/audit")
	{
		audit.POST("/list", rateLimiters.admin, h.audit.List)
		audit.POST("/stats", rateLimiters.admin, h.audit.Stats)
	}
}

// setupGinMode sets Gin mode based on environment configuration
func setupGinMode(cfg *config.Config) {
	gin.SetMode(ginModeMap[cfg.IsProduction])
	slog.Info("Gin mode", "mode", ginModeLogMessage[cfg.IsProduction])
}

var ginModeMap = map[bool]string{
	true:  gin.ReleaseMode,
	false: gin.DebugMode,
}

var ginModeLogMessage = map[bool]string{
	true:  "Release (production)",
	false: "Debug (development)",
}

// logServerStartup logs server startup information
func logServerStartup(cfg *config.Config) {
	slog.Info("Demo gate server starting",
		"addr", cfg.ServerAddr,
		"environment", cfg.Environment,
		"token_store", cfg.TokenStore,
		"audit", cfg.EnableAuditLogging,
		"rate_limit", cfg.EnableRateLimit,
	)
	slog.Info("Token API available", "url", cfg.BaseURL+"/api/tokens/validate")
}
