package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Token store backends
const (
	TokenStoreRedis  = "redis"
	TokenStoreMemory = "memory"
	TokenStoreNone   = "none"
)

// Rate limit store backends
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

// Lead dedup cache backends
const (
	LeadCacheTypeMemory = "memory"
	LeadCacheTypeRedis  = "redis"
)

// Log formats
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

type Config struct {
	// Server settings
	ServerAddr   string
	BaseURL      string
	Environment  string
	IsProduction bool

	// Admin surface
	AdminPassword     string
	AdminPasswordHash string // bcrypt hash, takes precedence over AdminPassword

	// Static fallback password used when the token store is unavailable
	PrivateDemoPassword string

	// Token store
	TokenStore        string // "redis", "memory" or "none"
	TokenKeyPrefix    string
	TokenStoreTimeout time.Duration
	TokenRetention    time.Duration // how long a record outlives its expiry

	// Redis
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	RedisConnTimeout  time.Duration
	RedisCloseTimeout time.Duration

	// Rate limiting
	EnableRateLimit          bool
	RateLimitStore           string
	RateLimitCleanupInterval time.Duration
	ValidateRateLimit        int // requests per minute per IP
	AdminRateLimit           int
	LeadRateLimit            int

	// Metrics
	MetricsEnabled             bool
	MetricsToken               string
	MetricsGaugeUpdateEnabled  bool
	MetricsGaugeUpdateInterval time.Duration

	// Audit
	EnableAuditLogging   bool
	AuditLogBufferSize   int
	AuditLogRetention    time.Duration
	AuditShutdownTimeout time.Duration

	// Database (audit log)
	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseDSN    string
	DBInitTimeout  time.Duration

	// Logging
	LogLevel  string
	LogFormat string
	SentryDSN string

	// Lead capture
	FormBackendURL           string
	FormBackendTimeout       time.Duration
	FormBackendMaxRetries    int
	FormBackendRetryDelay    time.Duration
	FormBackendMaxRetryDelay time.Duration
	FormBackendAuthMode      string // Authentication mode: "none", "simple", or "hmac"
	FormBackendAuthSecret    string
	FormBackendAuthHeader    string
	LeadCacheType            string
	LeadDedupTTL             time.Duration

	// Demo client
	BypassEmails []string

	// Server lifecycle
	ServerShutdownTimeout time.Duration
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	driver := getEnv("DATABASE_DRIVER", "sqlite")
	var dsn string
	if driver == "sqlite" {
		dsn = getEnv("DATABASE_DSN", "demogate.db")
	} else {
		dsn = getEnv("DATABASE_DSN", "")
	}

	redisAddr := getEnv("REDIS_ADDR", "")
	defaultStore := TokenStoreNone
	if redisAddr != "" {
		defaultStore = TokenStoreRedis
	}

	environment := getEnv("ENVIRONMENT", "development")
	isProduction := environment == "production"
	defaultLogFormat := LogFormatText
	if isProduction {
		defaultLogFormat = LogFormatJSON
	}

	return &Config{
		ServerAddr:   getEnv("SERVER_ADDR", ":8080"),
		BaseURL:      getEnv("BASE_URL", "http://localhost:8080"),
		Environment:  environment,
		IsProduction: isProduction,

		AdminPassword:       getEnv("ADMIN_PASSWORD", ""),
		AdminPasswordHash:   getEnv("ADMIN_PASSWORD_HASH", ""),
		PrivateDemoPassword: getEnv("PRIVATE_DEMO_PASSWORD", ""),

		TokenStore:        getEnv("TOKEN_STORE", defaultStore),
		TokenKeyPrefix:    getEnv("TOKEN_KEY_PREFIX", "demo_token:"),
		TokenStoreTimeout: getEnvDuration("TOKEN_STORE_TIMEOUT", 3*time.Second),
		TokenRetention:    getEnvDuration("TOKEN_RETENTION", 6*time.Hour),

		RedisAddr:         redisAddr,
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		RedisConnTimeout:  getEnvDuration("REDIS_CONN_TIMEOUT", 5*time.Second),
		RedisCloseTimeout: getEnvDuration("REDIS_CLOSE_TIMEOUT", 5*time.Second),

		EnableRateLimit:          getEnvBool("ENABLE_RATE_LIMIT", false),
		RateLimitStore:           getEnv("RATE_LIMIT_STORE", RateLimitStoreMemory),
		RateLimitCleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		ValidateRateLimit:        getEnvInt("VALIDATE_RATE_LIMIT", 10),
		AdminRateLimit:           getEnvInt("ADMIN_RATE_LIMIT", 30),
		LeadRateLimit:            getEnvInt("LEAD_RATE_LIMIT", 5),

		MetricsEnabled:             getEnvBool("METRICS_ENABLED", false),
		MetricsToken:               getEnv("METRICS_TOKEN", ""),
		MetricsGaugeUpdateEnabled:  getEnvBool("METRICS_GAUGE_UPDATE_ENABLED", true),
		MetricsGaugeUpdateInterval: getEnvDuration("METRICS_GAUGE_UPDATE_INTERVAL", time.Minute),

		EnableAuditLogging:   getEnvBool("ENABLE_AUDIT_LOGGING", true),
		AuditLogBufferSize:   getEnvInt("AUDIT_LOG_BUFFER_SIZE", 1000),
		AuditLogRetention:    getEnvDuration("AUDIT_LOG_RETENTION", 90*24*time.Hour),
		AuditShutdownTimeout: getEnvDuration("AUDIT_SHUTDOWN_TIMEOUT", 10*time.Second),

		DatabaseDriver: driver,
		DatabaseDSN:    dsn,
		DBInitTimeout:  getEnvDuration("DB_INIT_TIMEOUT", 30*time.Second),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", defaultLogFormat),
		SentryDSN: getEnv("SENTRY_DSN", ""),

		FormBackendURL:           getEnv("FORM_BACKEND_URL", ""),
		FormBackendTimeout:       getEnvDuration("FORM_BACKEND_TIMEOUT", 10*time.Second),
		FormBackendMaxRetries:    getEnvInt("FORM_BACKEND_MAX_RETRIES", 2),
		FormBackendRetryDelay:    getEnvDuration("FORM_BACKEND_RETRY_DELAY", time.Second),
		FormBackendMaxRetryDelay: getEnvDuration("FORM_BACKEND_MAX_RETRY_DELAY", 5*time.Second),
		FormBackendAuthMode:      getEnv("FORM_BACKEND_AUTH_MODE", "none"),
		FormBackendAuthSecret:    getEnv("FORM_BACKEND_AUTH_SECRET", ""),
		FormBackendAuthHeader:    getEnv("FORM_BACKEND_AUTH_HEADER", "X-API-Secret"),
		LeadCacheType:            getEnv("LEAD_CACHE_TYPE", LeadCacheTypeMemory),
		LeadDedupTTL:             getEnvDuration("LEAD_DEDUP_TTL", 24*time.Hour),

		BypassEmails: getEnvSlice("VAPI_BYPASS_EMAILS", nil),

		ServerShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 5*time.Second),
	}
}

// Validate checks enumerated settings and cross-field requirements.
func (c *Config) Validate() error {
	switch c.TokenStore {
	case TokenStoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when TOKEN_STORE=%s", TokenStoreRedis)
		}
	case TokenStoreMemory, TokenStoreNone:
	default:
		return fmt.Errorf(
			"invalid TOKEN_STORE value: %q (must be %q, %q or %q)",
			c.TokenStore, TokenStoreRedis, TokenStoreMemory, TokenStoreNone,
		)
	}

	if c.RateLimitStore != RateLimitStoreMemory && c.RateLimitStore != RateLimitStoreRedis {
		return fmt.Errorf(
			"invalid RATE_LIMIT_STORE value: %q (must be %q or %q)",
			c.RateLimitStore, RateLimitStoreMemory, RateLimitStoreRedis,
		)
	}

	if c.LeadCacheType != LeadCacheTypeMemory && c.LeadCacheType != LeadCacheTypeRedis {
		return fmt.Errorf(
			"invalid LEAD_CACHE_TYPE value: %q (must be %q or %q)",
			c.LeadCacheType, LeadCacheTypeMemory, LeadCacheTypeRedis,
		)
	}

	if c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON {
		return fmt.Errorf("invalid LOG_FORMAT value: %q (must be %q or %q)",
			c.LogFormat, LogFormatText, LogFormatJSON)
	}

	if c.EnableRateLimit && c.RateLimitStore == RateLimitStoreRedis && c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required when RATE_LIMIT_STORE=%s", RateLimitStoreRedis)
	}
	if c.LeadCacheType == LeadCacheTypeRedis && c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required when LEAD_CACHE_TYPE=%s", LeadCacheTypeRedis)
	}

	if c.EnableAuditLogging {
		switch c.DatabaseDriver {
		case "sqlite", "postgres":
		default:
			return fmt.Errorf("invalid DATABASE_DRIVER value: %q (must be sqlite or postgres)",
				c.DatabaseDriver)
		}
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is required when DATABASE_DRIVER=%s", c.DatabaseDriver)
		}
	}

	return nil
}

// TokenStoreConfigured reports whether a token store backend is selected.
func (c *Config) TokenStoreConfigured() bool {
	return c.TokenStore == TokenStoreRedis || c.TokenStore == TokenStoreMemory
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		// Split by comma and trim spaces
		parts := []string{}
		for _, part := range splitAndTrim(value, ",") {
			if part != "" {
				parts = append(parts, part)
			}
		}
		if len(parts) > 0 {
			return parts
		}
	}
	return defaultValue
}

func splitAndTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
