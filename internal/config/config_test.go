package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		TokenStore:     TokenStoreMemory,
		RateLimitStore: RateLimitStoreMemory,
		LeadCacheType:  LeadCacheTypeMemory,
		LogFormat:      LogFormatText,
		DatabaseDriver: "sqlite",
		DatabaseDSN:    ":memory:",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:   "valid memory store",
			mutate: func(c *Config) {},
		},
		{
			name: "valid redis store",
			mutate: func(c *Config) {
				c.TokenStore = TokenStoreRedis
				c.RedisAddr = "localhost:6379"
			},
		},
		{
			name:   "token store disabled",
			mutate: func(c *Config) { c.TokenStore = TokenStoreNone },
		},
		{
			name:        "redis store without address",
			mutate:      func(c *Config) { c.TokenStore = TokenStoreRedis },
			expectError: true,
			errorMsg:    "REDIS_ADDR is required when TOKEN_STORE=redis",
		},
		{
			name:        "invalid token store - typo",
			mutate:      func(c *Config) { c.TokenStore = "reddis" },
			expectError: true,
			errorMsg:    `invalid TOKEN_STORE value: "reddis"`,
		},
		{
			name:        "invalid rate limit store - uppercase",
			mutate:      func(c *Config) { c.RateLimitStore = "MEMORY" },
			expectError: true,
			errorMsg:    `invalid RATE_LIMIT_STORE value: "MEMORY"`,
		},
		{
			name:        "invalid lead cache type",
			mutate:      func(c *Config) { c.LeadCacheType = "memcache" },
			expectError: true,
			errorMsg:    `invalid LEAD_CACHE_TYPE value: "memcache"`,
		},
		{
			name:        "invalid log format",
			mutate:      func(c *Config) { c.LogFormat = "xml" },
			expectError: true,
			errorMsg:    `invalid LOG_FORMAT value: "xml"`,
		},
		{
			name: "redis rate limit without address",
			mutate: func(c *Config) {
				c.EnableRateLimit = true
				c.RateLimitStore = RateLimitStoreRedis
			},
			expectError: true,
			errorMsg:    "REDIS_ADDR is required when RATE_LIMIT_STORE=redis",
		},
		{
			name: "unsupported audit driver",
			mutate: func(c *Config) {
				c.EnableAuditLogging = true
				c.DatabaseDriver = "mysql"
			},
			expectError: true,
			errorMsg:    `invalid DATABASE_DRIVER value: "mysql"`,
		},
		{
			name: "audit disabled ignores driver",
			mutate: func(c *Config) {
				c.DatabaseDriver = "mysql"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("TOKEN_STORE", "")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("TOKEN_RETENTION", "")

	cfg := Load()

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, TokenStoreNone, cfg.TokenStore)
	assert.False(t, cfg.TokenStoreConfigured())
	assert.Equal(t, "demo_token:", cfg.TokenKeyPrefix)
	assert.Equal(t, 6*time.Hour, cfg.TokenRetention)
	assert.False(t, cfg.EnableRateLimit)
	assert.Equal(t, LogFormatText, cfg.LogFormat)
	assert.Equal(t, 24*time.Hour, cfg.LeadDedupTTL)
	assert.Empty(t, cfg.PrivateDemoPassword)
}

func TestLoad_RedisAddrSelectsRedisStore(t *testing.T) {
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("TOKEN_STORE", "")

	cfg := Load()

	assert.Equal(t, TokenStoreRedis, cfg.TokenStore)
	assert.True(t, cfg.TokenStoreConfigured())
}

func TestLoad_ProductionDefaultsToJSONLogs(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOG_FORMAT", "")

	cfg := Load()

	assert.True(t, cfg.IsProduction)
	assert.Equal(t, LogFormatJSON, cfg.LogFormat)
}

func TestLoad_BypassEmails(t *testing.T) {
	t.Setenv("VAPI_BYPASS_EMAILS", " Owner@Example.com , ,sales@example.com")

	cfg := Load()

	assert.Equal(t, []string{"Owner@Example.com", "sales@example.com"}, cfg.BypassEmails)
}

func TestTimeoutConfigurationFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envKey   string
		envValue string
		getter   func(*Config) time.Duration
		expected time.Duration
	}{
		{
			name:     "REDIS_CONN_TIMEOUT",
			envKey:   "REDIS_CONN_TIMEOUT",
			envValue: "10s",
			getter:   func(c *Config) time.Duration { return c.RedisConnTimeout },
			expected: 10 * time.Second,
		},
		{
			name:     "FORM_BACKEND_TIMEOUT",
			envKey:   "FORM_BACKEND_TIMEOUT",
			envValue: "3s",
			getter:   func(c *Config) time.Duration { return c.FormBackendTimeout },
			expected: 3 * time.Second,
		},
		{
			name:     "invalid duration falls back to default",
			envKey:   "SERVER_SHUTDOWN_TIMEOUT",
			envValue: "soon",
			getter:   func(c *Config) time.Duration { return c.ServerShutdownTimeout },
			expected: 5 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envKey, tt.envValue)
			cfg := Load()
			assert.Equal(t, tt.expected, tt.getter(cfg))
		})
	}
}
