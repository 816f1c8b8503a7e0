package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/tolutally/matchbox-web/internal/config"
)

// validateAllConfiguration validates all configuration settings
func validateAllConfiguration(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	warnAdminConfig(cfg)
	warnFallbackConfig(cfg)
	return nil
}

// warnAdminConfig flags deployments where every admin call will be refused.
func warnAdminConfig(cfg *config.Config) {
	if cfg.AdminPassword == "" && cfg.AdminPasswordHash == "" {
		slog.Warn("ADMIN_PASSWORD is not set; token administration is disabled")
	}
	if cfg.AdminPassword != "" && cfg.IsProduction && len(cfg.AdminPassword) < 12 {
		slog.Warn("ADMIN_PASSWORD is short; consider ADMIN_PASSWORD_HASH with a strong secret")
	}
}

// warnFallbackConfig reports how validate behaves when the store is missing.
func warnFallbackConfig(cfg *config.Config) {
	switch {
	case !cfg.TokenStoreConfigured() && cfg.PrivateDemoPassword == "":
		slog.Warn("No token store and no PRIVATE_DEMO_PASSWORD; every validation will be rejected")
	case !cfg.TokenStoreConfigured():
		slog.Warn("No token store configured; validation uses the static demo password only")
	}
}
