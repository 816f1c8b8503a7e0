package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/tolutally/matchbox-web/internal/auth"
	"github.com/tolutally/matchbox-web/internal/client"
	"github.com/tolutally/matchbox-web/internal/config"
	"github.com/tolutally/matchbox-web/internal/core"
	"github.com/tolutally/matchbox-web/internal/services"
)

// initializeServices creates the token, lead and admin auth services
func initializeServices(
	cfg *config.Config,
	tokenStore core.TokenStore,
	leadCache core.Cache[bool],
	auditService *services.AuditService,
	m core.Recorder,
) (*services.DemoTokenService, *services.LeadService, *auth.AdminAuthenticator, error) {
	tokenService := services.NewDemoTokenService(tokenStore, cfg, auditService, m)

	forwarder, err := initializeFormBackend(cfg, m)
	if err != nil {
		return nil, nil, nil, err
	}
	leadService := services.NewLeadService(forwarder, leadCache, cfg.LeadDedupTTL, auditService, m)

	return tokenService, leadService, auth.NewAdminAuthenticator(cfg), nil
}

// initializeFormBackend builds the lead forwarder. Without FORM_BACKEND_URL
// the forwarder stays unconfigured and lead submissions get a 503.
func initializeFormBackend(cfg *config.Config, m core.Recorder) (*services.FormBackendForwarder, error) {
	if cfg.FormBackendURL == "" {
		slog.Warn("FORM_BACKEND_URL is not set; lead capture is disabled")
		return services.NewFormBackendForwarder("", nil, m), nil
	}

	retryClient, err := client.NewRetryClient(client.FormBackendOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create form backend client: %w", err)
	}
	slog.Info("Form backend configured",
		"auth_mode", cfg.FormBackendAuthMode,
		"max_retries", cfg.FormBackendMaxRetries,
	)
	return services.NewFormBackendForwarder(cfg.FormBackendURL, retryClient, m), nil
}
