package bootstrap

import (
	"github.com/tolutally/matchbox-web/internal/auth"
	"github.com/tolutally/matchbox-web/internal/core"
	"github.com/tolutally/matchbox-web/internal/handlers"
	"github.com/tolutally/matchbox-web/internal/services"
	"github.com/tolutally/matchbox-web/internal/store"
)

// handlerSet holds all HTTP handlers
type handlerSet struct {
	token  *handlers.TokenHandler
	lead   *handlers.LeadHandler
	audit  *handlers.AuditHandler
	health *handlers.HealthHandler
}

// initializeHandlers creates all HTTP handlers
func initializeHandlers(
	db *store.Store,
	tokenService *services.DemoTokenService,
	leadService *services.LeadService,
	auditService *services.AuditService,
	authenticator *auth.AdminAuthenticator,
	m core.Recorder,
) handlerSet {
	// A nil *store.Store must not become a non-nil interface
	var auditDB handlers.HealthChecker
	if db != nil {
		auditDB = db
	}

	return handlerSet{
		token:  handlers.NewTokenHandler(tokenService, authenticator, auditService, m),
		lead:   handlers.NewLeadHandler(leadService),
		audit:  handlers.NewAuditHandler(auditService, authenticator, m),
		health: handlers.NewHealthHandler(tokenService, tokenService.StoreName(), auditDB),
	}
}
