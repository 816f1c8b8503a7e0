package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthChecker is anything that can report its own health.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthHandler reports token store and audit database connectivity.
type HealthHandler struct {
	tokenStore HealthChecker
	storeName  string
	auditDB    HealthChecker // nil when audit logging is off
}

func NewHealthHandler(tokenStore HealthChecker, storeName string, auditDB HealthChecker) *HealthHandler {
	return &HealthHandler{tokenStore: tokenStore, storeName: storeName, auditDB: auditDB}
}

// Check godoc
//
//	@Summary		Health check
//	@Description	Check token store and audit database health
//	@Tags			System
//	@Produce		json
//	@Success		200	{object}	object{status=string,tokenStore=string,database=string}	"Service is healthy"
//	@Failure		503	{object}	object{status=string,tokenStore=string,database=string}	"Service is unhealthy"
//	@Router			/health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	healthy := true

	tokenStore := "not_configured"
	if h.storeName != "" && h.storeName != "none" {
		tokenStore = "connected"
		if err := h.tokenStore.Health(c); err != nil {
			tokenStore = "disconnected"
			healthy = false
		}
	}

	database := "disabled"
	if h.auditDB != nil {
		database = "connected"
		if err := h.auditDB.Health(c); err != nil {
			database = "disconnected"
			healthy = false
		}
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":       status,
		"tokenBackend": h.storeName,
		"tokenStore":   tokenStore,
		"database":     database,
	})
}
