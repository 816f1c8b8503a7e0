package handlers

import (
	"bytes"
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tolutally/matchbox-web/internal/core"
	"github.com/tolutally/matchbox-web/internal/models"
	"github.com/tolutally/matchbox-web/internal/services"

	"github.com/gin-gonic/gin"
)

// isoTime renders instants the way browsers print Date.toISOString().
const isoTime = "2006-01-02T15:04:05.000Z07:00"

const (
	msgMethodNotAllowed   = "Method not allowed"
	msgUnauthorized       = "Unauthorized"
	msgInvalidRequestBody = "Invalid request body"
)

// FlexInt decodes a JSON number or a numeric string. Anything else decodes
// to zero, which selects the server default.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(bytes.TrimSpace(b), `"`))
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		*f = 0
		return nil
	}
	v = math.Trunc(v)
	if v > math.MaxInt32 {
		v = math.MaxInt32
	} else if v < math.MinInt32 {
		v = math.MinInt32
	}
	*f = FlexInt(v)
	return nil
}

// MethodNotAllowed answers every non-POST call to an API route.
func MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"error": msgMethodNotAllowed})
}

// formatTime returns the ISO rendering of t in UTC, or "" for the zero time.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(isoTime)
}

// adminGuard checks the shared admin secret carried in a request body.
type adminGuard struct {
	verifier     core.SecretVerifier
	auditService *services.AuditService
	metrics      core.Recorder
}

// authorize writes a 401 and returns false when secret is rejected.
func (g adminGuard) authorize(c *gin.Context, operation, secret string) bool {
	err := g.verifier.Verify(c, secret)
	g.metrics.RecordAdminAuth(operation, err == nil)
	if err == nil {
		return true
	}

	g.logFailure(c, operation, err)
	c.JSON(http.StatusUnauthorized, gin.H{"error": msgUnauthorized})
	return false
}

func (g adminGuard) logFailure(ctx context.Context, operation string, err error) {
	g.auditService.Log(ctx, services.AuditLogEntry{
		EventType:    models.EventAdminAuthFailure,
		Severity:     models.SeverityWarning,
		Actor:        services.ActorAdmin,
		ResourceType: models.ResourceEndpoint,
		ResourceID:   operation,
		Action:       "Admin authentication failed",
		Details:      models.AuditDetails{"operation": operation},
		Success:      false,
		ErrorMessage: err.Error(),
	})
}
