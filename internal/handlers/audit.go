package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tolutally/matchbox-web/internal/core"
	"github.com/tolutally/matchbox-web/internal/models"
	"github.com/tolutally/matchbox-web/internal/services"
	"github.com/tolutally/matchbox-web/internal/store"
	"github.com/tolutally/matchbox-web/internal/token"

	"github.com/gin-gonic/gin"
)

const (
	defaultStatsWindow = 24 * time.Hour

	msgAuditDisabled = "Audit logging is disabled"
	msgAuditFailed   = "Failed to retrieve audit logs"
)

// AuditHandler exposes the audit trail to admins.
type AuditHandler struct {
	auditService *services.AuditService
	guard        adminGuard
}

func NewAuditHandler(
	auditService *services.AuditService,
	verifier core.SecretVerifier,
	m core.Recorder,
) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		guard: adminGuard{
			verifier:     verifier,
			auditService: auditService,
			metrics:      m,
		},
	}
}

type auditListRequest struct {
	AdminPassword string  `json:"adminPassword"`
	Page          FlexInt `json:"page"`
	PageSize      FlexInt `json:"pageSize"`
	EventType     string  `json:"eventType"`
	Severity      string  `json:"severity"`
	ResourceType  string  `json:"resourceType"`
	ActorIP       string  `json:"actorIp"`
	Success       *bool   `json:"success"`
	Search        string  `json:"search"`
	Token         string  `json:"token"`
	StartTime     string  `json:"startTime"`
	EndTime       string  `json:"endTime"`
}

// parseTime accepts RFC3339; anything else is treated as unset.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// List godoc
//
//	@Summary		List audit logs
//	@Description	Paginated audit trail, newest first
//	@Tags			Audit
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	object{success=bool,logs=[]models.AuditLog,pagination=store.PageInfo}
//	@Failure		401	{object}	object{error=string}	"Unauthorized"
//	@Failure		503	{object}	object{error=string}	"Audit logging is disabled"
//	@Router			/api/audit/list [post]
func (h *AuditHandler) List(c *gin.Context) {
	var req auditListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidRequestBody})
		return
	}
	if !h.guard.authorize(c, "audit_list", req.AdminPassword) {
		return
	}

	page := store.NewPage(int(req.Page), int(req.PageSize))
	filter := store.AuditFilter{
		EventType:    models.EventType(req.EventType),
		ResourceType: models.ResourceType(req.ResourceType),
		Severity:     models.EventSeverity(req.Severity),
		Success:      req.Success,
		ActorIP:      req.ActorIP,
		Search:       req.Search,
		Since:        parseTime(req.StartTime),
		Until:        parseTime(req.EndTime),
	}
	if req.Token != "" {
		filter.Token = token.Normalize(req.Token)
	}

	logs, pagination, err := h.auditService.GetAuditLogs(c, page, filter)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrAuditDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": msgAuditDisabled})
		return
	default:
		slog.Error("Audit log listing failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgAuditFailed})
		return
	}

	h.auditService.Log(c, services.AuditLogEntry{
		EventType:    models.EventAuditLogViewed,
		Actor:        services.ActorAdmin,
		ResourceType: models.ResourceAuditLog,
		Action:       "Audit logs viewed",
		Details:      models.AuditDetails{"page": page.Number, "event_type": req.EventType},
		Success:      true,
	})

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"logs":       logs,
		"pagination": pagination,
	})
}

// Stats godoc
//
//	@Summary		Audit log statistics
//	@Tags			Audit
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	object{success=bool,stats=store.AuditStats}
//	@Failure		401	{object}	object{error=string}	"Unauthorized"
//	@Failure		503	{object}	object{error=string}	"Audit logging is disabled"
//	@Router			/api/audit/stats [post]
func (h *AuditHandler) Stats(c *gin.Context) {
	var req auditListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidRequestBody})
		return
	}
	if !h.guard.authorize(c, "audit_stats", req.AdminPassword) {
		return
	}

	end := parseTime(req.EndTime)
	if end.IsZero() {
		end = time.Now()
	}
	start := parseTime(req.StartTime)
	if start.IsZero() {
		start = end.Add(-defaultStatsWindow)
	}

	stats, err := h.auditService.GetAuditLogStats(c, start, end)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
	case errors.Is(err, services.ErrAuditDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": msgAuditDisabled})
	default:
		slog.Error("Audit stats failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgAuditFailed})
	}
}
