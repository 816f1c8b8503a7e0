package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tolutally/matchbox-web/internal/core"
	"github.com/tolutally/matchbox-web/internal/services"

	"github.com/gin-gonic/gin"
)

// User-facing token messages
const (
	msgTokenRequired         = "Token required"
	msgTokenRejected         = "Invalid, used, or expired token"
	msgValidationFailed      = "Validation failed"
	msgStoreNotConfigured    = "Token store not configured"
	msgFailedToGenerate      = "Failed to generate tokens"
	msgFailedToList          = "Failed to list tokens"
	msgFailedToDelete        = "Failed to delete tokens"
	msgDeleteSelectorMissing = "Specify token, deleteAll, deleteUsed, or deleteExpired"
)

// TokenHandler serves the demo token API.
type TokenHandler struct {
	tokenService *services.DemoTokenService
	guard        adminGuard
}

func NewTokenHandler(
	ts *services.DemoTokenService,
	verifier core.SecretVerifier,
	auditService *services.AuditService,
	m core.Recorder,
) *TokenHandler {
	return &TokenHandler{
		tokenService: ts,
		guard: adminGuard{
			verifier:     verifier,
			auditService: auditService,
			metrics:      m,
		},
	}
}

type generateRequest struct {
	AdminPassword  string  `json:"adminPassword"`
	Count          FlexInt `json:"count"`
	ExpiresInHours FlexInt `json:"expiresInHours"`
	Note           string  `json:"note"`
}

type generateResponse struct {
	Success        bool     `json:"success"`
	Tokens         []string `json:"tokens"`
	ExpiresAt      string   `json:"expiresAt"`
	ExpiresInHours int      `json:"expiresInHours"`
}

// Generate godoc
//
//	@Summary		Generate demo tokens
//	@Description	Issue up to 20 one-time tokens sharing one expiry
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	generateResponse
//	@Failure		400	{object}	object{error=string}	"Token store not configured"
//	@Failure		401	{object}	object{error=string}	"Unauthorized"
//	@Failure		500	{object}	object{error=string}	"Failed to generate tokens"
//	@Router			/api/tokens/generate [post]
func (h *TokenHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidRequestBody})
		return
	}
	if !h.guard.authorize(c, "generate", req.AdminPassword) {
		return
	}

	res, err := h.tokenService.Generate(c, services.GenerateRequest{
		Count:          int(req.Count),
		ExpiresInHours: int(req.ExpiresInHours),
		Note:           req.Note,
	})
	switch {
	case err == nil:
	case errors.Is(err, services.ErrStoreNotConfigured):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgStoreNotConfigured})
		return
	default:
		slog.Error("Token generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgFailedToGenerate})
		return
	}

	c.JSON(http.StatusOK, generateResponse{
		Success:        true,
		Tokens:         res.Tokens,
		ExpiresAt:      formatTime(res.ExpiresAt),
		ExpiresInHours: res.ExpiresInHours,
	})
}

type validateRequest struct {
	Token string `json:"token"`
}

// Validate godoc
//
//	@Summary		Validate and consume a demo token
//	@Description	A token is accepted at most once
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	object{valid=bool}
//	@Failure		400	{object}	object{valid=bool,error=string}	"Token required"
//	@Failure		401	{object}	object{valid=bool,error=string}	"Invalid, used, or expired token"
//	@Failure		500	{object}	object{valid=bool,error=string}	"Validation failed"
//	@Router			/api/tokens/validate [post]
func (h *TokenHandler) Validate(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "error": msgTokenRequired})
		return
	}

	_, err := h.tokenService.Validate(c, req.Token)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"valid": true})
	case errors.Is(err, services.ErrTokenRequired):
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "error": msgTokenRequired})
	case services.IsValidationFailure(err):
		c.JSON(http.StatusUnauthorized, gin.H{"valid": false, "error": msgTokenRejected})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"valid": false, "error": msgValidationFailed})
	}
}

type adminRequest struct {
	AdminPassword string `json:"adminPassword"`
}

type listedToken struct {
	Token     string `json:"token"`
	Used      bool   `json:"used"`
	CreatedAt string `json:"createdAt"`
	ExpiresAt string `json:"expiresAt"`
	UsedAt    string `json:"usedAt,omitempty"`
	Note      string `json:"note,omitempty"`
	Status    string `json:"status"`
}

type listResponse struct {
	Success bool          `json:"success"`
	Tokens  []listedToken `json:"tokens"`
	Total   int           `json:"total"`
	Active  int           `json:"active"`
	Used    int           `json:"used"`
	Expired int           `json:"expired"`
	Warning string        `json:"warning,omitempty"`
}

// List godoc
//
//	@Summary		List demo tokens
//	@Description	Every live token with its status, newest first
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	listResponse
//	@Failure		401	{object}	object{error=string}	"Unauthorized"
//	@Failure		500	{object}	object{error=string}	"Failed to list tokens"
//	@Router			/api/tokens/list [post]
func (h *TokenHandler) List(c *gin.Context) {
	var req adminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidRequestBody})
		return
	}
	if !h.guard.authorize(c, "list", req.AdminPassword) {
		return
	}

	res, err := h.tokenService.List(c)
	if err != nil {
		slog.Error("Token listing failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgFailedToList})
		return
	}

	out := listResponse{
		Success: true,
		Tokens:  make([]listedToken, 0, len(res.Tokens)),
		Total:   res.Total,
		Active:  res.Active,
		Used:    res.Used,
		Expired: res.Expired,
		Warning: res.Warning,
	}
	for _, t := range res.Tokens {
		item := listedToken{
			Token:     t.ID,
			Used:      t.Used,
			CreatedAt: formatTime(t.CreatedAt),
			ExpiresAt: formatTime(t.ExpiresAt),
			Note:      t.Note,
			Status:    string(t.Status),
		}
		if t.UsedAt != nil {
			item.UsedAt = formatTime(*t.UsedAt)
		}
		out.Tokens = append(out.Tokens, item)
	}
	c.JSON(http.StatusOK, out)
}

type deleteRequest struct {
	AdminPassword string `json:"adminPassword"`
	Token         string `json:"token"`
	DeleteAll     bool   `json:"deleteAll"`
	DeleteUsed    bool   `json:"deleteUsed"`
	DeleteExpired bool   `json:"deleteExpired"`
}

// Delete godoc
//
//	@Summary		Delete demo tokens
//	@Description	deleteAll wins over deleteUsed/deleteExpired, which win over token
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	object{success=bool,deleted=int}
//	@Failure		400	{object}	object{error=string}	"No selector or store not configured"
//	@Failure		401	{object}	object{error=string}	"Unauthorized"
//	@Failure		500	{object}	object{error=string}	"Failed to delete tokens"
//	@Router			/api/tokens/delete [post]
func (h *TokenHandler) Delete(c *gin.Context) {
	var req deleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidRequestBody})
		return
	}
	if !h.guard.authorize(c, "delete", req.AdminPassword) {
		return
	}

	deleted, err := h.tokenService.Delete(c, services.DeleteSelector{
		Token:   req.Token,
		All:     req.DeleteAll,
		Used:    req.DeleteUsed,
		Expired: req.DeleteExpired,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true, "deleted": deleted})
	case errors.Is(err, services.ErrStoreNotConfigured):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgStoreNotConfigured})
	case errors.Is(err, services.ErrNoDeleteSelector):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgDeleteSelectorMissing})
	default:
		slog.Error("Token deletion failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgFailedToDelete})
	}
}
