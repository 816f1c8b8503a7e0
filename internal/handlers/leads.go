package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/tolutally/matchbox-web/internal/services"
	"github.com/tolutally/matchbox-web/internal/validation"

	"github.com/gin-gonic/gin"
)

const (
	msgLeadDuplicate    = "You have already submitted this information."
	msgLeadUnavailable  = "Lead capture is not available right now."
	msgLeadSubmitFailed = "We couldn't send your request. Please try again."
)

// LeadHandler accepts contact details from the demo gate.
type LeadHandler struct {
	leadService *services.LeadService
}

func NewLeadHandler(ls *services.LeadService) *LeadHandler {
	return &LeadHandler{leadService: ls}
}

type leadRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	CountryCode string `json:"countryCode"`
	Scenario    string `json:"scenario"`
	Message     string `json:"message"`
	Source      string `json:"source"`
	// StartedAt is when the form was opened, in Unix milliseconds
	StartedAt int64  `json:"startedAt"`
	Website   string `json:"website"` // honeypot, hidden from people
}

// Submit godoc
//
//	@Summary		Submit a demo request
//	@Tags			Leads
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	object{success=bool,id=string,scenario=string}
//	@Failure		400	{object}	object{success=bool,field=string,error=string}
//	@Failure		409	{object}	object{success=bool,error=string}	"Duplicate submission"
//	@Failure		502	{object}	object{success=bool,error=string}	"Form backend failed"
//	@Failure		503	{object}	object{success=bool,error=string}	"Form backend not configured"
//	@Router			/api/leads [post]
func (h *LeadHandler) Submit(c *gin.Context) {
	var req leadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msgInvalidRequestBody})
		return
	}

	var startedAt time.Time
	if req.StartedAt > 0 {
		startedAt = time.UnixMilli(req.StartedAt)
	}

	lead, err := h.leadService.Submit(c, services.LeadRequest{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		CountryCode: req.CountryCode,
		Scenario:    req.Scenario,
		Message:     req.Message,
		Source:      req.Source,
		StartedAt:   startedAt,
		Honeypot:    req.Website,
	})

	var fe *validation.FieldError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"id":       lead.ID,
			"scenario": lead.Scenario,
		})
	case errors.As(err, &fe):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"field":   fe.Field,
			"error":   fe.Message,
		})
	case errors.Is(err, services.ErrLeadDuplicate):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": msgLeadDuplicate})
	case errors.Is(err, services.ErrFormBackendRejected):
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": msgLeadSubmitFailed})
	case errors.Is(err, services.ErrFormBackendUnavailable):
		if h.leadService.Configured() {
			// Configured but unreachable
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": msgLeadSubmitFailed})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": msgLeadUnavailable})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": msgLeadSubmitFailed})
	}
}
