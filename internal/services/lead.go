package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tolutally/matchbox-web/internal/core"
	"github.com/tolutally/matchbox-web/internal/models"
	"github.com/tolutally/matchbox-web/internal/util"
	"github.com/tolutally/matchbox-web/internal/validation"

	"github.com/google/uuid"
)

// Lead submission results reported to metrics.
const (
	LeadAccepted    = "accepted"
	LeadInvalid     = "invalid"
	LeadBot         = "bot"
	LeadDuplicate   = "duplicate"
	LeadUnavailable = "unavailable"
	LeadError       = "error"
)

const (
	defaultLeadDedupTTL = 24 * time.Hour
	leadDedupKeyPrefix  = "lead:"
	msgScenarioInvalid  = "Please choose a demo scenario."
)

// LeadRequest is the raw lead form as submitted by a visitor.
type LeadRequest struct {
	Name        string
	Email       string
	Phone       string
	CountryCode string
	Scenario    string
	Message     string
	Source      string
	StartedAt   time.Time
	Honeypot    string
}

// LeadService screens lead submissions and hands accepted ones to the
// form backend at most once per dedup window.
type LeadService struct {
	forwarder    core.LeadForwarder
	dedup        core.Cache[bool]
	dedupTTL     time.Duration
	auditService *AuditService
	metrics      core.Recorder
	now          func() time.Time
}

// NewLeadService wires the lead pipeline. dedup may be nil to disable
// duplicate detection.
func NewLeadService(
	forwarder core.LeadForwarder,
	dedup core.Cache[bool],
	dedupTTL time.Duration,
	auditService *AuditService,
	m core.Recorder,
) *LeadService {
	if dedupTTL <= 0 {
		dedupTTL = defaultLeadDedupTTL
	}
	return &LeadService{
		forwarder:    forwarder,
		dedup:        dedup,
		dedupTTL:     dedupTTL,
		auditService: auditService,
		metrics:      m,
		now:          time.Now,
	}
}

// WithClock overrides the time source.
func (s *LeadService) WithClock(now func() time.Time) *LeadService {
	s.now = now
	return s
}

// Configured reports whether accepted leads have somewhere to go.
func (s *LeadService) Configured() bool {
	return s.forwarder != nil && s.forwarder.Configured()
}

// Submit validates req, rejects repeats inside the dedup window and forwards
// the lead. Validation failures wrap ErrLeadInvalid and a
// *validation.FieldError carrying the user-facing message.
func (s *LeadService) Submit(ctx context.Context, req LeadRequest) (*models.Lead, error) {
	now := s.now()

	lead := &models.Lead{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.TrimSpace(req.Email),
		Phone:       strings.TrimSpace(req.Phone),
		CountryCode: strings.TrimSpace(req.CountryCode),
		Scenario:    models.Scenario(strings.ToLower(strings.TrimSpace(req.Scenario))),
		Message:     strings.TrimSpace(req.Message),
		Source:      strings.TrimSpace(req.Source),
		StartedAt:   req.StartedAt,
		SubmittedAt: now,
	}
	if lead.CountryCode == "" {
		lead.CountryCode = "+1"
	}
	if lead.Scenario == "" {
		lead.Scenario = models.ScenarioHealthcare
	}

	if result, err := s.screen(lead, req.Honeypot, now); err != nil {
		s.reject(ctx, lead, result, err)
		return nil, fmt.Errorf("%w: %w", ErrLeadInvalid, err)
	}

	if !s.Configured() {
		s.reject(ctx, lead, LeadUnavailable, ErrFormBackendUnavailable)
		return nil, ErrFormBackendUnavailable
	}

	key := leadDedupKeyPrefix + util.SHA256Hex(lead.DedupKey())
	if s.dedup != nil {
		stored, err := s.dedup.SetNX(ctx, key, true, s.dedupTTL)
		switch {
		case err != nil:
			slog.Warn("Lead dedup cache unavailable, accepting submission", "error", err)
		case !stored:
			s.reject(ctx, lead, LeadDuplicate, ErrLeadDuplicate)
			return nil, ErrLeadDuplicate
		}
	}

	if err := s.forwarder.Forward(ctx, lead); err != nil {
		// Let the visitor try again
		if s.dedup != nil {
			if delErr := s.dedup.Delete(ctx, key); delErr != nil {
				slog.Warn("Failed to release lead dedup key", "error", delErr)
			}
		}
		slog.Error("Failed to forward lead", "lead_id", lead.ID, "error", err)
		s.reject(ctx, lead, LeadError, err)
		return nil, err
	}

	s.metrics.RecordLeadSubmission(LeadAccepted)
	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventLeadSubmitted,
		Actor:        ActorVisitor,
		ResourceType: models.ResourceLead,
		ResourceID:   lead.ID,
		Action:       "Lead submitted",
		Details: models.AuditDetails{
			"scenario": string(lead.Scenario),
			"source":   lead.Source,
		},
		Success: true,
	})
	slog.Info("Lead submitted", "lead_id", lead.ID, "scenario", lead.Scenario)
	return lead, nil
}

// screen runs the anti-spam checks in the order a visitor would notice them.
func (s *LeadService) screen(lead *models.Lead, honeypot string, now time.Time) (string, error) {
	if strings.TrimSpace(honeypot) != "" {
		return LeadBot, &validation.FieldError{Field: "form", Message: validation.MsgHoneypot}
	}
	if lead.StartedAt.IsZero() || validation.IsBot(lead.StartedAt, now) {
		return LeadBot, &validation.FieldError{Field: "form", Message: validation.MsgTooFast}
	}
	if err := validation.Email(lead.Email); err != nil {
		return LeadInvalid, err
	}
	phone := ""
	if models.DigitsOnly(lead.Phone) != "" {
		phone = lead.FullPhone()
	}
	if err := validation.Phone(phone); err != nil {
		return LeadInvalid, err
	}
	if !lead.Scenario.Valid() {
		return LeadInvalid, &validation.FieldError{Field: "scenario", Message: msgScenarioInvalid}
	}
	return "", nil
}

func (s *LeadService) reject(ctx context.Context, lead *models.Lead, result string, err error) {
	s.metrics.RecordLeadSubmission(result)

	severity := models.SeverityInfo
	if result == LeadError || result == LeadUnavailable {
		severity = models.SeverityError
	}
	reason := err.Error()
	var fe *validation.FieldError
	if errors.As(err, &fe) {
		reason = fe.Field + ": " + fe.Message
	}

	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventLeadRejected,
		Severity:     severity,
		Actor:        ActorVisitor,
		ResourceType: models.ResourceLead,
		ResourceID:   lead.ID,
		Action:       "Lead rejected: " + result,
		Details: models.AuditDetails{
			"scenario": string(lead.Scenario),
			"result":   result,
		},
		Success:      false,
		ErrorMessage: reason,
	})
}
