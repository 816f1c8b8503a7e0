package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/tolutally/matchbox-web/internal/config"
	"github.com/tolutally/matchbox-web/internal/core"
	"github.com/tolutally/matchbox-web/internal/models"
	"github.com/tolutally/matchbox-web/internal/token"
	"github.com/tolutally/matchbox-web/internal/tokenstore"
	"github.com/tolutally/matchbox-web/internal/util"
)

// Generation bounds
const (
	MinTokenCount      = 1
	MaxTokenCount      = 20
	DefaultTokenCount  = 1
	MinExpiryHours     = 1
	MaxExpiryHours     = 720
	DefaultExpiryHours = 48

	// DefaultTokenRetention keeps expired records listable until swept.
	DefaultTokenRetention = 6 * time.Hour

	maxCreateAttempts = 3
)

// Validation results reported to metrics.
const (
	ValidationConsumed         = "consumed"
	ValidationInvalid          = "invalid"
	ValidationUsed             = "used"
	ValidationExpired          = "expired"
	ValidationFallback         = "fallback"
	ValidationFallbackRejected = "fallback_rejected"
	ValidationError            = "error"
)

// Warnings returned with an empty list.
const (
	WarningStoreNotConfigured = "Token store not configured"
	WarningStoreUnavailable   = "Token store unavailable"
)

// GenerateRequest carries admin input; zero values select defaults.
type GenerateRequest struct {
	Count          int
	ExpiresInHours int
	Note           string
}

// GenerateResult is the outcome of a successful generation.
type GenerateResult struct {
	Tokens         []string
	ExpiresAt      time.Time
	ExpiresInHours int
}

// ValidateResult describes an accepted token.
type ValidateResult struct {
	Token    *models.DemoToken // nil when accepted by the static fallback
	Fallback bool
}

// ListedToken pairs a record with its status at listing time.
type ListedToken struct {
	*models.DemoToken
	Status models.TokenStatus
}

// ListResult is a snapshot of every live record, newest first.
type ListResult struct {
	Tokens  []ListedToken
	Total   int
	Active  int
	Used    int
	Expired int
	Warning string
}

// DeleteSelector picks records to delete. All wins over Used/Expired, which
// win over Token.
type DeleteSelector struct {
	Token   string
	All     bool
	Used    bool
	Expired bool
}

// Name labels the selector for metrics and audit.
func (d DeleteSelector) Name() string {
	switch {
	case d.All:
		return "all"
	case d.Used && d.Expired:
		return "used_expired"
	case d.Used:
		return "used"
	case d.Expired:
		return "expired"
	case d.Token != "":
		return "single"
	default:
		return "none"
	}
}

// DemoTokenService owns every mutation of token records.
type DemoTokenService struct {
	store            core.TokenStore
	fallbackPassword string
	storeTimeout     time.Duration
	retention        time.Duration
	auditService     *AuditService
	metrics          core.Recorder
	now              func() time.Time
}

// NewDemoTokenService wires the lifecycle service. A nil store means the
// deployment has no token store configured.
func NewDemoTokenService(
	s core.TokenStore,
	cfg *config.Config,
	auditService *AuditService,
	m core.Recorder,
) *DemoTokenService {
	svc := &DemoTokenService{
		store:        s,
		auditService: auditService,
		metrics:      m,
		retention:    DefaultTokenRetention,
		now:          time.Now,
	}
	if cfg != nil {
		svc.fallbackPassword = cfg.PrivateDemoPassword
		svc.storeTimeout = cfg.TokenStoreTimeout
		if cfg.TokenRetention > 0 {
			svc.retention = cfg.TokenRetention
		}
	}
	return svc
}

// WithClock replaces the time source used for expiry decisions.
func (s *DemoTokenService) WithClock(now func() time.Time) *DemoTokenService {
	s.now = now
	return s
}

// StoreConfigured reports whether a token store is wired in.
func (s *DemoTokenService) StoreConfigured() bool {
	return s.store != nil
}

// StoreName returns the backend name or "none".
func (s *DemoTokenService) StoreName() string {
	if s.store == nil {
		return "none"
	}
	return s.store.Name()
}

// Health checks the token store. Unconfigured is healthy.
func (s *DemoTokenService) Health(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	return s.store.Health(ctx)
}

func (s *DemoTokenService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

func clamp(v, lo, hi, def int) int {
	if v == 0 {
		return def
	}
	return min(max(v, lo), hi)
}

// Generate issues req.Count tokens sharing one expiry instant.
func (s *DemoTokenService) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if s.store == nil {
		s.metrics.RecordTokensGenerated(0, false)
		return nil, ErrStoreNotConfigured
	}

	count := clamp(req.Count, MinTokenCount, MaxTokenCount, DefaultTokenCount)
	hours := clamp(req.ExpiresInHours, MinExpiryHours, MaxExpiryHours, DefaultExpiryHours)
	lifetime := time.Duration(hours) * time.Hour
	expiresAt := s.now().Add(lifetime)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	ids := make([]string, 0, count)
	for range count {
		id, err := s.createOne(ctx, expiresAt, lifetime+s.retention, req.Note)
		if err != nil {
			s.metrics.RecordTokensGenerated(len(ids), false)
			if tokenstore.IsUnavailable(err) {
				s.metrics.RecordStoreError("create")
				return nil, fmt.Errorf("%w: %v", ErrStoreNotConfigured, err)
			}
			return nil, err
		}
		ids = append(ids, id)
	}

	s.metrics.RecordTokensGenerated(len(ids), true)
	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventTokenGenerated,
		Severity:     models.SeverityInfo,
		Actor:        ActorAdmin,
		ResourceType: models.ResourceDemoToken,
		Action:       fmt.Sprintf("Generated %d demo token(s)", len(ids)),
		Details: models.AuditDetails{
			"count":            len(ids),
			"expires_in_hours": hours,
			"expires_at":       expiresAt.UTC().Format(time.RFC3339),
			"note":             req.Note,
			"tokens":           ids,
		},
		Success: true,
	})
	slog.Info("Demo tokens generated", "count", len(ids), "expires_in_hours", hours)

	return &GenerateResult{
		Tokens:         ids,
		ExpiresAt:      expiresAt,
		ExpiresInHours: hours,
	}, nil
}

// createOne persists a record, drawing a fresh id on collision. The store
// drops it after ttl, which runs past expiresAt by the retention grace.
func (s *DemoTokenService) createOne(
	ctx context.Context,
	expiresAt time.Time,
	ttl time.Duration,
	note string,
) (string, error) {
	var lastErr error
	for range maxCreateAttempts {
		id, err := token.Generate()
		if err != nil {
			return "", err
		}
		t := &models.DemoToken{
			ID:        id,
			CreatedAt: s.now(),
			ExpiresAt: expiresAt,
			Note:      note,
		}
		err = s.store.Create(ctx, t, ttl)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, tokenstore.ErrTokenExists) {
			return "", err
		}
		slog.Warn("Demo token id collision, retrying", "id", util.MaskToken(id))
		lastErr = err
	}
	return "", fmt.Errorf("failed to allocate unique token id: %w", lastErr)
}

// Validate consumes raw. Invalid, used and expired tokens return
// ErrInvalidToken, ErrTokenAlreadyUsed and ErrTokenExpired.
func (s *DemoTokenService) Validate(ctx context.Context, raw string) (*ValidateResult, error) {
	start := time.Now()
	if strings.TrimSpace(raw) == "" {
		return nil, ErrTokenRequired
	}
	id := token.Normalize(raw)

	if s.store == nil {
		return s.validateFallback(ctx, raw, id, start, "store not configured")
	}

	storeCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	t, err := s.store.Consume(storeCtx, id, s.now())
	switch {
	case err == nil:
		s.metrics.RecordTokenValidation(ValidationConsumed, time.Since(start))
		s.auditService.Log(ctx, AuditLogEntry{
			EventType:    models.EventTokenConsumed,
			Severity:     models.SeverityInfo,
			Actor:        ActorVisitor,
			ResourceType: models.ResourceDemoToken,
			ResourceID:   id,
			Action:       "Demo token consumed",
			Success:      true,
		})
		return &ValidateResult{Token: t}, nil

	case errors.Is(err, tokenstore.ErrTokenNotFound):
		return nil, s.rejectToken(ctx, id, ValidationInvalid, ErrInvalidToken, start)

	case errors.Is(err, tokenstore.ErrTokenAlreadyUsed):
		return nil, s.rejectToken(ctx, id, ValidationUsed, ErrTokenAlreadyUsed, start)

	case errors.Is(err, tokenstore.ErrTokenExpired):
		return nil, s.rejectToken(ctx, id, ValidationExpired, ErrTokenExpired, start)

	case tokenstore.IsUnavailable(err):
		s.metrics.RecordStoreError("consume")
		slog.Warn("Token store unreachable, using static fallback", "error", err)
		return s.validateFallback(ctx, raw, id, start, "store unavailable")

	default:
		s.metrics.RecordTokenValidation(ValidationError, time.Since(start))
		slog.Error("Token validation failed", "id", util.MaskToken(id), "error", err)
		return nil, fmt.Errorf("validate token: %w", err)
	}
}

func (s *DemoTokenService) rejectToken(
	ctx context.Context,
	id, result string,
	cause error,
	start time.Time,
) error {
	s.metrics.RecordTokenValidation(result, time.Since(start))
	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventTokenValidationFailed,
		Severity:     models.SeverityWarning,
		Actor:        ActorVisitor,
		ResourceType: models.ResourceDemoToken,
		ResourceID:   id,
		Action:       "Demo token rejected",
		Details:      models.AuditDetails{"reason": result},
		Success:      false,
		ErrorMessage: cause.Error(),
	})
	return cause
}

// validateFallback compares against the static password. An empty static
// password accepts nothing.
func (s *DemoTokenService) validateFallback(
	ctx context.Context,
	raw, id string,
	start time.Time,
	reason string,
) (*ValidateResult, error) {
	static := s.fallbackPassword
	accepted := static != "" &&
		(util.ConstantTimeEqual(id, strings.ToUpper(static)) || util.ConstantTimeEqual(raw, static))

	if !accepted {
		s.metrics.RecordTokenValidation(ValidationFallbackRejected, time.Since(start))
		s.auditService.Log(ctx, AuditLogEntry{
			EventType:    models.EventTokenValidationFailed,
			Severity:     models.SeverityWarning,
			Actor:        ActorVisitor,
			ResourceType: models.ResourceDemoToken,
			Action:       "Static fallback rejected",
			Details:      models.AuditDetails{"reason": reason},
			Success:      false,
			ErrorMessage: ErrInvalidToken.Error(),
		})
		return nil, ErrInvalidToken
	}

	s.metrics.RecordTokenValidation(ValidationFallback, time.Since(start))
	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventTokenFallbackAccepted,
		Severity:     models.SeverityWarning,
		Actor:        ActorVisitor,
		ResourceType: models.ResourceDemoToken,
		Action:       "Static fallback accepted",
		Details:      models.AuditDetails{"reason": reason},
		Success:      true,
	})
	return &ValidateResult{Fallback: true}, nil
}

// List returns every live record with its status, newest first. It never
// mutates the store.
func (s *DemoTokenService) List(ctx context.Context) (*ListResult, error) {
	if s.store == nil {
		return &ListResult{Tokens: []ListedToken{}, Warning: WarningStoreNotConfigured}, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	records, err := s.store.List(ctx)
	if err != nil {
		if tokenstore.IsUnavailable(err) {
			s.metrics.RecordStoreError("list")
			slog.Warn("Token store unreachable while listing", "error", err)
			return &ListResult{Tokens: []ListedToken{}, Warning: WarningStoreUnavailable}, nil
		}
		return nil, fmt.Errorf("list tokens: %w", err)
	}

	slices.SortFunc(records, func(a, b *models.DemoToken) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	now := s.now()
	res := &ListResult{Tokens: make([]ListedToken, 0, len(records)), Total: len(records)}
	for _, t := range records {
		status := t.Status(now)
		switch status {
		case models.TokenStatusActive:
			res.Active++
		case models.TokenStatusUsed:
			res.Used++
		case models.TokenStatusExpired:
			res.Expired++
		}
		res.Tokens = append(res.Tokens, ListedToken{DemoToken: t, Status: status})
	}
	return res, nil
}

// Stats summarizes the store for the periodic gauge refresh.
func (s *DemoTokenService) Stats(ctx context.Context) (core.TokenStats, error) {
	res, err := s.List(ctx)
	if err != nil {
		return core.TokenStats{}, err
	}
	return core.TokenStats{
		Total:   int64(res.Total),
		Active:  int64(res.Active),
		Used:    int64(res.Used),
		Expired: int64(res.Expired),
	}, nil
}

// Delete removes the records picked by sel and returns how many existed.
func (s *DemoTokenService) Delete(ctx context.Context, sel DeleteSelector) (int, error) {
	if s.store == nil {
		return 0, ErrStoreNotConfigured
	}
	if !sel.All && !sel.Used && !sel.Expired && strings.TrimSpace(sel.Token) == "" {
		return 0, ErrNoDeleteSelector
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var ids []string
	if sel.All || sel.Used || sel.Expired {
		records, err := s.store.List(ctx)
		if err != nil {
			s.metrics.RecordStoreError("list")
			return 0, fmt.Errorf("list tokens: %w", err)
		}
		now := s.now()
		for _, t := range records {
			if sel.All || matchesStatus(sel, t.Status(now)) {
				ids = append(ids, t.ID)
			}
		}
	} else {
		ids = []string{token.Normalize(sel.Token)}
	}

	deleted, err := s.store.Delete(ctx, ids...)
	if err != nil {
		s.metrics.RecordStoreError("delete")
		return 0, fmt.Errorf("delete tokens: %w", err)
	}

	s.metrics.RecordTokensDeleted(sel.Name(), deleted)
	entry := AuditLogEntry{
		EventType:    models.EventTokensDeleted,
		Severity:     models.SeverityInfo,
		Actor:        ActorAdmin,
		ResourceType: models.ResourceDemoToken,
		Action:       fmt.Sprintf("Deleted %d demo token(s)", deleted),
		Details:      models.AuditDetails{"selector": sel.Name(), "deleted": deleted},
		Success:      true,
	}
	if sel.Name() == "single" {
		entry.ResourceID = ids[0]
	}
	s.auditService.Log(ctx, entry)

	return deleted, nil
}

func matchesStatus(sel DeleteSelector, status models.TokenStatus) bool {
	return (sel.Used && status == models.TokenStatusUsed) ||
		(sel.Expired && status == models.TokenStatusExpired)
}
