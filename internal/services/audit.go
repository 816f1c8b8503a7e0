package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/tolutally/matchbox-web/internal/models"
	"github.com/tolutally/matchbox-web/internal/store"
	"github.com/tolutally/matchbox-web/internal/util"

	"github.com/google/uuid"
)

const (
	auditBatchSize    = 100
	auditFlushTimeout = 5 * time.Second
)

// Audit actors
const (
	ActorAdmin   = "admin"
	ActorVisitor = "visitor"
	ActorSystem  = "system"
)

// AuditLogEntry represents the data needed to create an audit log entry
type AuditLogEntry struct {
	EventType     models.EventType
	Severity      models.EventSeverity
	Actor         string
	ActorIP       string
	ResourceType  models.ResourceType
	ResourceID    string
	Action        string
	Details       models.AuditDetails
	Success       bool
	ErrorMessage  string
	UserAgent     string
	RequestPath   string
	RequestMethod string
}

// AuditService handles audit logging operations
type AuditService struct {
	store      *store.Store
	enabled    bool
	bufferSize int

	// Async logging channel
	logChan chan *models.AuditLog

	// Batch buffer
	batchBuffer []*models.AuditLog
	batchMutex  sync.Mutex
	batchTicker *time.Ticker

	// Graceful shutdown
	wg         sync.WaitGroup
	shutdownCh chan struct{}
	closeOnce  sync.Once
}

// NewAuditService creates a new audit service. A nil store disables it.
func NewAuditService(s *store.Store, enabled bool, bufferSize int) *AuditService {
	if bufferSize <= 0 {
		bufferSize = 1000 // Default buffer size
	}
	if s == nil {
		enabled = false
	}

	service := &AuditService{
		store:       s,
		enabled:     enabled,
		bufferSize:  bufferSize,
		logChan:     make(chan *models.AuditLog, bufferSize),
		batchBuffer: make([]*models.AuditLog, 0, auditBatchSize),
		batchTicker: time.NewTicker(1 * time.Second),
		shutdownCh:  make(chan struct{}),
	}

	if enabled {
		service.wg.Add(1)
		go service.worker()
		slog.Info("Audit service started", "buffer_size", bufferSize)
	} else {
		service.batchTicker.Stop()
		slog.Info("Audit service is disabled")
	}

	return service
}

// Enabled reports whether entries are being persisted.
func (s *AuditService) Enabled() bool {
	return s != nil && s.enabled
}

// worker is the background goroutine that processes audit logs
func (s *AuditService) worker() {
	defer s.wg.Done()

	for {
		select {
		case entry := <-s.logChan:
			s.addToBatch(entry)

		case <-s.batchTicker.C:
			s.flushBatch()

		case <-s.shutdownCh:
			// Drain whatever is still queued, then flush
			for {
				select {
				case entry := <-s.logChan:
					s.addToBatch(entry)
				default:
					s.flushBatch()
					return
				}
			}
		}
	}
}

// addToBatch adds a log entry to the batch buffer
func (s *AuditService) addToBatch(entry *models.AuditLog) {
	s.batchMutex.Lock()
	defer s.batchMutex.Unlock()

	s.batchBuffer = append(s.batchBuffer, entry)

	if len(s.batchBuffer) >= auditBatchSize {
		s.flushBatchUnsafe()
	}
}

// flushBatch flushes the batch buffer to the database (thread-safe)
func (s *AuditService) flushBatch() {
	s.batchMutex.Lock()
	defer s.batchMutex.Unlock()
	s.flushBatchUnsafe()
}

// flushBatchUnsafe flushes the batch buffer without locking (caller must hold lock)
func (s *AuditService) flushBatchUnsafe() {
	if len(s.batchBuffer) == 0 {
		return
	}

	toWrite := make([]*models.AuditLog, len(s.batchBuffer))
	copy(toWrite, s.batchBuffer)
	s.batchBuffer = s.batchBuffer[:0]

	ctx, cancel := context.WithTimeout(context.Background(), auditFlushTimeout)
	defer cancel()
	if err := s.store.CreateAuditLogBatch(ctx, toWrite); err != nil {
		slog.Error("Failed to write audit log batch", "count", len(toWrite), "error", err)
	}
}

// build fills request metadata from ctx and masks secrets.
func (s *AuditService) build(ctx context.Context, entry AuditLogEntry) *models.AuditLog {
	if entry.ActorIP == "" {
		entry.ActorIP = util.GetIPFromContext(ctx)
	}
	meta := util.GetRequestMeta(ctx)
	if entry.UserAgent == "" {
		entry.UserAgent = meta.UserAgent
	}
	if entry.RequestPath == "" {
		entry.RequestPath = meta.Path
	}
	if entry.RequestMethod == "" {
		entry.RequestMethod = meta.Method
	}
	if entry.Severity == "" {
		entry.Severity = models.SeverityInfo
	}
	if entry.ResourceType == models.ResourceDemoToken && entry.ResourceID != "" {
		entry.ResourceID = util.MaskToken(entry.ResourceID)
	}

	now := time.Now()
	return &models.AuditLog{
		ID:            uuid.New().String(),
		EventType:     entry.EventType,
		EventTime:     now,
		Severity:      entry.Severity,
		Actor:         entry.Actor,
		ActorIP:       entry.ActorIP,
		ResourceType:  entry.ResourceType,
		ResourceID:    entry.ResourceID,
		Action:        entry.Action,
		Details:       maskSensitiveDetails(entry.Details),
		Success:       entry.Success,
		ErrorMessage:  entry.ErrorMessage,
		UserAgent:     truncate(entry.UserAgent, 500),
		RequestPath:   truncate(entry.RequestPath, 500),
		RequestMethod: entry.RequestMethod,
		CreatedAt:     now,
	}
}

// Log records an audit log entry asynchronously. Safe on a nil receiver.
func (s *AuditService) Log(ctx context.Context, entry AuditLogEntry) {
	if !s.Enabled() {
		return
	}

	auditLog := s.build(ctx, entry)

	select {
	case s.logChan <- auditLog:
	default:
		slog.Warn("Audit log buffer full, dropping event",
			"event_type", entry.EventType,
			"action", entry.Action)
	}
}

// LogSync records an audit log entry synchronously (for critical events)
func (s *AuditService) LogSync(ctx context.Context, entry AuditLogEntry) error {
	if !s.Enabled() {
		return nil
	}
	return s.store.CreateAuditLog(ctx, s.build(ctx, entry))
}

// GetAuditLogs returns one page of the trail.
func (s *AuditService) GetAuditLogs(
	ctx context.Context,
	page store.Page,
	filter store.AuditFilter,
) ([]models.AuditLog, store.PageInfo, error) {
	if s == nil || s.store == nil {
		return nil, store.PageInfo{}, ErrAuditDisabled
	}
	return s.store.ListAuditLogs(ctx, page, filter)
}

// CleanupOldLogs deletes audit logs older than the retention period
func (s *AuditService) CleanupOldLogs(ctx context.Context, retention time.Duration) (int64, error) {
	if s == nil || s.store == nil {
		return 0, nil
	}
	return s.store.DeleteOldAuditLogs(ctx, time.Now().Add(-retention))
}

// GetAuditLogStats summarizes entries between start and end.
func (s *AuditService) GetAuditLogStats(ctx context.Context, start, end time.Time) (store.AuditStats, error) {
	if s == nil || s.store == nil {
		return store.AuditStats{}, ErrAuditDisabled
	}
	return s.store.AuditStats(ctx, start, end)
}

// Shutdown gracefully shuts down the audit service
func (s *AuditService) Shutdown(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}

	s.closeOnce.Do(func() {
		s.batchTicker.Stop()
		close(s.shutdownCh)
	})

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("Audit service shut down gracefully")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("audit service shutdown timeout: %w", ctx.Err())
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// maskSensitiveDetails masks sensitive information in audit log details
func maskSensitiveDetails(details models.AuditDetails) models.AuditDetails {
	if details == nil {
		return details
	}

	masked := make(models.AuditDetails, len(details))
	for key, value := range details {
		if isSensitiveField(key) {
			masked[key] = "***REDACTED***"
			continue
		}

		// Token ids stay recognizable by prefix only
		if isPartialMaskField(key) {
			switch v := value.(type) {
			case string:
				masked[key] = util.MaskToken(v)
				continue
			case []string:
				out := make([]string, len(v))
				for i, id := range v {
					out[i] = util.MaskToken(id)
				}
				masked[key] = out
				continue
			}
		}

		masked[key] = value
	}

	return masked
}

// isSensitiveField checks if a field should be completely masked
func isSensitiveField(key string) bool {
	key = strings.ToLower(key)
	for _, field := range []string{"password", "secret", "authorization"} {
		if strings.Contains(key, field) {
			return true
		}
	}
	return false
}

// isPartialMaskField checks if a field should be partially masked
func isPartialMaskField(key string) bool {
	key = strings.ToLower(key)
	for _, field := range []string{"token", "code"} {
		if strings.Contains(key, field) {
			return true
		}
	}
	return false
}
