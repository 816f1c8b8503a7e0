package core

import (
	"context"
	"time"
)

// Recorder defines the interface for recording application metrics.
// Implementations include Metrics (Prometheus-based) and NoopMetrics (no-op).
type Recorder interface {
	// Token lifecycle
	RecordTokensGenerated(count int, success bool)
	RecordTokenValidation(result string, duration time.Duration)
	RecordTokensDeleted(selector string, count int)

	// Admin surface
	RecordAdminAuth(operation string, success bool)

	// Lead capture
	RecordLeadSubmission(result string)
	RecordFormBackendCall(success bool, duration time.Duration)

	// Gauge setters (for periodic updates)
	SetTokensCount(status string, count int)

	// Store operations
	RecordStoreError(operation string)
}

// TokenStats is the aggregate breakdown of live tokens by status.
type TokenStats struct {
	Total   int64
	Active  int64
	Used    int64
	Expired int64
}

// StatsSource computes token aggregates for the periodic gauge refresh.
type StatsSource interface {
	Stats(ctx context.Context) (TokenStats, error)
}
