package metrics

import "time"

// NoopMetrics is a no-operation implementation of Recorder
// All methods are empty and do nothing, providing zero overhead when metrics are disabled
type NoopMetrics struct{}

// Ensure NoopMetrics implements Recorder interface at compile time
var _ Recorder = (*NoopMetrics)(nil)

// NewNoopMetrics creates a new no-operation metrics recorder
func NewNoopMetrics() Recorder {
	return &NoopMetrics{}
}

func (n *NoopMetrics) RecordTokensGenerated(count int, success bool)               {}
func (n *NoopMetrics) RecordTokenValidation(result string, duration time.Duration) {}
func (n *NoopMetrics) RecordTokensDeleted(selector string, count int)              {}
func (n *NoopMetrics) RecordAdminAuth(operation string, success bool)              {}
func (n *NoopMetrics) RecordLeadSubmission(result string)                          {}
func (n *NoopMetrics) RecordFormBackendCall(success bool, duration time.Duration)  {}
func (n *NoopMetrics) SetTokensCount(status string, count int)                     {}
func (n *NoopMetrics) RecordStoreError(operation string)                           {}
