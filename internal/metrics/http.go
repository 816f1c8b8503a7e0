package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	resultSuccess = "success"
	resultError   = "error"
	resultFailure = "failure"
)

// HTTPMetricsMiddleware creates a Gin middleware that records HTTP metrics
func HTTPMetricsMiddleware(m Recorder) gin.HandlerFunc {
	// Type assert to concrete Metrics for Prometheus access
	metrics, ok := m.(*Metrics)
	if !ok {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		// Skip metrics endpoint to avoid self-recording
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()

		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		c.Next()

		duration := time.Since(start).Seconds()
		method := c.Request.Method
		path := normalizePath(c.FullPath()) // Use route pattern, not actual path
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// normalizePath returns the route pattern or "unknown" for unmatched paths
func normalizePath(fullPath string) string {
	if fullPath == "" {
		return "unknown"
	}
	return fullPath
}

func successLabel(success bool, failure string) string {
	if success {
		return resultSuccess
	}
	return failure
}

// RecordTokensGenerated counts issued tokens, or one failed request
func (m *Metrics) RecordTokensGenerated(count int, success bool) {
	if !success {
		m.TokensGeneratedTotal.WithLabelValues(resultError).Inc()
		return
	}
	m.TokensGeneratedTotal.WithLabelValues(resultSuccess).Add(float64(count))
}

// RecordTokenValidation records a validation outcome
func (m *Metrics) RecordTokenValidation(result string, duration time.Duration) {
	m.TokenValidationTotal.WithLabelValues(result).Inc()
	m.TokenValidationDuration.Observe(duration.Seconds())
}

// RecordTokensDeleted records a delete request and how many records it removed
func (m *Metrics) RecordTokensDeleted(selector string, count int) {
	m.TokensDeletedTotal.WithLabelValues(selector).Add(float64(count))
}

// RecordAdminAuth records an admin secret check
func (m *Metrics) RecordAdminAuth(operation string, success bool) {
	m.AdminAuthTotal.WithLabelValues(operation, successLabel(success, resultFailure)).Inc()
}

// RecordLeadSubmission records a lead form outcome
func (m *Metrics) RecordLeadSubmission(result string) {
	m.LeadSubmissionsTotal.WithLabelValues(result).Inc()
}

// RecordFormBackendCall records a forward to the form backend
func (m *Metrics) RecordFormBackendCall(success bool, duration time.Duration) {
	m.FormBackendCallsTotal.WithLabelValues(successLabel(success, resultError)).Inc()
	m.FormBackendCallDuration.Observe(duration.Seconds())
}

// SetTokensCount sets the token gauge for one status (for periodic updates)
func (m *Metrics) SetTokensCount(status string, count int) {
	m.Tokens.WithLabelValues(status).Set(float64(count))
}

// RecordStoreError records a token store failure
func (m *Metrics) RecordStoreError(operation string) {
	m.StoreErrorsTotal.WithLabelValues(operation).Inc()
}
