package metrics

import (
	"sync"

	"github.com/tolutally/matchbox-web/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder is the metrics interface consumed by services and handlers.
type Recorder = core.Recorder

// Ensure Metrics implements Recorder interface at compile time
var _ Recorder = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Token lifecycle
	TokensGeneratedTotal    *prometheus.CounterVec
	TokenValidationTotal    *prometheus.CounterVec
	TokenValidationDuration prometheus.Histogram
	TokensDeletedTotal      *prometheus.CounterVec
	Tokens                  *prometheus.GaugeVec

	// Admin surface
	AdminAuthTotal *prometheus.CounterVec

	// Lead capture
	LeadSubmissionsTotal    *prometheus.CounterVec
	FormBackendCallsTotal   *prometheus.CounterVec
	FormBackendCallDuration prometheus.Histogram

	// HTTP Request Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Store errors
	StoreErrorsTotal *prometheus.CounterVec
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init initializes metrics based on enabled flag
// If enabled=true, returns Prometheus-based Metrics
// If enabled=false, returns NoopMetrics (zero overhead)
// Uses sync.Once to ensure Prometheus metrics are only registered once
func Init(enabled bool) Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = initMetrics()
	})
	return defaultMetrics
}

// initMetrics creates and registers all Prometheus metrics
func initMetrics() *Metrics {
	m := &Metrics{
		TokensGeneratedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "demo_tokens_generated_total",
				Help: "Total number of demo tokens generated",
			},
			[]string{"result"}, // success, error
		),
		TokenValidationTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "demo_token_validation_total",
				Help: "Total number of demo token validations",
			},
			[]string{"result"}, // consumed, invalid, used, expired, fallback, fallback_rejected, error
		),
		TokenValidationDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "demo_token_validation_duration_seconds",
				Help:    "Time taken to validate demo tokens",
				Buckets: prometheus.DefBuckets,
			},
		),
		TokensDeletedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "demo_tokens_deleted_total",
				Help: "Total number of demo tokens deleted",
			},
			[]string{"selector"}, // all, used, expired, used_expired, single
		),
		Tokens: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "demo_tokens",
				Help: "Current number of demo tokens in the store",
			},
			[]string{"status"}, // total, active, used, expired
		),

		AdminAuthTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admin_auth_total",
				Help: "Total number of admin secret checks",
			},
			[]string{"operation", "result"},
		),

		LeadSubmissionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lead_submissions_total",
				Help: "Total number of lead form submissions",
			},
			[]string{"result"}, // accepted, invalid, duplicate, bot, error
		),
		FormBackendCallsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "form_backend_calls_total",
				Help: "Total number of calls to the form backend",
			},
			[]string{"result"}, // success, error
		),
		FormBackendCallDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "form_backend_call_duration_seconds",
				Help:    "Time taken by form backend calls including retries",
				Buckets: prometheus.DefBuckets,
			},
		),

		// HTTP Request Metrics
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "HTTP request latency in seconds",
				Buckets: []float64{
					0.001,
					0.005,
					0.010,
					0.025,
					0.050,
					0.100,
					0.250,
					0.500,
					1.0,
					2.5,
					5.0,
					10.0,
				},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current number of HTTP requests being served",
			},
		),

		StoreErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "token_store_errors_total",
				Help: "Total number of token store errors",
			},
			[]string{"operation"}, // create, consume, list, delete
		),
	}

	return m
}

// String formats the metrics for logging
func (m *Metrics) String() string {
	return "Metrics{Tokens: enabled, Leads: enabled, HTTP: enabled}"
}
