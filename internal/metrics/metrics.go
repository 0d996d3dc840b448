package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector is the interface for metrics collection.
type Collector interface {
	RecordRequest(ctx context.Context, endpoint string, outcome string, durationMs int64)
	RecordProviderCall(ctx context.Context, endpoint string, status string, durationMs int64)
	RecordValidationFailure(ctx context.Context, endpoint string, kind string)
}

// MetricsCollector provides Prometheus metrics for the analyze/suggest pipeline.
type MetricsCollector struct {
	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	providerDuration   *prometheus.HistogramVec
	validationFailures *prometheus.CounterVec
	registry           *prometheus.Registry
}

// NewCollector creates a new Prometheus metrics collector with its own registry.
func NewCollector() *MetricsCollector {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_api_requests_total",
			Help: "Total number of API requests by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "task_api_request_duration_seconds",
			Help:    "Duration of API requests by endpoint",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		},
		[]string{"endpoint"},
	)

	providerDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "task_api_provider_duration_seconds",
			Help:    "Duration of model provider calls by endpoint and status",
			Buckets: []float64{0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0},
		},
		[]string{"endpoint", "status"},
	)

	validationFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_api_validation_failures_total",
			Help: "Model responses rejected by the validator, by endpoint and failure kind",
		},
		[]string{"endpoint", "kind"},
	)

	registry.MustRegister(requestsTotal)
	registry.MustRegister(requestDuration)
	registry.MustRegister(providerDuration)
	registry.MustRegister(validationFailures)
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &MetricsCollector{
		requestsTotal:      requestsTotal,
		requestDuration:    requestDuration,
		providerDuration:   providerDuration,
		validationFailures: validationFailures,
		registry:           registry,
	}
}

// RecordRequest records a finished API request
func (m *MetricsCollector) RecordRequest(ctx context.Context, endpoint string, outcome string, durationMs int64) {
	m.requestsTotal.WithLabelValues(endpoint, outcome).Inc()
	m.requestDuration.WithLabelValues(endpoint).Observe(float64(durationMs) / 1000.0)
}

// RecordProviderCall records the duration of one provider call
func (m *MetricsCollector) RecordProviderCall(ctx context.Context, endpoint string, status string, durationMs int64) {
	m.providerDuration.WithLabelValues(endpoint, status).Observe(float64(durationMs) / 1000.0)
}

// RecordValidationFailure records a rejected model response
func (m *MetricsCollector) RecordValidationFailure(ctx context.Context, endpoint string, kind string) {
	m.validationFailures.WithLabelValues(endpoint, kind).Inc()
}

// Registry returns the Prometheus registry for HTTP exposure
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// NoopCollector discards everything.
type NoopCollector struct{}

func NewNoopCollector() *NoopCollector { return &NoopCollector{} }

func (NoopCollector) RecordRequest(ctx context.Context, endpoint string, outcome string, durationMs int64) {
}

func (NoopCollector) RecordProviderCall(ctx context.Context, endpoint string, status string, durationMs int64) {
}

func (NoopCollector) RecordValidationFailure(ctx context.Context, endpoint string, kind string) {}
