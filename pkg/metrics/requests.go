package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics records outcomes of backend API calls.
type RequestMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
	failures *prometheus.CounterVec
}

// NewRequestMetrics registers the API request metrics on the provided registerer.
func NewRequestMetrics(reg prometheus.Registerer) *RequestMetrics {
	if reg == nil {
		return &RequestMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "api_request_duration_seconds",
		Help:    "Duration of backend API requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "api_requests_total",
		Help: "Backend API requests by endpoint and status code.",
	}, []string{"endpoint", "status"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "api_request_failures_total",
		Help: "Backend API requests that failed before a response arrived.",
	}, []string{"endpoint"})
	reg.MustRegister(duration, requests, failures)
	return &RequestMetrics{
		duration: duration,
		requests: requests,
		failures: failures,
	}
}

// ObserveDuration records the duration for the named endpoint.
func (m *RequestMetrics) ObserveDuration(endpoint string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(endpoint)).Observe(duration.Seconds())
}

// IncRequest counts a completed request with its HTTP status code.
func (m *RequestMetrics) IncRequest(endpoint string, status int) {
	if m == nil || m.requests == nil {
		return
	}
	m.requests.WithLabelValues(normalizeLabel(endpoint), strconv.Itoa(status)).Inc()
}

// IncFailure counts a request that never produced a response.
func (m *RequestMetrics) IncFailure(endpoint string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(endpoint)).Inc()
}

func normalizeLabel(endpoint string) string {
	if endpoint == "" {
		return "unknown"
	}
	return endpoint
}
