package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics records request counts and latencies per route.
type HTTPMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
}

// NewHTTPMetrics registers the HTTP metrics on the provided registerer.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})
	reg.MustRegister(duration, requests)
	return &HTTPMetrics{
		duration: duration,
		requests: requests,
	}
}

// Observe records one completed request.
func (m *HTTPMetrics) Observe(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	method = normalizeLabel(method)
	route = normalizeLabel(route)
	if m.duration != nil {
		m.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
	}
	if m.requests != nil {
		m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	}
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
