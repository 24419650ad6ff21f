// Package observability provides metrics and tracing infrastructure.
package observability

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the orbital service Prometheus metrics. It is constructed
// once in main and handed to the handlers and services that record into it;
// the propagation core itself never sees it.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Orbital operation metrics
	RequestsTotal      *prometheus.CounterVec
	PropagationLatency *prometheus.HistogramVec
	TrajectoryPoints   *prometheus.CounterVec
	VisibilityPasses   prometheus.Counter

	// TLE source metrics
	TLEFetchesTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all orbital service metrics.
func NewMetrics() *Metrics {
	m := &Metrics{}

	m.HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "orbital",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	m.HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "orbital",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	m.RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orbital_requests_total",
			Help: "Total number of orbital computation requests",
		},
		[]string{"method", "status"},
	)

	m.PropagationLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orbital_propagation_seconds",
			Help:    "Time spent on propagation operations",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
		[]string{"method"},
	)

	m.TrajectoryPoints = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orbital_trajectory_points_total",
			Help: "Total number of trajectory points generated",
		},
		[]string{"status"},
	)

	m.VisibilityPasses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orbital_visibility_passes_total",
			Help: "Total number of visibility passes computed",
		},
	)

	m.TLEFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orbital_tle_fetches_total",
			Help: "Total number of TLE source fetches",
		},
		[]string{"source", "status"},
	)

	return m
}

// RecordOperation records one core operation's outcome and latency.
func (m *Metrics) RecordOperation(method string, duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.RequestsTotal.WithLabelValues(method, status).Inc()
	m.PropagationLatency.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordTrajectoryPoints counts emitted or skipped sweep samples.
func (m *Metrics) RecordTrajectoryPoints(points int, status string) {
	if points > 0 {
		m.TrajectoryPoints.WithLabelValues(status).Add(float64(points))
	}
}

// RecordTLEFetch counts a TLE source fetch.
func (m *Metrics) RecordTLEFetch(source string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.TLEFetchesTotal.WithLabelValues(source, status).Inc()
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// HTTPMiddleware wraps an HTTP handler with request metrics collection.
func (m *Metrics) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		endpoint := normalizeEndpoint(r.URL.Path)

		m.HTTPRequestsTotal.WithLabelValues(r.Method, endpoint, statusToStr(wrapped.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, endpoint).Observe(duration)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Hijack keeps WebSocket upgrades working through the middleware.
func (w *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("hijacker not supported")
	}
	return hijacker.Hijack()
}

func (w *responseWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// normalizeEndpoint groups parameterized paths to prevent cardinality
// explosion.
func normalizeEndpoint(path string) string {
	switch {
	case len(path) > 16 && path[:16] == "/api/satellites/":
		return "/api/satellites/:id"
	case len(path) > 10 && path[:10] == "/ws/track/":
		return "/ws/track/:id"
	default:
		return path
	}
}

func statusToStr(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "other"
	}
}
