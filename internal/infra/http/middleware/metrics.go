package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	diagnosticsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "diagnostics_started_total",
			Help: "Total number of diagnostic records created and dispatched",
		},
	)

	watchOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diagnostic_watch_outcomes_total",
			Help: "Result watches by terminal state",
		},
		[]string{"outcome"},
	)

	resultsReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "diagnostic_results_received_total",
			Help: "Total number of results received from the analysis worker",
		},
	)

	staleDiagnostics = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "diagnostics_pending_stale",
			Help: "Diagnostics still without results after the watch bound",
		},
	)

	integrationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integration_errors_total",
			Help: "Total number of integration errors",
		},
		[]string{"service"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush mantém o SSE funcionando atrás do middleware.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern evita um label por record_id.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

func RecordDiagnosticStarted() {
	diagnosticsStarted.Inc()
}

func RecordWatchOutcome(outcome string) {
	watchOutcomes.WithLabelValues(outcome).Inc()
}

func RecordResultReceived() {
	resultsReceived.Inc()
}

func SetStaleDiagnostics(count int) {
	staleDiagnostics.Set(float64(count))
}

func RecordIntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}
