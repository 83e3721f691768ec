// Package metrics provides Prometheus metrics collection for the application.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Conversation metrics
	ConversationTurnsTotal *prometheus.CounterVec
	SessionsActive         prometheus.Gauge
	SessionsCreated        prometheus.Counter
	SessionsExpired        prometheus.Counter

	// Quote metrics
	QuotesComputedTotal *prometheus.CounterVec
	QuoteComputeErrors  *prometheus.CounterVec
	PDFRendersTotal     *prometheus.CounterVec

	// Email metrics
	EmailSendsTotal   *prometheus.CounterVec
	EmailSendDuration prometheus.Histogram

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips prometheus.Counter

	// Database metrics
	DBConnectionsOpen  prometheus.Gauge
	DBConnectionsInUse prometheus.Gauge
	DBQueryDuration    *prometheus.HistogramVec
	DBQueryErrors      *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHitsTotal *prometheus.CounterVec

	// Admin auth metrics
	AdminAuthTotal *prometheus.CounterVec

	// Registry used for this metrics instance
	registry prometheus.Gatherer
}

// NewMetrics creates a Metrics instance registered on the default registry.
func NewMetrics() *Metrics {
	m := newMetricsWithRegistry(prometheus.DefaultRegisterer)
	m.registry = prometheus.DefaultGatherer
	return m
}

// NewMetricsWithRegistry creates metrics using a custom registry (for testing).
func NewMetricsWithRegistry(reg *prometheus.Registry) *Metrics {
	m := newMetricsWithRegistry(reg)
	m.registry = reg
	return m
}

func newMetricsWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopquote_http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status code",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shopquote_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "shopquote_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		ConversationTurnsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopquote_conversation_turns_total",
				Help: "Total conversation turns by tenant and reply kind",
			},
			[]string{"tenant", "kind"}, // kind: "state", "quote", "answer", "branch", "error"
		),
		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "shopquote_sessions_active",
				Help: "Number of active quote sessions",
			},
		),
		SessionsCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "shopquote_sessions_created_total",
				Help: "Total number of quote sessions created",
			},
		),
		SessionsExpired: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "shopquote_sessions_expired_total",
				Help: "Total number of quote sessions expired by the sweeper",
			},
		),

		QuotesComputedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopquote_quotes_computed_total",
				Help: "Total quotes computed by tenant and channel",
			},
			[]string{"tenant", "channel"}, // channel: "chat", "console", "legacy"
		),
		QuoteComputeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopquote_quote_compute_errors_total",
				Help: "Total quote computation failures by tenant and error code",
			},
			[]string{"tenant", "code"},
		),
		PDFRendersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopquote_pdf_renders_total",
				Help: "Total PDF quote renders by tenant and outcome",
			},
			[]string{"tenant", "outcome"},
		),

		EmailSendsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopquote_email_sends_total",
				Help: "Total estimate emails sent by outcome",
			},
			[]string{"outcome"}, // "success", "failure", "timeout", "circuit_open"
		),
		EmailSendDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "shopquote_email_send_duration_seconds",
				Help:    "Duration of estimate email sends",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
			},
		),

		CircuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "shopquote_circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
			},
			[]string{"service"},
		),
		CircuitBreakerTrips: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "shopquote_circuit_breaker_trips_total",
				Help: "Total number of times a circuit breaker has tripped",
			},
		),

		DBConnectionsOpen: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "shopquote_db_connections_open",
				Help: "Number of open database connections",
			},
		),
		DBConnectionsInUse: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "shopquote_db_connections_in_use",
				Help: "Number of database connections currently in use",
			},
		),
		DBQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shopquote_db_query_duration_seconds",
				Help:    "Duration of database queries",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation"}, // "select", "insert"
		),
		DBQueryErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopquote_db_query_errors_total",
				Help: "Total number of database query errors",
			},
			[]string{"operation"},
		),

		RateLimitHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopquote_rate_limit_hits_total",
				Help: "Total number of rate limit hits by limiter",
			},
			[]string{"limiter"},
		),

		AdminAuthTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopquote_admin_auth_total",
				Help: "Total admin key checks by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// Handler returns the Prometheus HTTP handler for scraping metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware returns an HTTP middleware that records request metrics.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()

		// Normalize tenant segments to a placeholder so labels stay bounded.
		path := normalizePath(r.URL.Path)

		m.HTTPRequestsTotal.WithLabelValues(
			r.Method,
			path,
			strconv.Itoa(wrapped.statusCode),
		).Inc()

		m.HTTPRequestDuration.WithLabelValues(
			r.Method,
			path,
		).Observe(duration)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.statusCode = http.StatusOK
		rw.written = true
	}
	return rw.ResponseWriter.Write(b)
}

// normalizePath collapses per-tenant path segments to keep label cardinality
// bounded.
func normalizePath(path string) string {
	switch path {
	case "/", "/quote", "/health", "/ready", "/metrics", "/__version",
		"/api/ping", "/api/email-estimate", "/admin/loglevel":
		return path
	}

	for _, prefix := range []string{"/api/ask/", "/api/quote/", "/api/download_quote/"} {
		if strings.HasPrefix(path, prefix) {
			return prefix + ":tenant"
		}
	}

	return path
}

// Helper methods for recording specific events

// RecordTurn records a handled conversation turn.
func (m *Metrics) RecordTurn(tenant, kind string) {
	m.ConversationTurnsTotal.WithLabelValues(tenant, kind).Inc()
}

// RecordQuoteComputed records a successfully computed quote.
func (m *Metrics) RecordQuoteComputed(tenant, channel string) {
	m.QuotesComputedTotal.WithLabelValues(tenant, channel).Inc()
}

// RecordQuoteError records a failed quote computation.
func (m *Metrics) RecordQuoteError(tenant, code string) {
	m.QuoteComputeErrors.WithLabelValues(tenant, code).Inc()
}

// RecordPDFRender records a PDF render attempt.
func (m *Metrics) RecordPDFRender(tenant string, success bool) {
	outcome := outcomeFailure
	if success {
		outcome = outcomeSuccess
	}
	m.PDFRendersTotal.WithLabelValues(tenant, outcome).Inc()
}

// RecordEmailSend records an estimate email send attempt.
func (m *Metrics) RecordEmailSend(outcome string, duration time.Duration) {
	m.EmailSendsTotal.WithLabelValues(outcome).Inc()
	m.EmailSendDuration.Observe(duration.Seconds())
}

// RecordSessionCreated records a new session creation.
func (m *Metrics) RecordSessionCreated() {
	m.SessionsCreated.Inc()
}

// RecordSessionsExpired records sessions dropped by the sweeper.
func (m *Metrics) RecordSessionsExpired(count int) {
	m.SessionsExpired.Add(float64(count))
}

// SetActiveSessions sets the active session gauge.
func (m *Metrics) SetActiveSessions(count int) {
	m.SessionsActive.Set(float64(count))
}

// SetCircuitBreakerState sets the circuit breaker state for a service.
// State: 0=closed, 1=half-open, 2=open
func (m *Metrics) SetCircuitBreakerState(service string, state int) {
	m.CircuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// RecordCircuitTrip records a circuit breaker opening.
func (m *Metrics) RecordCircuitTrip() {
	m.CircuitBreakerTrips.Inc()
}

// UpdateDBConnections updates database connection metrics.
func (m *Metrics) UpdateDBConnections(open, inUse int) {
	m.DBConnectionsOpen.Set(float64(open))
	m.DBConnectionsInUse.Set(float64(inUse))
}

// RecordDBQuery records a database query.
func (m *Metrics) RecordDBQuery(operation string, duration time.Duration, err error) {
	m.DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		m.DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordRateLimitHit records a rate limit hit.
func (m *Metrics) RecordRateLimitHit(limiter string) {
	m.RateLimitHitsTotal.WithLabelValues(limiter).Inc()
}

// RecordAdminAuth records an admin key check.
func (m *Metrics) RecordAdminAuth(success bool) {
	outcome := outcomeFailure
	if success {
		outcome = outcomeSuccess
	}
	m.AdminAuthTotal.WithLabelValues(outcome).Inc()
}
