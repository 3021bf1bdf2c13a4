package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/xavierca1/imob-crm/internal/entity"
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

	leadTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_lead_transitions_total",
			Help: "Total number of confirmed lead status transitions",
		},
		[]string{"from", "to"},
	)

	mutationRollbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_mutation_rollbacks_total",
			Help: "Total number of optimistic lead mutations rolled back",
		},
		[]string{"op"},
	)

	matchesServed = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crm_smart_matches_served",
			Help:    "Number of comparable properties returned per lookup",
			Buckets: []float64{0, 1, 2, 3, 4, 5},
		},
	)

	messagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_whatsapp_messages_total",
			Help: "Total number of WhatsApp template messages sent",
		},
		[]string{"template"},
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

// Flush mantém o stream SSE funcionando através do middleware.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
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

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}

		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rw.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// PipelineMetrics publica os eventos do funil no Prometheus.
type PipelineMetrics struct{}

func (PipelineMetrics) TransitionApplied(from, to entity.LeadStatus) {
	leadTransitions.WithLabelValues(string(from), string(to)).Inc()
}

func (PipelineMetrics) MutationRolledBack(op string) {
	mutationRollbacks.WithLabelValues(op).Inc()
}

func (PipelineMetrics) MatchesServed(count int) {
	matchesServed.Observe(float64(count))
}

func (PipelineMetrics) MessageSent(templateTitle string) {
	messagesSent.WithLabelValues(templateTitle).Inc()
}
