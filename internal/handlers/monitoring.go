package handlers

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Monitor records request and streak statistics for Prometheus
type Monitor struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	authRejections  prometheus.Counter
	bestSequence    prometheus.Histogram
}

// NewMonitor creates the collectors and registers them with reg
func NewMonitor(reg prometheus.Registerer) *Monitor {
	m := &Monitor{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"pattern", "method", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"pattern", "method"},
		),
		authRejections: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "auth_rejections_total",
				Help: "Total number of requests rejected for a missing or invalid identity",
			},
		),
		bestSequence: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "diet_best_sequence_days",
				Help:    "Best diet sequence reported by metrics requests",
				Buckets: []float64{0, 1, 2, 3, 5, 7, 14, 30, 60, 90, 180, 365},
			},
		),
	}

	reg.MustRegister(m.requestsTotal, m.requestDuration, m.authRejections, m.bestSequence)
	return m
}

// Middleware wraps the router to track all request stats
func (m *Monitor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := newStatusWriter(w)

		next.ServeHTTP(ww, r)

		// Route patterns keep meal ids out of the label set
		pattern := r.Pattern
		if pattern == "" {
			pattern = "unmatched"
		}

		m.requestsTotal.WithLabelValues(pattern, r.Method, strconv.Itoa(ww.statusCode)).Inc()
		m.requestDuration.WithLabelValues(pattern, r.Method).Observe(time.Since(start).Seconds())

		if ww.statusCode == http.StatusUnauthorized {
			m.authRejections.Inc()
		}
	})
}

// ObserveBestSequence records a computed best diet sequence
func (m *Monitor) ObserveBestSequence(days int) {
	if m == nil {
		return
	}
	m.bestSequence.Observe(float64(days))
}

// MetricsHandler serves the Prometheus exposition for gatherer. When user is
// set, requests must carry matching basic auth credentials.
func MetricsHandler(gatherer prometheus.Gatherer, user, pass string) http.Handler {
	handler := promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	if user == "" {
		return handler
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 ||
			subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", `Basic realm="Metrics"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
