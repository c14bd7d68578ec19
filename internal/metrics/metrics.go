package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flyby_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flyby_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	lookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flyby_lookups_total",
			Help: "Total number of flyby lookups by outcome.",
		},
		[]string{"outcome"},
	)

	lookupDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flyby_lookup_duration_seconds",
			Help:    "End-to-end flyby lookup duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)

	upstreamStatusTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flyby_upstream_status_total",
			Help: "HTTP status codes returned by the imagery service.",
		},
		[]string{"code"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
	prometheus.MustRegister(lookupsTotal)
	prometheus.MustRegister(lookupDurationSeconds)
	prometheus.MustRegister(upstreamStatusTotal)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveLookup records one completed lookup with its outcome label.
func ObserveLookup(outcome string, duration time.Duration) {
	lookupsTotal.WithLabelValues(outcome).Inc()
	lookupDurationSeconds.Observe(duration.Seconds())
}

// ObserveUpstreamStatus records the HTTP status the imagery service returned.
func ObserveUpstreamStatus(code int) {
	upstreamStatusTotal.WithLabelValues(strconv.Itoa(code)).Inc()
}

// knownRoutes are the only path labels exported to Prometheus. Anything
// else (bots, scanners, typos) collapses to "other" to cap cardinality.
var knownRoutes = map[string]bool{
	"/":             true,
	"/healthz":      true,
	"/readyz":       true,
	"/metrics":      true,
	"/api/v1/flyby": true,
}

func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)
		path := normalizeRoute(r.URL.Path)

		httpRequestsTotal.WithLabelValues(path, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(path, r.Method).Observe(duration)
	})
}
