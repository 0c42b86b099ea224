package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tvg_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tvg_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	positionsEvaluatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tvg_positions_evaluated_total",
			Help: "Total number of positions evaluated, by verdict.",
		},
		[]string{"verdict"},
	)

	evaluationDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tvg_evaluation_duration_seconds",
			Help:    "Time to evaluate one batch of positions.",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	parseErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tvg_parse_errors_total",
			Help: "Total number of rejected position lists, by route.",
		},
		[]string{"route"},
	)

	renderDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tvg_render_duration_seconds",
			Help:    "Response rendering duration in seconds, by output format.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"format"},
	)

	evaluationWorkers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tvg_evaluation_workers",
			Help: "Size of the batch evaluation worker pool.",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
	prometheus.MustRegister(positionsEvaluatedTotal)
	prometheus.MustRegister(evaluationDurationSeconds)
	prometheus.MustRegister(parseErrorsTotal)
	prometheus.MustRegister(renderDurationSeconds)
	prometheus.MustRegister(evaluationWorkers)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordVerdict counts one evaluated position.
func RecordVerdict(observable bool) {
	verdict := "not_observable"
	if observable {
		verdict = "observable"
	}
	positionsEvaluatedTotal.WithLabelValues(verdict).Inc()
}

// ObserveEvaluation records the duration of one batch evaluation.
func ObserveEvaluation(seconds float64) {
	evaluationDurationSeconds.Observe(seconds)
}

// RecordParseError counts a rejected position list on the given route.
func RecordParseError(route string) {
	parseErrorsTotal.WithLabelValues(normalizeRoute(route)).Inc()
}

// ObserveRender records how long producing one response body took.
func ObserveRender(format string, seconds float64) {
	renderDurationSeconds.WithLabelValues(format).Observe(seconds)
}

// SetEvaluationWorkers publishes the worker pool size.
func SetEvaluationWorkers(n int) {
	evaluationWorkers.Set(float64(n))
}

// knownRoutes are exposed as their own path label; anything else is
// collapsed so bots scanning random URLs cannot blow up label cardinality.
var knownRoutes = map[string]bool{
	"/":                 true,
	"/demo":             true,
	"/in-tess-fov":      true,
	"/check-visibility": true,
	"/tesstvguide.png":  true,
	"/healthz":          true,
	"/readyz":           true,
	"/metrics":          true,
}

// normalizeRoute maps a request path to a bounded set of metric labels.
func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	if strings.HasPrefix(path, "/static/") {
		return "/static/{file}"
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
		route := normalizeRoute(r.URL.Path)

		httpRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(duration)
	})
}
