// Package api wires the HTTP routes, middleware chain and server lifecycle.
package api

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/mrtommyb/tesstvgapp/internal/health"
	"github.com/mrtommyb/tesstvgapp/internal/httputil"
	"github.com/mrtommyb/tesstvgapp/internal/metrics"
	"github.com/mrtommyb/tesstvgapp/internal/observability"
	"github.com/mrtommyb/tesstvgapp/internal/position"
	"github.com/mrtommyb/tesstvgapp/internal/render"
	"github.com/mrtommyb/tesstvgapp/internal/visibility"
)

// BatchEvaluator evaluates parsed positions.
type BatchEvaluator interface {
	EvaluateAll(ctx context.Context, positions []position.Position) ([]visibility.Result, error)
	SectorList(ra, dec float64, r visibility.Result) []int
}

// Config holds listener and presentation settings.
type Config struct {
	Addr       string
	TrustProxy bool
	// Campaign labels the report heading and the diagram legend.
	Campaign string
}

// Deps are the collaborators the handlers are built from.
type Deps struct {
	Evaluator BatchEvaluator
	Report    *render.Report
	Scene     render.SceneRenderer
	Readiness *health.Readiness
	// Web serves index.html and static/.
	Web fs.FS
}

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a configured HTTP server.
func NewServer(cfg Config, deps Deps, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", indexHandler(deps.Web))
	mux.HandleFunc("GET /demo", demoHandler)
	mux.HandleFunc("GET /in-tess-fov", inTessFOVHandler(logger, deps.Evaluator))
	mux.HandleFunc("GET /check-visibility", checkVisibilityHandler(logger, cfg.Campaign, deps.Evaluator, deps.Report))
	mux.HandleFunc("GET /tesstvguide.png", guideImageHandler(logger, cfg.Campaign, deps.Scene))
	mux.Handle("GET /static/", http.FileServerFS(deps.Web))
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("GET /readyz", deps.Readiness.Readyz)
	mux.Handle("GET /metrics", metrics.Handler())

	// Build middleware chain: metrics -> tracing -> logging -> mux.
	var handler http.Handler = mux
	handler = loggingMiddleware(logger, cfg.TrustProxy)(handler)
	handler = observability.Middleware(handler)
	handler = metrics.Middleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// HTTPServer returns the underlying *http.Server for external control (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// quietPath returns true for health/readiness check paths that should not log at INFO.
func quietPath(path string) bool {
	return path == "/healthz" || path == "/readyz" || path == "/metrics"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *slog.Logger, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			duration := time.Since(start)
			level := slog.LevelInfo
			if quietPath(r.URL.Path) {
				level = slog.LevelDebug
			}

			attrs := []any{
				"component", "api",
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", duration.Milliseconds(),
				"remote_ip", httputil.ClientIP(r, trustProxy),
			}
			if sc := trace.SpanContextFromContext(r.Context()); sc.HasTraceID() {
				attrs = append(attrs, "trace_id", sc.TraceID().String())
			}
			logger.Log(r.Context(), level, "request", attrs...)
		})
	}
}
