package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/he945/flyby/internal/assets"
	"github.com/he945/flyby/internal/auth"
	"github.com/he945/flyby/internal/flyby"
	"github.com/he945/flyby/internal/geo"
	"github.com/he945/flyby/internal/health"
	"github.com/he945/flyby/internal/httputil"
	"github.com/he945/flyby/internal/metrics"
)

// Config holds HTTP server configuration.
type Config struct {
	Addr       string
	TrustProxy bool
}

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a configured HTTP server exposing the flyby lookup.
func NewServer(cfg Config, logger *slog.Logger, authCfg auth.Config, svc *flyby.Service) *Server {
	mux := http.NewServeMux()

	// Register routes.
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("GET /readyz", health.Readyz)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /api/v1/flyby", flybyHandler(logger, svc))

	// Build middleware chain: metrics -> logging -> auth -> mux.
	var handler http.Handler = mux
	handler = auth.Middleware(authCfg)(handler)
	handler = loggingMiddleware(logger, cfg.TrustProxy)(handler)
	handler = metrics.Middleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      45 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

// HTTPServer returns the underlying *http.Server for external control (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// flybyResponse is the wire form of a successful lookup.
type flybyResponse struct {
	NextTime            string  `json:"next_time"`
	LastCapture         string  `json:"last_capture"`
	SampleCount         int     `json:"sample_count"`
	MeanIntervalSeconds float64 `json:"mean_interval_seconds"`
}

// flybyHandler serves GET /api/v1/flyby?lat=&lon=.
func flybyHandler(logger *slog.Logger, svc *flyby.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lat, err := parseFloatParam(r, "lat")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		lon, err := parseFloatParam(r, "lon")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		result, err := svc.Lookup(r.Context(), lat, lon)
		if err != nil {
			status := statusFor(err)
			if status >= 500 {
				logger.Error("flyby lookup failed", "component", "api", "error", err)
			}
			writeError(w, status, err.Error())
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(flybyResponse{
			NextTime:            result.NextTime.Format(time.RFC3339),
			LastCapture:         result.LastCapture.Format(time.RFC3339),
			SampleCount:         result.SampleCount,
			MeanIntervalSeconds: result.MeanInterval.Seconds(),
		})
	}
}

// statusFor maps lookup errors to HTTP status codes.
func statusFor(err error) int {
	var ve *geo.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest
	}
	var se *assets.ServiceError
	if errors.As(err, &se) {
		return http.StatusBadGateway
	}
	if errors.Is(err, flyby.ErrNoHistory) {
		return http.StatusNotFound
	}
	var pe *assets.ParseError
	if errors.As(err, &pe) {
		return http.StatusInternalServerError
	}
	return http.StatusBadGateway
}

func parseFloatParam(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, errors.New("missing required parameter " + name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New("parameter " + name + " must be a number")
	}
	return v, nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// probePath returns true for health/readiness probe paths that should not log at INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz"
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
			if probePath(r.URL.Path) {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "request",
				"component", "api",
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", duration.Milliseconds(),
				"remote_ip", httputil.ClientIP(r, trustProxy),
			)
		})
	}
}
