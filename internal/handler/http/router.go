package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/sharp-lines-service/internal/scheduler"
)

// ReadinessCheck reports whether a dependency can serve traffic
type ReadinessCheck func(ctx context.Context) error

// RouterConfig holds router dependencies
type RouterConfig struct {
	Lines          *LinesHandler
	Jobs           func() []scheduler.JobStatus // optional, served at /api/v1/schedule
	Checks         map[string]ReadinessCheck    // e.g., {"store": fileStore.Ping}
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// NewRouter builds the service router with middleware, API, health and metrics routes
func NewRouter(cfg RouterConfig, logger zerolog.Logger) *chi.Mux {
	logger = logger.With().Str("component", "router").Logger()

	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware(logger))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", healthHandler)
	r.Get("/ready", readyHandler(cfg.Checks, logger))
	r.Handle("/metrics", promhttp.Handler())

	if cfg.Lines != nil {
		cfg.Lines.RegisterRoutes(r)
	}
	if cfg.Jobs != nil {
		r.Get("/api/v1/schedule", scheduleHandler(cfg.Jobs, logger))
	}

	return r
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("query", r.URL.RawQuery).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration_ms", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("HTTP request")
		})
	}
}

// healthHandler returns 200 if service is running
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// readyHandler returns 200 once every dependency check passes
func readyHandler(checks map[string]ReadinessCheck, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				logger.Warn().Err(err).Str("dependency", name).Msg("readiness check failed")
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(name + " unavailable"))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("READY"))
	}
}

// scheduleHandler lists the scheduled snapshot jobs with their next and last runs
func scheduleHandler(jobs func() []scheduler.JobStatus, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(map[string]interface{}{"jobs": jobs()}); err != nil {
			logger.Error().Err(err).Msg("failed to encode JSON response")
		}
	}
}
