// Package http assembles the notice API's route tree and server.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taxletterhelp/notice-intelligence/internal/interfaces/http/handlers"
	"github.com/taxletterhelp/notice-intelligence/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies required to
// construct the complete HTTP route tree.
type RouterConfig struct {
	NoticeHandler *handlers.NoticeHandler
	HealthHandler *handlers.HealthHandler

	LoggingMiddleware   *middleware.LoggingMiddleware
	RateLimitMiddleware *middleware.RateLimitMiddleware

	// MetricsHandler serves GET /metrics when set.
	MetricsHandler http.Handler

	// MaxBodySize caps request bodies in bytes.  Zero disables the cap.
	MaxBodySize int64
}

// NewRouter constructs the route tree: global middleware, public probes, the
// metrics endpoint, and the versioned API group.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if cfg.MaxBodySize > 0 {
		r.Use(chimw.RequestSize(cfg.MaxBodySize))
	}
	if cfg.LoggingMiddleware != nil {
		r.Use(cfg.LoggingMiddleware.Handler)
	}
	if cfg.RateLimitMiddleware != nil {
		r.Use(cfg.RateLimitMiddleware.Handler)
	}

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		registerNoticeRoutes(api, cfg.NoticeHandler)
	})

	return r
}

// registerNoticeRoutes mounts the analysis endpoints under /analyses.
func registerNoticeRoutes(r chi.Router, h *handlers.NoticeHandler) {
	if h == nil {
		return
	}
	r.Route("/analyses", func(ar chi.Router) {
		ar.Get("/", h.List)
		ar.Post("/", h.Analyze)
		ar.Get("/stats", h.Stats)

		ar.Route("/{analysisID}", func(item chi.Router) {
			item.Get("/", h.Get)
			item.Delete("/", h.Delete)
			item.Get("/generations", h.ListGenerations)
			item.Post("/generations", h.Generate)
		})
	})
}
