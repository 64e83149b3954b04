package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dataline/accessgate/internal/auth"
	"github.com/dataline/accessgate/internal/metrics"
	"github.com/dataline/accessgate/internal/middleware"
)

// maxRequestBody bounds JSON request bodies; token issue payloads are tiny.
const maxRequestBody = 64 * 1024

// NewRouter creates the HTTP router.
func (h *Handler) NewRouter(limiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(h.logger))
	r.Use(metrics.Middleware)
	r.Use(middleware.MaxBodySize(maxRequestBody))

	// Public endpoints (no auth)
	r.Get("/health", h.HandleHealth)
	r.Get("/ready", h.HandleReady)

	// Authenticated API
	r.Route("/api", func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}
		r.Use(auth.Middleware(h.resolver))

		r.Get("/whoami", h.HandleWhoami)
		r.Get("/authorize", h.HandleAuthorize)

		r.Post("/tokens", h.HandleCreateToken)
		r.Get("/tokens", h.HandleListTokens)
		r.Delete("/tokens/{id}", h.HandleRevokeToken)

		r.Post("/loglevel", h.HandleSetLogLevel)
	})

	return r
}
