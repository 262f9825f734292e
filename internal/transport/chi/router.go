package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/kailas-cloud/marketsearch/internal/metrics"
)

// RouterConfig holds the cross-cutting HTTP settings.
type RouterConfig struct {
	APIKeys []string
	// Limiter is optional; nil disables rate limiting.
	Limiter *RateLimiter
	// Sentry enables per-request transactions.
	Sentry bool
}

// NewRouter mounts the API routes behind the middleware chain.
func NewRouter(s *Server, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chimw.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	if cfg.Sentry {
		r.Use(sentryMiddleware)
	}
	r.Use(metrics.Middleware())
	r.Use(BearerAuthMiddleware(cfg.APIKeys))
	if cfg.Limiter != nil {
		r.Use(cfg.Limiter.Middleware)
	}
	r.Use(UserIDMiddleware)

	r.Get("/search", s.Search)
	r.Get("/facets", s.Facets)
	r.Get("/nearby-windows", s.NearbyWindows)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	return r
}
