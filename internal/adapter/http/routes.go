package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Strob0t/powerscrape/internal/config"
	"github.com/Strob0t/powerscrape/internal/middleware"
)

// MountRoutes registers all routes on the given chi router. reads wraps the
// routes that may trigger an upstream fetch (rate limiting); /health and the
// not-found answers are left outside it.
//
// The /powerboll-* paths are the routes of the first release. They serve the
// same data and carry Deprecation and Sunset headers pointing at their
// replacements.
func MountRoutes(r chi.Router, h *Handlers, cfg config.Server, reads ...func(http.Handler) http.Handler) {
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.NotFound)

	r.Get("/health", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(reads...)

		r.Get("/jackpot", h.GetJackpot)
		r.Get("/winning-numbers", h.GetWinningNumbers)

		// Legacy
		r.With(middleware.Deprecation(cfg.LegacySunset, "/jackpot")).
			Get("/powerboll-jackpot", h.GetJackpot)
		r.With(middleware.Deprecation(cfg.LegacySunset, "/winning-numbers")).
			Get("/powerboll-winner-nums", h.GetWinningNumbers)
	})
}
