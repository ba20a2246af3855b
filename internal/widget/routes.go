package widget

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/cartsync/internal/http/middleware"
)

// Register mounts the widget routes behind middleware.RequireSession, so the
// router must run the session middleware first. clickMiddleware wraps the
// click route only, which is where rate limiting applies.
func (h *Handler) Register(r chi.Router, clickMiddleware ...func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession)
		r.Get("/", h.Page)
		r.Route("/api/v1/cart", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Delete("/", h.Clear)
			r.With(clickMiddleware...).Post("/clicks", h.Click)
		})
	})
}
