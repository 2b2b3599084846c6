package api

import (
	"net/http"

	"riparo-be/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Auth        *AuthHandler
	Orders      *OrderHandler
	Technicians *TechnicianHandler
}

func NewRouter(h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggingMiddleware)
	// Auth runs before the limiter so authenticated clients are keyed by
	// user id rather than source IP.
	r.Use(middleware.AuthMiddleware)
	r.Use(middleware.RateLimitMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login", h.Auth.Login)

		r.Post("/quote", h.Orders.Quote)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/lookup", h.Orders.Lookup)
			r.Post("/", h.Orders.Create)
			r.Get("/", h.Orders.List)
			r.Get("/{id}", h.Orders.Get)
			r.Patch("/{id}", h.Orders.Update)
			r.Delete("/{id}", h.Orders.Delete)
		})

		r.Route("/technicians", func(r chi.Router) {
			r.Post("/", h.Technicians.Create)
			r.Get("/", h.Technicians.List)
		})
	})

	return r
}
