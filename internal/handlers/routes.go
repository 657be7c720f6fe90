package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/vaughan-dsouza/storerate/internal/middleware"
	"github.com/vaughan-dsouza/storerate/internal/policy"
)

// NewRouter builds the route table. Every /api route except register and
// login runs Authenticate followed by the guard for its action.
func NewRouter(h *Handler, tokens middleware.TokenVerifier, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)

	r.Get("/health", h.Health.Liveness)
	r.Get("/health/ready", h.Health.Readiness)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	guard := middleware.Require

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login", h.Auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(tokens))

			r.With(guard(policy.ActionUpdatePassword)).Put("/auth/update-password", h.Auth.UpdatePassword)
			r.With(guard(policy.ActionViewProfile)).Get("/auth/me", h.Auth.Me)

			r.With(guard(policy.ActionCreateUser)).Post("/users", h.Users.Create)
			r.With(guard(policy.ActionListUsers)).Get("/users", h.Users.List)
			r.With(guard(policy.ActionViewUser)).Get("/users/{id}", h.Users.Get)

			r.With(guard(policy.ActionCreateStore)).Post("/stores", h.Stores.Create)
			r.With(guard(policy.ActionListStoresPublic)).Get("/stores", h.Stores.List)
			r.With(guard(policy.ActionListStoresAdmin)).Get("/stores/admin", h.Stores.ListAdmin)

			r.With(guard(policy.ActionSubmitRating)).Post("/ratings", h.Ratings.Submit)
			r.With(guard(policy.ActionSubmitRating)).Put("/ratings/{id}", h.Ratings.Update)
			r.With(guard(policy.ActionViewStoreRatings)).Get("/ratings/store/{storeId}", h.Ratings.ForStore)

			r.With(guard(policy.ActionViewAdminStats)).Get("/dashboard/admin", h.Dashboard.Admin)
			r.With(guard(policy.ActionViewOwnStore)).Get("/dashboard/store-owner", h.Dashboard.StoreOwner)
		})
	})

	return r
}
