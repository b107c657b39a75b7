package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authmw "github.com/ecofuelconnect/ecofuelconnect/internal/http/middleware"
	payoutHandler "github.com/ecofuelconnect/ecofuelconnect/internal/http/payout"
	rewardHandler "github.com/ecofuelconnect/ecofuelconnect/internal/http/reward"
	wasteHandler "github.com/ecofuelconnect/ecofuelconnect/internal/http/waste"
)

func New(
	jwtSecret string,
	wasteV1 *wasteHandler.Handler,
	rewardV1 *rewardHandler.Handler,
	payoutV1 *payoutHandler.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Idempotency-Key"},
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/leaderboard", rewardV1.Leaderboard)

		r.Group(func(r chi.Router) {
			r.Use(authmw.Authenticate(jwtSecret))

			r.Route("/waste", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				wasteV1.Routes(r)
			})

			r.Route("/rewards", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				rewardV1.Routes(r)
			})

			r.Group(func(r chi.Router) {
				r.Use(authmw.RequireRole(authmw.RoleAdmin))

				r.Route("/payouts", payoutV1.Routes)
				r.Route("/admin/reconciliation", rewardV1.AdminRoutes)
			})
		})
	})

	return router
}
