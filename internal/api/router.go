package api

import (
	"net/http"
	"time"

	"github.com/gautamkshah/wise-academy/internal/api/handler"
	"github.com/gautamkshah/wise-academy/internal/api/middleware"
	"github.com/gautamkshah/wise-academy/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Services struct {
	Auth     handler.Authenticator
	Users    handler.UserUseCases
	Progress handler.ProgressUseCases
	Problems handler.ProblemCatalog
	Sweeps   handler.SweepTrigger
	Contests handler.ContestLister
}

func NewRouter(verifier *security.IdentityVerifier, s Services) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(middleware.Metrics)

	// Verifier only decodes the bearer token into the context; routes opt in
	// to enforcement with middleware.Authenticator.
	r.Use(jwtauth.Verifier(verifier.JWTAuth()))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Route("/auth", handler.NewAuthHandler(s.Auth).RegisterRoutes)
		v1.Route("/users", handler.NewUserHandler(s.Users).RegisterRoutes)
		v1.Route("/problems", handler.NewProblemHandler(s.Problems).RegisterRoutes)
		v1.Route("/progress", handler.NewProgressHandler(s.Progress, s.Users).RegisterRoutes)
		v1.Route("/stats", handler.NewStatsHandler(s.Sweeps, s.Users).RegisterRoutes)
		v1.Route("/contests", handler.NewContestHandler(s.Contests).RegisterRoutes)
	})

	return r
}
