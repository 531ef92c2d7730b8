package api

import (
	"contest_hub/internal/api/handler"
	"contest_hub/internal/api/middleware"
	"contest_hub/internal/app/service"
	"contest_hub/internal/common"
	"contest_hub/internal/platform/identity"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

type Services struct {
	Auth    *service.AuthService // nil unless tokens are issued locally
	Users   *service.UserService
	Contest *service.ContestService
	Payment *service.PaymentService
	Profile *service.ProfileService
}

func NewRouter(svc Services, verifier identity.Verifier, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger) // Chi's logger
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)

	authenticate := middleware.Authenticator(verifier)

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "contest hub server is running"})
	})

	if svc.Auth != nil {
		r.Route("/auth", handler.NewAuthHandler(svc.Auth).RegisterRoutes)
	}

	r.Route("/users", handler.NewUserHandler(svc.Users, authenticate).RegisterRoutes)
	r.Route("/contests", handler.NewContestHandler(svc.Contest, authenticate).RegisterRoutes)

	// Root-level routes
	handler.NewPaymentHandler(svc.Payment, authenticate).RegisterRoutes(r)
	handler.NewProfileHandler(svc.Profile, svc.Users, authenticate).RegisterRoutes(r)

	return r
}
