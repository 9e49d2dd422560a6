package api

import (
	"net/http"
	"time"

	"github.com/catalina-labs/usuarios-api/internal/api/handler"
	"github.com/catalina-labs/usuarios-api/internal/api/middleware"
	"github.com/catalina-labs/usuarios-api/internal/app/service"
	"github.com/catalina-labs/usuarios-api/internal/domain/repository"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(
	authService *service.AuthService,
	sessionService *service.SessionService,
	userService *service.UserService,
	statsService *service.StatsService,
	attemptStore repository.AttemptStore,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger) // Chi's logger
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	authenticate := middleware.Authenticator(sessionService)

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		authHandler := handler.NewAuthHandler(authService)
		profileHandler := handler.NewProfileHandler(userService)
		userHandler := handler.NewUserHandler(userService, authService)
		statsHandler := handler.NewStatsHandler(statsService)

		// Auth routes. Register/login are public; login is gated by the
		// failure-based throttle inside the service, not the request limiter.
		v1.Route("/auth", func(auth chi.Router) {
			authHandler.RegisterPublicRoutes(auth)
			auth.Group(func(protected chi.Router) {
				protected.Use(authenticate)
				authHandler.RegisterProtectedRoutes(protected)
			})
		})

		// Stats (public, tighter request budget)
		v1.With(middleware.RateLimit(attemptStore, middleware.StatsRateLimit)).
			Route("/stats", statsHandler.RegisterRoutes)

		// Profile routes (authenticated)
		v1.Group(func(protected chi.Router) {
			protected.Use(middleware.RateLimit(attemptStore, middleware.APIRateLimit))
			protected.Use(authenticate)

			protected.Route("/profile", profileHandler.RegisterRoutes)
			protected.Route("/usuarios", userHandler.RegisterRoutes)

			// Security policy introspection (admin only)
			protected.With(middleware.AdminOnly).Get("/config/auth", statsHandler.AuthConfig)
		})
	})

	return r
}
