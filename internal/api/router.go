package api

import (
	"net/http"

	"github.com/dgarcia/dashboard-api/internal/api/handlers"
	"github.com/dgarcia/dashboard-api/internal/api/middleware"
	"github.com/dgarcia/dashboard-api/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(services *service.Services) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth)
	userHandler := handlers.NewUserHandler(services.User)
	analysisHandler := handlers.NewAnalysisHandler(services.Analysis)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Get("/me", authHandler.Me)
				r.Get("/verify", authHandler.Verify)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))

			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.List)
				r.Post("/", userHandler.Create)
				r.Get("/{id}", userHandler.Get)
				r.Put("/{id}", userHandler.Update)
				r.Delete("/{id}", userHandler.Delete)
			})

			r.Route("/analyses", func(r chi.Router) {
				r.Get("/", analysisHandler.List)
				r.Post("/", analysisHandler.Create)
				r.Get("/{id}", analysisHandler.Get)
				r.Put("/{id}", analysisHandler.Update)
				r.Delete("/{id}", analysisHandler.Delete)
			})
		})
	})

	return r
}
