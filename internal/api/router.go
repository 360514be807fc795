package api

import (
	"net/http"

	"github.com/dom/college-tracker/internal/api/handlers"
	"github.com/dom/college-tracker/internal/api/middleware"
	"github.com/dom/college-tracker/internal/config"
	"github.com/dom/college-tracker/internal/domain"
	"github.com/dom/college-tracker/internal/notify"
	"github.com/dom/college-tracker/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(services *service.Services, hub *notify.Hub, sessionStore sessions.Store, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.Metrics())

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth, sessionStore)
	dashboardHandler := handlers.NewDashboardHandler(services.Dashboard)
	applicationHandler := handlers.NewApplicationHandler(services.Application)
	universityHandler := handlers.NewUniversityHandler(services.University)
	profileHandler := handlers.NewProfileHandler(services.Profile)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Sessions, sessionStore)

	requireAuth := middleware.Auth(services.Sessions, sessionStore)

	r.Route("/api", func(r chi.Router) {
		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", authHandler.Me)
				r.Patch("/me", profileHandler.Update)
			})
		})

		// University catalogue (public)
		r.Route("/universities", func(r chi.Router) {
			r.Get("/", universityHandler.Search)
			r.Get("/filters", universityHandler.Filters)
			r.Get("/{id}", universityHandler.Get)
		})

		// Student routes
		r.Route("/student", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(middleware.RequireRole(domain.UserRoleStudent))

			r.Get("/dashboard", dashboardHandler.Get)
			r.Get("/deadlines", applicationHandler.Deadlines)

			r.Route("/applications", func(r chi.Router) {
				r.Post("/", applicationHandler.Create)
				r.Get("/", applicationHandler.List)
				r.Get("/{id}", applicationHandler.Get)
				r.Patch("/{id}/status", applicationHandler.UpdateStatus)
				r.Post("/{id}/requirements", applicationHandler.AddRequirement)
				r.Patch("/{id}/requirements/{requirementId}", applicationHandler.UpdateRequirement)
			})
		})

		// WebSocket endpoint
		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
