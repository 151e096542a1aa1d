/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the dashboard frontend

ROUTE GROUPS:
  /api/webhook/attendance   Device punch ingestion (shared-secret auth)
  /api/webhook/health       Unauthenticated liveness acknowledgment
  /api/employees/*          Directory seeding and attendance reads

SECURITY NOTE:
  The webhook enforces its shared secret on every request; there is no
  bypass path. The directory/read endpoints carry no end-user auth here -
  that belongs to the surrounding HR system.

SEE ALSO:
  - handlers.go: Handler implementations
  - auth.go: Shared-secret middleware
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", AuthKeyHeader},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Device webhook
		r.Route("/webhook", func(r chi.Router) {
			r.Get("/health", h.HandleHealth)
			r.With(RequireAuthKey(h.AuthKey)).Post("/attendance", h.HandleWebhook)
		})

		// Directory and attendance reads
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Get("/{id}/attendance", h.GetAttendance)
		})
	})

	return r
}
