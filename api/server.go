/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/hierarchy/*    Reporting-edge management and graph queries
  /api/requests/*     Request lifecycle (submit, decide, cancel, list)
  /api/attendance/*   Attendance record lookup
  /api/demo/*         Demo data loader (dev only)

SECURITY NOTE:
  No authentication middleware. Caller identity comes from X-User-ID, set by
  an upstream gateway.

SEE ALSO:
  - handlers.go: Handler implementations
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
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User-ID"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Hierarchy routes
		r.Route("/hierarchy", func(r chi.Router) {
			r.Post("/edges", h.CreateEdge)
			r.Put("/edges/{id}", h.UpdateEdge)
			r.Post("/edges/{id}/end", h.EndEdge)
			r.Get("/employees/{id}/manager", h.GetManager)
			r.Get("/employees/{id}/edges", h.GetEdgeHistory)
			r.Get("/employees/{id}/chain", h.GetChain)
			r.Get("/managers/{id}/team", h.GetTeam)
			r.Get("/managers/{id}/subordinates", h.GetSubordinates)
		})

		// Request lifecycle routes
		r.Route("/requests", func(r chi.Router) {
			r.Post("/", h.CreateRequest)
			r.Get("/", h.ListRequests)
			r.Get("/pending", h.ListPendingForManager)
			r.Get("/team", h.ListTeamRequests)
			r.Get("/statistics", h.GetStatistics)
			r.Get("/{id}", h.GetRequest)
			r.Post("/{id}/approve", h.ApproveRequest)
			r.Post("/{id}/reject", h.RejectRequest)
			r.Post("/{id}/cancel", h.CancelRequest)
		})

		// Attendance routes
		r.Route("/attendance", func(r chi.Router) {
			r.Get("/records/{id}", h.GetAttendanceRecord)
		})

		// Demo data (dev only)
		r.Post("/demo/load", h.LoadDemo)
	})

	return r
}
