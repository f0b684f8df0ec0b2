/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/roles/*          Role and shift-template catalog
  /api/employees/*      Employee catalog and per-employee range queries
  /api/holidays         Holiday calendar
  /api/schedules/*      Generation, manual entries, deletion
  /api/attendance/*     Clock-in / clock-out
  /api/overtime         Employee-initiated overtime requests
  /api/leave            Leave requests
  /api/approvals/*      Manager decisions on PENDING entries
  /api/health           Liveness check

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public; the
  X-Actor header on approvals is trusted as-is.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

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

	// CORS for frontend development
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Actor"},
		MaxAge:         300,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Catalog
		r.Route("/roles", func(r chi.Router) {
			r.Post("/", h.CreateRole)
			r.Get("/", h.ListRoles)
			r.Post("/{id}/shifts", h.CreateShift)
			r.Get("/{id}/shifts", h.ListShifts)
		})

		r.Route("/employees", func(r chi.Router) {
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}/schedules", h.ListSchedules)
			r.Get("/{id}/attendance", h.ListAttendance)
			r.Get("/{id}/overtime", h.ListOvertime)
			r.Get("/{id}/leave", h.ListLeave)
			r.Get("/{id}/balances", h.GetBalances)
		})

		r.Post("/holidays", h.CreateHoliday)

		// Scheduling
		r.Route("/schedules", func(r chi.Router) {
			r.Post("/generate", h.GenerateSchedules)
			r.Post("/", h.CreateSchedule)
			r.Delete("/{id}", h.DeleteSchedule)
		})

		// Attendance
		r.Route("/attendance", func(r chi.Router) {
			r.Post("/clock-in", h.ClockIn)
			r.Post("/clock-out", h.ClockOut)
		})

		// Requests and decisions
		r.Post("/overtime", h.RequestOvertime)
		r.Post("/leave", h.RequestLeave)
		r.Post("/approvals/{kind}/{id}", h.Approve)

		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	})

	return r
}
