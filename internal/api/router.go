package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/iammorganparry/clive/apps/tasks/internal/tasks"
)

// NewRouter creates the Chi router with all routes and middleware.
// backend names the storage backend reported by /health.
func NewRouter(svc *tasks.Service, backend string, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(CORS)
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	healthH := NewHealthHandler(svc, backend)
	taskH := NewTaskHandler(svc, logger)

	r.Get("/health", healthH.Health)

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", taskH.List)
		r.Post("/", taskH.Create)
		r.Put("/{id:-?[0-9]+}", taskH.Replace)
		r.Delete("/{id:-?[0-9]+}", taskH.Delete)
	})

	return r
}
