package api

import (
	"net/http"

	"github.com/iammorganparry/clive/apps/tasks/internal/models"
	"github.com/iammorganparry/clive/apps/tasks/internal/tasks"
)

type HealthHandler struct {
	svc     *tasks.Service
	backend string
}

func NewHealthHandler(svc *tasks.Service, backend string) *HealthHandler {
	return &HealthHandler{svc: svc, backend: backend}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{
		Status:  "ok",
		Backend: h.backend,
	}

	if err := h.svc.Ping(r.Context()); err != nil {
		resp.Store = models.ServiceCheck{Status: "error", Message: err.Error()}
		resp.Status = "degraded"
	} else {
		resp.Store = models.ServiceCheck{Status: "ok"}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
