package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/iammorganparry/clive/apps/tasks/internal/models"
	"github.com/iammorganparry/clive/apps/tasks/internal/tasks"
)

const (
	msgEmptyTask = "Task cannot be empty"
	msgInvalidID = "Invalid task ID"
)

type TaskHandler struct {
	svc    *tasks.Service
	logger *slog.Logger
}

func NewTaskHandler(svc *tasks.Service, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{svc: svc, logger: logger}
}

// List handles GET /tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if list == nil {
		list = models.TaskList{}
	}

	writeJSON(w, http.StatusOK, list)
}

// Create handles POST /tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.TaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	task, err := h.svc.Create(r.Context(), req.Task)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.TaskResponse{Task: task})
}

// Replace handles PUT /tasks/{id}
func (h *TaskHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var req models.TaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	id, ok := taskID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidID)
		return
	}

	task, err := h.svc.Replace(r.Context(), id, req.Task)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.TaskResponse{Task: task})
}

// Delete handles DELETE /tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidID)
		return
	}

	removed, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.TaskResponse{Task: removed})
}

func (h *TaskHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, tasks.ErrEmptyTask):
		writeError(w, http.StatusBadRequest, msgEmptyTask)
	case errors.Is(err, tasks.ErrInvalidID):
		writeError(w, http.StatusBadRequest, msgInvalidID)
	default:
		h.logger.Error("task operation failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", GetRequestID(r.Context()),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// taskID parses the {id} path parameter. The route pattern only admits
// signed integers; values that overflow int are reported as not ok.
func taskID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return 0, false
	}
	return id, true
}
