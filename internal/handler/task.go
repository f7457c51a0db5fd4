package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/oklog/ulid/v2"

	"github.com/taskboard/taskboard-go/internal/model"
)

// TaskService is the task behaviour the task endpoints need.
type TaskService interface {
	Create(ctx context.Context, ownerID ulid.ULID, dto model.TaskDTO) (model.TaskDTO, error)
	Update(ctx context.Context, ownerID ulid.ULID, dto model.TaskDTO) (model.TaskDTO, error)
	Delete(ctx context.Context, ownerID, taskID ulid.ULID) error
	GetByID(ctx context.Context, ownerID, taskID ulid.ULID) (model.TaskDTO, error)
	GetByProjectID(ctx context.Context, ownerID, projectID ulid.ULID) ([]model.TaskDTO, error)
}

// TaskHandler handles HTTP requests for tasks in the caller's projects.
type TaskHandler struct {
	service TaskService
	logger  *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(svc TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{service: svc, logger: loggerOrDefault(logger)}
}

// HandleCreate handles POST /api/v1/tasks requests.
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var dto model.TaskDTO
	if !decodeJSON(w, r, &dto) {
		return
	}

	created, err := h.service.Create(r.Context(), identity.UserID, dto)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// HandleGet handles GET /api/v1/tasks/{task_id} requests.
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	taskID, ok := pathID(w, r, "task_id")
	if !ok {
		return
	}

	task, err := h.service.GetByID(r.Context(), identity.UserID, taskID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// HandleUpdate handles PUT /api/v1/tasks/{task_id} requests.
// The task id in the path wins over any id in the body.
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	taskID, ok := pathID(w, r, "task_id")
	if !ok {
		return
	}

	var dto model.TaskDTO
	if !decodeJSON(w, r, &dto) {
		return
	}
	dto.TaskID = taskID

	updated, err := h.service.Update(r.Context(), identity.UserID, dto)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// HandleDelete handles DELETE /api/v1/tasks/{task_id} requests.
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	taskID, ok := pathID(w, r, "task_id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), identity.UserID, taskID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleListByProject handles GET /api/v1/projects/{project_id}/tasks requests.
func (h *TaskHandler) HandleListByProject(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	projectID, ok := pathID(w, r, "project_id")
	if !ok {
		return
	}

	tasks, err := h.service.GetByProjectID(r.Context(), identity.UserID, projectID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}
