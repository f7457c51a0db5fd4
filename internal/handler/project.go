package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/oklog/ulid/v2"

	"github.com/taskboard/taskboard-go/internal/model"
)

// ProjectService is the project behaviour the project endpoints need.
type ProjectService interface {
	Create(ctx context.Context, ownerID ulid.ULID, req model.ProjectRequest) (model.ProjectResponse, error)
	GetByID(ctx context.Context, ownerID, projectID ulid.ULID) (model.ProjectResponse, error)
	ListByOwner(ctx context.Context, ownerID ulid.ULID) ([]model.ProjectResponse, error)
	Delete(ctx context.Context, ownerID, projectID ulid.ULID) error
}

// ProjectHandler handles HTTP requests for the caller's projects.
type ProjectHandler struct {
	service ProjectService
	logger  *slog.Logger
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(svc ProjectService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{service: svc, logger: loggerOrDefault(logger)}
}

// HandleCreate handles POST /api/v1/projects requests.
func (h *ProjectHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req model.ProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	project, err := h.service.Create(r.Context(), identity.UserID, req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, project)
}

// HandleList handles GET /api/v1/projects requests.
func (h *ProjectHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	projects, err := h.service.ListByOwner(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, projects)
}

// HandleGet handles GET /api/v1/projects/{project_id} requests.
func (h *ProjectHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	projectID, ok := pathID(w, r, "project_id")
	if !ok {
		return
	}

	project, err := h.service.GetByID(r.Context(), identity.UserID, projectID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

// HandleDelete handles DELETE /api/v1/projects/{project_id} requests.
// The project's tasks are removed with it.
func (h *ProjectHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	projectID, ok := pathID(w, r, "project_id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), identity.UserID, projectID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
