package service

import (
	"context"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/taskboard/taskboard-go/internal/model"
)

// ProjectService handles project business logic. Every operation is scoped
// to the owner; projects of other users are reported as not found.
type ProjectService struct {
	projects ProjectStore
	tasks    TaskStore
	tx       Transactor
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projects ProjectStore, tasks TaskStore, tx Transactor) *ProjectService {
	return &ProjectService{projects: projects, tasks: tasks, tx: tx}
}

// Create creates an empty project owned by ownerID.
func (s *ProjectService) Create(ctx context.Context, ownerID ulid.ULID, req model.ProjectRequest) (model.ProjectResponse, error) {
	name := strings.TrimSpace(req.Name)
	if err := validateProjectName(name); err != nil {
		return model.ProjectResponse{}, err
	}

	project := model.NewProject(ownerID, name)
	if err := s.projects.Save(ctx, project); err != nil {
		return model.ProjectResponse{}, oops.With("operation", "create project").With("owner_id", ownerID.String()).Wrap(err)
	}

	return projectToResponse(project), nil
}

// GetByID returns one of the owner's projects.
func (s *ProjectService) GetByID(ctx context.Context, ownerID, projectID ulid.ULID) (model.ProjectResponse, error) {
	project, err := s.owned(ctx, ownerID, projectID)
	if err != nil {
		return model.ProjectResponse{}, err
	}
	return projectToResponse(project), nil
}

// ListByOwner returns the owner's projects. Always returns a non-nil slice.
func (s *ProjectService) ListByOwner(ctx context.Context, ownerID ulid.ULID) ([]model.ProjectResponse, error) {
	projects, err := s.projects.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, oops.With("operation", "list projects").With("owner_id", ownerID.String()).Wrap(err)
	}
	return projectsToResponse(projects), nil
}

// Delete removes a project and all of its tasks in one transaction.
func (s *ProjectService) Delete(ctx context.Context, ownerID, projectID ulid.ULID) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.owned(ctx, ownerID, projectID); err != nil {
			return err
		}
		if err := s.tasks.DeleteByProject(ctx, projectID); err != nil {
			return oops.With("operation", "delete project tasks").With("project_id", projectID.String()).Wrap(err)
		}
		if err := s.projects.Delete(ctx, projectID); err != nil {
			return notFoundOr(err, "project", projectID)
		}
		return nil
	})
}

func (s *ProjectService) owned(ctx context.Context, ownerID, projectID ulid.ULID) (*model.Project, error) {
	return ownedProject(ctx, s.projects, ownerID, projectID)
}

// ownedProject loads a project belonging to ownerID. Projects of other users
// are reported as not found.
func ownedProject(ctx context.Context, projects ProjectStore, ownerID, projectID ulid.ULID) (*model.Project, error) {
	project, err := projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, notFoundOr(err, "project", projectID)
	}
	if project.OwnerID != ownerID {
		return nil, notFound("project", projectID)
	}
	return project, nil
}
