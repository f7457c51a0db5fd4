package service

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/taskboard/taskboard-go/internal/model"
	"github.com/taskboard/taskboard-go/internal/repository"
)

// TaskService handles task business logic. Tasks are reached through their
// project, so every operation is scoped to the project's owner; tasks in
// projects of other users are reported as not found.
type TaskService struct {
	tasks    TaskStore
	projects ProjectStore
	tx       Transactor
	now      func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks TaskStore, projects ProjectStore, tx Transactor) *TaskService {
	return &TaskService{
		tasks:    tasks,
		projects: projects,
		tx:       tx,
		now:      time.Now,
	}
}

// Create adds a task to one of the owner's projects. The issued time is the
// server's clock and hours spent start at zero; TaskID, Issued and HoursSpent
// in dto are ignored. An empty priority defaults to NORMAL. The project is
// resolved before the input is validated, so a missing project always fails
// with ErrNotFound. The project and the task are written in one transaction.
func (s *TaskService) Create(ctx context.Context, ownerID ulid.ULID, dto model.TaskDTO) (model.TaskDTO, error) {
	var created *model.Task
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		project, err := ownedProject(ctx, s.projects, ownerID, dto.ProjectID)
		if err != nil {
			return err
		}

		priority := dto.Priority
		if priority == "" {
			priority = model.PriorityNormal
		}
		if err := validateTask(dto.Title, priority, 0); err != nil {
			return err
		}

		task := model.NewTask(dto.Title, dto.Description, dto.Deadline, priority, s.now().UTC())
		project.AddTask(task)

		if err := s.projects.Save(ctx, project); err != nil {
			return oops.With("operation", "save project").With("project_id", project.ID.String()).Wrap(err)
		}
		if err := s.tasks.Save(ctx, task); err != nil {
			return oops.With("operation", "save task").With("project_id", project.ID.String()).Wrap(err)
		}

		created = task
		return nil
	})
	if err != nil {
		return model.TaskDTO{}, err
	}

	return TaskToDTO(created), nil
}

// Update replaces a task's title, description, deadline, priority and hours
// spent. The issued time and the owning project never change. An empty
// priority keeps the current one.
func (s *TaskService) Update(ctx context.Context, ownerID ulid.ULID, dto model.TaskDTO) (model.TaskDTO, error) {
	task, err := s.ownedTask(ctx, ownerID, dto.TaskID)
	if err != nil {
		return model.TaskDTO{}, err
	}

	priority := dto.Priority
	if priority == "" {
		priority = task.Priority
	}
	if err := validateTask(dto.Title, priority, dto.HoursSpent); err != nil {
		return model.TaskDTO{}, err
	}

	task.Title = dto.Title
	task.Description = dto.Description
	task.Deadline = copyTime(dto.Deadline)
	task.Priority = priority
	task.HoursSpent = dto.HoursSpent

	if err := s.tasks.Save(ctx, task); err != nil {
		return model.TaskDTO{}, oops.With("operation", "save task").With("task_id", task.ID.String()).Wrap(err)
	}

	return TaskToDTO(task), nil
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, ownerID, taskID ulid.ULID) error {
	if _, err := s.ownedTask(ctx, ownerID, taskID); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return notFoundOr(err, "task", taskID)
	}
	return nil
}

// GetByID returns a single task.
func (s *TaskService) GetByID(ctx context.Context, ownerID, taskID ulid.ULID) (model.TaskDTO, error) {
	task, err := s.ownedTask(ctx, ownerID, taskID)
	if err != nil {
		return model.TaskDTO{}, err
	}
	return TaskToDTO(task), nil
}

// GetByProjectID returns the project's tasks in store order. A project without
// tasks, or one that does not exist, yields an empty slice. A project of
// another user fails with ErrNotFound.
func (s *TaskService) GetByProjectID(ctx context.Context, ownerID, projectID ulid.ULID) ([]model.TaskDTO, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return []model.TaskDTO{}, nil
	case err != nil:
		return nil, oops.With("operation", "load project").With("project_id", projectID.String()).Wrap(err)
	case project.OwnerID != ownerID:
		return nil, notFound("project", projectID)
	}

	tasks, err := s.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, oops.With("operation", "list tasks").With("project_id", projectID.String()).Wrap(err)
	}
	return tasksToDTO(tasks), nil
}

// ownedTask loads a task whose project belongs to ownerID.
func (s *TaskService) ownedTask(ctx context.Context, ownerID, taskID ulid.ULID) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, notFoundOr(err, "task", taskID)
	}

	project, err := s.projects.GetByID(ctx, task.ProjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("task", taskID)
		}
		return nil, oops.With("operation", "load project").With("project_id", task.ProjectID.String()).Wrap(err)
	}
	if project.OwnerID != ownerID {
		return nil, notFound("task", taskID)
	}
	return task, nil
}
