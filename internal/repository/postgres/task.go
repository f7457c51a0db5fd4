package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/taskboard/taskboard-go/internal/model"
	"github.com/taskboard/taskboard-go/internal/repository"
)

// TaskRepository implements the task store using PostgreSQL.
type TaskRepository struct {
	pool poolIface
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(pool poolIface) *TaskRepository {
	return &TaskRepository{pool: pool}
}

// Save inserts or updates a task. project_id and issued are fixed once written.
func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	id := task.ID
	if id.IsZero() {
		id = ulid.Make()
	}
	issued := task.Issued.UTC().Truncate(time.Microsecond)
	deadline := repository.TruncateDeadline(task.Deadline)

	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO tasks (id, project_id, title, description, issued, deadline, priority, hours_spent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			deadline = EXCLUDED.deadline,
			priority = EXCLUDED.priority,
			hours_spent = EXCLUDED.hours_spent
	`, id.String(), task.ProjectID.String(), task.Title, task.Description, issued,
		deadline, string(task.Priority), task.HoursSpent)
	if err != nil {
		if isForeignKeyViolation(err) {
			return oops.Code("PROJECT_NOT_FOUND").With("project_id", task.ProjectID.String()).Wrap(repository.ErrNotFound)
		}
		return oops.With("operation", "save task").With("task_id", id.String()).Wrap(err)
	}

	task.ID = id
	task.Issued = issued
	task.Deadline = deadline
	return nil
}

// GetByID retrieves a task by ID.
func (r *TaskRepository) GetByID(ctx context.Context, id ulid.ULID) (*model.Task, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, project_id, title, description, issued, deadline, priority, hours_spent
		FROM tasks WHERE id = $1
	`, id.String())
	task, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("TASK_NOT_FOUND").With("task_id", id.String()).Wrap(repository.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get task").With("task_id", id.String()).Wrap(err)
	}
	return task, nil
}

// ListByProject returns a project's tasks in issue order.
func (r *TaskRepository) ListByProject(ctx context.Context, projectID ulid.ULID) ([]*model.Task, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, project_id, title, description, issued, deadline, priority, hours_spent
		FROM tasks WHERE project_id = $1 ORDER BY issued, id
	`, projectID.String())
	if err != nil {
		return nil, oops.With("operation", "list tasks").With("project_id", projectID.String()).Wrap(err)
	}
	defer rows.Close()

	tasks := make([]*model.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, oops.With("operation", "scan task").Wrap(err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate tasks").Wrap(err)
	}
	return tasks, nil
}

// Delete removes a task by ID.
func (r *TaskRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id.String())
	if err != nil {
		return oops.With("operation", "delete task").With("task_id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("TASK_NOT_FOUND").With("task_id", id.String()).Wrap(repository.ErrNotFound)
	}
	return nil
}

// DeleteByProject removes every task of a project.
func (r *TaskRepository) DeleteByProject(ctx context.Context, projectID ulid.ULID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM tasks WHERE project_id = $1`, projectID.String())
	if err != nil {
		return oops.With("operation", "delete project tasks").With("project_id", projectID.String()).Wrap(err)
	}
	return nil
}

func scanTask(row pgx.Row) (*model.Task, error) {
	var (
		task             model.Task
		idStr, projectID string
		priority         string
	)
	if err := row.Scan(&idStr, &projectID, &task.Title, &task.Description, &task.Issued,
		&task.Deadline, &priority, &task.HoursSpent); err != nil {
		return nil, err
	}
	var err error
	if task.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.With("operation", "parse task id").With("task_id", idStr).Wrap(err)
	}
	if task.ProjectID, err = ulid.Parse(projectID); err != nil {
		return nil, oops.With("operation", "parse project id").With("project_id", projectID).Wrap(err)
	}
	task.Priority = model.Priority(priority)
	return &task, nil
}
