package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/taskboard/taskboard-go/internal/model"
)

const taskColumns = `id, project_id, title, description, issued, deadline, priority, hours_spent`

// upsertTaskQuery inserts a task or updates its mutable fields.
// project_id and issued are never touched on update.
const upsertTaskQuery = `
	INSERT INTO tasks (` + taskColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON DUPLICATE KEY UPDATE
		title       = VALUES(title),
		description = VALUES(description),
		deadline    = VALUES(deadline),
		priority    = VALUES(priority),
		hours_spent = VALUES(hours_spent)`

// TaskRepository handles task persistence operations.
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Save inserts or updates a task. A zero ID is replaced with a generated one.
func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	id := task.ID
	if id.IsZero() {
		id = ulid.Make()
	}
	issued := task.Issued.UTC().Truncate(time.Microsecond)
	deadline := TruncateDeadline(task.Deadline)

	_, err := conn(ctx, r.db).ExecContext(ctx, upsertTaskQuery,
		id.String(),
		task.ProjectID.String(),
		task.Title,
		task.Description,
		issued,
		deadlineParam(deadline),
		string(task.Priority),
		task.HoursSpent,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return oops.Code("PROJECT_NOT_FOUND").With("project_id", task.ProjectID.String()).Wrap(ErrNotFound)
		}
		return oops.With("operation", "save task").With("task_id", id.String()).Wrap(err)
	}

	task.ID = id
	task.Issued = issued
	task.Deadline = deadline
	return nil
}

// GetByID retrieves a task by its ID.
func (r *TaskRepository) GetByID(ctx context.Context, id ulid.ULID) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`

	task, err := scanTask(conn(ctx, r.db).QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, oops.Code("TASK_NOT_FOUND").With("task_id", id.String()).Wrap(ErrNotFound)
		}
		return nil, oops.With("operation", "get task").With("task_id", id.String()).Wrap(err)
	}
	return task, nil
}

// ListByProject returns a project's tasks in issue order.
func (r *TaskRepository) ListByProject(ctx context.Context, projectID ulid.ULID) ([]*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = ? ORDER BY issued, id`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, projectID.String())
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

// Delete removes a task by its ID.
func (r *TaskRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id.String())
	if err != nil {
		return oops.With("operation", "delete task").With("task_id", id.String()).Wrap(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return oops.With("operation", "delete task").With("task_id", id.String()).Wrap(err)
	}
	if affected == 0 {
		return oops.Code("TASK_NOT_FOUND").With("task_id", id.String()).Wrap(ErrNotFound)
	}
	return nil
}

// DeleteByProject removes every task of a project.
func (r *TaskRepository) DeleteByProject(ctx context.Context, projectID ulid.ULID) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM tasks WHERE project_id = ?`, projectID.String())
	if err != nil {
		return oops.With("operation", "delete project tasks").With("project_id", projectID.String()).Wrap(err)
	}
	return nil
}

// TruncateDeadline returns a UTC copy of deadline at the microsecond
// precision both schemas store, or nil.
func TruncateDeadline(deadline *time.Time) *time.Time {
	if deadline == nil {
		return nil
	}
	d := deadline.UTC().Truncate(time.Microsecond)
	return &d
}

func deadlineParam(deadline *time.Time) any {
	if deadline == nil {
		return nil
	}
	return *deadline
}

func scanTask(row rowScanner) (*model.Task, error) {
	var (
		task             model.Task
		idStr, projectID string
		priority         string
		deadline         sql.NullTime
	)
	if err := row.Scan(&idStr, &projectID, &task.Title, &task.Description, &task.Issued, &deadline, &priority, &task.HoursSpent); err != nil {
		return nil, err
	}
	var err error
	if task.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.With("operation", "parse task id").With("task_id", idStr).Wrap(err)
	}
	if task.ProjectID, err = ulid.Parse(projectID); err != nil {
		return nil, oops.With("operation", "parse project id").With("project_id", projectID).Wrap(err)
	}
	if deadline.Valid {
		d := deadline.Time
		task.Deadline = &d
	}
	task.Priority = model.Priority(priority)
	return &task, nil
}
