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

const projectColumns = `id, owner_id, name, created_at, updated_at`

// ProjectRepository handles project persistence operations.
// Tasks are stored separately through TaskRepository.
type ProjectRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db, now: time.Now}
}

// Save inserts the project, or updates its name when it already exists.
// A zero ID is replaced with a generated one.
func (r *ProjectRepository) Save(ctx context.Context, project *model.Project) error {
	now := r.now().UTC().Truncate(time.Microsecond)

	id := project.ID
	createdAt := project.CreatedAt
	if id.IsZero() {
		id = ulid.Make()
		createdAt = now
	}

	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			name       = VALUES(name),
			updated_at = VALUES(updated_at)`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		id.String(), project.OwnerID.String(), project.Name, createdAt, now,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return oops.Code("PROJECT_OWNER_NOT_FOUND").With("owner_id", project.OwnerID.String()).Wrap(ErrNotFound)
		}
		return oops.With("operation", "save project").With("project_id", id.String()).Wrap(err)
	}

	project.ID = id
	project.CreatedAt = createdAt
	project.UpdatedAt = now
	for _, task := range project.Tasks {
		task.ProjectID = id
	}
	return nil
}

// GetByID retrieves a project by its ID. The task collection is not loaded.
func (r *ProjectRepository) GetByID(ctx context.Context, id ulid.ULID) (*model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`

	project, err := scanProject(conn(ctx, r.db).QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, oops.Code("PROJECT_NOT_FOUND").With("project_id", id.String()).Wrap(ErrNotFound)
		}
		return nil, oops.With("operation", "get project").With("project_id", id.String()).Wrap(err)
	}
	return project, nil
}

// ListByOwner returns the owner's projects, oldest first.
func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID ulid.ULID) ([]*model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE owner_id = ? ORDER BY created_at, id`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, ownerID.String())
	if err != nil {
		return nil, oops.With("operation", "list projects").With("owner_id", ownerID.String()).Wrap(err)
	}
	defer rows.Close()

	projects := make([]*model.Project, 0)
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, oops.With("operation", "scan project").Wrap(err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate projects").Wrap(err)
	}
	return projects, nil
}

// Delete removes a project. Its tasks go with it through the foreign key.
func (r *ProjectRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id.String())
	if err != nil {
		return oops.With("operation", "delete project").With("project_id", id.String()).Wrap(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return oops.With("operation", "delete project").With("project_id", id.String()).Wrap(err)
	}
	if affected == 0 {
		return oops.Code("PROJECT_NOT_FOUND").With("project_id", id.String()).Wrap(ErrNotFound)
	}
	return nil
}

func scanProject(row rowScanner) (*model.Project, error) {
	var (
		project        model.Project
		idStr, ownerID string
	)
	if err := row.Scan(&idStr, &ownerID, &project.Name, &project.CreatedAt, &project.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if project.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.With("operation", "parse project id").With("project_id", idStr).Wrap(err)
	}
	if project.OwnerID, err = ulid.Parse(ownerID); err != nil {
		return nil, oops.With("operation", "parse owner id").With("owner_id", ownerID).Wrap(err)
	}
	return &project, nil
}
