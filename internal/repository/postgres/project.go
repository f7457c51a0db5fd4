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

// ProjectRepository implements the project store using PostgreSQL.
type ProjectRepository struct {
	pool poolIface
	now  func() time.Time
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(pool poolIface) *ProjectRepository {
	return &ProjectRepository{pool: pool, now: time.Now}
}

// Save inserts the project or renames it when it already exists.
// A zero ID is replaced with a generated one.
func (r *ProjectRepository) Save(ctx context.Context, project *model.Project) error {
	now := r.now().UTC().Truncate(time.Microsecond)

	id := project.ID
	createdAt := project.CreatedAt
	if id.IsZero() {
		id = ulid.Make()
		createdAt = now
	}

	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO projects (id, owner_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, updated_at = EXCLUDED.updated_at
	`, id.String(), project.OwnerID.String(), project.Name, createdAt, now)
	if err != nil {
		if isForeignKeyViolation(err) {
			return oops.Code("PROJECT_OWNER_NOT_FOUND").With("owner_id", project.OwnerID.String()).Wrap(repository.ErrNotFound)
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

// GetByID retrieves a project by ID without its tasks.
func (r *ProjectRepository) GetByID(ctx context.Context, id ulid.ULID) (*model.Project, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, owner_id, name, created_at, updated_at
		FROM projects WHERE id = $1
	`, id.String())
	project, err := scanProject(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("PROJECT_NOT_FOUND").With("project_id", id.String()).Wrap(repository.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get project").With("project_id", id.String()).Wrap(err)
	}
	return project, nil
}

// ListByOwner returns the owner's projects, oldest first.
func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID ulid.ULID) ([]*model.Project, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, owner_id, name, created_at, updated_at
		FROM projects WHERE owner_id = $1 ORDER BY created_at, id
	`, ownerID.String())
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

// Delete removes a project by ID.
func (r *ProjectRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM projects WHERE id = $1`, id.String())
	if err != nil {
		return oops.With("operation", "delete project").With("project_id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("PROJECT_NOT_FOUND").With("project_id", id.String()).Wrap(repository.ErrNotFound)
	}
	return nil
}

func scanProject(row pgx.Row) (*model.Project, error) {
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
