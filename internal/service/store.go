package service

import (
	"context"

	"github.com/oklog/ulid/v2"

	"github.com/taskboard/taskboard-go/internal/model"
)

// UserStore persists user accounts. Lookups fail with repository.ErrNotFound and
// Create fails with repository.ErrDuplicate when the username is taken.
type UserStore interface {
	GetByID(ctx context.Context, id ulid.ULID) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
}

// ProjectStore persists projects. Save assigns the ID of a new project.
type ProjectStore interface {
	GetByID(ctx context.Context, id ulid.ULID) (*model.Project, error)
	ListByOwner(ctx context.Context, ownerID ulid.ULID) ([]*model.Project, error)
	Save(ctx context.Context, project *model.Project) error
	Delete(ctx context.Context, id ulid.ULID) error
}

// TaskStore persists tasks. Save assigns the ID of a new task.
type TaskStore interface {
	GetByID(ctx context.Context, id ulid.ULID) (*model.Task, error)
	ListByProject(ctx context.Context, projectID ulid.ULID) ([]*model.Task, error)
	Save(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id ulid.ULID) error
	DeleteByProject(ctx context.Context, projectID ulid.ULID) error
}

// Transactor runs fn atomically. Stores called with the ctx handed to fn
// take part in the same transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TokenIssuer signs identity tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID ulid.ULID, username string) (string, error)
}
