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

// UserRepository implements the user store using PostgreSQL.
type UserRepository struct {
	pool poolIface
	now  func() time.Time
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool poolIface) *UserRepository {
	return &UserRepository{pool: pool, now: time.Now}
}

// Create inserts a new user and sets the generated ID and creation time on it.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	id := user.ID
	if id.IsZero() {
		id = ulid.Make()
	}
	createdAt := r.now().UTC().Truncate(time.Microsecond)

	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id.String(), user.Username, user.Email, user.PasswordHash, createdAt)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("USER_DUPLICATE").With("username", user.Username).Wrap(repository.ErrDuplicate)
		}
		return oops.With("operation", "create user").With("username", user.Username).Wrap(err)
	}

	user.ID = id
	user.CreatedAt = createdAt
	return nil
}

// GetByUsername retrieves a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, username, email, password_hash, created_at
		FROM users WHERE username = $1
	`, username)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").With("username", username).Wrap(repository.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get user by username").Wrap(err)
	}
	return user, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id ulid.ULID) (*model.User, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, username, email, password_hash, created_at
		FROM users WHERE id = $1
	`, id.String())
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").With("user_id", id.String()).Wrap(repository.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get user").With("user_id", id.String()).Wrap(err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var (
		user  model.User
		idStr string
	)
	if err := row.Scan(&idStr, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt); err != nil {
		return nil, err
	}
	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.With("operation", "parse user id").With("user_id", idStr).Wrap(err)
	}
	user.ID = id
	return &user, nil
}
