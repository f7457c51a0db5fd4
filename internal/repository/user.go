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

const userColumns = `id, username, email, password_hash, created_at`

// UserRepository handles user persistence operations.
type UserRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db, now: time.Now}
}

// Create inserts a new user and sets the generated ID and creation time on the user struct.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	id := user.ID
	if id.IsZero() {
		id = ulid.Make()
	}
	createdAt := r.now().UTC().Truncate(time.Microsecond)

	query := `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?)`
	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		id.String(), user.Username, user.Email, user.PasswordHash, createdAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return oops.Code("USER_DUPLICATE").With("username", user.Username).Wrap(ErrDuplicate)
		}
		return oops.With("operation", "create user").With("username", user.Username).Wrap(err)
	}

	user.ID = id
	user.CreatedAt = createdAt
	return nil
}

// GetByUsername retrieves a user by their username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`

	user, err := scanUser(conn(ctx, r.db).QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, oops.Code("USER_NOT_FOUND").With("username", username).Wrap(ErrNotFound)
		}
		return nil, oops.With("operation", "get user by username").Wrap(err)
	}
	return user, nil
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id ulid.ULID) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	user, err := scanUser(conn(ctx, r.db).QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, oops.Code("USER_NOT_FOUND").With("user_id", id.String()).Wrap(ErrNotFound)
		}
		return nil, oops.With("operation", "get user").With("user_id", id.String()).Wrap(err)
	}
	return user, nil
}

func scanUser(row rowScanner) (*model.User, error) {
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
