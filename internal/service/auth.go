package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/taskboard/taskboard-go/internal/crypto"
	"github.com/taskboard/taskboard-go/internal/model"
	"github.com/taskboard/taskboard-go/internal/repository"
)

// dummyPassword is hashed once and verified against for unknown usernames.
const dummyPassword = "taskboard-timing-equaliser"

// AuthService handles registration and authentication.
type AuthService struct {
	users  UserStore
	hasher crypto.PasswordHasher
	tokens TokenIssuer

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, hasher crypto.PasswordHasher, tokens TokenIssuer) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

// Register creates a new user account and returns an auth token.
// A taken username fails with ErrUserAlreadyExists, whether found by the
// lookup or reported by the store's unique constraint on insert.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	if err := validateRegistration(req); err != nil {
		return model.AuthResponse{}, err
	}

	_, err := s.users.GetByUsername(ctx, req.Username)
	switch {
	case err == nil:
		return model.AuthResponse{}, userExists(req.Username)
	case !errors.Is(err, repository.ErrNotFound):
		return model.AuthResponse{}, oops.With("operation", "lookup username").Wrap(err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.AuthResponse{}, oops.Code("AUTH_HASH_FAILED").Wrap(err)
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.AuthResponse{}, userExists(req.Username)
		}
		return model.AuthResponse{}, oops.With("operation", "create user").Wrap(err)
	}

	slog.InfoContext(ctx, "user registered", "user_id", user.ID.String())

	return s.respond(user)
}

// Authenticate checks a username and password and returns an auth token.
// Unknown usernames and wrong passwords fail with the same ErrUnauthorized.
func (s *AuthService) Authenticate(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return model.AuthResponse{}, oops.With("operation", "lookup username").Wrap(err)
		}
		// Burn the same hashing work as a real verify.
		if hash := s.dummy(); hash != "" {
			_, _ = s.hasher.Verify(req.Password, hash)
		}
		return model.AuthResponse{}, unauthorized()
	}

	match, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		return model.AuthResponse{}, oops.Code("AUTH_VERIFY_FAILED").With("user_id", user.ID.String()).Wrap(err)
	}
	if !match {
		return model.AuthResponse{}, unauthorized()
	}

	return s.respond(user)
}

// GetUser retrieves a user by ID and returns safe user data.
func (s *AuthService) GetUser(ctx context.Context, userID ulid.ULID) (model.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return model.UserResponse{}, notFoundOr(err, "user", userID)
	}
	return userToResponse(user), nil
}

func (s *AuthService) respond(user *model.User) (model.AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return model.AuthResponse{}, oops.Code("AUTH_TOKEN_FAILED").With("user_id", user.ID.String()).Wrap(err)
	}
	return model.AuthResponse{
		Token: token,
		User:  userToResponse(user),
	}, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			slog.Warn("computing dummy password hash failed", "error", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func userExists(username string) error {
	return oops.Code("USER_ALREADY_EXISTS").With("username", username).
		Wrapf(ErrUserAlreadyExists, "user with username %s already exists", username)
}

func unauthorized() error {
	return oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrUnauthorized)
}
