package service

import (
	"errors"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/taskboard/taskboard-go/internal/repository"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUnauthorized      = errors.New("invalid username or password")
	ErrValidation        = errors.New("validation failed")
)

// notFoundOr converts a store not-found error for the named entity into
// ErrNotFound and wraps every other store failure unchanged.
func notFoundOr(err error, entity string, id ulid.ULID) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(entity, id)
	}
	return oops.With("operation", "load "+entity).With(entity+"_id", id.String()).Wrap(err)
}

func notFound(entity string, id ulid.ULID) error {
	return oops.
		Code(codeFor(entity)+"_NOT_FOUND").
		With(entity+"_id", id.String()).
		Wrapf(ErrNotFound, "%s with id %s wasn't found", entity, id)
}

func codeFor(entity string) string {
	switch entity {
	case "task":
		return "TASK"
	case "project":
		return "PROJECT"
	case "user":
		return "USER"
	}
	return "ENTITY"
}

func validationError(field, format string, args ...any) error {
	return oops.Code("VALIDATION_FAILED").With("field", field).Wrapf(ErrValidation, format, args...)
}
