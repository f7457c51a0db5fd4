package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/taskboard/taskboard-go/internal/model"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 64
	minPasswordLength = 8
	maxPasswordLength = 1024
	maxNameLength     = 255
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func validateRegistration(req model.RegisterRequest) error {
	if n := utf8.RuneCountInString(req.Username); n < minUsernameLength || n > maxUsernameLength {
		return validationError("username", "username must be between %d and %d characters", minUsernameLength, maxUsernameLength)
	}
	if !usernamePattern.MatchString(req.Username) {
		return validationError("username", "username may only contain letters, digits, underscores and dashes")
	}
	if req.Password == "" {
		return validationError("password", "password is required")
	}
	if len(req.Password) < minPasswordLength || len(req.Password) > maxPasswordLength {
		return validationError("password", "password must be between %d and %d bytes", minPasswordLength, maxPasswordLength)
	}
	if req.Email != "" && !strings.Contains(req.Email, "@") {
		return validationError("email", "email must contain @")
	}
	return nil
}

func validateTask(title string, priority model.Priority, hoursSpent int) error {
	if strings.TrimSpace(title) == "" {
		return validationError("title", "title is required")
	}
	if utf8.RuneCountInString(title) > maxNameLength {
		return validationError("title", "title must be at most %d characters", maxNameLength)
	}
	if !priority.Valid() {
		return validationError("priority", "priority %q is not one of LOW, NORMAL, HIGH, CRITICAL", priority)
	}
	if hoursSpent < 0 {
		return validationError("hours_spent", "hours_spent must not be negative")
	}
	return nil
}

func validateProjectName(name string) error {
	if strings.TrimSpace(name) == "" {
		return validationError("name", "name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return validationError("name", "name must be at most %d characters", maxNameLength)
	}
	return nil
}
