package model

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Priority ranks a task.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityNormal   Priority = "NORMAL"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Task represents a task in the database.
// Issued and ProjectID are fixed at creation.
type Task struct {
	ID          ulid.ULID
	ProjectID   ulid.ULID
	Title       string
	Description string
	Issued      time.Time
	Deadline    *time.Time
	Priority    Priority
	HoursSpent  int
}

// NewTask creates a task issued at the given time with no hours spent.
func NewTask(title, description string, deadline *time.Time, priority Priority, issued time.Time) *Task {
	return &Task{
		Title:       title,
		Description: description,
		Issued:      issued,
		Deadline:    deadline,
		Priority:    priority,
		HoursSpent:  0,
	}
}

// TaskDTO is the external shape of a task, used for both input and output.
// On input TaskID and Issued are ignored by create; Issued and ProjectID are ignored by update.
type TaskDTO struct {
	TaskID      ulid.ULID  `json:"task_id"`
	ProjectID   ulid.ULID  `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Deadline    *time.Time `json:"deadline"`
	Issued      time.Time  `json:"issued"`
	Priority    Priority   `json:"priority"`
	HoursSpent  int        `json:"hours_spent"`
}
