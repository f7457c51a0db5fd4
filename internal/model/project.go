package model

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Project groups tasks under a single owner. Tasks never outlive their project.
type Project struct {
	ID        ulid.ULID
	OwnerID   ulid.ULID
	Name      string
	Tasks     []*Task
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewProject creates a project owned by ownerID. The store assigns the ID.
func NewProject(ownerID ulid.ULID, name string) *Project {
	return &Project{
		OwnerID: ownerID,
		Name:    name,
	}
}

// AddTask registers task in the project's task collection.
func (p *Project) AddTask(task *Task) {
	task.ProjectID = p.ID
	p.Tasks = append(p.Tasks, task)
}

// ProjectRequest represents a project creation request.
type ProjectRequest struct {
	Name string `json:"name"`
}

// ProjectResponse represents a project in API responses.
type ProjectResponse struct {
	ProjectID ulid.ULID `json:"project_id"`
	OwnerID   ulid.ULID `json:"owner_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
