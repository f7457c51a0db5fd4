package service

import (
	"time"

	"github.com/taskboard/taskboard-go/internal/model"
)

// TaskToDTO maps a task entity to its transfer representation.
func TaskToDTO(task *model.Task) model.TaskDTO {
	return model.TaskDTO{
		TaskID:      task.ID,
		ProjectID:   task.ProjectID,
		Title:       task.Title,
		Description: task.Description,
		Deadline:    copyTime(task.Deadline),
		Issued:      task.Issued,
		Priority:    task.Priority,
		HoursSpent:  task.HoursSpent,
	}
}

// TaskFromDTO maps a transfer representation back to a task entity.
func TaskFromDTO(dto model.TaskDTO) *model.Task {
	return &model.Task{
		ID:          dto.TaskID,
		ProjectID:   dto.ProjectID,
		Title:       dto.Title,
		Description: dto.Description,
		Issued:      dto.Issued,
		Deadline:    copyTime(dto.Deadline),
		Priority:    dto.Priority,
		HoursSpent:  dto.HoursSpent,
	}
}

// tasksToDTO converts a slice of tasks, keeping their order.
// Always returns a non-nil slice.
func tasksToDTO(tasks []*model.Task) []model.TaskDTO {
	result := make([]model.TaskDTO, 0, len(tasks))
	for _, task := range tasks {
		result = append(result, TaskToDTO(task))
	}
	return result
}

func projectToResponse(project *model.Project) model.ProjectResponse {
	return model.ProjectResponse{
		ProjectID: project.ID,
		OwnerID:   project.OwnerID,
		Name:      project.Name,
		CreatedAt: project.CreatedAt,
		UpdatedAt: project.UpdatedAt,
	}
}

func projectsToResponse(projects []*model.Project) []model.ProjectResponse {
	result := make([]model.ProjectResponse, 0, len(projects))
	for _, project := range projects {
		result = append(result, projectToResponse(project))
	}
	return result
}

func userToResponse(user *model.User) model.UserResponse {
	return model.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
