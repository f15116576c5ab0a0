package presenter

import (
	"github.com/johnquangdev/meeting-whisperer/internal/adapter/dto/task"
	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
	"github.com/johnquangdev/meeting-whisperer/pkg/validator"
)

// ToTaskResponse converts a Task entity to TaskResponse DTO
func ToTaskResponse(t *entities.Task) *task.TaskResponse {
	if t == nil {
		return nil
	}

	response := &task.TaskResponse{
		ID:          t.ID.String(),
		MeetingID:   t.MeetingID.String(),
		Title:       t.Title,
		Description: t.Description,
		Context:     t.Context,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		CompletedAt: t.CompletedAt,
	}

	if t.DueDate != nil {
		due := t.DueDate.Format(validator.DateLayout)
		response.DueDate = &due
	}
	if t.AssigneeID != nil {
		assignee := t.AssigneeID.String()
		response.AssigneeID = &assignee
	}
	if t.Assignee != nil {
		response.Assignee = ToUserResponse(t.Assignee)
	}

	return response
}

// ToTaskListResponse converts a slice of tasks
func ToTaskListResponse(tasks []*entities.Task) *task.TaskListResponse {
	responses := make([]*task.TaskResponse, len(tasks))
	for i, t := range tasks {
		responses[i] = ToTaskResponse(t)
	}
	return &task.TaskListResponse{Tasks: responses, Total: len(responses)}
}
