package task

import (
	"time"

	"github.com/johnquangdev/meeting-whisperer/internal/adapter/dto/user"
)

// TaskResponse represents a task in responses
type TaskResponse struct {
	ID          string             `json:"id"`
	MeetingID   string             `json:"meeting_id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Context     string             `json:"context,omitempty"`
	Priority    string             `json:"priority"`
	Status      string             `json:"status"`
	DueDate     *string            `json:"due_date,omitempty"`
	AssigneeID  *string            `json:"assignee_id,omitempty"`
	Assignee    *user.UserResponse `json:"assignee,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
}

// TaskListResponse represents a list of tasks
type TaskListResponse struct {
	Tasks []*TaskResponse `json:"tasks"`
	Total int             `json:"total"`
}
