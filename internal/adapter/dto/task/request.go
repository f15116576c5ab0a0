package task

// CreateTaskRequest represents the request to add a task to a meeting
type CreateTaskRequest struct {
	MeetingID   string  `json:"meeting_id" validate:"required,uuid"`
	Title       string  `json:"title" validate:"required,notblank,max=500"`
	Description string  `json:"description"`
	Priority    *string `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	DueDate     *string `json:"due_date,omitempty" validate:"omitempty,isodate"`
	AssigneeID  *string `json:"assignee_id,omitempty" validate:"omitempty,uuid"`
}

// UpdateTaskRequest represents a partial task update. An empty due_date clears
// it, so the date format is checked by the task service.
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,notblank,max=500"`
	Description *string `json:"description,omitempty"`
	Priority    *string `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress completed cancelled"`
	DueDate     *string `json:"due_date,omitempty"`
	AssigneeID  *string `json:"assignee_id,omitempty" validate:"omitempty,uuid"`
}

// ListTasksRequest represents query parameters for listing tasks
type ListTasksRequest struct {
	Status string `query:"status" validate:"omitempty,oneof=pending in_progress completed cancelled"`
}
