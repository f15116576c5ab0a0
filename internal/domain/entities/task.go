package entities

import (
	"time"

	"github.com/google/uuid"
)

// TaskPriority represents task urgency
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// IsValid checks if the priority is known
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

// TaskStatus represents task progress
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// IsValid checks if the status is known
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

// Task is an action item derived from a meeting
type Task struct {
	ID          uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title       string       `json:"title" gorm:"type:varchar(500);not null"`
	Description string       `json:"description" gorm:"type:text;not null;default:''"`
	Context     string       `json:"context,omitempty" gorm:"type:text;not null;default:''"`
	Priority    TaskPriority `json:"priority" gorm:"type:varchar(10);not null;default:'medium'"`
	Status      TaskStatus   `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	DueDate     *time.Time   `json:"due_date,omitempty" gorm:"type:date"`

	MeetingID  uuid.UUID  `json:"meeting_id" gorm:"type:uuid;not null;index"`
	AssigneeID *uuid.UUID `json:"assignee_id,omitempty" gorm:"type:uuid;index"`
	Assignee   *User      `json:"assignee,omitempty" gorm:"foreignKey:AssigneeID"`

	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	CompletedAt *time.Time `json:"completed_at,omitempty" gorm:"type:timestamp"`
}

// TableName specifies the table name for Task
func (Task) TableName() string {
	return "tasks"
}

// NewTask creates a pending medium-priority task on a meeting
func NewTask(meetingID uuid.UUID, title string) *Task {
	now := time.Now()
	return &Task{
		ID:        uuid.New(),
		Title:     title,
		Priority:  TaskPriorityMedium,
		Status:    TaskStatusPending,
		MeetingID: meetingID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetStatus updates the status and stamps CompletedAt on first completion
func (t *Task) SetStatus(status TaskStatus) error {
	if !status.IsValid() {
		return ErrInvalidTaskStatus
	}
	t.Status = status
	if status == TaskStatusCompleted && t.CompletedAt == nil {
		now := time.Now()
		t.CompletedAt = &now
	}
	return nil
}

// IsAssignedTo reports whether the task belongs to userID
func (t *Task) IsAssignedTo(userID uuid.UUID) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}
