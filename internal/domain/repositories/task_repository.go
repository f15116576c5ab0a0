package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a single task
	Create(ctx context.Context, task *entities.Task) error

	// FindByID retrieves a task, or entities.ErrTaskNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Task, error)

	// ListByMeeting returns a meeting's tasks in creation order
	ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.Task, error)

	// ListByAssignee returns tasks assigned to a user, newest first
	ListByAssignee(ctx context.Context, userID uuid.UUID, status *entities.TaskStatus) ([]*entities.Task, error)

	// Update saves a task
	Update(ctx context.Context, task *entities.Task) error

	// Delete removes a task
	Delete(ctx context.Context, id uuid.UUID) error
}
