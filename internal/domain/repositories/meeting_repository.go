package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
	"gorm.io/datatypes"
)

// MeetingRepository defines the interface for meeting data access
type MeetingRepository interface {
	// Create creates a new meeting
	Create(ctx context.Context, meeting *entities.Meeting) error

	// FindByID retrieves a meeting with its participants, or entities.ErrMeetingNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error)

	// List retrieves meetings with filters and pagination
	List(ctx context.Context, filters MeetingFilters) ([]*entities.Meeting, int64, error)

	// UpdateDetails updates user-editable fields (title, description)
	UpdateDetails(ctx context.Context, meeting *entities.Meeting) error

	// Delete removes a meeting together with its tasks
	Delete(ctx context.Context, id uuid.UUID) error

	// TransitionStatus moves a meeting from -> to only if it is still in from.
	// Returns entities.ErrInvalidStatusTransition when the row was changed concurrently.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to entities.MeetingStatus) error

	// MarkFailed sets status failed and records the error message
	MarkFailed(ctx context.Context, id uuid.UUID, message string) error

	// CompleteRun persists run results, marks the meeting completed and creates
	// all tasks in a single transaction. The meeting is left with notifications
	// pending until MarkNotificationsQueued is called.
	CompleteRun(ctx context.Context, id uuid.UUID, results RunResults, tasks []*entities.Task) error

	// MarkNotificationsQueued records that the notification job of a completed
	// meeting is on the queue
	MarkNotificationsQueued(ctx context.Context, id uuid.UUID) error
}

// RunResults holds the meeting columns written by a successful run
type RunResults struct {
	Transcription string
	Summary       string
	KeyPoints     datatypes.JSON
	ProcessedAt   time.Time
}

// MeetingFilters represents filter options for listing meetings
type MeetingFilters struct {
	OwnerID uuid.UUID
	Status  *entities.MeetingStatus
	Limit   int
	Offset  int
}
