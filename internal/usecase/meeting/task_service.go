package meeting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
	"github.com/johnquangdev/meeting-whisperer/internal/domain/repositories"
	usecaseErrors "github.com/johnquangdev/meeting-whisperer/internal/usecase/errors"
)

// Tasks defines the task use cases
type Tasks interface {
	// ListMine returns tasks assigned to userID, newest first
	ListMine(ctx context.Context, userID uuid.UUID, status *entities.TaskStatus) ([]*entities.Task, error)

	// ListByMeeting returns a meeting's tasks to its owner
	ListByMeeting(ctx context.Context, ownerID, meetingID uuid.UUID) ([]*entities.Task, error)

	// Create adds a manual task to an owned meeting
	Create(ctx context.Context, ownerID uuid.UUID, input CreateTaskInput) (*entities.Task, error)

	// Update edits a task as the meeting owner or the assignee
	Update(ctx context.Context, userID, taskID uuid.UUID, input UpdateTaskInput) (*entities.Task, error)

	// Delete removes a task as the meeting owner
	Delete(ctx context.Context, userID, taskID uuid.UUID) error
}

var _ Tasks = (*TaskService)(nil)

// TaskService handles task business logic
type TaskService struct {
	taskRepo    repositories.TaskRepository
	meetingRepo repositories.MeetingRepository
	userRepo    repositories.UserRepository
}

// NewTaskService creates a new task service
func NewTaskService(
	taskRepo repositories.TaskRepository,
	meetingRepo repositories.MeetingRepository,
	userRepo repositories.UserRepository,
) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		meetingRepo: meetingRepo,
		userRepo:    userRepo,
	}
}

// CreateTaskInput represents input for a manual task
type CreateTaskInput struct {
	MeetingID   uuid.UUID
	Title       string
	Description string
	Priority    *string
	DueDate     *string
	AssigneeID  *uuid.UUID
}

// UpdateTaskInput represents editable task fields. A nil field is unchanged.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Priority    *string
	Status      *string
	DueDate     *string
	AssigneeID  *uuid.UUID
}

// ListMine returns tasks assigned to userID
func (s *TaskService) ListMine(ctx context.Context, userID uuid.UUID, status *entities.TaskStatus) ([]*entities.Task, error) {
	if status != nil && !status.IsValid() {
		return nil, usecaseErrors.ErrInvalidStatus
	}
	tasks, err := s.taskRepo.ListByAssignee(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// ListByMeeting returns a meeting's tasks to its owner
func (s *TaskService) ListByMeeting(ctx context.Context, ownerID, meetingID uuid.UUID) ([]*entities.Task, error) {
	if _, err := s.ownedMeeting(ctx, ownerID, meetingID); err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.ListByMeeting(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Create adds a manual task to a meeting owned by ownerID
func (s *TaskService) Create(ctx context.Context, ownerID uuid.UUID, input CreateTaskInput) (*entities.Task, error) {
	if _, err := s.ownedMeeting(ctx, ownerID, input.MeetingID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, usecaseErrors.ErrInvalidInput
	}

	task := entities.NewTask(input.MeetingID, title)
	task.Description = input.Description

	if input.Priority != nil {
		p, err := parsePriority(*input.Priority)
		if err != nil {
			return nil, err
		}
		task.Priority = p
	}
	if input.DueDate != nil {
		d, err := parseDate(*input.DueDate)
		if err != nil {
			return nil, err
		}
		task.DueDate = d
	}
	if input.AssigneeID != nil {
		if err := s.checkAssignee(ctx, *input.AssigneeID); err != nil {
			return nil, err
		}
		task.AssigneeID = input.AssigneeID
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// Update edits a task. The meeting owner and the assignee may update it;
// only the owner may reassign it.
func (s *TaskService) Update(ctx context.Context, userID, taskID uuid.UUID, input UpdateTaskInput) (*entities.Task, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	meeting, err := s.findMeeting(ctx, task.MeetingID)
	if err != nil {
		return nil, err
	}

	isOwner := meeting.IsOwnedBy(userID)
	if !isOwner && !task.IsAssignedTo(userID) {
		return nil, usecaseErrors.ErrForbidden
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, usecaseErrors.ErrInvalidInput
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Priority != nil {
		p, err := parsePriority(*input.Priority)
		if err != nil {
			return nil, err
		}
		task.Priority = p
	}
	if input.DueDate != nil {
		if *input.DueDate == "" {
			task.DueDate = nil
		} else {
			d, err := parseDate(*input.DueDate)
			if err != nil {
				return nil, err
			}
			task.DueDate = d
		}
	}
	if input.Status != nil {
		if err := task.SetStatus(entities.TaskStatus(strings.ToLower(*input.Status))); err != nil {
			return nil, usecaseErrors.ErrInvalidStatus
		}
	}
	if input.AssigneeID != nil {
		if !isOwner {
			return nil, usecaseErrors.ErrForbidden
		}
		if err := s.checkAssignee(ctx, *input.AssigneeID); err != nil {
			return nil, err
		}
		task.AssigneeID = input.AssigneeID
		task.Assignee = nil
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

// Delete removes a task. Only the meeting owner may delete.
func (s *TaskService) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return err
	}
	if _, err := s.ownedMeeting(ctx, userID, task.MeetingID); err != nil {
		return err
	}
	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func (s *TaskService) findTask(ctx context.Context, taskID uuid.UUID) (*entities.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, entities.ErrTaskNotFound) {
			return nil, usecaseErrors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

func (s *TaskService) findMeeting(ctx context.Context, meetingID uuid.UUID) (*entities.Meeting, error) {
	meeting, err := s.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, entities.ErrMeetingNotFound) {
			return nil, usecaseErrors.ErrMeetingNotFound
		}
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}
	return meeting, nil
}

func (s *TaskService) ownedMeeting(ctx context.Context, ownerID, meetingID uuid.UUID) (*entities.Meeting, error) {
	meeting, err := s.findMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if !meeting.IsOwnedBy(ownerID) {
		return nil, usecaseErrors.ErrForbidden
	}
	return meeting, nil
}

func (s *TaskService) checkAssignee(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			return fmt.Errorf("%w: unknown assignee", usecaseErrors.ErrInvalidInput)
		}
		return fmt.Errorf("failed to get assignee: %w", err)
	}
	return nil
}

func parsePriority(text string) (entities.TaskPriority, error) {
	p := entities.TaskPriority(strings.ToLower(strings.TrimSpace(text)))
	if !p.IsValid() {
		return "", usecaseErrors.ErrInvalidPriority
	}
	return p, nil
}

func parseDate(text string) (*time.Time, error) {
	d, err := time.Parse("2006-01-02", text)
	if err != nil {
		return nil, usecaseErrors.ErrInvalidDueDate
	}
	return &d, nil
}
