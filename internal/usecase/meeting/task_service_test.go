package meeting

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
	"github.com/johnquangdev/meeting-whisperer/internal/domain/repositories"
	usecaseErrors "github.com/johnquangdev/meeting-whisperer/internal/usecase/errors"
)

type memTasks struct {
	repositories.TaskRepository
	tasks map[uuid.UUID]*entities.Task
}

func (m *memTasks) Create(_ context.Context, t *entities.Task) error {
	m.tasks[t.ID] = t
	return nil
}

func (m *memTasks) FindByID(_ context.Context, id uuid.UUID) (*entities.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, entities.ErrTaskNotFound
	}
	return t, nil
}

func (m *memTasks) Update(_ context.Context, t *entities.Task) error {
	m.tasks[t.ID] = t
	return nil
}

func (m *memTasks) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.tasks, id)
	return nil
}

func newTaskFixture(t *testing.T) (*TaskService, *memTasks, *entities.Meeting, *entities.User, *entities.User) {
	t.Helper()
	owner := entities.NewUser("owner@x.test", "Owner")
	assignee := entities.NewUser("bob@x.test", "Bob")
	meetings := newMemMeetings()
	m := entities.NewMeeting(owner.ID, "Sync", "recordings/s.mp3", "s.mp3", 1)
	meetings.Create(context.Background(), m)

	tasks := &memTasks{tasks: map[uuid.UUID]*entities.Task{}}
	users := memUsers{users: map[uuid.UUID]*entities.User{owner.ID: owner, assignee.ID: assignee}}
	return NewTaskService(tasks, meetings, users), tasks, m, owner, assignee
}

func strPtr(s string) *string { return &s }

func TestTaskService_CreateAndUpdate(t *testing.T) {
	svc, _, m, owner, bob := newTaskFixture(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, owner.ID, CreateTaskInput{
		MeetingID:  m.ID,
		Title:      "Draft agenda",
		Priority:   strPtr("High"),
		DueDate:    strPtr("2024-06-01"),
		AssigneeID: &bob.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.Priority != entities.TaskPriorityHigh || task.DueDate == nil {
		t.Fatalf("unexpected task %+v", task)
	}

	updated, err := svc.Update(ctx, bob.ID, task.ID, UpdateTaskInput{Status: strPtr("completed")})
	if err != nil {
		t.Fatalf("assignee update: %v", err)
	}
	if updated.Status != entities.TaskStatusCompleted || updated.CompletedAt == nil {
		t.Fatal("completing a task should stamp CompletedAt")
	}

	if _, err := svc.Update(ctx, bob.ID, task.ID, UpdateTaskInput{AssigneeID: &owner.ID}); !errors.Is(err, usecaseErrors.ErrForbidden) {
		t.Fatalf("assignee must not reassign, got %v", err)
	}
	if _, err := svc.Update(ctx, uuid.New(), task.ID, UpdateTaskInput{Title: strPtr("x")}); !errors.Is(err, usecaseErrors.ErrForbidden) {
		t.Fatalf("stranger must be forbidden, got %v", err)
	}
	if _, err := svc.Update(ctx, owner.ID, task.ID, UpdateTaskInput{Status: strPtr("done")}); !errors.Is(err, usecaseErrors.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestTaskService_CreateValidation(t *testing.T) {
	svc, _, m, owner, _ := newTaskFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateTaskInput
		want error
	}{
		{"blank title", CreateTaskInput{MeetingID: m.ID, Title: " "}, usecaseErrors.ErrInvalidInput},
		{"bad priority", CreateTaskInput{MeetingID: m.ID, Title: "x", Priority: strPtr("critical")}, usecaseErrors.ErrInvalidPriority},
		{"bad date", CreateTaskInput{MeetingID: m.ID, Title: "x", DueDate: strPtr("06/01/2024")}, usecaseErrors.ErrInvalidDueDate},
		{"unknown assignee", CreateTaskInput{MeetingID: m.ID, Title: "x", AssigneeID: func() *uuid.UUID { id := uuid.New(); return &id }()}, usecaseErrors.ErrInvalidInput},
		{"unknown meeting", CreateTaskInput{MeetingID: uuid.New(), Title: "x"}, usecaseErrors.ErrMeetingNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, owner.ID, tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestTaskService_DeleteOwnerOnly(t *testing.T) {
	svc, tasks, m, owner, bob := newTaskFixture(t)
	ctx := context.Background()

	task, _ := svc.Create(ctx, owner.ID, CreateTaskInput{MeetingID: m.ID, Title: "x", AssigneeID: &bob.ID})
	if err := svc.Delete(ctx, bob.ID, task.ID); !errors.Is(err, usecaseErrors.ErrForbidden) {
		t.Fatalf("assignee must not delete, got %v", err)
	}
	if err := svc.Delete(ctx, owner.ID, task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(tasks.tasks) != 0 {
		t.Fatal("task should be removed")
	}
	if err := svc.Delete(ctx, owner.ID, task.ID); !errors.Is(err, usecaseErrors.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}
