package notification

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
	"github.com/johnquangdev/meeting-whisperer/internal/domain/repositories"
)

type fakeMeetings struct {
	repositories.MeetingRepository
	meeting *entities.Meeting
}

func (f fakeMeetings) FindByID(_ context.Context, id uuid.UUID) (*entities.Meeting, error) {
	if f.meeting == nil || f.meeting.ID != id {
		return nil, entities.ErrMeetingNotFound
	}
	return f.meeting, nil
}

type fakeTasks struct {
	repositories.TaskRepository
	tasks []*entities.Task
}

func (f fakeTasks) ListByMeeting(context.Context, uuid.UUID) ([]*entities.Task, error) {
	return f.tasks, nil
}

type fakeUsers struct {
	repositories.UserRepository
	users map[uuid.UUID]*entities.User
}

func (f fakeUsers) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*entities.User, error) {
	var out []*entities.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type recordingSender struct {
	mu      sync.Mutex
	digests map[uuid.UUID]entities.Digest
	failFor map[uuid.UUID]bool
	panicOn map[uuid.UUID]bool
}

func newRecordingSender() *recordingSender {
	return &recordingSender{
		digests: map[uuid.UUID]entities.Digest{},
		failFor: map[uuid.UUID]bool{},
		panicOn: map[uuid.UUID]bool{},
	}
}

func (s *recordingSender) Send(_ context.Context, user *entities.User, digest entities.Digest) error {
	if s.panicOn[user.ID] {
		panic("channel exploded")
	}
	if s.failFor[user.ID] {
		return errors.New("smtp: connection refused")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.digests[user.ID] = digest
	return nil
}

func setup(t *testing.T, sender *recordingSender) (*Dispatcher, *entities.Meeting, *entities.User, *entities.User) {
	t.Helper()
	u1 := entities.NewUser("u1@x.test", "User One")
	u2 := entities.NewUser("u2@x.test", "User Two")
	meeting := entities.NewMeeting(uuid.New(), "Planning", "recordings/p.mp3", "p.mp3", 1)

	task := func(title string, assignee *entities.User) *entities.Task {
		tk := entities.NewTask(meeting.ID, title)
		if assignee != nil {
			id := assignee.ID
			tk.AssigneeID = &id
		}
		return tk
	}

	d := NewDispatcher(
		fakeMeetings{meeting: meeting},
		fakeTasks{tasks: []*entities.Task{
			task("first", u1),
			task("second", u1),
			task("orphan", nil),
			task("third", u2),
		}},
		fakeUsers{users: map[uuid.UUID]*entities.User{u1.ID: u1, u2.ID: u2}},
		sender,
		"https://app.test/",
		0,
		nil,
	)
	return d, meeting, u1, u2
}

func TestDispatch_GroupsByAssignee(t *testing.T) {
	sender := newRecordingSender()
	d, meeting, u1, u2 := setup(t, sender)

	if got := d.Dispatch(context.Background(), meeting.ID); got != 2 {
		t.Fatalf("expected 2 recipients, got %d", got)
	}
	if len(sender.digests) != 2 {
		t.Fatalf("expected 2 digests, got %d", len(sender.digests))
	}
	if n := len(sender.digests[u1.ID].Items); n != 2 {
		t.Fatalf("U1 should receive 2 tasks, got %d", n)
	}
	if n := len(sender.digests[u2.ID].Items); n != 1 {
		t.Fatalf("U2 should receive 1 task, got %d", n)
	}
	for _, dg := range sender.digests {
		for _, item := range dg.Items {
			if item.Title == "orphan" {
				t.Fatal("unassigned task must not be delivered")
			}
		}
	}
	if url := sender.digests[u1.ID].MeetingURL; url != "https://app.test/meetings/"+meeting.ID.String() {
		t.Fatalf("unexpected meeting url %q", url)
	}
}

func TestDispatch_IsolatesRecipientFailures(t *testing.T) {
	sender := newRecordingSender()
	d, meeting, u1, u2 := setup(t, sender)
	sender.failFor[u1.ID] = true

	if got := d.Dispatch(context.Background(), meeting.ID); got != 1 {
		t.Fatalf("expected 1 successful recipient, got %d", got)
	}
	if _, ok := sender.digests[u2.ID]; !ok {
		t.Fatal("U2 should still be notified")
	}

	sender = newRecordingSender()
	d, meeting, u1, u2 = setup(t, sender)
	sender.panicOn[u2.ID] = true
	if got := d.Dispatch(context.Background(), meeting.ID); got != 1 {
		t.Fatalf("a panicking channel must not stop dispatch, got %d", got)
	}
	if _, ok := sender.digests[u1.ID]; !ok {
		t.Fatal("U1 should still be notified")
	}
}

func TestDispatch_MissingMeetingReturnsZero(t *testing.T) {
	d, _, _, _ := setup(t, newRecordingSender())
	if got := d.Dispatch(context.Background(), uuid.New()); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}
