package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
	"github.com/johnquangdev/meeting-whisperer/internal/domain/repositories"
	"github.com/johnquangdev/meeting-whisperer/internal/infrastructure/queue"
)

type fakeMeetings struct {
	mu          sync.Mutex
	meetings    map[uuid.UUID]*entities.Meeting
	tasks       map[uuid.UUID][]*entities.Task
	mutations   int
	completeErr error
}

func newFakeMeetings(ms ...*entities.Meeting) *fakeMeetings {
	f := &fakeMeetings{
		meetings: map[uuid.UUID]*entities.Meeting{},
		tasks:    map[uuid.UUID][]*entities.Task{},
	}
	for _, m := range ms {
		f.meetings[m.ID] = m
	}
	return f
}

func (f *fakeMeetings) Create(_ context.Context, m *entities.Meeting) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meetings[m.ID] = m
	return nil
}

func (f *fakeMeetings) FindByID(_ context.Context, id uuid.UUID) (*entities.Meeting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.meetings[id]
	if !ok {
		return nil, entities.ErrMeetingNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMeetings) List(context.Context, repositories.MeetingFilters) ([]*entities.Meeting, int64, error) {
	return nil, 0, errors.New("not implemented")
}

func (f *fakeMeetings) UpdateDetails(context.Context, *entities.Meeting) error {
	return errors.New("not implemented")
}

func (f *fakeMeetings) Delete(context.Context, uuid.UUID) error {
	return errors.New("not implemented")
}

func (f *fakeMeetings) TransitionStatus(_ context.Context, id uuid.UUID, from, to entities.MeetingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.meetings[id]
	if !ok {
		return entities.ErrMeetingNotFound
	}
	if m.Status != from || !from.CanTransitionTo(to) {
		return entities.ErrInvalidStatusTransition
	}
	f.mutations++
	m.Status = to
	if to == entities.MeetingStatusTranscribing {
		m.ProcessingError = nil
	}
	return nil
}

func (f *fakeMeetings) MarkFailed(_ context.Context, id uuid.UUID, msg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.meetings[id]
	f.mutations++
	m.Status = entities.MeetingStatusFailed
	m.ProcessingError = &msg
	return nil
}

func (f *fakeMeetings) CompleteRun(_ context.Context, id uuid.UUID, r repositories.RunResults, tasks []*entities.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completeErr != nil {
		return f.completeErr
	}
	m := f.meetings[id]
	if m.Status != entities.MeetingStatusProcessing {
		return entities.ErrInvalidStatusTransition
	}
	f.mutations++
	m.Status = entities.MeetingStatusCompleted
	m.Transcription = r.Transcription
	m.Summary = r.Summary
	m.KeyPoints = r.KeyPoints
	processed := r.ProcessedAt
	m.ProcessedAt = &processed
	f.tasks[id] = append(f.tasks[id], tasks...)
	return nil
}

func (f *fakeMeetings) MarkNotificationsQueued(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.meetings[id]
	if m.Status != entities.MeetingStatusCompleted {
		return entities.ErrInvalidStatusTransition
	}
	now := time.Now()
	m.NotificationsQueuedAt = &now
	return nil
}

func (f *fakeMeetings) get(id uuid.UUID) *entities.Meeting {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.meetings[id]
}

type staticUsers []*entities.User

func (s staticUsers) ListActive(context.Context) ([]*entities.User, error) { return s, nil }

type stubTranscriber struct {
	text string
	err  error
}

func (s stubTranscriber) Transcribe(context.Context, string) (string, error) { return s.text, s.err }

type stubSummarizer struct {
	summary *entities.StructuredSummary
	err     error
}

func (s stubSummarizer) Summarize(context.Context, string) (*entities.StructuredSummary, error) {
	return s.summary, s.err
}

type stubExtractor struct {
	drafts       []entities.TaskDraft
	err          error
	participants *[]string
}

func (s stubExtractor) Extract(_ context.Context, _ string, participants []string) ([]entities.TaskDraft, error) {
	if s.participants != nil {
		*s.participants = participants
	}
	return s.drafts, s.err
}

// blockingStage waits for the stage deadline
type blockingStage struct{}

func (blockingStage) Transcribe(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

type recordedProgress struct {
	mu       sync.Mutex
	statuses []entities.JobStatus
}

func (r *recordedProgress) Report(_ context.Context, _ uuid.UUID, s entities.JobStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, s)
}

func (r *recordedProgress) last() entities.JobStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statuses[len(r.statuses)-1]
}

type recordedJobs struct {
	mu   sync.Mutex
	jobs []queue.Job
	err  error
}

func (r *recordedJobs) Enqueue(_ context.Context, job queue.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.jobs = append(r.jobs, job)
	return nil
}
