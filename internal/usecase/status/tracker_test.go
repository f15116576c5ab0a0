package status

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
	"github.com/johnquangdev/meeting-whisperer/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-whisperer/internal/usecase/pipeline"
)

type brokenStore struct{}

func (brokenStore) Set(context.Context, string, string, time.Duration) error {
	return errors.New("connection refused")
}
func (brokenStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("connection refused")
}
func (brokenStore) Delete(context.Context, string) error { return nil }

func TestProgressTracker_ReportAndGet(t *testing.T) {
	store := cache.NewMemoryStore()
	defer store.Close()
	tracker := NewProgressTracker(store, time.Minute, time.Second, nil)

	m := entities.NewMeeting(uuid.New(), "Sync", "recordings/a.mp3", "a.mp3", 1)
	m.Status = entities.MeetingStatusProcessing

	tracker.Report(context.Background(), m.ID, entities.JobStatus{Progress: 80, StatusLabel: pipeline.LabelAnalyzed})
	got := tracker.Get(context.Background(), m)
	if got.Progress != 80 || got.StatusLabel != pipeline.LabelAnalyzed || got.UpdatedAt.IsZero() {
		t.Fatalf("unexpected status %+v", got)
	}
}

func TestProgressTracker_FallsBackToMeeting(t *testing.T) {
	tracker := NewProgressTracker(brokenStore{}, time.Minute, 10*time.Millisecond, nil)

	m := entities.NewMeeting(uuid.New(), "Sync", "recordings/a.mp3", "a.mp3", 1)
	msg := "transcribe stage failed: provider down"
	m.Status = entities.MeetingStatusFailed
	m.ProcessingError = &msg

	// must not panic or block
	tracker.Report(context.Background(), m.ID, entities.JobStatus{Progress: 20})

	got := tracker.Get(context.Background(), m)
	if got.StatusLabel != pipeline.LabelFailed || got.Error != msg || got.Progress != 0 {
		t.Fatalf("unexpected derived status %+v", got)
	}
}

func TestProgressTracker_IgnoresStaleFailure(t *testing.T) {
	store := cache.NewMemoryStore()
	defer store.Close()
	tracker := NewProgressTracker(store, time.Minute, time.Second, nil)

	m := entities.NewMeeting(uuid.New(), "Sync", "recordings/a.mp3", "a.mp3", 1)
	tracker.Report(context.Background(), m.ID, entities.JobStatus{StatusLabel: pipeline.LabelFailed, Error: "old"})
	m.Status = entities.MeetingStatusCompleted

	got := tracker.Get(context.Background(), m)
	if got.Progress != 100 || got.Error != "" {
		t.Fatalf("completed meeting should not surface a stale failure, got %+v", got)
	}
}

func TestDerive(t *testing.T) {
	tests := map[entities.MeetingStatus]int{
		entities.MeetingStatusUploaded:     0,
		entities.MeetingStatusTranscribing: 0,
		entities.MeetingStatusProcessing:   20,
		entities.MeetingStatusCompleted:    100,
	}
	for st, want := range tests {
		got := Derive(&entities.Meeting{Status: st})
		if got.Progress != want || got.StatusLabel == "" {
			t.Errorf("%s: unexpected %+v", st, got)
		}
	}
}
