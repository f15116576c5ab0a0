package status

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
	"github.com/johnquangdev/meeting-whisperer/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-whisperer/internal/usecase/pipeline"
)

const (
	keyPrefix           = "progress:"
	labelWaiting        = "Waiting to start"
	defaultTTL          = 24 * time.Hour
	defaultWriteTimeout = 2 * time.Second
)

// ProgressTracker stores the latest JobStatus per meeting
type ProgressTracker struct {
	store        cache.Store
	ttl          time.Duration
	writeTimeout time.Duration
	logger       *zap.Logger
}

// NewProgressTracker creates a tracker over store
func NewProgressTracker(store cache.Store, ttl, writeTimeout time.Duration, logger *zap.Logger) *ProgressTracker {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	return &ProgressTracker{
		store:        store,
		ttl:          ttl,
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

// Report writes status for meetingID. It never fails the caller: a slow or
// unavailable store is logged and ignored.
func (t *ProgressTracker) Report(ctx context.Context, meetingID uuid.UUID, status entities.JobStatus) {
	if status.UpdatedAt.IsZero() {
		status.UpdatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(status)
	if err != nil {
		t.warn("encode progress", meetingID, err)
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, t.writeTimeout)
	defer cancel()

	if err := t.store.Set(writeCtx, key(meetingID), string(data), t.ttl); err != nil {
		t.warn("write progress", meetingID, err)
		return
	}

	if t.logger != nil {
		t.logger.Debug("📊 Progress updated",
			zap.String("meeting_id", meetingID.String()),
			zap.Int("progress", status.Progress),
			zap.String("label", status.StatusLabel),
		)
	}
}

// Get returns the last reported status for meeting, or one derived from the
// meeting row when nothing usable is stored
func (t *ProgressTracker) Get(ctx context.Context, meeting *entities.Meeting) entities.JobStatus {
	raw, ok, err := t.store.Get(ctx, key(meeting.ID))
	if err != nil {
		t.warn("read progress", meeting.ID, err)
	}
	if ok && err == nil {
		var status entities.JobStatus
		if err := json.Unmarshal([]byte(raw), &status); err == nil && consistent(status, meeting) {
			return status
		}
	}
	return Derive(meeting)
}

// Clear removes the stored status for meetingID
func (t *ProgressTracker) Clear(ctx context.Context, meetingID uuid.UUID) error {
	return t.store.Delete(ctx, key(meetingID))
}

// Derive builds a status from the meeting's persisted state
func Derive(meeting *entities.Meeting) entities.JobStatus {
	status := entities.JobStatus{UpdatedAt: meeting.UpdatedAt}
	switch meeting.Status {
	case entities.MeetingStatusUploaded:
		status.StatusLabel = labelWaiting
	case entities.MeetingStatusTranscribing:
		status.StatusLabel = pipeline.LabelStarted
	case entities.MeetingStatusProcessing:
		status.Progress = entities.ProgressTranscribed
		status.StatusLabel = pipeline.LabelTranscribed
	case entities.MeetingStatusCompleted:
		status.Progress = entities.ProgressDone
		status.StatusLabel = pipeline.LabelDone
	case entities.MeetingStatusFailed:
		status.StatusLabel = pipeline.LabelFailed
		if meeting.ProcessingError != nil {
			status.Error = *meeting.ProcessingError
		}
	}
	return status
}

// consistent rejects a stored status that contradicts a terminal meeting state,
// e.g. a failure left over from a run that was later retried successfully
func consistent(status entities.JobStatus, meeting *entities.Meeting) bool {
	switch meeting.Status {
	case entities.MeetingStatusCompleted:
		return status.Error == "" && status.Progress >= entities.ProgressPersisted
	case entities.MeetingStatusFailed:
		return status.Error != ""
	case entities.MeetingStatusUploaded:
		return false
	}
	return status.Error == ""
}

func (t *ProgressTracker) warn(op string, meetingID uuid.UUID, err error) {
	if t.logger != nil {
		t.logger.Warn("⚠️ Progress store unavailable",
			zap.String("op", op),
			zap.String("meeting_id", meetingID.String()),
			zap.Error(err),
		)
	}
}

func key(meetingID uuid.UUID) string {
	return keyPrefix + meetingID.String()
}
