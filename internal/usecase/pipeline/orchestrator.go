package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
	"github.com/johnquangdev/meeting-whisperer/internal/domain/repositories"
	"github.com/johnquangdev/meeting-whisperer/internal/infrastructure/queue"
)

// Progress labels shown while polling a run
const (
	LabelStarted     = "Starting AI processing"
	LabelTranscribed = "Transcription complete, summarizing"
	LabelAnalyzed    = "Saving results"
	LabelPersisted   = "Sending notifications"
	LabelDone        = "Processing completed"
	LabelFailed      = "Processing failed"
)

// failureWriteTimeout bounds the status write made after a run fails
const failureWriteTimeout = 10 * time.Second

// Outcome summarizes a successful run
type Outcome struct {
	MeetingID     uuid.UUID
	TaskCount     int
	AssignedCount int
	Notified      bool
	// Resumed is set when the run had already committed and only the
	// notification job was queued
	Resumed bool
}

// Orchestrator runs the transcribe, summarize and extract stages for one meeting
// and persists the results
type Orchestrator struct {
	meetings     repositories.MeetingRepository
	users        UserDirectory
	transcriber  Transcriber
	summarizer   Summarizer
	extractor    TaskExtractor
	progress     ProgressReporter
	jobs         Enqueuer
	stageTimeout time.Duration
	logger       *zap.Logger
}

// Config holds the Orchestrator's collaborators
type Config struct {
	Meetings     repositories.MeetingRepository
	Users        UserDirectory
	Transcriber  Transcriber
	Summarizer   Summarizer
	Extractor    TaskExtractor
	Progress     ProgressReporter
	Jobs         Enqueuer
	StageTimeout time.Duration
	Logger       *zap.Logger
}

// NewOrchestrator creates an Orchestrator
func NewOrchestrator(cfg Config) *Orchestrator {
	return &Orchestrator{
		meetings:     cfg.Meetings,
		users:        cfg.Users,
		transcriber:  cfg.Transcriber,
		summarizer:   cfg.Summarizer,
		extractor:    cfg.Extractor,
		progress:     cfg.Progress,
		jobs:         cfg.Jobs,
		stageTimeout: cfg.StageTimeout,
		logger:       cfg.Logger,
	}
}

// Process runs the pipeline for meetingID. A missing meeting or a meeting that
// cannot start a run is rejected without any state change. Any later failure
// marks the meeting failed and creates no tasks. A completed meeting whose
// notification job was never queued only gets that job queued.
func (o *Orchestrator) Process(ctx context.Context, meetingID uuid.UUID) (*Outcome, error) {
	meeting, err := o.meetings.FindByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, entities.ErrMeetingNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrMeetingNotFound, meetingID)
		}
		return nil, &PersistenceError{Op: "load meeting", Err: err}
	}

	if meeting.NotificationsPending() {
		return o.resumeNotifications(ctx, meeting), nil
	}

	if !meeting.Status.CanTransitionTo(entities.MeetingStatusTranscribing) {
		return nil, fmt.Errorf("%w: meeting %s is %s", entities.ErrInvalidStatusTransition, meetingID, meeting.Status)
	}
	if err := o.meetings.TransitionStatus(ctx, meetingID, meeting.Status, entities.MeetingStatusTranscribing); err != nil {
		// Lost a race with another writer; leave the meeting to it
		return nil, fmt.Errorf("failed to start run: %w", err)
	}
	o.report(ctx, meetingID, entities.ProgressStarted, LabelStarted, "")

	if o.logger != nil {
		o.logger.Info("🚀 Meeting processing started",
			zap.String("meeting_id", meetingID.String()),
			zap.String("file_ref", meeting.FileRef),
		)
	}

	outcome, err := o.run(ctx, meeting)
	if err != nil {
		o.fail(ctx, meetingID, err)
		return nil, err
	}

	if o.logger != nil {
		o.logger.Info("✅ Meeting processing completed",
			zap.String("meeting_id", meetingID.String()),
			zap.Int("tasks", outcome.TaskCount),
			zap.Int("assigned", outcome.AssignedCount),
		)
	}
	return outcome, nil
}

func (o *Orchestrator) run(ctx context.Context, meeting *entities.Meeting) (*Outcome, error) {
	var (
		transcript string
		summary    *entities.StructuredSummary
		drafts     []entities.TaskDraft
	)

	err := o.stage(ctx, StageTranscribe, func(ctx context.Context) error {
		var err error
		transcript, err = o.transcriber.Transcribe(ctx, meeting.FileRef)
		if err == nil && transcript == "" {
			err = errors.New("empty transcript")
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := o.meetings.TransitionStatus(ctx, meeting.ID, entities.MeetingStatusTranscribing, entities.MeetingStatusProcessing); err != nil {
		return nil, &PersistenceError{Op: "mark processing", Err: err}
	}
	o.report(ctx, meeting.ID, entities.ProgressTranscribed, LabelTranscribed, "")

	err = o.stage(ctx, StageSummarize, func(ctx context.Context) error {
		var err error
		summary, err = o.summarizer.Summarize(ctx, transcript)
		if err == nil && summary == nil {
			err = errors.New("no summary returned")
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	err = o.stage(ctx, StageExtract, func(ctx context.Context) error {
		var err error
		drafts, err = o.extractor.Extract(ctx, transcript, meeting.ParticipantHandles())
		return err
	})
	if err != nil {
		return nil, err
	}

	o.report(ctx, meeting.ID, entities.ProgressAnalyzed, LabelAnalyzed, "")

	users, err := o.users.ListActive(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "load users", Err: err}
	}

	keyPoints, err := json.Marshal(summary)
	if err != nil {
		return nil, &PersistenceError{Op: "encode summary", Err: err}
	}

	tasks, assigned := buildTasks(meeting.ID, drafts, users)
	results := repositories.RunResults{
		Transcription: transcript,
		Summary:       summary.Summary,
		KeyPoints:     keyPoints,
		ProcessedAt:   time.Now().UTC(),
	}
	if err := o.meetings.CompleteRun(ctx, meeting.ID, results, tasks); err != nil {
		return nil, &PersistenceError{Op: "complete run", Err: err}
	}

	o.report(ctx, meeting.ID, entities.ProgressPersisted, LabelPersisted, "")

	outcome := &Outcome{
		MeetingID:     meeting.ID,
		TaskCount:     len(tasks),
		AssignedCount: assigned,
		Notified:      o.queueNotifications(ctx, meeting.ID),
	}

	o.report(ctx, meeting.ID, entities.ProgressDone, LabelDone, "")
	return outcome, nil
}

func (o *Orchestrator) resumeNotifications(ctx context.Context, meeting *entities.Meeting) *Outcome {
	if o.logger != nil {
		o.logger.Warn("♻️ Completed meeting has no notification job, queuing it",
			zap.String("meeting_id", meeting.ID.String()),
		)
	}
	outcome := &Outcome{
		MeetingID: meeting.ID,
		Resumed:   true,
		Notified:  o.queueNotifications(ctx, meeting.ID),
	}
	if outcome.Notified {
		o.report(ctx, meeting.ID, entities.ProgressDone, LabelDone, "")
	}
	return outcome
}

// queueNotifications enqueues the notification job and records it on the
// meeting. It reports whether the job is on the queue.
func (o *Orchestrator) queueNotifications(ctx context.Context, meetingID uuid.UUID) bool {
	if err := o.jobs.Enqueue(ctx, queue.NewJob(queue.JobTypeSendNotifications, meetingID)); err != nil {
		// The run stays committed with notifications pending
		if o.logger != nil {
			o.logger.Error("❌ Failed to enqueue notifications",
				zap.String("meeting_id", meetingID.String()),
				zap.Error(err),
			)
		}
		return false
	}

	if err := o.meetings.MarkNotificationsQueued(ctx, meetingID); err != nil && o.logger != nil {
		o.logger.Warn("⚠️ Failed to record queued notifications",
			zap.String("meeting_id", meetingID.String()),
			zap.Error(err),
		)
	}
	return true
}

// stage runs fn under the per-stage timeout and wraps any failure as a StageError
func (o *Orchestrator) stage(ctx context.Context, stage Stage, fn func(context.Context) error) error {
	stageCtx := ctx
	if o.stageTimeout > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(ctx, o.stageTimeout)
		defer cancel()
	}

	started := time.Now()
	err := fn(stageCtx)
	if err == nil && stageCtx.Err() != nil {
		err = stageCtx.Err()
	}
	if err != nil {
		return &StageError{Stage: stage, Err: err}
	}

	if o.logger != nil {
		o.logger.Info("⏱️ Stage finished",
			zap.String("stage", string(stage)),
			zap.Duration("took", time.Since(started)),
		)
	}
	return nil
}

// fail records the failure on the meeting and the progress surface
func (o *Orchestrator) fail(ctx context.Context, meetingID uuid.UUID, cause error) {
	if o.logger != nil {
		o.logger.Error("❌ Meeting processing failed",
			zap.String("meeting_id", meetingID.String()),
			zap.Error(cause),
		)
	}

	// The job context may already be done; the failure must still be recorded
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failureWriteTimeout)
	defer cancel()

	if err := o.meetings.MarkFailed(writeCtx, meetingID, cause.Error()); err != nil && o.logger != nil {
		o.logger.Error("❌ Failed to mark meeting as failed",
			zap.String("meeting_id", meetingID.String()),
			zap.Error(err),
		)
	}
	o.report(writeCtx, meetingID, entities.ProgressStarted, LabelFailed, cause.Error())
}

func (o *Orchestrator) report(ctx context.Context, meetingID uuid.UUID, progress int, label, errMsg string) {
	if o.progress == nil {
		return
	}
	o.progress.Report(ctx, meetingID, entities.JobStatus{
		Progress:    progress,
		StatusLabel: label,
		Error:       errMsg,
		UpdatedAt:   time.Now().UTC(),
	})
}

// buildTasks turns drafts into tasks for one meeting and counts resolved assignees
func buildTasks(meetingID uuid.UUID, drafts []entities.TaskDraft, users []*entities.User) ([]*entities.Task, int) {
	tasks := make([]*entities.Task, 0, len(drafts))
	assigned := 0
	for _, d := range drafts {
		task := entities.NewTask(meetingID, d.Title)
		task.Description = d.Description
		task.Context = d.Context
		task.Priority = MapPriority(d.Priority)
		task.DueDate = ParseDueDate(d.DueDate)
		task.AssigneeID = Resolve(d.AssigneeHint, users)
		if task.AssigneeID != nil {
			assigned++
		}
		tasks = append(tasks, task)
	}
	return tasks, assigned
}
