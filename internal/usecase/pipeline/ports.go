package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
	"github.com/johnquangdev/meeting-whisperer/internal/infrastructure/queue"
)

// Transcriber turns a stored recording into text
type Transcriber interface {
	Transcribe(ctx context.Context, fileRef string) (string, error)
}

// Summarizer turns a transcript into a structured summary
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (*entities.StructuredSummary, error)
}

// TaskExtractor pulls task drafts out of a transcript
type TaskExtractor interface {
	Extract(ctx context.Context, transcript string, participants []string) ([]entities.TaskDraft, error)
}

// ProgressReporter records best-effort progress for a meeting's current run
type ProgressReporter interface {
	Report(ctx context.Context, meetingID uuid.UUID, status entities.JobStatus)
}

// Enqueuer schedules follow-up jobs
type Enqueuer interface {
	Enqueue(ctx context.Context, job queue.Job) error
}

// UserDirectory lists the users an assignee hint can resolve to
type UserDirectory interface {
	ListActive(ctx context.Context) ([]*entities.User, error)
}
