package entities

import "time"

// StructuredSummary is the summarizer output persisted in Meeting.KeyPoints
type StructuredSummary struct {
	Summary   string   `json:"summary" validate:"required"`
	KeyPoints []string `json:"key_points" validate:"required"`
	Decisions []string `json:"decisions" validate:"required"`
	NextSteps []string `json:"next_steps" validate:"required"`
}

// TaskDraft is an unresolved action item produced by task extraction
type TaskDraft struct {
	Title        string  `json:"title" validate:"required"`
	Description  string  `json:"description"`
	AssigneeHint *string `json:"assignee"`
	DueDate      *string `json:"due_date"`
	Priority     *string `json:"priority"`
	Context      string  `json:"context"`
}

// Progress checkpoints reported by a pipeline run
const (
	ProgressStarted     = 0
	ProgressTranscribed = 20
	ProgressAnalyzed    = 80
	ProgressPersisted   = 90
	ProgressDone        = 100
)

// JobStatus is the polling surface for a meeting's current run
type JobStatus struct {
	Progress    int       `json:"progress"`
	StatusLabel string    `json:"status_label"`
	Error       string    `json:"error,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DigestItem is one task line in a notification digest
type DigestItem struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
}

// Digest is the consolidated notification for one recipient and one meeting
type Digest struct {
	MeetingID    string       `json:"meeting_id"`
	MeetingTitle string       `json:"meeting_title"`
	MeetingURL   string       `json:"meeting_url,omitempty"`
	Items        []DigestItem `json:"items"`
}
