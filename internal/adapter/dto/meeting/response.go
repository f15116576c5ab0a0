package meeting

import (
	"time"

	"github.com/johnquangdev/meeting-whisperer/internal/adapter/dto/common"
	"github.com/johnquangdev/meeting-whisperer/internal/adapter/dto/user"
)

// MeetingResponse represents a meeting in responses
type MeetingResponse struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	Description     *string              `json:"description,omitempty"`
	FileName        string               `json:"file_name"`
	FileSize        int64                `json:"file_size"`
	ContentType     string               `json:"content_type,omitempty"`
	Duration        *int                 `json:"duration,omitempty"`
	Status          string               `json:"status"`
	Transcription   string               `json:"transcription,omitempty"`
	Summary         *SummaryResponse     `json:"summary,omitempty"`
	ProcessingError *string              `json:"processing_error,omitempty"`
	OwnerID         string               `json:"owner_id"`
	Participants    []*user.UserResponse `json:"participants,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
	ProcessedAt     *time.Time           `json:"processed_at,omitempty"`

	NotificationsQueuedAt *time.Time `json:"notifications_queued_at,omitempty"`
}

// SummaryResponse is the structured meeting summary
type SummaryResponse struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"key_points"`
	Decisions []string `json:"decisions"`
	NextSteps []string `json:"next_steps"`
}

// MeetingListResponse represents a page of meetings
type MeetingListResponse struct {
	Meetings   []*MeetingResponse         `json:"meetings"`
	Pagination *common.PaginationResponse `json:"pagination"`
}

// UploadResponse is returned after a recording upload. Queued is false when
// the meeting was stored but processing could not be scheduled.
type UploadResponse struct {
	Meeting *MeetingResponse `json:"meeting"`
	Queued  bool             `json:"queued"`
}

// StatusResponse is the polling view of a meeting
type StatusResponse struct {
	MeetingID   string     `json:"meeting_id"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	StatusLabel string     `json:"status_label"`
	Error       string     `json:"error,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

// RecordingURLResponse carries a presigned recording URL
type RecordingURLResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"` // seconds
}
