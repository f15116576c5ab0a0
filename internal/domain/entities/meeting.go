package entities

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MeetingStatus represents where a meeting is in the processing pipeline
type MeetingStatus string

const (
	MeetingStatusUploaded     MeetingStatus = "uploaded"     // Recording stored, waiting for a worker
	MeetingStatusTranscribing MeetingStatus = "transcribing" // Audio is being transcribed
	MeetingStatusProcessing   MeetingStatus = "processing"   // Transcript is being summarized and mined for tasks
	MeetingStatusCompleted    MeetingStatus = "completed"    // All artifacts persisted
	MeetingStatusFailed       MeetingStatus = "failed"       // Run aborted, see ProcessingError
)

// meetingTransitions lists the statuses reachable from each status.
// Transcribing is re-enterable from transcribing/processing so a redelivered
// job can restart a run that died with its worker.
var meetingTransitions = map[MeetingStatus][]MeetingStatus{
	MeetingStatusUploaded:     {MeetingStatusTranscribing, MeetingStatusFailed},
	MeetingStatusTranscribing: {MeetingStatusTranscribing, MeetingStatusProcessing, MeetingStatusFailed},
	MeetingStatusProcessing:   {MeetingStatusTranscribing, MeetingStatusCompleted, MeetingStatusFailed},
	MeetingStatusFailed:       {MeetingStatusTranscribing},
	MeetingStatusCompleted:    {},
}

// IsValid checks if the status is known
func (s MeetingStatus) IsValid() bool {
	_, ok := meetingTransitions[s]
	return ok
}

// CanTransitionTo reports whether next is reachable from s
func (s MeetingStatus) CanTransitionTo(next MeetingStatus) bool {
	for _, allowed := range meetingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a pipeline run has finished for this status
func (s MeetingStatus) IsTerminal() bool {
	return s == MeetingStatusCompleted || s == MeetingStatusFailed
}

// Meeting is one uploaded recording and the artifacts derived from it
type Meeting struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title       string    `json:"title" gorm:"type:varchar(255);not null"`
	Description *string   `json:"description,omitempty" gorm:"type:text"`

	// Recording object in blob storage
	FileRef     string `json:"-" gorm:"column:file_ref;type:varchar(500);not null"`
	FileName    string `json:"file_name" gorm:"type:varchar(255);not null"`
	FileSize    int64  `json:"file_size" gorm:"type:bigint;not null;default:0"`
	ContentType string `json:"content_type" gorm:"type:varchar(100)"`
	Duration    *int   `json:"duration,omitempty" gorm:"type:integer"`

	Status          MeetingStatus  `json:"status" gorm:"type:varchar(20);not null;default:'uploaded';index"`
	Transcription   string         `json:"transcription,omitempty" gorm:"type:text;not null;default:''"`
	Summary         string         `json:"summary,omitempty" gorm:"type:text;not null;default:''"`
	KeyPoints       datatypes.JSON `json:"key_points,omitempty" gorm:"type:jsonb"`
	ProcessingError *string        `json:"processing_error,omitempty" gorm:"type:text"`

	OwnerID      uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index"`
	Participants []User    `json:"participants,omitempty" gorm:"many2many:meeting_participants;"`

	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	ProcessedAt *time.Time `json:"processed_at,omitempty" gorm:"type:timestamp"`

	// Set once the send_notifications job for the completed run is queued
	NotificationsQueuedAt *time.Time `json:"notifications_queued_at,omitempty" gorm:"type:timestamp"`
}

// TableName specifies the table name for Meeting
func (Meeting) TableName() string {
	return "meetings"
}

// NewMeeting creates a freshly uploaded meeting
func NewMeeting(ownerID uuid.UUID, title, fileRef, fileName string, fileSize int64) *Meeting {
	now := time.Now()
	return &Meeting{
		ID:        uuid.New(),
		Title:     title,
		FileRef:   fileRef,
		FileName:  fileName,
		FileSize:  fileSize,
		Status:    MeetingStatusUploaded,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TransitionTo moves the meeting to next or returns ErrInvalidStatusTransition
func (m *Meeting) TransitionTo(next MeetingStatus) error {
	if !m.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, m.Status, next)
	}
	m.Status = next
	m.UpdatedAt = time.Now()
	return nil
}

// NotificationsPending reports whether a completed run never got its
// notification job queued
func (m *Meeting) NotificationsPending() bool {
	return m.Status == MeetingStatusCompleted && m.NotificationsQueuedAt == nil
}

// StructuredSummary decodes the persisted key points column
func (m *Meeting) StructuredSummary() (*StructuredSummary, error) {
	if len(m.KeyPoints) == 0 {
		return nil, nil
	}
	var s StructuredSummary
	if err := json.Unmarshal(m.KeyPoints, &s); err != nil {
		return nil, fmt.Errorf("failed to decode key points: %w", err)
	}
	return &s, nil
}

// ParticipantHandles renders participants as "Name <email>" for the task extractor
func (m *Meeting) ParticipantHandles() []string {
	handles := make([]string, 0, len(m.Participants))
	for _, p := range m.Participants {
		handles = append(handles, p.Handle())
	}
	return handles
}

// IsOwnedBy reports whether userID owns the meeting
func (m *Meeting) IsOwnedBy(userID uuid.UUID) bool {
	return m.OwnerID == userID
}
