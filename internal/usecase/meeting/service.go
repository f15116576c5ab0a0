package meeting

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
	"github.com/johnquangdev/meeting-whisperer/internal/domain/repositories"
	"github.com/johnquangdev/meeting-whisperer/internal/infrastructure/queue"
	usecaseErrors "github.com/johnquangdev/meeting-whisperer/internal/usecase/errors"
	"github.com/johnquangdev/meeting-whisperer/pkg/config"
)

const (
	recordingPrefix    = "recordings/"
	RecordingURLTTL    = 15 * time.Minute
	defaultPerPage     = 20
	maxPerPage         = 100
	cleanupTimeout     = 10 * time.Second
	defaultContentType = "application/octet-stream"
)

// ObjectStore stores recording blobs
type ObjectStore interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, objectName string) error
	GetFileURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// Enqueuer schedules pipeline jobs
type Enqueuer interface {
	Enqueue(ctx context.Context, job queue.Job) error
}

// ProgressStore exposes the progress surface of processing runs
type ProgressStore interface {
	Get(ctx context.Context, meeting *entities.Meeting) entities.JobStatus
	Report(ctx context.Context, meetingID uuid.UUID, status entities.JobStatus)
	Clear(ctx context.Context, meetingID uuid.UUID) error
}

// Service defines the meeting use cases
type Service interface {
	// Upload stores a recording, creates the meeting and schedules processing
	Upload(ctx context.Context, input UploadInput) (*entities.Meeting, error)

	// List returns the owner's meetings, newest first
	List(ctx context.Context, input ListInput) ([]*entities.Meeting, int64, error)

	// Get returns one of the owner's meetings
	Get(ctx context.Context, ownerID, meetingID uuid.UUID) (*entities.Meeting, error)

	// Update edits title and description
	Update(ctx context.Context, ownerID, meetingID uuid.UUID, input UpdateInput) (*entities.Meeting, error)

	// Delete removes the meeting, its tasks and its recording
	Delete(ctx context.Context, ownerID, meetingID uuid.UUID) error

	// Status returns the meeting status and the progress of its current run
	Status(ctx context.Context, ownerID, meetingID uuid.UUID) (*StatusOutput, error)

	// Reprocess schedules a new run for an uploaded or failed meeting
	Reprocess(ctx context.Context, ownerID, meetingID uuid.UUID) (*entities.Meeting, error)

	// RecordingURL returns a short-lived download URL for the recording
	RecordingURL(ctx context.Context, ownerID, meetingID uuid.UUID) (string, error)

	// Redispatch queues the task digests of a completed meeting again
	Redispatch(ctx context.Context, meetingID uuid.UUID) (*entities.Meeting, error)
}

// Ensure MeetingService implements Service interface
var _ Service = (*MeetingService)(nil)

// MeetingService handles meeting business logic
type MeetingService struct {
	meetingRepo repositories.MeetingRepository
	userRepo    repositories.UserRepository
	storage     ObjectStore
	jobs        Enqueuer
	progress    ProgressStore
	upload      config.UploadConfig
	logger      *zap.Logger
}

// NewMeetingService creates a new meeting service
func NewMeetingService(
	meetingRepo repositories.MeetingRepository,
	userRepo repositories.UserRepository,
	storage ObjectStore,
	jobs Enqueuer,
	progress ProgressStore,
	upload config.UploadConfig,
	logger *zap.Logger,
) *MeetingService {
	return &MeetingService{
		meetingRepo: meetingRepo,
		userRepo:    userRepo,
		storage:     storage,
		jobs:        jobs,
		progress:    progress,
		upload:      upload,
		logger:      logger,
	}
}

// UploadInput represents input for uploading a recording
type UploadInput struct {
	OwnerID        uuid.UUID
	Title          string
	Description    *string
	FileName       string
	ContentType    string
	Size           int64
	Reader         io.Reader
	ParticipantIDs []uuid.UUID
}

// ListInput represents input for listing meetings
type ListInput struct {
	OwnerID uuid.UUID
	Status  *entities.MeetingStatus
	Page    int
	PerPage int
}

// UpdateInput represents editable meeting fields
type UpdateInput struct {
	Title       *string
	Description *string
}

// StatusOutput is the polling view of a meeting
type StatusOutput struct {
	MeetingID   uuid.UUID
	Status      entities.MeetingStatus
	Job         entities.JobStatus
	ProcessedAt *time.Time
}

// Upload validates and stores the recording, then schedules processing. When
// scheduling fails the meeting is kept in uploaded and returned together with
// ErrEnqueueFailed so the caller can re-trigger it.
func (s *MeetingService) Upload(ctx context.Context, input UploadInput) (*entities.Meeting, error) {
	ext := strings.ToLower(filepath.Ext(input.FileName))
	if !s.allowedExtension(ext) {
		return nil, usecaseErrors.ErrInvalidFileType
	}
	if input.Size <= 0 {
		return nil, usecaseErrors.ErrInvalidInput
	}
	if s.upload.MaxBytes > 0 && input.Size > s.upload.MaxBytes {
		return nil, usecaseErrors.ErrFileTooLarge
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(input.FileName), filepath.Ext(input.FileName))
	}

	contentType := input.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	objectName := recordingPrefix + uuid.New().String() + ext
	if err := s.storage.UploadFile(ctx, objectName, input.Reader, input.Size, contentType); err != nil {
		return nil, fmt.Errorf("%w: %v", usecaseErrors.ErrRecordingNotStored, err)
	}

	meeting := entities.NewMeeting(input.OwnerID, title, objectName, input.FileName, input.Size)
	meeting.Description = input.Description
	meeting.ContentType = contentType

	if len(input.ParticipantIDs) > 0 {
		users, err := s.userRepo.FindByIDs(ctx, input.ParticipantIDs)
		if err != nil {
			s.removeObject(ctx, objectName)
			return nil, fmt.Errorf("failed to load participants: %w", err)
		}
		for _, u := range users {
			meeting.Participants = append(meeting.Participants, *u)
		}
	}

	if err := s.meetingRepo.Create(ctx, meeting); err != nil {
		s.removeObject(ctx, objectName)
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("📁 Recording uploaded",
			zap.String("meeting_id", meeting.ID.String()),
			zap.String("object", objectName),
			zap.Int64("size", input.Size),
		)
	}

	if err := s.schedule(ctx, meeting.ID); err != nil {
		return meeting, err
	}
	return meeting, nil
}

// List returns the owner's meetings
func (s *MeetingService) List(ctx context.Context, input ListInput) ([]*entities.Meeting, int64, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, 0, usecaseErrors.ErrInvalidInput
	}

	perPage := input.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	page := input.Page
	if page < 1 {
		page = 1
	}

	meetings, total, err := s.meetingRepo.List(ctx, repositories.MeetingFilters{
		OwnerID: input.OwnerID,
		Status:  input.Status,
		Limit:   perPage,
		Offset:  (page - 1) * perPage,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list meetings: %w", err)
	}
	return meetings, total, nil
}

// Get returns a meeting owned by ownerID
func (s *MeetingService) Get(ctx context.Context, ownerID, meetingID uuid.UUID) (*entities.Meeting, error) {
	meeting, err := s.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, entities.ErrMeetingNotFound) {
			return nil, usecaseErrors.ErrMeetingNotFound
		}
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}
	if !meeting.IsOwnedBy(ownerID) {
		return nil, usecaseErrors.ErrForbidden
	}
	return meeting, nil
}

// Update edits title and description
func (s *MeetingService) Update(ctx context.Context, ownerID, meetingID uuid.UUID, input UpdateInput) (*entities.Meeting, error) {
	meeting, err := s.Get(ctx, ownerID, meetingID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, usecaseErrors.ErrInvalidInput
		}
		meeting.Title = title
	}
	if input.Description != nil {
		meeting.Description = input.Description
	}

	if err := s.meetingRepo.UpdateDetails(ctx, meeting); err != nil {
		return nil, fmt.Errorf("failed to update meeting: %w", err)
	}
	return meeting, nil
}

// Delete removes the meeting. Meetings with an active run cannot be deleted.
func (s *MeetingService) Delete(ctx context.Context, ownerID, meetingID uuid.UUID) error {
	meeting, err := s.Get(ctx, ownerID, meetingID)
	if err != nil {
		return err
	}
	if isActive(meeting.Status) {
		return usecaseErrors.ErrProcessingActive
	}

	if err := s.meetingRepo.Delete(ctx, meetingID); err != nil {
		return fmt.Errorf("failed to delete meeting: %w", err)
	}

	s.removeObject(ctx, meeting.FileRef)
	if err := s.progress.Clear(ctx, meetingID); err != nil && s.logger != nil {
		s.logger.Warn("⚠️ Failed to clear progress", zap.String("meeting_id", meetingID.String()), zap.Error(err))
	}
	return nil
}

// Status returns the polling view of a meeting
func (s *MeetingService) Status(ctx context.Context, ownerID, meetingID uuid.UUID) (*StatusOutput, error) {
	meeting, err := s.Get(ctx, ownerID, meetingID)
	if err != nil {
		return nil, err
	}
	return &StatusOutput{
		MeetingID:   meeting.ID,
		Status:      meeting.Status,
		Job:         s.progress.Get(ctx, meeting),
		ProcessedAt: meeting.ProcessedAt,
	}, nil
}

// Reprocess schedules a new run from the first stage. Completed meetings are
// rejected since a second run would duplicate their tasks.
func (s *MeetingService) Reprocess(ctx context.Context, ownerID, meetingID uuid.UUID) (*entities.Meeting, error) {
	meeting, err := s.Get(ctx, ownerID, meetingID)
	if err != nil {
		return nil, err
	}

	switch {
	case meeting.Status == entities.MeetingStatusCompleted:
		return nil, usecaseErrors.ErrAlreadyProcessed
	case isActive(meeting.Status):
		return nil, usecaseErrors.ErrProcessingActive
	}

	if err := s.schedule(ctx, meeting.ID); err != nil {
		return nil, err
	}
	return meeting, nil
}

// RecordingURL returns a presigned download URL
func (s *MeetingService) RecordingURL(ctx context.Context, ownerID, meetingID uuid.UUID) (string, error) {
	meeting, err := s.Get(ctx, ownerID, meetingID)
	if err != nil {
		return "", err
	}
	url, err := s.storage.GetFileURL(ctx, meeting.FileRef, RecordingURLTTL)
	if err != nil {
		return "", fmt.Errorf("failed to sign recording url: %w", err)
	}
	return url, nil
}

// Redispatch re-sends the digests of any completed meeting. It is an operator
// action and skips the ownership check.
func (s *MeetingService) Redispatch(ctx context.Context, meetingID uuid.UUID) (*entities.Meeting, error) {
	meeting, err := s.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, entities.ErrMeetingNotFound) {
			return nil, usecaseErrors.ErrMeetingNotFound
		}
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}
	if meeting.Status != entities.MeetingStatusCompleted {
		return nil, usecaseErrors.ErrNotCompleted
	}

	if err := s.jobs.Enqueue(ctx, queue.NewJob(queue.JobTypeSendNotifications, meeting.ID)); err != nil {
		return nil, fmt.Errorf("%w: %v", usecaseErrors.ErrEnqueueFailed, err)
	}
	if meeting.NotificationsPending() {
		if err := s.meetingRepo.MarkNotificationsQueued(ctx, meeting.ID); err != nil && s.logger != nil {
			s.logger.Warn("⚠️ Failed to record queued notifications",
				zap.String("meeting_id", meeting.ID.String()),
				zap.Error(err),
			)
		}
	}
	if s.logger != nil {
		s.logger.Info("📨 Notifications re-queued", zap.String("meeting_id", meeting.ID.String()))
	}
	return meeting, nil
}

func (s *MeetingService) schedule(ctx context.Context, meetingID uuid.UUID) error {
	if err := s.jobs.Enqueue(ctx, queue.NewJob(queue.JobTypeProcessMeeting, meetingID)); err != nil {
		if s.logger != nil {
			s.logger.Error("❌ Failed to enqueue processing",
				zap.String("meeting_id", meetingID.String()),
				zap.Error(err),
			)
		}
		return fmt.Errorf("%w: %v", usecaseErrors.ErrEnqueueFailed, err)
	}

	s.progress.Report(ctx, meetingID, entities.JobStatus{
		Progress:    entities.ProgressStarted,
		StatusLabel: "Queued for processing",
	})
	return nil
}

func (s *MeetingService) allowedExtension(ext string) bool {
	if ext == "" {
		return false
	}
	for _, allowed := range s.upload.AllowedExtensions {
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}

// removeObject deletes a stored recording best-effort
func (s *MeetingService) removeObject(ctx context.Context, objectName string) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	if err := s.storage.Remove(cleanupCtx, objectName); err != nil && s.logger != nil {
		s.logger.Warn("⚠️ Failed to remove recording",
			zap.String("object", objectName),
			zap.Error(err),
		)
	}
}

func isActive(status entities.MeetingStatus) bool {
	return status == entities.MeetingStatusTranscribing || status == entities.MeetingStatusProcessing
}
