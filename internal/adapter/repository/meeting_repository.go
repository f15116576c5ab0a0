package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
	"github.com/johnquangdev/meeting-whisperer/internal/domain/repositories"
)

type meetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *gorm.DB) repositories.MeetingRepository {
	return &meetingRepository{db: db}
}

// Create creates a new meeting
func (r *meetingRepository) Create(ctx context.Context, meeting *entities.Meeting) error {
	if err := r.db.WithContext(ctx).Create(meeting).Error; err != nil {
		return fmt.Errorf("failed to create meeting: %w", err)
	}
	return nil
}

// FindByID retrieves a meeting by its ID
func (r *meetingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	var meeting entities.Meeting
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("id = ?", id).
		First(&meeting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrMeetingNotFound
		}
		return nil, fmt.Errorf("failed to find meeting: %w", err)
	}
	return &meeting, nil
}

// List retrieves meetings with filters and pagination
func (r *meetingRepository) List(ctx context.Context, filters repositories.MeetingFilters) ([]*entities.Meeting, int64, error) {
	var meetings []*entities.Meeting
	var total int64

	query := r.db.WithContext(ctx).Model(&entities.Meeting{}).Where("owner_id = ?", filters.OwnerID)
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	// Count total
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count meetings: %w", err)
	}

	query = query.Order("created_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&meetings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list meetings: %w", err)
	}
	return meetings, total, nil
}

// UpdateDetails updates the user-editable fields
func (r *meetingRepository) UpdateDetails(ctx context.Context, meeting *entities.Meeting) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", meeting.ID).
		Updates(map[string]interface{}{
			"title":       meeting.Title,
			"description": meeting.Description,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update meeting: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.ErrMeetingNotFound
	}
	return nil
}

// Delete removes a meeting, its participant links and its tasks
func (r *meetingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("meeting_id = ?", id).Delete(&entities.Task{}).Error; err != nil {
			return fmt.Errorf("failed to delete meeting tasks: %w", err)
		}
		if err := tx.Exec("DELETE FROM meeting_participants WHERE meeting_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete meeting participants: %w", err)
		}
		result := tx.Delete(&entities.Meeting{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete meeting: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return entities.ErrMeetingNotFound
		}
		return nil
	})
}

// TransitionStatus conditionally moves a meeting between statuses
func (r *meetingRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to entities.MeetingStatus) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", entities.ErrInvalidStatusTransition, from, to)
	}

	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	if to == entities.MeetingStatusTranscribing {
		updates["processing_error"] = nil
	}

	// Only the caller that still sees `from` wins the update
	result := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update meeting status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: meeting %s is no longer %s", entities.ErrInvalidStatusTransition, id, from)
	}
	return nil
}

// MarkFailed records a failed run
func (r *meetingRepository) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ? AND status <> ?", id, entities.MeetingStatusCompleted).
		Updates(map[string]interface{}{
			"status":           entities.MeetingStatusFailed,
			"processing_error": message,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark meeting as failed: %w", result.Error)
	}
	return nil
}

// CompleteRun writes run results and tasks atomically
func (r *meetingRepository) CompleteRun(ctx context.Context, id uuid.UUID, results repositories.RunResults, tasks []*entities.Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entities.Meeting{}).
			Where("id = ? AND status = ?", id, entities.MeetingStatusProcessing).
			Updates(map[string]interface{}{
				"transcription":           results.Transcription,
				"summary":                 results.Summary,
				"key_points":              results.KeyPoints,
				"status":                  entities.MeetingStatusCompleted,
				"processing_error":        nil,
				"processed_at":            results.ProcessedAt,
				"notifications_queued_at": nil,
				"updated_at":              time.Now(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to save meeting results: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: meeting %s is no longer processing", entities.ErrInvalidStatusTransition, id)
		}

		if len(tasks) == 0 {
			return nil
		}
		if err := tx.Omit("Assignee").CreateInBatches(tasks, 100).Error; err != nil {
			return fmt.Errorf("failed to create tasks: %w", err)
		}
		return nil
	})
}

// MarkNotificationsQueued stamps notifications_queued_at on a completed meeting
func (r *meetingRepository) MarkNotificationsQueued(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ? AND status = ?", id, entities.MeetingStatusCompleted).
		Update("notifications_queued_at", time.Now().UTC())
	if result.Error != nil {
		return fmt.Errorf("failed to mark notifications queued: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: meeting %s is not completed", entities.ErrInvalidStatusTransition, id)
	}
	return nil
}
