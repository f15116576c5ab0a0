package presenter

import (
	"time"

	"github.com/johnquangdev/meeting-whisperer/internal/adapter/dto/common"
	"github.com/johnquangdev/meeting-whisperer/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-whisperer/internal/adapter/dto/user"
	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
	meetingUsecase "github.com/johnquangdev/meeting-whisperer/internal/usecase/meeting"
)

// ToMeetingResponse converts a Meeting entity to MeetingResponse DTO.
// The transcript is only included when withTranscript is set.
func ToMeetingResponse(m *entities.Meeting, withTranscript bool) *meeting.MeetingResponse {
	if m == nil {
		return nil
	}

	response := &meeting.MeetingResponse{
		ID:              m.ID.String(),
		Title:           m.Title,
		Description:     m.Description,
		FileName:        m.FileName,
		FileSize:        m.FileSize,
		ContentType:     m.ContentType,
		Duration:        m.Duration,
		Status:          string(m.Status),
		ProcessingError: m.ProcessingError,
		OwnerID:         m.OwnerID.String(),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
		ProcessedAt:     m.ProcessedAt,

		NotificationsQueuedAt: m.NotificationsQueuedAt,
	}

	if withTranscript {
		response.Transcription = m.Transcription
	}

	// Key points column holds the full structured summary
	if s, err := m.StructuredSummary(); err == nil && s != nil {
		response.Summary = &meeting.SummaryResponse{
			Summary:   s.Summary,
			KeyPoints: s.KeyPoints,
			Decisions: s.Decisions,
			NextSteps: s.NextSteps,
		}
	} else if m.Summary != "" {
		response.Summary = &meeting.SummaryResponse{Summary: m.Summary}
	}

	if len(m.Participants) > 0 {
		response.Participants = make([]*user.UserResponse, 0, len(m.Participants))
		for i := range m.Participants {
			response.Participants = append(response.Participants, ToUserResponse(&m.Participants[i]))
		}
	}

	return response
}

// ToMeetingListResponse converts a page of meetings
func ToMeetingListResponse(meetings []*entities.Meeting, total int64, page, pageSize int) *meeting.MeetingListResponse {
	responses := make([]*meeting.MeetingResponse, len(meetings))
	for i, m := range meetings {
		responses[i] = ToMeetingResponse(m, false)
	}
	return &meeting.MeetingListResponse{
		Meetings:   responses,
		Pagination: common.NewPagination(total, page, pageSize),
	}
}

// ToStatusResponse flattens a meeting status and its job progress
func ToStatusResponse(out *meetingUsecase.StatusOutput) *meeting.StatusResponse {
	if out == nil {
		return nil
	}
	return &meeting.StatusResponse{
		MeetingID:   out.MeetingID.String(),
		Status:      string(out.Status),
		Progress:    out.Job.Progress,
		StatusLabel: out.Job.StatusLabel,
		Error:       out.Job.Error,
		UpdatedAt:   out.Job.UpdatedAt,
		ProcessedAt: out.ProcessedAt,
	}
}

// ToRecordingURLResponse wraps a presigned URL
func ToRecordingURLResponse(url string, ttl time.Duration) *meeting.RecordingURLResponse {
	return &meeting.RecordingURLResponse{
		URL:       url,
		ExpiresIn: int(ttl.Seconds()),
	}
}
