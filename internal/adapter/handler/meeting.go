package handler

import (
	stdErrors "errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-whisperer/errors"
	meetingDTO "github.com/johnquangdev/meeting-whisperer/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-whisperer/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/meeting-whisperer/internal/usecase/errors"
	meetingUsecase "github.com/johnquangdev/meeting-whisperer/internal/usecase/meeting"
)

// Meeting handles meeting-related HTTP requests
type Meeting struct {
	svc      meetingUsecase.Service
	tasks    meetingUsecase.Tasks
	maxBytes int64
	logger   *zap.Logger
}

// NewMeetingHandler creates a new meeting handler
func NewMeetingHandler(svc meetingUsecase.Service, tasks meetingUsecase.Tasks, maxBytes int64, logger *zap.Logger) *Meeting {
	return &Meeting{
		svc:      svc,
		tasks:    tasks,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// Upload handles POST /meetings/upload
// @Summary      Upload a meeting recording
// @Description  Stores the recording and queues it for transcription, summarization and task extraction
// @Tags         Meetings
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file             formData  file    true   "Audio or video recording"
// @Param        title            formData  string  true   "Meeting title"
// @Param        description      formData  string  false  "Meeting description"
// @Param        participant_ids  formData  []string  false  "Participant user IDs"  collectionFormat(multi)
// @Success      201  {object}  meeting.UploadResponse  "Meeting stored; queued reports whether processing was scheduled"
// @Failure      400  {object}  map[string]interface{}  "Missing file, bad participant ID or unsupported file type"
// @Failure      401  {object}  map[string]interface{}  "User not authenticated"
// @Failure      413  {object}  map[string]interface{}  "Recording exceeds the upload limit"
// @Failure      500  {object}  map[string]interface{}  "Failed to store meeting"
// @Router       /meetings/upload [post]
func (h *Meeting) Upload(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req meetingDTO.UploadMeetingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("file is required"))
	}
	if h.maxBytes > 0 && fileHeader.Size > h.maxBytes {
		return HandleError(h.logger, c, errors.ErrUploadTooLarge(h.maxBytes))
	}

	participants := make([]uuid.UUID, 0, len(req.ParticipantIDs))
	for _, raw := range req.ParticipantIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return HandleError(h.logger, c, errors.ErrInvalidArgument("participant_ids must be UUIDs"))
		}
		participants = append(participants, id)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("file could not be read"))
	}
	defer file.Close()

	var description *string
	if req.Description != "" {
		description = &req.Description
	}

	meeting, err := h.svc.Upload(c.Request().Context(), meetingUsecase.UploadInput{
		OwnerID:        userID,
		Title:          req.Title,
		Description:    description,
		FileName:       fileHeader.Filename,
		ContentType:    fileHeader.Header.Get(echo.HeaderContentType),
		Size:           fileHeader.Size,
		Reader:         file,
		ParticipantIDs: participants,
	})
	switch {
	case err == nil:
	case meeting != nil && stdErrors.Is(err, usecaseErrors.ErrEnqueueFailed):
		// Stored but not scheduled; the client can re-trigger processing
		return HandleCreated(h.logger, c, &meetingDTO.UploadResponse{
			Meeting: presenter.ToMeetingResponse(meeting, false),
			Queued:  false,
		})
	case stdErrors.Is(err, usecaseErrors.ErrInvalidFileType):
		return HandleError(h.logger, c, errors.ErrUploadInvalidFile(fileHeader.Filename))
	case stdErrors.Is(err, usecaseErrors.ErrFileTooLarge):
		return HandleError(h.logger, c, errors.ErrUploadTooLarge(h.maxBytes))
	default:
		return HandleError(h.logger, c, err)
	}

	return HandleCreated(h.logger, c, &meetingDTO.UploadResponse{
		Meeting: presenter.ToMeetingResponse(meeting, false),
		Queued:  true,
	})
}

// List handles GET /meetings
// @Summary      List meetings
// @Description  Gets a paginated list of the caller's meetings, newest first
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        page       query     int     false  "Page number (default: 1)"
// @Param        page_size  query     int     false  "Items per page (default: 20)"
// @Param        status     query     string  false  "Status filter (uploaded/transcribing/processing/completed/failed)"
// @Success      200        {object}  meeting.MeetingListResponse  "List of meetings"
// @Failure      400        {object}  map[string]interface{}  "Invalid query parameters"
// @Failure      401        {object}  map[string]interface{}  "User not authenticated"
// @Router       /meetings [get]
func (h *Meeting) List(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	req := meetingDTO.ListMeetingsRequest{Page: 1, PageSize: 20}
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	input := meetingUsecase.ListInput{
		OwnerID: userID,
		Page:    req.Page,
		PerPage: req.PageSize,
	}
	if req.Status != "" {
		status := entities.MeetingStatus(req.Status)
		input.Status = &status
	}

	meetings, total, err := h.svc.List(c.Request().Context(), input)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToMeetingListResponse(meetings, total, req.Page, req.PageSize))
}

// Get handles GET /meetings/:id
// @Summary      Get meeting details
// @Description  Gets a meeting with its transcription, summary and participants
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID"
// @Success      200  {object}  meeting.MeetingResponse  "Meeting details"
// @Failure      400  {object}  map[string]interface{}  "Invalid meeting ID"
// @Failure      401  {object}  map[string]interface{}  "User not authenticated"
// @Failure      403  {object}  map[string]interface{}  "Not the meeting owner"
// @Failure      404  {object}  map[string]interface{}  "Meeting not found"
// @Router       /meetings/{id} [get]
func (h *Meeting) Get(c echo.Context) error {
	userID, meetingID, err := h.ids(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	meeting, err := h.svc.Get(c.Request().Context(), userID, meetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToMeetingResponse(meeting, true))
}

// Update handles PATCH /meetings/:id
// @Summary      Update meeting
// @Description  Updates the title or description of a meeting
// @Tags         Meetings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Meeting ID"
// @Param        request  body      meeting.UpdateMeetingRequest  true  "Fields to update"
// @Success      200      {object}  meeting.MeetingResponse  "Meeting updated"
// @Failure      400      {object}  map[string]interface{}  "Invalid request or validation failed"
// @Failure      401      {object}  map[string]interface{}  "User not authenticated"
// @Failure      403      {object}  map[string]interface{}  "Not the meeting owner"
// @Failure      404      {object}  map[string]interface{}  "Meeting not found"
// @Router       /meetings/{id} [patch]
func (h *Meeting) Update(c echo.Context) error {
	userID, meetingID, err := h.ids(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req meetingDTO.UpdateMeetingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	meeting, err := h.svc.Update(c.Request().Context(), userID, meetingID, meetingUsecase.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToMeetingResponse(meeting, false))
}

// Delete handles DELETE /meetings/:id
// @Summary      Delete meeting
// @Description  Deletes a meeting together with its tasks and recording
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID"
// @Success      200  {object}  map[string]interface{}  "Meeting deleted"
// @Failure      401  {object}  map[string]interface{}  "User not authenticated"
// @Failure      403  {object}  map[string]interface{}  "Not the meeting owner"
// @Failure      404  {object}  map[string]interface{}  "Meeting not found"
// @Failure      409  {object}  map[string]interface{}  "Meeting is being processed"
// @Router       /meetings/{id} [delete]
func (h *Meeting) Delete(c echo.Context) error {
	userID, meetingID, err := h.ids(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.svc.Delete(c.Request().Context(), userID, meetingID); err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, map[string]interface{}{"deleted": meetingID.String()})
}

// Status handles GET /meetings/:id/status
// @Summary      Get processing status
// @Description  Gets the pipeline status and live progress of a meeting
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID"
// @Success      200  {object}  meeting.StatusResponse  "Processing status"
// @Failure      401  {object}  map[string]interface{}  "User not authenticated"
// @Failure      403  {object}  map[string]interface{}  "Not the meeting owner"
// @Failure      404  {object}  map[string]interface{}  "Meeting not found"
// @Router       /meetings/{id}/status [get]
func (h *Meeting) Status(c echo.Context) error {
	userID, meetingID, err := h.ids(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	out, err := h.svc.Status(c.Request().Context(), userID, meetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToStatusResponse(out))
}

// Process handles POST /meetings/:id/process
// @Summary      Re-trigger processing
// @Description  Queues an uploaded or failed meeting for another pipeline run
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID"
// @Success      202  {object}  meeting.MeetingResponse  "Processing queued"
// @Failure      401  {object}  map[string]interface{}  "User not authenticated"
// @Failure      403  {object}  map[string]interface{}  "Not the meeting owner"
// @Failure      404  {object}  map[string]interface{}  "Meeting not found"
// @Failure      409  {object}  map[string]interface{}  "Meeting is already processing or completed"
// @Router       /meetings/{id}/process [post]
func (h *Meeting) Process(c echo.Context) error {
	userID, meetingID, err := h.ids(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	meeting, err := h.svc.Reprocess(c.Request().Context(), userID, meetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if h.logger != nil {
		h.logger.Info("🔁 Processing re-triggered",
			zap.String("meeting_id", meetingID.String()),
			zap.String("user_id", userID.String()),
		)
	}

	return HandleAccepted(h.logger, c, presenter.ToMeetingResponse(meeting, false))
}

// Tasks handles GET /meetings/:id/tasks
// @Summary      List meeting tasks
// @Description  Gets the action items extracted from a meeting
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID"
// @Success      200  {object}  task.TaskListResponse  "Meeting tasks"
// @Failure      401  {object}  map[string]interface{}  "User not authenticated"
// @Failure      403  {object}  map[string]interface{}  "Not the meeting owner"
// @Failure      404  {object}  map[string]interface{}  "Meeting not found"
// @Router       /meetings/{id}/tasks [get]
func (h *Meeting) Tasks(c echo.Context) error {
	userID, meetingID, err := h.ids(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	tasks, err := h.tasks.ListByMeeting(c.Request().Context(), userID, meetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToTaskListResponse(tasks))
}

// Recording handles GET /meetings/:id/recording
// @Summary      Get recording URL
// @Description  Returns a short-lived presigned URL for the stored recording
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID"
// @Success      200  {object}  meeting.RecordingURLResponse  "Presigned recording URL"
// @Failure      401  {object}  map[string]interface{}  "User not authenticated"
// @Failure      403  {object}  map[string]interface{}  "Not the meeting owner"
// @Failure      404  {object}  map[string]interface{}  "Meeting not found"
// @Router       /meetings/{id}/recording [get]
func (h *Meeting) Recording(c echo.Context) error {
	userID, meetingID, err := h.ids(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	url, err := h.svc.RecordingURL(c.Request().Context(), userID, meetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToRecordingURLResponse(url, meetingUsecase.RecordingURLTTL))
}

// Redispatch handles POST /admin/meetings/:id/dispatch
// @Summary      Re-send notifications
// @Description  Queues the notification job of a completed meeting again (admin only)
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID"
// @Success      202  {object}  meeting.MeetingResponse  "Notifications queued"
// @Failure      401  {object}  map[string]interface{}  "User not authenticated"
// @Failure      403  {object}  map[string]interface{}  "Admin role required"
// @Failure      404  {object}  map[string]interface{}  "Meeting not found"
// @Failure      409  {object}  map[string]interface{}  "Meeting is not completed"
// @Router       /admin/meetings/{id}/dispatch [post]
func (h *Meeting) Redispatch(c echo.Context) error {
	meetingID, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	meeting, err := h.svc.Redispatch(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleAccepted(h.logger, c, presenter.ToMeetingResponse(meeting, false))
}

func (h *Meeting) ids(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	userID, err := currentUserID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	meetingID, err := pathUUID(c, "id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userID, meetingID, nil
}
