package errors

import "errors"

// Common errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden access")
)

// Meeting errors
var (
	ErrMeetingNotFound    = errors.New("meeting not found")
	ErrAlreadyProcessed   = errors.New("meeting already processed")
	ErrProcessingActive   = errors.New("meeting is being processed")
	ErrInvalidFileType    = errors.New("unsupported recording file type")
	ErrFileTooLarge       = errors.New("recording exceeds maximum upload size")
	ErrRecordingNotStored = errors.New("failed to store recording")
	ErrEnqueueFailed      = errors.New("failed to schedule processing")
	ErrNotCompleted       = errors.New("meeting has not completed processing")
)

// Task errors
var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrInvalidPriority = errors.New("invalid task priority")
	ErrInvalidStatus   = errors.New("invalid task status")
	ErrInvalidDueDate  = errors.New("due date must be YYYY-MM-DD")
)
