package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// JobType names the unit of work a job carries
type JobType string

const (
	JobTypeProcessMeeting    JobType = "process_meeting"
	JobTypeSendNotifications JobType = "send_notifications"
)

var (
	// ErrNoJob is returned by Dequeue when no job arrived within the poll window
	ErrNoJob = errors.New("queue: no job available")
	// ErrClosed is returned after Close
	ErrClosed = errors.New("queue: closed")
	// ErrRedeliver marks a handler error that should send the job back to
	// the queue instead of settling it
	ErrRedeliver = errors.New("queue: redeliver job")
)

// Job is a queued unit of work for one meeting
type Job struct {
	ID         uuid.UUID
	Type       JobType
	MeetingID  uuid.UUID
	EnqueuedAt time.Time
}

// NewJob creates a job with a fresh ID
func NewJob(jobType JobType, meetingID uuid.UUID) Job {
	return Job{
		ID:         uuid.New(),
		Type:       jobType,
		MeetingID:  meetingID,
		EnqueuedAt: time.Now().UTC(),
	}
}

// wireJob is the msgpack payload; IDs travel as strings
type wireJob struct {
	ID         string    `msgpack:"id"`
	Type       string    `msgpack:"type"`
	MeetingID  string    `msgpack:"meeting_id"`
	EnqueuedAt time.Time `msgpack:"enqueued_at"`
	Attempt    int       `msgpack:"attempt,omitempty"`
}

// Encode serializes a job for a durable backend
func Encode(job Job) ([]byte, error) {
	return encodeAttempt(job, 0)
}

func encodeAttempt(job Job, attempt int) ([]byte, error) {
	data, err := msgpack.Marshal(wireJob{
		ID:         job.ID.String(),
		Type:       string(job.Type),
		MeetingID:  job.MeetingID.String(),
		EnqueuedAt: job.EnqueuedAt,
		Attempt:    attempt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode job: %w", err)
	}
	return data, nil
}

// Decode parses a payload produced by Encode
func Decode(data []byte) (Job, error) {
	job, _, err := decodeAttempt(data)
	return job, err
}

func decodeAttempt(data []byte) (Job, int, error) {
	var w wireJob
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return Job{}, 0, fmt.Errorf("failed to decode job: %w", err)
	}
	id, err := uuid.Parse(w.ID)
	if err != nil {
		return Job{}, 0, fmt.Errorf("invalid job id %q: %w", w.ID, err)
	}
	meetingID, err := uuid.Parse(w.MeetingID)
	if err != nil {
		return Job{}, 0, fmt.Errorf("invalid meeting id %q: %w", w.MeetingID, err)
	}
	return Job{
		ID:         id,
		Type:       JobType(w.Type),
		MeetingID:  meetingID,
		EnqueuedAt: w.EnqueuedAt,
	}, w.Attempt, nil
}

// Delivery is a dequeued job that must be acknowledged
type Delivery interface {
	Job() Job
	// Attempt is 1 on first delivery
	Attempt() int
	// Ack removes the job from the queue
	Ack(ctx context.Context) error
	// Nack returns the job for redelivery, or drops it once the delivery budget is spent
	Nack(ctx context.Context) error
}

// Queue is an at-least-once job queue
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	// Dequeue blocks until a job is available, the poll window elapses (ErrNoJob)
	// or ctx is done
	Dequeue(ctx context.Context) (Delivery, error)
	Close() error
}
