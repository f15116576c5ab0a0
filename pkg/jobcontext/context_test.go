package jobcontext

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestBegin_Metadata(t *testing.T) {
	meta := Metadata{
		JobID:     uuid.New(),
		JobType:   "process_meeting",
		MeetingID: uuid.New(),
		WorkerID:  3,
		Attempt:   2,
	}
	ctx, cancel := Begin(context.Background(), meta, time.Minute)
	defer cancel()

	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("metadata missing")
	}
	if got.JobID != meta.JobID || got.MeetingID != meta.MeetingID || got.WorkerID != 3 || got.Attempt != 2 {
		t.Fatalf("unexpected metadata %+v", got)
	}
	if got.StartTime.IsZero() {
		t.Fatal("start time should be stamped")
	}
	if _, ok := ctx.Deadline(); !ok {
		t.Fatal("job context should carry a deadline")
	}
}

func TestBegin_DefaultTimeout(t *testing.T) {
	ctx, cancel := Begin(context.Background(), Metadata{}, 0)
	defer cancel()

	deadline, ok := ctx.Deadline()
	if !ok || time.Until(deadline) > DefaultTimeout {
		t.Fatalf("expected default deadline, got %v (ok=%v)", deadline, ok)
	}
}

func TestFromContext_Missing(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Fatal("expected no metadata")
	}
}

func TestRun_RecoversPanic(t *testing.T) {
	err := Run(context.Background(), func(context.Context) error { panic("boom") })
	if !errors.Is(err, ErrJobPanicked) {
		t.Fatalf("expected ErrJobPanicked, got %v", err)
	}
}

func TestRun_ReturnsHandlerError(t *testing.T) {
	calls := 0
	sentinel := errors.New("invalid meeting id")
	err := Run(context.Background(), func(context.Context) error {
		calls++
		return sentinel
	})
	if err != sentinel || calls != 1 {
		t.Fatalf("expected single call with sentinel, got %d calls, %v", calls, err)
	}
}

func TestRun_SkipsDoneContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := Run(ctx, func(context.Context) error {
		called = true
		return nil
	})
	if called || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation without call, got called=%v err=%v", called, err)
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", fmt.Errorf("transcribe: %w", context.DeadlineExceeded), true},
		{"canceled", fmt.Errorf("transcribe: %w", context.Canceled), false},
		{"refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, true},
		{"dns temporary", &net.DNSError{Err: "lookup", IsTemporary: true}, true},
		{"dns not found", &net.DNSError{Err: "no such host", IsNotFound: true}, false},
		{"rate limit", errors.New("429 too many requests"), true},
		{"upstream 503", errors.New("status 503 service unavailable"), true},
		{"bad request", errors.New("status 400 bad request"), false},
		{"auth", errors.New("invalid api key"), false},
		{"parse", errors.New("json: cannot unmarshal string into x"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
