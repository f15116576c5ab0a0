package errors

import (
	stdErrors "errors"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_AsAndUnwrap(t *testing.T) {
	cause := stdErrors.New("connection refused")
	var err error = ErrQueueFailed("enqueue", cause)

	var appErr AppError
	if !stdErrors.As(err, &appErr) {
		t.Fatal("expected AppError")
	}
	if appErr.HTTPCode != http.StatusServiceUnavailable {
		t.Errorf("HTTPCode = %d", appErr.HTTPCode)
	}
	if !stdErrors.Is(err, cause) {
		t.Error("cause not reachable through Unwrap")
	}
	if !strings.HasPrefix(err.Error(), "[INTEGRATION_QUEUE_FAILED]") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestAppError_WithDetailCopies(t *testing.T) {
	base := ErrInvalidArgument("bad")
	a := base.WithDetail("field", "title")
	b := a.WithDetail("other", "x")

	if base.Details != nil {
		t.Error("base must not gain details")
	}
	if a.Details["field"] != "title" || b.Details["other"] != "x" {
		t.Errorf("details lost: %v %v", a.Details, b.Details)
	}
}

func TestErrorCode_String(t *testing.T) {
	if got := ErrorCode_MEETING_PROCESSING.String(); got != "MEETING_PROCESSING" {
		t.Errorf("String() = %q", got)
	}
	if got := ErrorCode(42).String(); got != "UNKNOWN" {
		t.Errorf("String() = %q", got)
	}
}
