package jobcontext

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
)

type contextKey struct{}

// DefaultTimeout applies when a job is started without a positive timeout
const DefaultTimeout = 5 * time.Minute

// ErrJobPanicked wraps a panic recovered while running a job
var ErrJobPanicked = errors.New("panic recovered")

// Metadata describes the job a context belongs to
type Metadata struct {
	JobID     uuid.UUID
	JobType   string
	MeetingID uuid.UUID
	WorkerID  int
	// Attempt is the delivery attempt reported by the queue, starting at 1
	Attempt   int
	StartTime time.Time
}

// Elapsed returns the time since the job started
func (m Metadata) Elapsed() time.Duration {
	if m.StartTime.IsZero() {
		return 0
	}
	return time.Since(m.StartTime)
}

// Begin derives a job context bounded by timeout and carrying meta.
// StartTime is stamped when unset.
func Begin(parent context.Context, meta Metadata, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if meta.StartTime.IsZero() {
		meta.StartTime = time.Now()
	}

	ctx, cancel := context.WithTimeout(parent, timeout)
	return context.WithValue(ctx, contextKey{}, meta), cancel
}

// FromContext returns the job metadata stored by Begin
func FromContext(ctx context.Context) (Metadata, bool) {
	meta, ok := ctx.Value(contextKey{}).(Metadata)
	return meta, ok
}

// Run executes fn once. A recovered panic is returned wrapped in
// ErrJobPanicked; a context already done is reported without calling fn.
func Run(ctx context.Context, fn func(context.Context) error) (err error) {
	if ctx.Err() != nil {
		return fmt.Errorf("context done before job execution: %w", ctx.Err())
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrJobPanicked, p)
		}
	}()

	return fn(ctx)
}

// permanentMarkers are provider messages that never succeed on retry
var permanentMarkers = []string{
	"400", "401", "403", "404",
	"bad request",
	"invalid api key",
	"unauthorized",
	"validation failed",
	"malformed",
}

// transientMarkers cover provider SDKs that only surface a message
var transientMarkers = []string{
	"rate limit",
	"too many requests",
	"429",
	"status 5",
	"internal server error",
	"service unavailable",
	"bad gateway",
	"temporary failure",
	"try again",
}

// IsTransient reports whether err is worth retrying: deadline and network
// failures, rate limits and upstream 5xx. Cancellation is never transient.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary || dnsErr.IsTimeout
	}

	msg := strings.ToLower(err.Error())
	for _, m := range permanentMarkers {
		if strings.Contains(msg, m) {
			return false
		}
	}
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "i/o timeout")
}
