package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-whisperer/internal/infrastructure/queue"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestPool_RunsEachJobOnce(t *testing.T) {
	q := queue.NewMemoryQueue(10, 3, 20*time.Millisecond)
	defer q.Close()

	var mu sync.Mutex
	seen := map[uuid.UUID]int{}
	pool := NewPool(q, time.Second, nil)
	pool.Handle(queue.JobTypeProcessMeeting, func(_ context.Context, job queue.Job) error {
		mu.Lock()
		defer mu.Unlock()
		seen[job.MeetingID]++
		// handler failures are terminal and must not be redelivered
		return errors.New("stage failed")
	})

	ctx := context.Background()
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for _, id := range ids {
		if err := q.Enqueue(ctx, queue.NewJob(queue.JobTypeProcessMeeting, id)); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	if err := pool.StartWorkerPool(ctx, 2); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := pool.StartWorkerPool(ctx, 2); err == nil {
		t.Fatal("second start should fail")
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == len(ids)
	})
	time.Sleep(50 * time.Millisecond)

	if err := pool.StopWorkerPool(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	for _, id := range ids {
		if seen[id] != 1 {
			t.Fatalf("job for %s ran %d times", id, seen[id])
		}
	}
	if err := pool.StopWorkerPool(); err == nil {
		t.Fatal("second stop should fail")
	}
}

func TestPool_PanicIsRedelivered(t *testing.T) {
	q := queue.NewMemoryQueue(10, 2, 20*time.Millisecond)
	defer q.Close()

	var calls int32
	done := make(chan struct{})
	pool := NewPool(q, time.Second, nil)
	pool.Handle(queue.JobTypeSendNotifications, func(context.Context, queue.Job) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			panic("boom")
		}
		close(done)
		return nil
	})

	ctx := context.Background()
	q.Enqueue(ctx, queue.NewJob(queue.JobTypeSendNotifications, uuid.New()))
	pool.StartWorkerPool(ctx, 1)
	defer pool.StopWorkerPool()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("job was not redelivered after panic, calls=%d", atomic.LoadInt32(&calls))
	}
}

func TestPool_RedeliverErrorSendsJobBack(t *testing.T) {
	q := queue.NewMemoryQueue(10, 3, 20*time.Millisecond)
	defer q.Close()

	var calls int32
	done := make(chan struct{})
	pool := NewPool(q, time.Second, nil)
	pool.Handle(queue.JobTypeProcessMeeting, func(context.Context, queue.Job) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			return fmt.Errorf("%w: notifications not queued", queue.ErrRedeliver)
		}
		close(done)
		return nil
	})

	ctx := context.Background()
	q.Enqueue(ctx, queue.NewJob(queue.JobTypeProcessMeeting, uuid.New()))
	pool.StartWorkerPool(ctx, 1)
	defer pool.StopWorkerPool()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("job was not redelivered, calls=%d", atomic.LoadInt32(&calls))
	}
}

func TestPool_UnknownJobTypeIsDropped(t *testing.T) {
	q := queue.NewMemoryQueue(10, 2, 20*time.Millisecond)
	defer q.Close()

	var handled int32
	pool := NewPool(q, time.Second, nil)
	pool.Handle(queue.JobTypeProcessMeeting, func(context.Context, queue.Job) error {
		atomic.AddInt32(&handled, 1)
		return nil
	})

	ctx := context.Background()
	q.Enqueue(ctx, queue.Job{ID: uuid.New(), Type: "reindex", MeetingID: uuid.New()})
	pool.StartWorkerPool(ctx, 1)

	waitFor(t, func() bool { return q.Len() == 0 })
	time.Sleep(100 * time.Millisecond)
	pool.StopWorkerPool()

	if q.Len() != 0 || atomic.LoadInt32(&handled) != 0 {
		t.Fatalf("unknown job should be dropped after its delivery budget, len=%d", q.Len())
	}
}
