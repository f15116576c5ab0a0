package queue

import (
	"context"
	"sync"
	"time"
)

// MemoryQueue is an in-process queue for development and tests.
// Jobs do not survive a restart.
type MemoryQueue struct {
	ch          chan memoryEntry
	maxDeliver  int
	pollTimeout time.Duration
	closeOnce   sync.Once
	done        chan struct{}
}

type memoryEntry struct {
	job     Job
	attempt int
}

// NewMemoryQueue creates a queue holding up to capacity jobs
func NewMemoryQueue(capacity, maxDeliver int, pollTimeout time.Duration) *MemoryQueue {
	if maxDeliver < 1 {
		maxDeliver = 1
	}
	return &MemoryQueue{
		ch:          make(chan memoryEntry, capacity),
		maxDeliver:  maxDeliver,
		pollTimeout: pollTimeout,
		done:        make(chan struct{}),
	}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, job Job) error {
	return q.push(ctx, memoryEntry{job: job, attempt: 1})
}

func (q *MemoryQueue) push(ctx context.Context, e memoryEntry) error {
	select {
	case <-q.done:
		return ErrClosed
	default:
	}
	select {
	case q.ch <- e:
		return nil
	case <-q.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (Delivery, error) {
	var timeout <-chan time.Time
	if q.pollTimeout > 0 {
		timer := time.NewTimer(q.pollTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case e := <-q.ch:
		return &memoryDelivery{q: q, entry: e}, nil
	case <-timeout:
		return nil, ErrNoJob
	case <-q.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len reports queued jobs
func (q *MemoryQueue) Len() int {
	return len(q.ch)
}

func (q *MemoryQueue) Close() error {
	q.closeOnce.Do(func() { close(q.done) })
	return nil
}

type memoryDelivery struct {
	q     *MemoryQueue
	entry memoryEntry
}

func (d *memoryDelivery) Job() Job     { return d.entry.job }
func (d *memoryDelivery) Attempt() int { return d.entry.attempt }

func (d *memoryDelivery) Ack(context.Context) error { return nil }

func (d *memoryDelivery) Nack(ctx context.Context) error {
	if d.entry.attempt >= d.q.maxDeliver {
		return nil
	}
	return d.q.push(ctx, memoryEntry{job: d.entry.job, attempt: d.entry.attempt + 1})
}
