package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-whisperer/internal/infrastructure/queue"
	"github.com/johnquangdev/meeting-whisperer/pkg/jobcontext"
)

const ackTimeout = 5 * time.Second

// Handler runs one job. A returned error is terminal for that job: the
// handler is expected to have recorded it where users can see it. Errors
// wrapping queue.ErrRedeliver send the job back to the queue instead.
type Handler func(ctx context.Context, job queue.Job) error

// Pool consumes jobs from a queue with a fixed number of workers
type Pool struct {
	queue      queue.Queue
	handlers   map[queue.JobType]Handler
	jobTimeout time.Duration
	logger     *zap.Logger

	workerMutex         sync.Mutex
	workerWg            sync.WaitGroup
	workerStopChan      chan struct{}
	stopPolling         context.CancelFunc
	isWorkerPoolRunning bool
}

// NewPool creates a worker pool over q
func NewPool(q queue.Queue, jobTimeout time.Duration, logger *zap.Logger) *Pool {
	return &Pool{
		queue:      q,
		handlers:   make(map[queue.JobType]Handler),
		jobTimeout: jobTimeout,
		logger:     logger,
	}
}

// Handle registers the handler for a job type. Call before StartWorkerPool.
func (p *Pool) Handle(jobType queue.JobType, h Handler) {
	p.handlers[jobType] = h
}

// StartWorkerPool starts workerCount workers
func (p *Pool) StartWorkerPool(ctx context.Context, workerCount int) error {
	p.workerMutex.Lock()
	defer p.workerMutex.Unlock()

	if p.isWorkerPoolRunning {
		return fmt.Errorf("worker pool already running")
	}
	if workerCount <= 0 {
		workerCount = 1
	}

	p.isWorkerPoolRunning = true
	p.workerStopChan = make(chan struct{})

	pollCtx, cancel := context.WithCancel(ctx)
	p.stopPolling = cancel

	if p.logger != nil {
		p.logger.Info("🚀 Starting worker pool",
			zap.Int("worker_count", workerCount),
		)
	}

	for i := 0; i < workerCount; i++ {
		p.workerWg.Add(1)
		go p.worker(ctx, pollCtx, i)
	}

	return nil
}

// StopWorkerPool stops taking new jobs and waits for running jobs to finish
func (p *Pool) StopWorkerPool() error {
	p.workerMutex.Lock()
	defer p.workerMutex.Unlock()

	if !p.isWorkerPoolRunning {
		return fmt.Errorf("worker pool not running")
	}

	if p.logger != nil {
		p.logger.Info("🛑 Stopping worker pool...")
	}

	close(p.workerStopChan)
	p.stopPolling()
	p.workerWg.Wait()
	p.isWorkerPoolRunning = false

	if p.logger != nil {
		p.logger.Info("✅ Worker pool stopped")
	}

	return nil
}

// worker dequeues until the pool stops. Jobs run on parentCtx so a stop
// request lets the current job finish; only polling is interrupted.
func (p *Pool) worker(parentCtx, pollCtx context.Context, workerID int) {
	defer p.workerWg.Done()

	if p.logger != nil {
		p.logger.Info("👷 Worker started", zap.Int("worker_id", workerID))
	}

	for {
		select {
		case <-p.workerStopChan:
			if p.logger != nil {
				p.logger.Info("👷 Worker stopping", zap.Int("worker_id", workerID))
			}
			return
		default:
		}

		delivery, err := p.queue.Dequeue(pollCtx)
		if err != nil {
			switch {
			case errors.Is(err, queue.ErrNoJob):
				continue
			case errors.Is(err, queue.ErrClosed), pollCtx.Err() != nil:
				return
			}
			if p.logger != nil {
				p.logger.Error("❌ Failed to dequeue job",
					zap.Int("worker_id", workerID),
					zap.Error(err),
				)
			}
			// Back off so a broken backend does not spin
			select {
			case <-p.workerStopChan:
				return
			case <-time.After(time.Second):
			}
			continue
		}

		p.process(parentCtx, workerID, delivery)
	}
}

// process runs one delivery and settles it. Handler errors are acked since
// they are recorded on the meeting; panics, redeliver requests and unknown
// types are nacked.
func (p *Pool) process(parentCtx context.Context, workerID int, delivery queue.Delivery) {
	job := delivery.Job()

	handler, ok := p.handlers[job.Type]
	if !ok {
		if p.logger != nil {
			p.logger.Error("❌ No handler for job type",
				zap.String("job_id", job.ID.String()),
				zap.String("job_type", string(job.Type)),
			)
		}
		p.settle(parentCtx, delivery, false)
		return
	}

	if p.logger != nil {
		p.logger.Info("👷 Worker claimed job",
			zap.Int("worker_id", workerID),
			zap.String("job_id", job.ID.String()),
			zap.String("job_type", string(job.Type)),
			zap.String("meeting_id", job.MeetingID.String()),
			zap.Int("attempt", delivery.Attempt()),
		)
	}

	meta := jobcontext.Metadata{
		JobID:     job.ID,
		JobType:   string(job.Type),
		MeetingID: job.MeetingID,
		WorkerID:  workerID,
		Attempt:   delivery.Attempt(),
	}
	jobCtx, cancel := jobcontext.Begin(parentCtx, meta, p.jobTimeout)
	err := jobcontext.Run(jobCtx, func(ctx context.Context) error {
		return handler(ctx, job)
	})
	if started, ok := jobcontext.FromContext(jobCtx); ok {
		meta = started
	}
	cancel()

	if err != nil {
		if p.logger != nil {
			p.logger.Error("❌ Job failed",
				zap.String("job_id", job.ID.String()),
				zap.String("job_type", string(job.Type)),
				zap.Duration("elapsed", meta.Elapsed()),
				zap.Error(err),
			)
		}
		redeliver := errors.Is(err, jobcontext.ErrJobPanicked) || errors.Is(err, queue.ErrRedeliver)
		p.settle(parentCtx, delivery, !redeliver)
		return
	}

	if p.logger != nil {
		p.logger.Info("✅ Job completed successfully",
			zap.String("job_id", job.ID.String()),
			zap.Duration("elapsed", meta.Elapsed()),
		)
	}
	p.settle(parentCtx, delivery, true)
}

func (p *Pool) settle(parentCtx context.Context, delivery queue.Delivery, ack bool) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parentCtx), ackTimeout)
	defer cancel()

	var err error
	if ack {
		err = delivery.Ack(ctx)
	} else {
		err = delivery.Nack(ctx)
	}
	if err != nil && p.logger != nil {
		p.logger.Error("❌ Failed to settle job",
			zap.String("job_id", delivery.Job().ID.String()),
			zap.Bool("ack", ack),
			zap.Error(err),
		)
	}
}
