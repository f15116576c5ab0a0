package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// defaultLease is used when no job timeout is configured
const defaultLease = 30 * time.Minute

// requeueExpired returns processing entries whose lease ran out to the
// pending list. Entries without a lease (the worker died between the move
// and the lease write) get one now and are reclaimed on a later sweep.
//
// KEYS: processing, pending, leases. ARGV: now ms, fresh lease deadline ms.
var requeueExpired = redis.NewScript(`
local moved = 0
local items = redis.call('LRANGE', KEYS[1], 0, -1)
for _, payload in ipairs(items) do
	local lease = redis.call('ZSCORE', KEYS[3], payload)
	if not lease then
		redis.call('ZADD', KEYS[3], ARGV[2], payload)
	elseif tonumber(lease) <= tonumber(ARGV[1]) then
		if redis.call('LREM', KEYS[1], 1, payload) > 0 then
			redis.call('RPUSH', KEYS[2], payload)
			moved = moved + 1
		end
		redis.call('ZREM', KEYS[3], payload)
	end
end
return moved
`)

// RedisQueue is a reliable list queue: jobs move atomically from the pending
// list to a processing list on dequeue and leave it on ack. Every in-flight
// entry carries a lease; only entries whose lease expired are redelivered, so
// a starting process never takes jobs a live worker is still running.
type RedisQueue struct {
	client      *redis.Client
	pending     string
	processing  string
	leases      string
	maxDeliver  int
	pollTimeout time.Duration
	lease       time.Duration
	now         func() time.Time

	sweepMu   sync.Mutex
	lastSweep time.Time
}

// RedisConfig holds RedisQueue settings
type RedisConfig struct {
	Name        string
	MaxDeliver  int
	PollTimeout time.Duration
	// Lease is how long a dequeued job may run before another process may
	// redeliver it. Set it above the job timeout.
	Lease time.Duration
}

// NewRedisQueue creates a queue stored under "<name>:pending",
// "<name>:processing" and "<name>:leases"
func NewRedisQueue(client *redis.Client, cfg RedisConfig) *RedisQueue {
	if cfg.MaxDeliver < 1 {
		cfg.MaxDeliver = 1
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 5 * time.Second
	}
	if cfg.Lease <= 0 {
		cfg.Lease = defaultLease
	}
	return &RedisQueue{
		client:      client,
		pending:     cfg.Name + ":pending",
		processing:  cfg.Name + ":processing",
		leases:      cfg.Name + ":leases",
		maxDeliver:  cfg.MaxDeliver,
		pollTimeout: cfg.PollTimeout,
		lease:       cfg.Lease,
		now:         time.Now,
	}
}

func (q *RedisQueue) Enqueue(ctx context.Context, job Job) error {
	payload, err := Encode(job)
	if err != nil {
		return err
	}
	if err := q.client.LPush(ctx, q.pending, payload).Err(); err != nil {
		return fmt.Errorf("failed to push job: %w", err)
	}
	return nil
}

func (q *RedisQueue) Dequeue(ctx context.Context) (Delivery, error) {
	q.maybeSweep(ctx)

	payload, err := q.client.BLMove(ctx, q.pending, q.processing, "RIGHT", "LEFT", q.pollTimeout).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoJob
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed to pop job: %w", err)
	}

	// A failed lease write is repaired by the next sweep
	q.client.ZAdd(context.WithoutCancel(ctx), q.leases, redis.Z{
		Score:  float64(q.now().Add(q.lease).UnixMilli()),
		Member: payload,
	})

	job, attempt, err := decodeAttempt([]byte(payload))
	if err != nil {
		// Poison payload: drop it so it cannot block the queue
		q.forget(ctx, payload)
		return nil, err
	}
	return &redisDelivery{q: q, payload: payload, job: job, attempt: attempt + 1}, nil
}

// RequeueExpired moves in-flight jobs whose lease has expired back to
// pending and returns how many were moved. It is safe to call while other
// processes are consuming the queue.
func (q *RedisQueue) RequeueExpired(ctx context.Context) (int, error) {
	now := q.now()
	moved, err := requeueExpired.Run(ctx, q.client,
		[]string{q.processing, q.pending, q.leases},
		now.UnixMilli(), now.Add(q.lease).UnixMilli(),
	).Int()
	if err != nil {
		return 0, fmt.Errorf("failed to requeue expired jobs: %w", err)
	}
	return moved, nil
}

// maybeSweep runs RequeueExpired at most once per lease period from the
// consuming side, so orphans are reclaimed without a restart
func (q *RedisQueue) maybeSweep(ctx context.Context) {
	q.sweepMu.Lock()
	due := q.now().Sub(q.lastSweep) >= q.lease/2
	if due {
		q.lastSweep = q.now()
	}
	q.sweepMu.Unlock()

	if due {
		// Best effort; the next period tries again
		_, _ = q.RequeueExpired(ctx)
	}
}

func (q *RedisQueue) forget(ctx context.Context, payload string) error {
	pipe := q.client.TxPipeline()
	pipe.LRem(ctx, q.processing, 1, payload)
	pipe.ZRem(ctx, q.leases, payload)
	_, err := pipe.Exec(ctx)
	return err
}

func (q *RedisQueue) Close() error {
	return nil
}

type redisDelivery struct {
	q       *RedisQueue
	payload string
	job     Job
	attempt int
}

func (d *redisDelivery) Job() Job     { return d.job }
func (d *redisDelivery) Attempt() int { return d.attempt }

func (d *redisDelivery) Ack(ctx context.Context) error {
	if err := d.q.forget(ctx, d.payload); err != nil {
		return fmt.Errorf("failed to ack job %s: %w", d.job.ID, err)
	}
	return nil
}

func (d *redisDelivery) Nack(ctx context.Context) error {
	pipe := d.q.client.TxPipeline()
	pipe.LRem(ctx, d.q.processing, 1, d.payload)
	pipe.ZRem(ctx, d.q.leases, d.payload)
	if d.attempt < d.q.maxDeliver {
		payload, err := encodeAttempt(d.job, d.attempt)
		if err != nil {
			return err
		}
		pipe.LPush(ctx, d.q.pending, payload)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to nack job %s: %w", d.job.ID, err)
	}
	return nil
}
