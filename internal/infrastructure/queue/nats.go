package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATSConfig configures the JetStream work queue
type NATSConfig struct {
	Stream      string
	Consumer    string
	Subject     string
	MaxDeliver  int
	AckWait     time.Duration
	PollTimeout time.Duration
}

// NATSQueue is a JetStream work-queue stream with a durable pull consumer
type NATSQueue struct {
	js       jetstream.JetStream
	consumer jetstream.Consumer
	cfg      NATSConfig
}

// NewNATSQueue creates (or updates) the stream and durable consumer
func NewNATSQueue(ctx context.Context, nc *nats.Conn, cfg NATSConfig) (*NATSQueue, error) {
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 5 * time.Second
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        cfg.Stream,
		Subjects:    []string{cfg.Subject + ".>"},
		Retention:   jetstream.WorkQueuePolicy,
		Storage:     jetstream.FileStorage,
		Duplicates:  2 * time.Minute,
		Description: "meeting processing and notification jobs",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create stream %s: %w", cfg.Stream, err)
	}

	consumer, err := js.CreateOrUpdateConsumer(ctx, cfg.Stream, jetstream.ConsumerConfig{
		Name:          cfg.Consumer,
		Durable:       cfg.Consumer,
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: jetstream.DeliverAllPolicy,
		FilterSubject: cfg.Subject + ".>",
		MaxDeliver:    cfg.MaxDeliver,
		AckWait:       cfg.AckWait,
		Description:   "durable/shared meeting job consumer",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer %s: %w", cfg.Consumer, err)
	}

	return &NATSQueue{js: js, consumer: consumer, cfg: cfg}, nil
}

func (q *NATSQueue) Enqueue(ctx context.Context, job Job) error {
	payload, err := Encode(job)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("%s.%s", q.cfg.Subject, job.Type)
	if _, err := q.js.Publish(ctx, subject, payload, jetstream.WithMsgID(job.ID.String())); err != nil {
		return fmt.Errorf("failed to publish job: %w", err)
	}
	return nil
}

func (q *NATSQueue) Dequeue(ctx context.Context) (Delivery, error) {
	msg, err := q.consumer.Next(jetstream.FetchMaxWait(q.cfg.PollTimeout))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrNoJob
		}
		return nil, fmt.Errorf("failed to fetch job: %w", err)
	}

	job, err := Decode(msg.Data())
	if err != nil {
		// Poison payload: terminate so JetStream stops redelivering it
		_ = msg.Term()
		return nil, err
	}

	attempt := 1
	if meta, err := msg.Metadata(); err == nil {
		attempt = int(meta.NumDelivered)
	}
	return &natsDelivery{msg: msg, job: job, attempt: attempt}, nil
}

func (q *NATSQueue) Close() error {
	return nil
}

type natsDelivery struct {
	msg     jetstream.Msg
	job     Job
	attempt int
}

func (d *natsDelivery) Job() Job     { return d.job }
func (d *natsDelivery) Attempt() int { return d.attempt }

func (d *natsDelivery) Ack(ctx context.Context) error {
	if err := d.msg.DoubleAck(ctx); err != nil {
		return fmt.Errorf("failed to ack job %s: %w", d.job.ID, err)
	}
	return nil
}

// Nack asks for redelivery; JetStream drops the job after MaxDeliver attempts
func (d *natsDelivery) Nack(context.Context) error {
	if err := d.msg.Nak(); err != nil {
		return fmt.Errorf("failed to nak job %s: %w", d.job.ID, err)
	}
	return nil
}
