package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

type HandlerFunc func(ctx context.Context, job Job) error

// Worker executes dequeued jobs with a bounded retry policy. A job that
// cannot be decoded or has no registered handler is terminal immediately;
// handler failures are retried with doubling backoff until MaxAttempts.
type Worker struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration

	handlers map[string]HandlerFunc
	log      *slog.Logger
}

func NewWorker(log *slog.Logger) *Worker {
	return &Worker{
		MaxAttempts: 5,
		BaseBackoff: time.Second,
		MaxBackoff:  30 * time.Second,
		handlers:    make(map[string]HandlerFunc),
		log:         log,
	}
}

func (w *Worker) Register(jobType string, h HandlerFunc) {
	w.handlers[jobType] = h
}

// Execute runs one job payload to completion. A non-nil return means the job
// is exhausted and belongs in the dead-letter topic.
func (w *Worker) Execute(ctx context.Context, payload []byte) error {
	var job Job
	if err := json.Unmarshal(payload, &job); err != nil {
		return fmt.Errorf("undecodable job payload: %w", err)
	}

	h, ok := w.handlers[job.Type]
	if !ok {
		return fmt.Errorf("no handler for job type %q", job.Type)
	}

	backoff := w.BaseBackoff
	var lastErr error
	for attempt := 1; attempt <= w.MaxAttempts; attempt++ {
		lastErr = h(ctx, job)
		if lastErr == nil {
			if attempt > 1 {
				w.log.Info("job recovered", "job_id", job.ID, "job_type", job.Type, "attempt", attempt)
			}
			return nil
		}

		w.log.Warn("job attempt failed",
			"job_id", job.ID, "job_type", job.Type, "attempt", attempt, "error", lastErr)

		if attempt == w.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > w.MaxBackoff {
			backoff = w.MaxBackoff
		}
	}

	return fmt.Errorf("job %s exhausted %d attempts: %w", job.ID, w.MaxAttempts, lastErr)
}

// Consumer ties the worker to the broker: it fetches one message at a time,
// executes it, dead-letters exhausted jobs and only then commits, so a crash
// mid-job results in redelivery rather than loss.
type Consumer struct {
	reader *kafka.Reader
	dlq    *kafka.Writer
	worker *Worker
	log    *slog.Logger
}

func NewConsumer(address, groupID string, w *Worker, log *slog.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  []string{address},
			GroupID:  groupID,
			Topic:    Topic,
			MinBytes: 1,
			MaxBytes: 10e6,
			MaxWait:  time.Second,
		}),
		dlq: &kafka.Writer{
			Addr:                   kafka.TCP(address),
			Topic:                  DeadLetterTopic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
		worker: w,
		log:    log,
	}
}

func (c *Consumer) Run(ctx context.Context) error {
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("jobs: fetch failed: %w", err)
		}

		if err := c.worker.Execute(ctx, m.Value); err != nil {
			if errors.Is(err, context.Canceled) {
				// Shutting down mid-job: leave the message uncommitted.
				return nil
			}
			c.deadLetter(ctx, m, err)
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.log.Error("commit failed", "error", err)
		}
	}
}

func (c *Consumer) deadLetter(ctx context.Context, m kafka.Message, cause error) {
	c.log.Error("job dead-lettered", "key", string(m.Key), "error", cause)

	msg := kafka.Message{
		Key:   m.Key,
		Value: m.Value,
		Headers: []kafka.Header{
			{Key: "error", Value: []byte(cause.Error())},
		},
	}
	if err := c.dlq.WriteMessages(ctx, msg); err != nil {
		c.log.Error("dead-letter publish failed", "key", string(m.Key), "error", err)
	}
}

func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return err
	}
	return c.dlq.Close()
}
