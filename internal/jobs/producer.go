package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type Enqueuer interface {
	Enqueue(ctx context.Context, job Job) (string, error)
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(address string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(address),
			Topic:                  Topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
	}
}

// Enqueue appends the job and returns its id once the broker has it. The
// caller does not wait on job execution.
func (p *Producer) Enqueue(ctx context.Context, job Job) (string, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}

	data, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("jobs: json.Marshal failed: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(job.ID),
		Value: data,
	})
	if err != nil {
		return "", fmt.Errorf("jobs: enqueue failed: %w", err)
	}

	return job.ID, nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
