package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"preorder/internal/logger"
)

const Topic = "preorder-sync-events"

// Event is one step outcome emitted during a sync run.
type Event struct {
	RunID     string    `json:"run_id"`
	Step      string    `json:"step"`
	Status    string    `json:"status"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher emits sync events to Kafka. Publishing is best effort: a broker
// outage must never fail a sync run, so errors are logged and dropped.
type Publisher struct {
	writer *kafka.Writer
	logger *logger.Logger
}

// NewPublisher returns nil when no brokers are configured, and callers treat
// a nil publisher as a no-op.
func NewPublisher(brokers []string, logger *logger.Logger) *Publisher {
	if len(brokers) == 0 {
		return nil
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        Topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			WriteTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

func (p *Publisher) Publish(ctx context.Context, event Event) {
	if p == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal sync event: %v", err)
		return
	}
	msg := kafka.Message{
		Key:   []byte(event.RunID),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Warn("Failed to publish sync event for step %s: %v", event.Step, err)
	}
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
