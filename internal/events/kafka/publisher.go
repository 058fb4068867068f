package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"ledger-bank/internal/interfaces"
)

type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher returns a publisher writing asynchronously to brokers. Delivery
// errors are reported through log, never to the caller of Publish.
func NewPublisher(brokers []string, log *logrus.Logger) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			Async:        true,
			Completion: func(messages []kafka.Message, err error) {
				if err != nil {
					log.WithFields(logrus.Fields{
						"error":    err,
						"messages": len(messages),
					}).Warn("failed to deliver outcome events")
				}
			},
		},
	}
}

// Publish encodes event as JSON and queues it on topic.
func (p *Publisher) Publish(ctx context.Context, topic string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Value: data,
	})
}

// Close flushes pending messages and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ interfaces.EventPublisher = (*Publisher)(nil)
