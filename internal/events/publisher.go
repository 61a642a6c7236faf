package events

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
)

// Publisher emits domain events to an external broker.
type Publisher interface {
	Publish(ctx context.Context, key string, payload interface{}) error
	Close() error
}

type nopPublisher struct{}

// NewNop returns a Publisher that discards all events. Used when no broker
// is configured.
func NewNop() Publisher { return nopPublisher{} }

func (nopPublisher) Publish(context.Context, string, interface{}) error { return nil }
func (nopPublisher) Close() error                                       { return nil }

type kafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafka returns a Publisher backed by a Kafka topic.
func NewKafka(broker, topic string) Publisher {
	return &kafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(broker),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, key string, payload interface{}) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
}

func (p *kafkaPublisher) Close() error { return p.writer.Close() }
