package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink exports every event to a single topic, keyed by channel so one user's events stay
// ordered within a partition.
type KafkaSink struct {
	writer messageWriter
	topic  string
}

var _ Sink = (*KafkaSink)(nil)

// NewKafkaSink creates a sink writing to topic on brokers.
func NewKafkaSink(brokers []string, topic string) (*KafkaSink, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka sink requires at least one broker")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka sink requires a topic")
	}
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
		},
		topic: topic,
	}, nil
}

// Publish writes evt as JSON.
func (s *KafkaSink) Publish(ctx context.Context, evt domain.Event) error {
	msg, err := s.message(evt)
	if err != nil {
		return err
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write %s: %w", evt.Name, err)
	}
	return nil
}

func (s *KafkaSink) message(evt domain.Event) (kafka.Message, error) {
	body, err := json.Marshal(evt)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal event %s: %w", evt.Name, err)
	}
	return kafka.Message{
		Topic: s.topic,
		Key:   []byte(evt.Channel.String()),
		Value: body,
		Time:  evt.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(evt.Name)},
		},
	}, nil
}

// Close flushes and closes the writer.
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
