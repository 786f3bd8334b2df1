package escalate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Brighttier/renova-voice/pkg/voice"
)

// KafkaConfig holds forwarder configuration.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// KafkaForwarder delivers forwarded conversations to a Kafka topic.
// It is the external collaborator boundary for escalation: Package stays
// pure and this type does the I/O.
type KafkaForwarder struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaForwarder creates a forwarder for the given brokers and topic.
func NewKafkaForwarder(cfg KafkaConfig) (*KafkaForwarder, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka forwarder: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka forwarder: no topic configured")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}
	return &KafkaForwarder{writer: writer, topic: cfg.Topic}, nil
}

// Forward publishes one conversation record, keyed by session id.
func (f *KafkaForwarder) Forward(ctx context.Context, fc voice.ForwardedConversation) error {
	payload, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("marshal forwarded conversation: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(fc.SessionID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte("conversation.forwarded")},
			{Key: "priority", Value: []byte(fc.Priority)},
		},
	}
	if err := f.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write to %s: %w", f.topic, err)
	}
	return nil
}

// Close releases the underlying writer.
func (f *KafkaForwarder) Close() error {
	return f.writer.Close()
}
