package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	portssvc "github.com/SscSPs/mobile_money_core/internal/core/ports/services"
	"github.com/nats-io/nats.go"
	"github.com/segmentio/kafka-go"
)

// LoggingPublisher writes audit events to the application log. It is the default
// sink when no broker is configured.
type LoggingPublisher struct {
	logger *slog.Logger
}

func NewLoggingPublisher(logger *slog.Logger) *LoggingPublisher {
	return &LoggingPublisher{logger: logger}
}

var _ portssvc.EventPublisher = (*LoggingPublisher)(nil)

func (p *LoggingPublisher) Publish(ctx context.Context, eventType string, partitionKey string, payload []byte) error {
	p.logger.InfoContext(ctx, "audit event",
		"event_type", eventType,
		"partition_key", partitionKey,
		"payload", string(payload),
	)
	return nil
}

func (p *LoggingPublisher) Close() error { return nil }

// KafkaPublisher writes every audit event to one topic keyed by actor, so the
// events of one actor stay ordered within a partition.
type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka publisher requires a topic")
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
		},
		topic: topic,
	}, nil
}

var _ portssvc.EventPublisher = (*KafkaPublisher)(nil)

func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, partitionKey string, payload []byte) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(partitionKey),
		Value: payload,
		Time:  time.Now().UTC(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NatsPublisher publishes audit events on <subject>.<eventType>.
type NatsPublisher struct {
	conn    *nats.Conn
	subject string
}

func NewNatsPublisher(url, subject string) (*NatsPublisher, error) {
	if subject == "" {
		return nil, fmt.Errorf("nats publisher requires a subject")
	}
	conn, err := nats.Connect(url,
		nats.Name("mobile-money-audit"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NatsPublisher{conn: conn, subject: subject}, nil
}

var _ portssvc.EventPublisher = (*NatsPublisher)(nil)

func (p *NatsPublisher) Publish(ctx context.Context, eventType string, partitionKey string, payload []byte) error {
	msg := nats.NewMsg(p.subject + "." + eventType)
	msg.Header.Set("Partition-Key", partitionKey)
	msg.Data = payload
	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}
	// a flush makes a broken connection visible to the caller instead of the buffer
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush %s: %w", eventType, err)
	}
	return nil
}

func (p *NatsPublisher) Close() error {
	return p.conn.Drain()
}
