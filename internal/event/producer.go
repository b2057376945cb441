package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Lixing-Zhang/restaurant-storefront/internal/metrics"
	"github.com/Lixing-Zhang/restaurant-storefront/pkg/logger"
)

// MessageWriter is the part of *kafka.Writer the producer uses
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ProducerConfig holds Kafka producer configuration.
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
	WriteTimeout time.Duration
}

// Producer publishes checkout events to one topic
type Producer struct {
	writer  MessageWriter
	topic   string
	brokers []string
	logger  *slog.Logger
}

// NewProducer creates a Kafka producer for cfg.Topic
func NewProducer(cfg ProducerConfig, log *slog.Logger) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequireAll,
	}
	return newProducer(w, cfg.Topic, cfg.Brokers, log)
}

func newProducer(w MessageWriter, topic string, brokers []string, log *slog.Logger) *Producer {
	return &Producer{writer: w, topic: topic, brokers: brokers, logger: log}
}

// Publish wraps payload in an Event and writes it keyed by key, so events
// for the same client stay ordered.
func (p *Producer) Publish(ctx context.Context, eventType, key string, payload any) error {
	evt, err := New(eventType, key, payload)
	if err != nil {
		return fmt.Errorf("build %s event: %w", eventType, err)
	}
	evt.CorrelationID = logger.RequestIDFromContext(ctx)

	data, err := evt.Marshal()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(key),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
			{Key: "source", Value: []byte(Source)},
		},
	}
	if evt.CorrelationID != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: "correlation_id", Value: []byte(evt.CorrelationID)})
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		metrics.EventsPublished.WithLabelValues(eventType, "error").Inc()
		p.logger.ErrorContext(ctx, "failed to publish event",
			slog.String("topic", p.topic),
			slog.String("event_type", eventType),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("publish event to %s: %w", p.topic, err)
	}

	metrics.EventsPublished.WithLabelValues(eventType, "ok").Inc()
	p.logger.DebugContext(ctx, "event published",
		slog.String("topic", p.topic),
		slog.String("event_type", eventType),
		slog.String("key", key),
	)
	return nil
}

// Ping dials the brokers and returns nil if at least one answers
func (p *Producer) Ping(ctx context.Context) error {
	if len(p.brokers) == 0 {
		return fmt.Errorf("kafka: no brokers configured")
	}

	var lastErr error
	for _, addr := range p.brokers {
		conn, err := kafka.DialContext(ctx, "tcp", addr)
		if err != nil {
			lastErr = err
			continue
		}
		_, err = conn.Brokers()
		_ = conn.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("kafka ping: all brokers unreachable: %w", lastErr)
}

// Close flushes pending messages
func (p *Producer) Close() error {
	return p.writer.Close()
}

// Nop discards events. It is used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, any) error { return nil }
