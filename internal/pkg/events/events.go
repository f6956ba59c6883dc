package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Event types emitted by the platform
const (
	PointsRecorded       = "points.recorded"
	BadgeAwarded         = "badge.awarded"
	VerificationDecided  = "verification.decided"
	SessionStatusChanged = "session.status_changed"
	MentorshipChanged    = "mentorship.status_changed"
	CommunityJoined      = "community.joined"
	JobApplied           = "job.applied"
)

// Event is the envelope written to the event topic
type Event struct {
	Type       string      `json:"type"`
	Key        string      `json:"key"`
	Payload    interface{} `json:"payload"`
	OccurredAt time.Time   `json:"occurredAt"`
}

// New builds an event keyed by the aggregate id
func New(eventType, key string, payload interface{}) Event {
	return Event{Type: eventType, Key: key, Payload: payload, OccurredAt: time.Now().UTC()}
}

// Publisher delivers domain events to downstream consumers
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// KafkaPublisher writes events to a single topic, keyed by aggregate id
type KafkaPublisher struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

// NewKafkaPublisher creates a publisher for brokers and topic
func NewKafkaPublisher(brokers []string, topic string, logger zerolog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		Logger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Debug().Msgf(msg, args...)
		}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Error().Msgf(msg, args...)
		}),
	}
	return &KafkaPublisher{writer: writer, logger: logger}
}

// Publish writes e synchronously
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", e.Type, err)
	}

	msg := kafka.Message{
		Key:   []byte(e.Key),
		Value: value,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", e.Type, err)
	}

	p.logger.Debug().Str("type", e.Type).Str("key", e.Key).Msg("Event published")
	return nil
}

// Close flushes pending writes
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher drops every event. Used when no brokers are configured.
type NoopPublisher struct{}

// Publish implements Publisher
func (NoopPublisher) Publish(context.Context, Event) error { return nil }

// Close implements Publisher
func (NoopPublisher) Close() error { return nil }

// NewPublisher picks the kafka publisher when brokers are configured
func NewPublisher(brokers []string, topic string, logger zerolog.Logger) Publisher {
	if len(brokers) == 0 {
		logger.Info().Msg("No Kafka brokers configured, domain events are disabled")
		return NoopPublisher{}
	}
	logger.Info().Strs("brokers", brokers).Str("topic", topic).Msg("Kafka publisher initialized")
	return NewKafkaPublisher(brokers, topic, logger)
}
