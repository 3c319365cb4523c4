package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const (
	TopicAttemptCompleted = "lms.attempt.completed"
	TopicContentViewed    = "lms.content.viewed"
)

// AttemptCompletedEvent is emitted after a submission is scored and
// persisted. Downstream consumers (notifications, reporting) key off it;
// nothing in the request path depends on delivery.
type AttemptCompletedEvent struct {
	EventID    string    `json:"event_id"`
	AttemptID  uint      `json:"attempt_id"`
	QuizID     uint      `json:"quiz_id"`
	StudentID  string    `json:"student_id"`
	Score      int       `json:"score"`
	TotalMarks int       `json:"total_marks"`
	Percentage int       `json:"percentage"`
	Passed     bool      `json:"passed"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ContentViewedEvent is emitted for each analytics ping.
type ContentViewedEvent struct {
	EventID       string    `json:"event_id"`
	StudentID     string    `json:"student_id"`
	ContentItemID uint      `json:"content_item_id"`
	TimeSpent     int       `json:"time_spent"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher abstracts the event bus.
type Publisher interface {
	PublishAttemptCompleted(event AttemptCompletedEvent) error
	PublishContentViewed(event ContentViewedEvent) error
	Close() error
}

// KafkaPublisher publishes events to Kafka through watermill.
type KafkaPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
}

func NewKafkaPublisher(brokers []string, logger *slog.Logger) (*KafkaPublisher, error) {
	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	return &KafkaPublisher{publisher: publisher, logger: logger}, nil
}

func (p *KafkaPublisher) PublishAttemptCompleted(event AttemptCompletedEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	return p.publish(TopicAttemptCompleted, event.EventID, event)
}

func (p *KafkaPublisher) PublishContentViewed(event ContentViewedEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	return p.publish(TopicContentViewed, event.EventID, event)
}

func (p *KafkaPublisher) publish(topic, eventID string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(eventID, data)
	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.publisher.Close()
}

// NoopPublisher is used when no broker is configured; publishing becomes a
// debug log line.
type NoopPublisher struct {
	logger *slog.Logger
}

func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger}
}

func (p *NoopPublisher) PublishAttemptCompleted(event AttemptCompletedEvent) error {
	p.logger.Debug("event publishing disabled, dropping attempt completed event",
		"attempt_id", event.AttemptID, "quiz_id", event.QuizID)
	return nil
}

func (p *NoopPublisher) PublishContentViewed(event ContentViewedEvent) error {
	p.logger.Debug("event publishing disabled, dropping content viewed event",
		"content_item_id", event.ContentItemID)
	return nil
}

func (p *NoopPublisher) Close() error {
	return nil
}
