package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
)

// EventPublisher defines the interface for publishing diagnosis events
type EventPublisher interface {
	PublishDiagnosisEvent(ctx context.Context, event *DiagnosisEvent) error
	Close() error
}

// KafkaEventPublisher implements EventPublisher using Watermill with Kafka
type KafkaEventPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
	topicName string
}

// PublisherConfig holds configuration for the event publisher
type PublisherConfig struct {
	KafkaBrokers []string
	TopicName    string
	Logger       *slog.Logger
}

// NewKafkaEventPublisher creates a new Kafka-based event publisher using Watermill
func NewKafkaEventPublisher(config PublisherConfig) (*KafkaEventPublisher, error) {
	logger := watermill.NewSlogLogger(config.Logger)

	// Create Kafka publisher configuration
	publisherConfig := kafka.PublisherConfig{
		Brokers:   config.KafkaBrokers,
		Marshaler: kafka.DefaultMarshaler{},
	}

	// Create the publisher
	publisher, err := kafka.NewPublisher(publisherConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
	}

	return &KafkaEventPublisher{
		publisher: publisher,
		logger:    config.Logger,
		topicName: config.TopicName,
	}, nil
}

// PublishDiagnosisEvent publishes a diagnosis event to Kafka, keyed by user
func (p *KafkaEventPublisher) PublishDiagnosisEvent(ctx context.Context, event *DiagnosisEvent) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal diagnosis event: %w", err)
	}

	// Create Watermill message
	msg := message.NewMessage(event.ID, eventBytes)
	msg.SetContext(ctx)

	// Add metadata headers
	msg.Metadata.Set("event_type", string(event.Type))
	msg.Metadata.Set("source", event.Source)
	msg.Metadata.Set("version", event.Version)
	msg.Metadata.Set("timestamp", event.Timestamp.Format("2006-01-02T15:04:05Z07:00"))
	msg.Metadata.Set("user_id", event.UserID)

	// Publish the message
	if err := p.publisher.Publish(p.topicName, msg); err != nil {
		p.logger.Error("Failed to publish diagnosis event",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err)
		return fmt.Errorf("failed to publish diagnosis event: %w", err)
	}

	p.logger.Info("Published diagnosis event",
		"event_id", event.ID,
		"event_type", event.Type,
		"topic", p.topicName)

	return nil
}

// Close closes the publisher and releases resources
func (p *KafkaEventPublisher) Close() error {
	return p.publisher.Close()
}

// MockEventPublisher is an in-memory publisher for tests and local runs
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []DiagnosisEvent
	Logger *slog.Logger
}

// NewMockEventPublisher creates a new mock event publisher
func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{
		Events: make([]DiagnosisEvent, 0),
		Logger: logger,
	}
}

// PublishDiagnosisEvent stores the event in memory
func (m *MockEventPublisher) PublishDiagnosisEvent(ctx context.Context, event *DiagnosisEvent) error {
	m.mu.Lock()
	m.Events = append(m.Events, *event)
	m.mu.Unlock()
	m.Logger.Info("Mock: Published diagnosis event",
		"event_id", event.ID,
		"event_type", event.Type)
	return nil
}

// Close is a no-op for the mock publisher
func (m *MockEventPublisher) Close() error {
	return nil
}

// GetPublishedEvents returns a copy of all published events
func (m *MockEventPublisher) GetPublishedEvents() []DiagnosisEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]DiagnosisEvent(nil), m.Events...)
}

// EventsOfType filters published events by type
func (m *MockEventPublisher) EventsOfType(t EventType) []DiagnosisEvent {
	var out []DiagnosisEvent
	for _, e := range m.GetPublishedEvents() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// ClearEvents clears all published events
func (m *MockEventPublisher) ClearEvents() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = make([]DiagnosisEvent, 0)
}
