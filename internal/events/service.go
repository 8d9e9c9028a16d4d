package events

import (
	"context"
	"log/slog"
	"time"
)

// Producer interface for messaging (NATS)
type Producer interface {
	SendMessage(ctx context.Context, value interface{}) error
	Close() error
}

// Service publishes roster change events. A nil Service (or one without a
// producer) silently drops events so the API works without a broker.
type Service struct {
	producer Producer
	logger   *slog.Logger
}

func NewService(producer Producer, logger *slog.Logger) *Service {
	return &Service{
		producer: producer,
		logger:   logger,
	}
}

func (s *Service) StudentCreated(ctx context.Context, payload StudentPayload) {
	s.publish(ctx, TypeStudentCreated, payload)
}

func (s *Service) StudentUpdated(ctx context.Context, payload StudentPayload) {
	s.publish(ctx, TypeStudentUpdated, payload)
}

func (s *Service) StudentDeleted(ctx context.Context, payload StudentPayload) {
	s.publish(ctx, TypeStudentDeleted, payload)
}

// publish sends the event best-effort. Failures are logged and never fail
// the originating request.
func (s *Service) publish(ctx context.Context, eventType string, payload StudentPayload) {
	if s == nil || s.producer == nil {
		return
	}

	event := RosterEvent{
		Type:       eventType,
		Student:    payload,
		OccurredAt: time.Now(),
	}

	if err := s.producer.SendMessage(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish roster event", "type", eventType, "error", err)
	}
}
