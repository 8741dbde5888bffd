package messaging

import (
	"context"

	"go.uber.org/zap"

	"github.com/haydenbleasel/tersa-sub001/application/ports"
	"github.com/haydenbleasel/tersa-sub001/domain/events"
)

// LogPublisher records domain events in the application log. It is the
// publisher used when no event bus is configured.
type LogPublisher struct {
	logger *zap.Logger
}

var _ ports.EventPublisher = (*LogPublisher)(nil)

// NewLogPublisher creates a publisher that logs at debug level.
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs a single event
func (p *LogPublisher) Publish(_ context.Context, event events.DomainEvent) error {
	p.logger.Debug("Domain event",
		zap.String("eventType", event.GetEventType()),
		zap.String("aggregateID", event.GetAggregateID()),
		zap.Int("version", event.GetVersion()),
		zap.Time("timestamp", event.GetTimestamp()),
	)
	return nil
}

// PublishBatch logs each event in order
func (p *LogPublisher) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	for _, e := range evts {
		_ = p.Publish(ctx, e)
	}
	return nil
}

// FanOut publishes to every publisher and returns the first error after
// all of them have been tried.
type FanOut []ports.EventPublisher

// Publish sends the event to each publisher
func (f FanOut) Publish(ctx context.Context, event events.DomainEvent) error {
	var first error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// PublishBatch sends the batch to each publisher
func (f FanOut) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	var first error
	for _, p := range f {
		if err := p.PublishBatch(ctx, evts); err != nil && first == nil {
			first = err
		}
	}
	return first
}
