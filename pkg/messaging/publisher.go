package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/formflow/formflow-backend/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

// EventPublisher is what domain code depends on. *Publisher and NoopPublisher implement it.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

// Publisher sends events to one topic exchange, routed by event type
type Publisher struct {
	rmq      *RabbitMQ
	exchange string
	source   string
	log      *logger.Logger
}

// NewPublisher declares exchange and returns a publisher stamping events with source
func NewPublisher(rmq *RabbitMQ, exchange, source string, log *logger.Logger) (*Publisher, error) {
	if err := rmq.DeclareExchange(exchange); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &Publisher{rmq: rmq, exchange: exchange, source: source, log: log}, nil
}

func (p *Publisher) Publish(ctx context.Context, eventType string, data interface{}) error {
	correlationID := CorrelationID(ctx)

	event, err := NewEvent(eventType, p.source, correlationID, data)
	if err != nil {
		return fmt.Errorf("build %s event: %w", eventType, err)
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	msg := amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     event.ID,
		Type:          eventType,
		AppId:         p.source,
		Timestamp:     event.Timestamp,
		CorrelationId: correlationID,
		Body:          body,
	}
	// mandatory and immediate are off: nobody bound is not an error
	if err := p.rmq.Channel().PublishWithContext(ctx, p.exchange, eventType, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}

	p.log.Debug().
		Str("event_type", eventType).
		Str("event_id", event.ID).
		Str("correlation_id", correlationID).
		Msg("event published")
	return nil
}

// NoopPublisher drops every event. Used when the broker is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }

type contextKey struct{}

// WithCorrelationID tags events published with ctx. The orchestrator uses the batch ID.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, contextKey{}, correlationID)
}

// CorrelationID returns the ID set by WithCorrelationID, or ""
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
