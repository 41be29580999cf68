package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/warp/vr-engine/logger"
)

// ErrNotConfirmed is returned when the broker nacks a run event.
var ErrNotConfirmed = errors.New("event not confirmed by broker")

// Publisher sends run events on a confirm-mode channel. A Publish returns
// only once the broker has acked the message.
type Publisher struct {
	ch       *amqp.Channel
	exchange string
	source   string
	log      *logger.Logger
}

// NewPublisher declares the exchange and switches the channel to confirm
// mode.
func NewPublisher(rmq *RabbitMQ, exchange, source string, log *logger.Logger) (*Publisher, error) {
	if log == nil {
		log = logger.Nop()
	}
	if err := rmq.DeclareExchange(exchange); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	ch := rmq.Channel()
	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("enable publisher confirms: %w", err)
	}
	return &Publisher{ch: ch, exchange: exchange, source: source, log: log.WithComponent("publisher")}, nil
}

// Publish wraps data in an Event routed by eventType and waits for the
// broker's confirmation.
func (p *Publisher) Publish(ctx context.Context, eventType string, data any) error {
	event, err := NewEvent(eventType, p.source, CorrelationID(ctx), data)
	if err != nil {
		return fmt.Errorf("build %s event: %w", eventType, err)
	}
	msg, err := Message(event, data)
	if err != nil {
		return err
	}

	confirm, err := p.ch.PublishWithDeferredConfirmWithContext(ctx, p.exchange, eventType, false, false, msg)
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.ID, err)
	}
	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("confirm %s: %w", event.ID, err)
	}
	if !acked {
		return fmt.Errorf("%w: %s", ErrNotConfirmed, event.ID)
	}

	p.log.Debug().
		Str("event_type", eventType).
		Str("event_id", event.ID).
		Interface("headers", msg.Headers).
		Msg("event confirmed")
	return nil
}

// Message renders an event as a persistent AMQP message. Run events also
// carry run_id and competencia headers so consumers can filter without
// decoding the body.
func Message(event *Event, data any) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode %s event: %w", event.Type, err)
	}

	msg := amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     event.ID,
		CorrelationId: event.CorrelationID,
		Type:          event.Type,
		AppId:         event.Source,
		Timestamp:     event.Timestamp,
		Body:          body,
	}
	switch d := data.(type) {
	case RunCompleted:
		msg.Headers = amqp.Table{"run_id": d.RunID, "competencia": d.Competencia}
	case *RunCompleted:
		msg.Headers = amqp.Table{"run_id": d.RunID, "competencia": d.Competencia}
	}
	return msg, nil
}

type contextKey struct{}

// WithCorrelationID tags ctx so events published under it share the ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// CorrelationID returns the ID set by WithCorrelationID, or "".
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
