package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/roboricindustries/raycon-inbox/pkg/schemas/common"
)

// Publisher is the outward-facing surface; *Client and FallbackPublisher
// both satisfy it.
type Publisher interface {
	PublishJSON(ctx context.Context, exchange, routingKey string, env common.Envelope) error
}

// PublishJSON publishes an Envelope as JSON with proper AMQP headers.
// Missing Meta.ID/CorrelationID/Time are filled in, so callers only need to
// set Type and Data.
func (c *Client) PublishJSON(ctx context.Context, exchange, routingKey string, env common.Envelope) error {
	if exchange == "" {
		exchange = c.config.DefaultPublishExchange
	}
	if routingKey == "" {
		routingKey = c.config.DefaultPublishRoutingKey
	}

	fillMeta(&env.Meta, c.config.Producer)

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	ch, err := c.pool.Borrow(ctx, c.config.PoolRetryDelayMs)
	if err != nil {
		return fmt.Errorf("borrow channel: %w", err)
	}
	defer c.pool.Return(ch)

	return ch.PublishWithContext(ctx, exchange, routingKey, false, false, amqp.Publishing{
		ContentType:   "application/json",
		Body:          body,
		DeliveryMode:  amqp.Persistent,
		MessageId:     env.Meta.ID,
		CorrelationId: env.Meta.CorrelationID,
		Type:          env.Meta.Type,
		Timestamp:     env.Meta.Time,
		AppId:         c.config.Producer,
	})
}

// WithConfirmChan opens a dedicated channel in confirm mode; fn receives the
// channel plus its confirmation stream for batch publishing. The channel is
// closed afterwards rather than pooled: confirm mode is sticky on a channel,
// and returning one to the shared pool would leave later publishes feeding a
// notify buffer nobody drains.
func (c *Client) WithConfirmChan(
	ctx context.Context,
	fn func(ch *amqp.Channel, confirms <-chan amqp.Confirmation) error,
) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = SafeClose(ch) }()

	if err := ch.Confirm(false); err != nil {
		return fmt.Errorf("confirm mode: %w", err)
	}

	confirms := ch.NotifyPublish(make(chan amqp.Confirmation, 1024))

	return fn(ch, confirms)
}

// RawPublish publishes on a caller-held channel (typically from
// WithConfirmChan), filling envelope metadata the same way PublishJSON does.
func (c *Client) RawPublish(ctx context.Context, ch *amqp.Channel, exchange, routingKey string, env common.Envelope) error {
	if exchange == "" {
		exchange = c.config.DefaultPublishExchange
	}
	if routingKey == "" {
		routingKey = c.config.DefaultPublishRoutingKey
	}

	fillMeta(&env.Meta, c.config.Producer)

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	return ch.PublishWithContext(ctx, exchange, routingKey, false, false, amqp.Publishing{
		ContentType:   "application/json",
		Body:          body,
		DeliveryMode:  amqp.Persistent,
		MessageId:     env.Meta.ID,
		CorrelationId: env.Meta.CorrelationID,
		Type:          env.Meta.Type,
		Timestamp:     env.Meta.Time,
		AppId:         c.config.Producer,
	})
}

func fillMeta(m *common.Meta, producer string) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CorrelationID == "" {
		m.CorrelationID = m.ID
	}
	if m.Time.IsZero() {
		m.Time = time.Now().UTC()
	}
	if m.Producer == "" {
		m.Producer = producer
	}
}
