package pubsub

import (
	"context"
	"log/slog"

	"github.com/roboricindustries/raycon-inbox/pkg/schemas/common"
)

// FallbackPublisher stands in when no broker is configured (local dev,
// tests): publishes are logged and dropped.
type FallbackPublisher struct {
	log *slog.Logger
}

func NewFallback(logger *slog.Logger) Publisher {
	return &FallbackPublisher{log: logger}
}

func (p *FallbackPublisher) PublishJSON(ctx context.Context, exchange, routingKey string, env common.Envelope) error {
	if p.log != nil {
		p.log.Warn("FallbackPublisher: skipped publish",
			slog.String("exchange", exchange),
			slog.String("key", routingKey),
			slog.String("type", env.Meta.Type),
		)
	}
	return nil
}
