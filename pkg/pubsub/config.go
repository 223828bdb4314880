package pubsub

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQConfig defines client config and topology defaults for the inbox
// feed.
type RabbitMQConfig struct {
	URL       string
	Exchanges []string // extra exchanges declared on connect

	PublishPoolSize             int
	ConsumerPrefetch            int
	ConnTimeoutSeconds          int
	DialRetryAttempts           int
	DialRetryDelayMs            int
	PoolRetryDelayMs            int
	ReconnectBackoffBaseSeconds int
	ReconnectBackoffCapSeconds  int
	ReconnectJitterPercent      int
	Dialer                      func(ctx context.Context, url string) (*amqp.Connection, error)

	// Conventional defaults for the inbox topology
	GatewayExchange          string // where provider events land
	DefaultPublishExchange   string
	DefaultPublishRoutingKey string
	FeedQueuePrefix          string // e.g. "inbox.feed"
	Producer                 string // AppId stamped on published messages
}
