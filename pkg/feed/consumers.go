package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/roboricindustries/raycon-inbox/pkg/inbox"
	"github.com/roboricindustries/raycon-inbox/pkg/pubsub"
	v1 "github.com/roboricindustries/raycon-inbox/pkg/schemas/inbox/v1"
)

// ConsumerSpecs wires the three gateway event types into store apply
// methods. Events failing contract validation are poison (kept on the final
// DLQ for inspection); everything else retries through the DLX stage.
func (s *Store) ConsumerSpecs(cfg pubsub.RabbitMQConfig) []pubsub.ConsumerSpec {
	prefix := cfg.FeedQueuePrefix
	if prefix == "" {
		prefix = "inbox.feed"
	}
	retry := func() *pubsub.RetrySpec {
		return &pubsub.RetrySpec{
			Enabled:     true,
			TTL:         15 * time.Second,
			MaxAttempts: 5,
		}
	}

	return []pubsub.ConsumerSpec{
		{
			Name:          "message-observed",
			Queue:         prefix + ".messages",
			BindingKey:    v1.MessageObservedRoutingKey,
			Retry:         retry(),
			PoisonToFinal: true,
			Consume: pubsub.JSONHandler(func(ctx context.Context, e v1.MessageObservedV1) error {
				if err := e.Validate(); err != nil {
					s.logPoison(eventMessage, v1.MessageObservedType, err)
					return pubsub.ErrPoison
				}
				s.ApplyMessage(e.Conversation.ConversationID, messageRecord(e))
				return nil
			}),
		},
		{
			Name:          "activity-recorded",
			Queue:         prefix + ".activities",
			BindingKey:    v1.ActivityRecordedRoutingKey,
			Retry:         retry(),
			PoisonToFinal: true,
			Consume: pubsub.JSONHandler(func(ctx context.Context, e v1.ActivityRecordedV1) error {
				if err := e.Validate(); err != nil {
					s.logPoison(eventActivity, v1.ActivityRecordedType, err)
					return pubsub.ErrPoison
				}
				s.ApplyActivity(e.Conversation.ConversationID, activityRecord(e))
				return nil
			}),
		},
		{
			Name:          "conversation-upserted",
			Queue:         prefix + ".conversations",
			BindingKey:    v1.ConversationUpsertedRoutingKey,
			Retry:         retry(),
			PoisonToFinal: true,
			Consume: pubsub.JSONHandler(func(ctx context.Context, e v1.ConversationUpsertedV1) error {
				if err := e.Validate(); err != nil {
					s.logPoison(eventConversation, v1.ConversationUpsertedType, err)
					return pubsub.ErrPoison
				}
				s.ApplyConversation(conversationRecord(e), e.Version)
				return nil
			}),
		},
	}
}

func (s *Store) logPoison(event, eventType string, err error) {
	s.metrics.eventApplied(event, outcomePoison)
	if s.log != nil {
		s.log.Warn("dropping invalid event", slog.String("type", eventType), slog.Any("error", err))
	}
}

func messageRecord(e v1.MessageObservedV1) inbox.Message {
	return inbox.Message{
		ID:                e.MessageID,
		CreatedAt:         e.ObservedAt(),
		WhatsappMessageID: e.Message.ProviderMessageID,
		ClientOrder:       e.ClientOrder,
		ClientTempID:      e.ClientTempID,
		Direction:         e.Direction,
		Kind:              e.Kind,
		Text:              e.Body.TextPreview,
	}
}

func activityRecord(e v1.ActivityRecordedV1) inbox.Activity {
	return inbox.Activity{
		ID:        e.ActivityID,
		Timestamp: e.OccurredAt,
		Kind:      e.Kind,
		Label:     e.Label,
	}
}

func conversationRecord(e v1.ConversationUpsertedV1) inbox.Conversation {
	return inbox.Conversation{
		ID:             e.Conversation.ConversationID,
		ContactName:    e.ContactName,
		Phone:          e.Phone,
		CurrentHandler: inbox.Handler(e.CurrentHandler),
		AutomationID:   e.AutomationID,
		AutomationName: e.AutomationName,
		AssignedTo:     e.AssignedTo,
		ArchivedAt:     e.ArchivedAt,
		StatusID:       e.StatusID,
		DepartmentID:   e.DepartmentID,
		Tags:           e.Tags,
		LastMessage:    e.LastMessage.TextPreview,
		LastMessageAt:  e.LastMessageAt,
	}
}
