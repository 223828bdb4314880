package inbox

import "github.com/roboricindustries/raycon-inbox/pkg/schemas/common"

const (
	ConversationUpsertedType       = "inbox.conversation.upserted.v1"
	ConversationUpsertedExchange   = "multichat.gateway"
	ConversationUpsertedRoutingKey = "inbox.conversation.upserted.v1"
)

var ConversationUpsertedMeta = common.EventMeta{
	EventType:  ConversationUpsertedType,
	Exchange:   ConversationUpsertedExchange,
	RoutingKey: ConversationUpsertedRoutingKey,
}
