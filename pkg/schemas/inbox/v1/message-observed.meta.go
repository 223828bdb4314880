package inbox

import "github.com/roboricindustries/raycon-inbox/pkg/schemas/common"

const (
	MessageObservedType       = "inbox.message.observed.v1"
	MessageObservedExchange   = "multichat.gateway"
	MessageObservedRoutingKey = "inbox.message.observed.v1"
)

var MessageObservedMeta = common.EventMeta{
	EventType:  MessageObservedType,
	Exchange:   MessageObservedExchange,
	RoutingKey: MessageObservedRoutingKey,
}
