package inbox

import "github.com/roboricindustries/raycon-inbox/pkg/schemas/common"

const (
	ActivityRecordedType       = "inbox.activity.recorded.v1"
	ActivityRecordedExchange   = "multichat.gateway"
	ActivityRecordedRoutingKey = "inbox.activity.recorded.v1"
)

var ActivityRecordedMeta = common.EventMeta{
	EventType:  ActivityRecordedType,
	Exchange:   ActivityRecordedExchange,
	RoutingKey: ActivityRecordedRoutingKey,
}
