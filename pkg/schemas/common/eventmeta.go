package common

type EventMeta struct {
	EventType  string // e.g. "inbox.message.observed.v1"
	Exchange   string // e.g. "multichat.gateway"
	RoutingKey string // e.g. "inbox.message.observed.v1"
}
