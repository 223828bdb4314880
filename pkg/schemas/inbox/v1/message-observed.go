package inbox

import "time"

// MessageObservedV1 is emitted for every message seen on a provider channel,
// inbound or outbound echo alike, so the inbox feed renders both directions
// from one stream.
type MessageObservedV1 struct {
	Tenant       TenantRef       `json:"tenant"`
	Provider     ProviderRef     `json:"provider"`
	Conversation ConversationKey `json:"conversation"`

	MessageID string     `json:"message_id"` // hub-local id (UUID), required
	Message   MessageKey `json:"message"`    // provider message id, "" until the echo arrives

	Direction string `json:"direction"` // "inbound" | "outbound"
	Source    string `json:"source"`    // "client" | "phone" | "echo" | "api"
	Kind      string `json:"kind"`      // "text","image","voice","file","system","interactive"

	AtProvider time.Time `json:"at_provider"` // provider timestamp, if given
	ReceivedAt time.Time `json:"received_at"` // when the hub observed it

	// Ordering hints for optimistic sends queued client-side within the same
	// timestamp granularity. Absent on provider-sourced messages.
	ClientOrder  *int64 `json:"client_order,omitempty"`
	ClientTempID string `json:"client_temp_id,omitempty"`

	Body BodyDescriptor `json:"body"` // headers-only snapshot
}

func (e *MessageObservedV1) Validate() error {
	ve := &ValidationError{}

	if e.MessageID == "" {
		ve.add("message_id", "required")
	}
	if e.Conversation.ConversationID == 0 {
		ve.add("conversation.conversation_id", "required")
	}
	switch e.Direction {
	case "inbound", "outbound":
	case "":
		ve.add("direction", "required")
	default:
		ve.add("direction", "unknown")
	}
	if e.AtProvider.IsZero() && e.ReceivedAt.IsZero() {
		ve.add("at_provider/received_at", "one instant is required")
	}
	if e.ClientOrder != nil && *e.ClientOrder < 0 {
		ve.add("client_order", "must be non-negative")
	}

	return ve.orNil()
}

// ObservedAt is the instant the feed orders this message by: the provider
// timestamp when present, else when the hub observed it.
func (e *MessageObservedV1) ObservedAt() time.Time {
	if !e.AtProvider.IsZero() {
		return e.AtProvider
	}
	return e.ReceivedAt
}
