package inbox

import "time"

// ConversationUpsertedV1 carries the full conversation snapshot the inbox
// list renders from. CRM emits it on create and on every field change;
// consumers replace their copy wholesale, last Version wins.
type ConversationUpsertedV1 struct {
	Tenant       TenantRef       `json:"tenant"`
	Provider     ProviderRef     `json:"provider"`
	Conversation ConversationKey `json:"conversation"`

	ContactName string `json:"contact_name"`
	Phone       string `json:"phone"` // E.164 digits-only, no '+'

	CurrentHandler string  `json:"current_handler"` // "ai" | "human"
	AutomationID   *uint64 `json:"current_automation_id,omitempty"`
	AutomationName string  `json:"automation_name,omitempty"` // denormalized join, may be blank
	AssignedTo     *uint64 `json:"assigned_to,omitempty"`

	ArchivedAt   *time.Time `json:"archived_at,omitempty"`
	StatusID     *uint64    `json:"status_id,omitempty"`
	DepartmentID *uint64    `json:"department_id,omitempty"`
	Tags         []string   `json:"tags,omitempty"`

	LastMessage   BodyDescriptor `json:"last_message"`
	LastMessageAt *time.Time     `json:"last_message_at,omitempty"`

	Version   int64     `json:"version"` // monotonic (outbox id or UnixNano)
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *ConversationUpsertedV1) Validate() error {
	ve := &ValidationError{}

	if e.Conversation.ConversationID == 0 {
		ve.add("conversation.conversation_id", "required")
	}
	switch e.CurrentHandler {
	case "ai", "human":
	case "":
		ve.add("current_handler", "required")
	default:
		ve.add("current_handler", "unknown")
	}
	if e.Version == 0 {
		ve.add("version", "required")
	}

	return ve.orNil()
}
