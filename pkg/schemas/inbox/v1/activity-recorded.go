package inbox

import "time"

// ActivityRecordedV1 is a non-message conversation event rendered inline in
// the chronological view: archive/unarchive, status change, assignment,
// handler handoff. Activities are never deduplicated.
type ActivityRecordedV1 struct {
	Tenant       TenantRef       `json:"tenant"`
	Provider     ProviderRef     `json:"provider"`
	Conversation ConversationKey `json:"conversation"`

	ActivityID string   `json:"activity_id"` // required (UUID)
	Kind       string   `json:"kind"`        // "archived","unarchived","status_changed","assignment","handoff"
	Actor      ActorRef `json:"actor"`

	OccurredAt time.Time `json:"occurred_at"`
	Label      string    `json:"label,omitempty"` // pre-rendered display text
}

func (e *ActivityRecordedV1) Validate() error {
	ve := &ValidationError{}

	if e.ActivityID == "" {
		ve.add("activity_id", "required")
	}
	if e.Conversation.ConversationID == 0 {
		ve.add("conversation.conversation_id", "required")
	}
	if e.Kind == "" {
		ve.add("kind", "required")
	}
	if e.OccurredAt.IsZero() {
		ve.add("occurred_at", "required")
	}

	return ve.orNil()
}
