package inbox

import "time"

// Handler classifies who is currently responsible for a conversation.
type Handler string

const (
	HandlerAI         Handler = "ai"
	HandlerHuman      Handler = "human"
	HandlerUnassigned Handler = "unassigned"
)

// Message is a chat message already materialized by the feed. Read-only to
// this package.
type Message struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// Provider message id; two records sharing it are the same underlying
	// message (optimistic send vs. server echo) and only the first is kept.
	WhatsappMessageID string `json:"whatsapp_message_id,omitempty"`

	// Monotonic client-side send counter, breaks exact timestamp ties
	// between messages queued locally in the same tick.
	ClientOrder *int64 `json:"client_order,omitempty"`
	// Client-generated placeholder id, stable sort key before the real id
	// is known.
	ClientTempID string `json:"client_temp_id,omitempty"`

	Direction string `json:"direction,omitempty"` // "inbound" | "outbound"
	Kind      string `json:"kind,omitempty"`      // "text","image","voice","file","system"
	Text      string `json:"text,omitempty"`
}

// Activity is a non-message marker rendered inline with messages. Activities
// carry no dedup key.
type Activity struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Kind      string    `json:"kind,omitempty"` // "archived","status_changed","assignment",...
	Label     string    `json:"label,omitempty"`
}

type TimelineItemKind string

const (
	ItemMessage  TimelineItemKind = "message"
	ItemActivity TimelineItemKind = "activity"
)

// TimelineItem is the tagged union Assemble produces. Exactly one of Message
// or Activity is set, matching Kind.
type TimelineItem struct {
	Kind     TimelineItemKind `json:"kind"`
	Message  *Message         `json:"message,omitempty"`
	Activity *Activity        `json:"activity,omitempty"`
}

// Conversation is the raw list record as delivered by the feed.
type Conversation struct {
	ID          int64  `json:"id"`
	ContactName string `json:"contact_name"`
	Phone       string `json:"phone"` // digits-only

	CurrentHandler Handler `json:"current_handler"` // raw flag: "ai" | "human"
	AutomationID   *uint64 `json:"current_automation_id,omitempty"`
	AutomationName string  `json:"automation_name,omitempty"` // denormalized join, may be blank
	AssignedTo     *uint64 `json:"assigned_to,omitempty"`

	ArchivedAt   *time.Time `json:"archived_at,omitempty"`
	StatusID     *uint64    `json:"status_id,omitempty"`
	DepartmentID *uint64    `json:"department_id,omitempty"`
	Tags         []string   `json:"tags,omitempty"`

	LastMessage   string     `json:"last_message,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
}

// Classified is the display projection of a Conversation: the raw record plus
// derived fields. Recomputed whenever source data changes, never mutated in
// place.
type Classified struct {
	Conversation

	Handler     Handler `json:"handler"`
	AgentName   string  `json:"agent_name,omitempty"`
	Preview     string  `json:"preview,omitempty"`
	LastSeenAgo string  `json:"last_seen_ago,omitempty"`
}

// Tab is the mutually exclusive top-level view selector.
type Tab string

const (
	TabChat     Tab = "chat"     // human conversations assigned to the current user
	TabAI       Tab = "ai"       // conversations handled by an automation
	TabQueue    Tab = "queue"    // waiting for a handler
	TabAll      Tab = "all"      // everything not archived
	TabArchived Tab = "archived" // archived only
)

// FacetSelection is the set of active narrowing criteria. Empty sets are
// no-ops; all facets AND-combine.
type FacetSelection struct {
	Search      string
	Handlers    []Handler
	StatusIDs   []uint64
	Tags        []string
	Departments []uint64
}

// IsZero reports whether no facet is active.
func (f FacetSelection) IsZero() bool {
	return f.Search == "" &&
		len(f.Handlers) == 0 &&
		len(f.StatusIDs) == 0 &&
		len(f.Tags) == 0 &&
		len(f.Departments) == 0
}
