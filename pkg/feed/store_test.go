package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roboricindustries/raycon-inbox/pkg/inbox"
	v1 "github.com/roboricindustries/raycon-inbox/pkg/schemas/inbox/v1"
)

var t0 = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func newTestStore() *Store {
	return NewStore(nil, nil)
}

func TestApplyMessageReplayIsIdempotent(t *testing.T) {
	s := newTestStore()

	m := inbox.Message{ID: "m1", CreatedAt: t0, Text: "hi"}
	require.True(t, s.ApplyMessage(1, m))

	// Redelivery of the same event
	m.Text = "hi (redelivered)"
	assert.False(t, s.ApplyMessage(1, m))

	items := s.Timeline(1)
	require.Len(t, items, 1)
	assert.Equal(t, "hi (redelivered)", items[0].Message.Text)
}

func TestTimelineMergesMessagesAndActivities(t *testing.T) {
	s := newTestStore()

	s.ApplyMessage(1, inbox.Message{ID: "m1", CreatedAt: t0.Add(time.Minute)})
	s.ApplyMessage(1, inbox.Message{ID: "m2", CreatedAt: t0.Add(3 * time.Minute), WhatsappMessageID: "w1"})
	s.ApplyMessage(1, inbox.Message{ID: "m3", CreatedAt: t0.Add(3 * time.Minute), WhatsappMessageID: "w1"}) // echo dup
	s.ApplyActivity(1, inbox.Activity{ID: "a1", Timestamp: t0, Kind: "assignment"})

	// other conversation stays isolated
	s.ApplyMessage(2, inbox.Message{ID: "m9", CreatedAt: t0})

	items := s.Timeline(1)
	require.Len(t, items, 3)
	assert.Equal(t, inbox.ItemActivity, items[0].Kind)
	assert.Equal(t, "m1", items[1].Message.ID)
	assert.Equal(t, "m2", items[2].Message.ID)
}

func TestTimelineUnknownConversation(t *testing.T) {
	s := newTestStore()
	assert.Empty(t, s.Timeline(404))
}

func TestApplyConversationVersioning(t *testing.T) {
	s := newTestStore()

	c := inbox.Conversation{ID: 1, ContactName: "Maria"}
	require.True(t, s.ApplyConversation(c, 5))

	// out-of-order older snapshot is ignored
	stale := inbox.Conversation{ID: 1, ContactName: "Old Name"}
	assert.False(t, s.ApplyConversation(stale, 3))

	list := s.List(inbox.FacetSelection{}, inbox.TabAll, 0)
	require.Len(t, list, 1)
	assert.Equal(t, "Maria", list[0].ContactName)

	// newer snapshot replaces
	fresh := inbox.Conversation{ID: 1, ContactName: "Maria Silva"}
	assert.True(t, s.ApplyConversation(fresh, 6))
	list = s.List(inbox.FacetSelection{}, inbox.TabAll, 0)
	require.Len(t, list, 1)
	assert.Equal(t, "Maria Silva", list[0].ContactName)
}

func TestListSortsByRecency(t *testing.T) {
	s := newTestStore()

	s.ApplyConversation(inbox.Conversation{ID: 1, ContactName: "older", LastMessageAt: ptr(t0)}, 1)
	s.ApplyConversation(inbox.Conversation{ID: 2, ContactName: "newest", LastMessageAt: ptr(t0.Add(time.Hour))}, 1)
	s.ApplyConversation(inbox.Conversation{ID: 3, ContactName: "never messaged"}, 1)

	list := s.List(inbox.FacetSelection{}, inbox.TabAll, 0)
	require.Len(t, list, 3)
	assert.Equal(t, int64(2), list[0].ID)
	assert.Equal(t, int64(1), list[1].ID)
	assert.Equal(t, int64(3), list[2].ID)
}

func TestCountsPerTab(t *testing.T) {
	s := newTestStore()
	archived := t0

	s.ApplyConversation(inbox.Conversation{
		ID: 1, CurrentHandler: inbox.HandlerHuman, AssignedTo: ptr(uint64(42)),
	}, 1)
	s.ApplyConversation(inbox.Conversation{
		ID: 2, CurrentHandler: inbox.HandlerAI, AutomationID: ptr(uint64(7)),
	}, 1)
	s.ApplyConversation(inbox.Conversation{
		ID: 3, CurrentHandler: inbox.HandlerHuman,
	}, 1)
	s.ApplyConversation(inbox.Conversation{
		ID: 4, CurrentHandler: inbox.HandlerHuman, ArchivedAt: &archived,
	}, 1)

	counts := s.Counts(42)
	assert.Equal(t, 1, counts[inbox.TabChat])
	assert.Equal(t, 1, counts[inbox.TabAI])
	assert.Equal(t, 1, counts[inbox.TabQueue])
	assert.Equal(t, 3, counts[inbox.TabAll])
	assert.Equal(t, 1, counts[inbox.TabArchived])
}

func TestAgentNameFlowsThroughList(t *testing.T) {
	s := newTestStore()
	s.SetAgentName(7, "Support Bot")
	s.ApplyConversation(inbox.Conversation{
		ID: 1, CurrentHandler: inbox.HandlerAI, AutomationID: ptr(uint64(7)),
	}, 1)

	list := s.List(inbox.FacetSelection{}, inbox.TabAI, 0)
	require.Len(t, list, 1)
	assert.Equal(t, "Support Bot", list[0].AgentName)
}

func TestEventRecordConversion(t *testing.T) {
	at := t0.Add(time.Minute)

	me := v1.MessageObservedV1{
		Conversation: v1.ConversationKey{ConversationID: 1},
		MessageID:    "m1",
		Message:      v1.MessageKey{ProviderMessageID: "wamid.123"},
		Direction:    "inbound",
		Kind:         "text",
		AtProvider:   at,
		ReceivedAt:   at.Add(time.Second),
		ClientOrder:  ptr(int64(3)),
		Body:         v1.BodyDescriptor{HasText: true, TextPreview: "hello"},
	}
	m := messageRecord(me)
	assert.Equal(t, "m1", m.ID)
	assert.Equal(t, at, m.CreatedAt, "provider instant preferred")
	assert.Equal(t, "wamid.123", m.WhatsappMessageID)
	assert.Equal(t, int64(3), *m.ClientOrder)
	assert.Equal(t, "hello", m.Text)

	me.AtProvider = time.Time{}
	assert.Equal(t, at.Add(time.Second), messageRecord(me).CreatedAt, "falls back to received instant")

	ce := v1.ConversationUpsertedV1{
		Conversation:   v1.ConversationKey{ConversationID: 9},
		ContactName:    "Maria",
		Phone:          "5511999887766",
		CurrentHandler: "ai",
		AutomationID:   ptr(uint64(7)),
		Version:        1,
		LastMessage:    v1.BodyDescriptor{HasText: true, TextPreview: "ping"},
	}
	c := conversationRecord(ce)
	assert.Equal(t, int64(9), c.ID)
	assert.Equal(t, inbox.HandlerAI, c.CurrentHandler)
	assert.Equal(t, "ping", c.LastMessage)
}
