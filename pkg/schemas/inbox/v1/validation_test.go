package inbox

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func validMessageObserved() MessageObservedV1 {
	return MessageObservedV1{
		Tenant:       TenantRef{CompanyID: 1, CounterpartyID: 2},
		Provider:     ProviderRef{Provider: "wa.greenapi", InstanceID: "inst-1"},
		Conversation: ConversationKey{ConversationID: 10, ProviderChatID: "5511999887766@c.us"},
		MessageID:    "b3c1d8a0-0000-0000-0000-000000000001",
		Direction:    "inbound",
		Kind:         "text",
		ReceivedAt:   t0,
		Body:         BodyDescriptor{HasText: true, TextPreview: "hello"},
	}
}

func TestMessageObservedValidate(t *testing.T) {
	e := validMessageObserved()
	require.NoError(t, e.Validate())

	tests := []struct {
		name  string
		mut   func(*MessageObservedV1)
		field string
	}{
		{"missing message id", func(e *MessageObservedV1) { e.MessageID = "" }, "message_id"},
		{"missing conversation", func(e *MessageObservedV1) { e.Conversation.ConversationID = 0 }, "conversation.conversation_id"},
		{"missing direction", func(e *MessageObservedV1) { e.Direction = "" }, "direction"},
		{"unknown direction", func(e *MessageObservedV1) { e.Direction = "sideways" }, "direction"},
		{"no instant at all", func(e *MessageObservedV1) { e.ReceivedAt = time.Time{} }, "at_provider/received_at"},
		{"negative client order", func(e *MessageObservedV1) { e.ClientOrder = ptrInt64(-1) }, "client_order"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := validMessageObserved()
			tc.mut(&e)
			err := e.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidContract))

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			fields := make([]string, 0, len(ve.Issues))
			for _, is := range ve.Issues {
				fields = append(fields, is.Field)
			}
			assert.Contains(t, fields, tc.field)
		})
	}
}

func TestMessageObservedObservedAt(t *testing.T) {
	e := validMessageObserved()
	assert.Equal(t, t0, e.ObservedAt())

	e.AtProvider = t0.Add(-time.Minute)
	assert.Equal(t, t0.Add(-time.Minute), e.ObservedAt(), "provider instant preferred when present")
}

func TestActivityRecordedValidate(t *testing.T) {
	e := ActivityRecordedV1{
		Conversation: ConversationKey{ConversationID: 10},
		ActivityID:   "act-1",
		Kind:         "archived",
		OccurredAt:   t0,
	}
	require.NoError(t, e.Validate())

	e.ActivityID = ""
	e.Kind = ""
	e.OccurredAt = time.Time{}
	err := e.Validate()
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Len(t, ve.Issues, 3, "issues accumulate instead of stopping at the first")
}

func TestConversationUpsertedValidate(t *testing.T) {
	e := ConversationUpsertedV1{
		Conversation:   ConversationKey{ConversationID: 10},
		CurrentHandler: "human",
		Version:        1,
	}
	require.NoError(t, e.Validate())

	tests := []struct {
		name string
		mut  func(*ConversationUpsertedV1)
	}{
		{"missing conversation", func(e *ConversationUpsertedV1) { e.Conversation.ConversationID = 0 }},
		{"missing handler flag", func(e *ConversationUpsertedV1) { e.CurrentHandler = "" }},
		{"unknown handler flag", func(e *ConversationUpsertedV1) { e.CurrentHandler = "robot" }},
		{"missing version", func(e *ConversationUpsertedV1) { e.Version = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bad := e
			tc.mut(&bad)
			assert.True(t, errors.Is(bad.Validate(), ErrInvalidContract))
		})
	}
}

func ptrInt64(v int64) *int64 { return &v }
