package inbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func ids(items []TimelineItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it.Kind == ItemMessage {
			out = append(out, it.Message.ID)
		} else {
			out = append(out, it.Activity.ID)
		}
	}
	return out
}

func TestAssembleEmptyInputs(t *testing.T) {
	assert.Empty(t, Assemble(nil, nil))
	assert.Empty(t, Assemble([]Message{}, []Activity{}))
}

func TestAssembleDedupKeepsFirstOccurrence(t *testing.T) {
	msgs := []Message{
		{ID: "a", CreatedAt: t0, WhatsappMessageID: "w1"},
		{ID: "b", CreatedAt: t0, WhatsappMessageID: "w1"},
	}
	items := Assemble(msgs, nil)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].Message.ID)
}

func TestAssembleKeepsMessagesWithoutProviderID(t *testing.T) {
	msgs := []Message{
		{ID: "a", CreatedAt: t0},
		{ID: "b", CreatedAt: t0},
		{ID: "c", CreatedAt: t0, WhatsappMessageID: "w1"},
	}
	items := Assemble(msgs, nil)
	assert.Len(t, items, 3)
}

func TestAssembleNoCrossKindDedup(t *testing.T) {
	// A message and an activity sharing a raw id are both retained. With
	// equal instants the activity sorts first: its comparison key is
	// "activity:x", which orders before the message key "x".
	msgs := []Message{{ID: "x", CreatedAt: t0}}
	acts := []Activity{{ID: "x", Timestamp: t0}}
	items := Assemble(msgs, acts)
	require.Len(t, items, 2)
	assert.Equal(t, ItemActivity, items[0].Kind)
	assert.Equal(t, ItemMessage, items[1].Kind)
}

func TestAssembleOrdersByInstant(t *testing.T) {
	msgs := []Message{{ID: "m", CreatedAt: t0.Add(time.Minute)}}
	acts := []Activity{{ID: "a", Timestamp: t0}}
	items := Assemble(msgs, acts)
	require.Len(t, items, 2)
	assert.Equal(t, ItemActivity, items[0].Kind)
	assert.Equal(t, ItemMessage, items[1].Kind)
}

func TestAssembleClientOrderBreaksExactTies(t *testing.T) {
	msgs := []Message{
		{ID: "a", CreatedAt: t0, ClientOrder: ptr(int64(2))},
		{ID: "b", CreatedAt: t0, ClientOrder: ptr(int64(1))},
	}
	items := Assemble(msgs, nil)
	assert.Equal(t, []string{"b", "a"}, ids(items))
}

func TestAssembleClientOrderIgnoredWhenInstantsDiffer(t *testing.T) {
	msgs := []Message{
		{ID: "a", CreatedAt: t0, ClientOrder: ptr(int64(2))},
		{ID: "b", CreatedAt: t0.Add(time.Second), ClientOrder: ptr(int64(1))},
	}
	items := Assemble(msgs, nil)
	assert.Equal(t, []string{"a", "b"}, ids(items))
}

func TestAssembleIdentityKeyFallback(t *testing.T) {
	tests := []struct {
		name string
		msgs []Message
		acts []Activity
		want []string
	}{
		{
			name: "one side missing client order falls to id comparison",
			msgs: []Message{
				{ID: "z", CreatedAt: t0, ClientOrder: ptr(int64(1))},
				{ID: "a", CreatedAt: t0},
			},
			want: []string{"a", "z"},
		},
		{
			name: "client temp id wins over real id as sort key",
			msgs: []Message{
				// Real id "a" would sort first, but the temp id "zz-tmp"
				// is the comparison key and sorts after "m".
				{ID: "a", CreatedAt: t0, ClientTempID: "zz-tmp"},
				{ID: "m", CreatedAt: t0},
			},
			want: []string{"m", "a"},
		},
		{
			name: "mixed kind tie uses prefixed activity key",
			msgs: []Message{{ID: "b", CreatedAt: t0}},
			acts: []Activity{{ID: "b", Timestamp: t0}},
			// "activity:b" < "b"
			want: []string{"b", "b"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			items := Assemble(tc.msgs, tc.acts)
			assert.Equal(t, tc.want, ids(items))
		})
	}
}

func TestAssembleMixedKindTieOrder(t *testing.T) {
	// Equal instants, message id "b", activity id "b": the activity key is
	// "activity:b" which sorts before "b".
	msgs := []Message{{ID: "b", CreatedAt: t0}}
	acts := []Activity{{ID: "b", Timestamp: t0}}
	items := Assemble(msgs, acts)
	require.Len(t, items, 2)
	assert.Equal(t, ItemActivity, items[0].Kind)
	assert.Equal(t, ItemMessage, items[1].Kind)
}

func TestAssembleIdempotent(t *testing.T) {
	msgs := []Message{
		{ID: "c", CreatedAt: t0.Add(2 * time.Second), WhatsappMessageID: "w2"},
		{ID: "a", CreatedAt: t0, WhatsappMessageID: "w1"},
		{ID: "b", CreatedAt: t0, WhatsappMessageID: "w1"},
		{ID: "d", CreatedAt: t0.Add(time.Second)},
	}
	acts := []Activity{
		{ID: "x", Timestamp: t0.Add(time.Second)},
		{ID: "y", Timestamp: t0.Add(3 * time.Second)},
	}

	first := Assemble(msgs, acts)
	second := Assemble(msgs, acts)

	require.Equal(t, len(first), len(second))
	assert.Equal(t, ids(first), ids(second))
	for i := range first {
		assert.Equal(t, first[i].Kind, second[i].Kind, "item %d", i)
	}
}

func TestAssembleDoesNotAliasInputs(t *testing.T) {
	msgs := []Message{{ID: "a", CreatedAt: t0, Text: "original"}}
	items := Assemble(msgs, nil)
	require.Len(t, items, 1)

	msgs[0].Text = "mutated"
	assert.Equal(t, "original", items[0].Message.Text)
}

func TestAssembleOutputSortedAscending(t *testing.T) {
	msgs := []Message{
		{ID: "m3", CreatedAt: t0.Add(3 * time.Minute)},
		{ID: "m1", CreatedAt: t0.Add(time.Minute)},
	}
	acts := []Activity{
		{ID: "a2", Timestamp: t0.Add(2 * time.Minute)},
		{ID: "a0", Timestamp: t0},
	}
	items := Assemble(msgs, acts)
	require.Len(t, items, 4)
	for i := 1; i < len(items); i++ {
		assert.False(t, items[i].instant().Before(items[i-1].instant()),
			"items %d and %d out of order", i-1, i)
	}
	assert.Equal(t, []string{"a0", "m1", "a2", "m3"}, ids(items))
}
