package inbox

import (
	"sort"
	"time"
)

// activityKeyPrefix keeps activity identity keys from colliding with message
// ids even when the raw ids happen to be equal.
const activityKeyPrefix = "activity:"

// Assemble merges messages and activity markers into one chronologically
// ordered, deduplicated sequence for display.
//
// Messages sharing a whatsapp_message_id collapse to the first occurrence
// (the first-arriving copy carries the most correct metadata; duplicates come
// from the race between an optimistic send and its server echo). Activities
// are never deduplicated. The result is freshly allocated on every call and
// the ordering is total and stable, so identical inputs yield identical
// output, element for element.
func Assemble(messages []Message, activities []Activity) []TimelineItem {
	items := make([]TimelineItem, 0, len(messages)+len(activities))

	seen := make(map[string]struct{}, len(messages))
	for i := range messages {
		m := messages[i]
		if m.WhatsappMessageID != "" {
			if _, dup := seen[m.WhatsappMessageID]; dup {
				continue
			}
			seen[m.WhatsappMessageID] = struct{}{}
		}
		items = append(items, TimelineItem{Kind: ItemMessage, Message: &m})
	}
	for i := range activities {
		a := activities[i]
		items = append(items, TimelineItem{Kind: ItemActivity, Activity: &a})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return lessTimeline(items[i], items[j])
	})
	return items
}

// lessTimeline orders by instant, then client send order (messages only),
// then identity key.
func lessTimeline(a, b TimelineItem) bool {
	at, bt := a.instant(), b.instant()
	if !at.Equal(bt) {
		return at.Before(bt)
	}
	if a.Kind == ItemMessage && b.Kind == ItemMessage {
		ao, bo := a.Message.ClientOrder, b.Message.ClientOrder
		if ao != nil && bo != nil && *ao != *bo {
			return *ao < *bo
		}
	}
	return a.identityKey() < b.identityKey()
}

func (it TimelineItem) instant() time.Time {
	if it.Kind == ItemMessage {
		return it.Message.CreatedAt
	}
	return it.Activity.Timestamp
}

func (it TimelineItem) identityKey() string {
	if it.Kind == ItemMessage {
		if it.Message.ClientTempID != "" {
			return it.Message.ClientTempID
		}
		return it.Message.ID
	}
	return activityKeyPrefix + it.Activity.ID
}
