package inbox

import (
	"fmt"
	"strings"
	"time"
)

// FallbackAgentName is shown when no automation name can be resolved.
const FallbackAgentName = "IA"

// Classify derives the handler bucket from the raw conversation fields.
//
// The handler flag is authoritative only when it agrees with the automation
// reference: a conversation flagged "ai" without an automation id falls
// through to the unassigned/human rules instead of being forced to ai.
func Classify(c Conversation) Handler {
	switch {
	case c.CurrentHandler == HandlerAI && c.AutomationID != nil:
		return HandlerAI
	case c.AutomationID == nil && c.AssignedTo == nil:
		return HandlerUnassigned
	default:
		return HandlerHuman
	}
}

// AgentName resolves the display name for the conversation's automation:
// the denormalized join when non-blank, else a lookup by automation id,
// else the generic fallback.
func AgentName(c Conversation, agents map[uint64]string) string {
	if strings.TrimSpace(c.AutomationName) != "" {
		return c.AutomationName
	}
	if c.AutomationID != nil {
		if name, ok := agents[*c.AutomationID]; ok && strings.TrimSpace(name) != "" {
			return name
		}
	}
	return FallbackAgentName
}

// ClassifyAll projects raw conversations into their display form. Pure:
// inputs are not mutated and the result is freshly allocated.
func ClassifyAll(convs []Conversation, agents map[uint64]string, now time.Time) []Classified {
	out := make([]Classified, 0, len(convs))
	for _, c := range convs {
		cl := Classified{
			Conversation: c,
			Handler:      Classify(c),
			Preview:      preview(c.LastMessage),
		}
		if cl.Handler == HandlerAI {
			cl.AgentName = AgentName(c, agents)
		}
		if c.LastMessageAt != nil {
			cl.LastSeenAgo = relativeTime(*c.LastMessageAt, now)
		}
		out = append(out, cl)
	}
	return out
}

// previewRunes bounds the list preview; full text stays on the message.
const previewRunes = 80

func preview(s string) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= previewRunes {
		return s
	}
	return string(r[:previewRunes-1]) + "…"
}

func relativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.Format("02/01/2006")
	}
}
