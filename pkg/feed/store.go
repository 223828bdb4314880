// Package feed maintains the in-memory conversation read-model the inbox UI
// queries. It is fed by gateway events (see consumers.go) and answers with
// the pure projections from pkg/inbox.
package feed

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/roboricindustries/raycon-inbox/pkg/inbox"
)

type Store struct {
	mu sync.RWMutex

	conversations map[int64]inbox.Conversation
	convVersions  map[int64]int64

	messages map[int64][]inbox.Message
	msgIndex map[int64]map[string]int // message id -> slice position

	activities map[int64][]inbox.Activity
	actIndex   map[int64]map[string]int

	agents map[uint64]string // automation id -> display name

	log     *slog.Logger
	metrics *Metrics
	now     func() time.Time
}

func NewStore(logger *slog.Logger, metrics *Metrics) *Store {
	return &Store{
		conversations: make(map[int64]inbox.Conversation),
		convVersions:  make(map[int64]int64),
		messages:      make(map[int64][]inbox.Message),
		msgIndex:      make(map[int64]map[string]int),
		activities:    make(map[int64][]inbox.Activity),
		actIndex:      make(map[int64]map[string]int),
		agents:        make(map[uint64]string),
		log:           logger,
		metrics:       metrics,
		now:           time.Now,
	}
}

// ApplyMessage upserts a message by id. Redelivered events overwrite in
// place (same slice position), so replays are idempotent. Returns false on
// replay.
func (s *Store) ApplyMessage(conversationID int64, m inbox.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.msgIndex[conversationID]
	if !ok {
		idx = make(map[string]int)
		s.msgIndex[conversationID] = idx
	}
	if pos, dup := idx[m.ID]; dup {
		s.messages[conversationID][pos] = m
		s.metrics.eventApplied(eventMessage, outcomeDuplicate)
		return false
	}
	idx[m.ID] = len(s.messages[conversationID])
	s.messages[conversationID] = append(s.messages[conversationID], m)
	s.metrics.eventApplied(eventMessage, outcomeApplied)
	s.metrics.setStoreSizes(len(s.conversations), s.messageCount(), s.activityCount())
	return true
}

// ApplyActivity upserts an activity marker by id, same replay semantics as
// ApplyMessage.
func (s *Store) ApplyActivity(conversationID int64, a inbox.Activity) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.actIndex[conversationID]
	if !ok {
		idx = make(map[string]int)
		s.actIndex[conversationID] = idx
	}
	if pos, dup := idx[a.ID]; dup {
		s.activities[conversationID][pos] = a
		s.metrics.eventApplied(eventActivity, outcomeDuplicate)
		return false
	}
	idx[a.ID] = len(s.activities[conversationID])
	s.activities[conversationID] = append(s.activities[conversationID], a)
	s.metrics.eventApplied(eventActivity, outcomeApplied)
	s.metrics.setStoreSizes(len(s.conversations), s.messageCount(), s.activityCount())
	return true
}

// ApplyConversation replaces the snapshot unless a newer version was already
// applied (out-of-order delivery). Returns false when stale.
func (s *Store) ApplyConversation(c inbox.Conversation, version int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if version != 0 && version <= s.convVersions[c.ID] {
		s.metrics.eventApplied(eventConversation, outcomeStale)
		return false
	}
	s.conversations[c.ID] = c
	if version != 0 {
		s.convVersions[c.ID] = version
	}
	s.metrics.eventApplied(eventConversation, outcomeApplied)
	s.metrics.setStoreSizes(len(s.conversations), s.messageCount(), s.activityCount())
	return true
}

// SetAgentName registers an automation display name for classification.
func (s *Store) SetAgentName(automationID uint64, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents[automationID] = name
}

// Timeline assembles the conversation's chronological view from a snapshot
// of its messages and activities.
func (s *Store) Timeline(conversationID int64) []inbox.TimelineItem {
	start := s.now()

	s.mu.RLock()
	msgs := append([]inbox.Message(nil), s.messages[conversationID]...)
	acts := append([]inbox.Activity(nil), s.activities[conversationID]...)
	s.mu.RUnlock()

	items := inbox.Assemble(msgs, acts)
	s.metrics.assembleObserved(s.now().Sub(start))
	return items
}

// List classifies and filters the conversation list for one tab, most
// recent activity first.
func (s *Store) List(f inbox.FacetSelection, tab inbox.Tab, currentUserID uint64) []inbox.Classified {
	convs, agents := s.snapshotConversations()
	classified := inbox.ClassifyAll(convs, agents, s.now())
	out := inbox.Filter(classified, f, tab, currentUserID)

	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := out[i].LastMessageAt, out[j].LastMessageAt
		switch {
		case ti == nil && tj == nil:
			return out[i].ID < out[j].ID
		case ti == nil:
			return false
		case tj == nil:
			return true
		case !ti.Equal(*tj):
			return ti.After(*tj)
		default:
			return out[i].ID < out[j].ID
		}
	})
	return out
}

// Counts returns per-tab badge counts with no facets applied.
func (s *Store) Counts(currentUserID uint64) map[inbox.Tab]int {
	convs, agents := s.snapshotConversations()
	classified := inbox.ClassifyAll(convs, agents, s.now())

	counts := make(map[inbox.Tab]int, 5)
	for _, tab := range []inbox.Tab{inbox.TabChat, inbox.TabAI, inbox.TabQueue, inbox.TabAll, inbox.TabArchived} {
		counts[tab] = len(inbox.Filter(classified, inbox.FacetSelection{}, tab, currentUserID))
	}
	return counts
}

func (s *Store) snapshotConversations() ([]inbox.Conversation, map[uint64]string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	convs := make([]inbox.Conversation, 0, len(s.conversations))
	for _, c := range s.conversations {
		convs = append(convs, c)
	}
	agents := make(map[uint64]string, len(s.agents))
	for id, name := range s.agents {
		agents[id] = name
	}
	return convs, agents
}

// callers hold s.mu
func (s *Store) messageCount() int {
	n := 0
	for _, ms := range s.messages {
		n += len(ms)
	}
	return n
}

func (s *Store) activityCount() int {
	n := 0
	for _, as := range s.activities {
		n += len(as)
	}
	return n
}
