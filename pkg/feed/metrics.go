package feed

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	eventMessage      = "message"
	eventActivity     = "activity"
	eventConversation = "conversation"

	outcomeApplied   = "applied"
	outcomeDuplicate = "duplicate"
	outcomeStale     = "stale"
	outcomePoison    = "poison"
)

// Metrics holds the Prometheus metrics for the feed store. A nil *Metrics is
// a valid no-op receiver so tests and fallback wiring can skip registration.
type Metrics struct {
	EventsAppliedTotal *prometheus.CounterVec
	AssembleDuration   prometheus.Histogram

	StoreConversations prometheus.Gauge
	StoreMessages      prometheus.Gauge
	StoreActivities    prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{}

	m.EventsAppliedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inbox_feed_events_applied_total",
			Help: "Feed events processed, by event type and outcome",
		},
		[]string{"event", "outcome"},
	)

	m.AssembleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "inbox_feed_assemble_duration_seconds",
			Help:    "Duration of timeline assembly",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
	)

	m.StoreConversations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "inbox_feed_conversations",
			Help: "Conversations currently held in the feed store",
		},
	)

	m.StoreMessages = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "inbox_feed_messages",
			Help: "Messages currently held in the feed store",
		},
	)

	m.StoreActivities = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "inbox_feed_activities",
			Help: "Activity markers currently held in the feed store",
		},
	)

	return m
}

func (m *Metrics) eventApplied(event, outcome string) {
	if m == nil {
		return
	}
	m.EventsAppliedTotal.WithLabelValues(event, outcome).Inc()
}

func (m *Metrics) assembleObserved(d time.Duration) {
	if m == nil {
		return
	}
	m.AssembleDuration.Observe(d.Seconds())
}

func (m *Metrics) setStoreSizes(convs, msgs, acts int) {
	if m == nil {
		return
	}
	m.StoreConversations.Set(float64(convs))
	m.StoreMessages.Set(float64(msgs))
	m.StoreActivities.Set(float64(acts))
}
