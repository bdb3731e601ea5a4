package client

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds counters for session activity. All record helpers are
// nil-safe so instrumentation stays optional.
type Metrics struct {
	EventsReceived *prometheus.CounterVec
	MessagesSent   prometheus.Counter
	Reconnects     prometheus.Counter
	FetchErrors    prometheus.Counter
	StaleDiscards  prometheus.Counter
	DroppedEvents  prometheus.Counter
}

// NewMetrics creates the session metric set.
func NewMetrics() *Metrics {
	return &Metrics{
		EventsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fitchat",
			Name:      "events_received_total",
			Help:      "Live events received from the socket, by type.",
		}, []string{"type"}),
		MessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fitchat",
			Name:      "messages_sent_total",
			Help:      "Messages sent to the active room.",
		}),
		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fitchat",
			Name:      "reconnects_total",
			Help:      "Successful socket reconnections.",
		}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fitchat",
			Name:      "fetch_errors_total",
			Help:      "Failed REST fetches.",
		}),
		StaleDiscards: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fitchat",
			Name:      "stale_discards_total",
			Help:      "History fetch results discarded because the selection changed.",
		}),
		DroppedEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fitchat",
			Name:      "dropped_events_total",
			Help:      "Message events dropped for not matching the active room.",
		}),
	}
}

// MustRegister registers all metrics with reg.
func (m *Metrics) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		m.EventsReceived,
		m.MessagesSent,
		m.Reconnects,
		m.FetchErrors,
		m.StaleDiscards,
		m.DroppedEvents,
	)
}

func (m *Metrics) addEventReceived(kind string) {
	if m == nil {
		return
	}
	m.EventsReceived.WithLabelValues(kind).Inc()
}

func (m *Metrics) addMessageSent() {
	if m == nil {
		return
	}
	m.MessagesSent.Inc()
}

func (m *Metrics) addReconnect() {
	if m == nil {
		return
	}
	m.Reconnects.Inc()
}

func (m *Metrics) addFetchError() {
	if m == nil {
		return
	}
	m.FetchErrors.Inc()
}

func (m *Metrics) addStaleDiscard() {
	if m == nil {
		return
	}
	m.StaleDiscards.Inc()
}

func (m *Metrics) addDroppedEvent() {
	if m == nil {
		return
	}
	m.DroppedEvents.Inc()
}
