// Package metrics exposes the coordinator's prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ActiveRooms      prometheus.Gauge
	OpenConnections  prometheus.Gauge
	MessagesTotal    *prometheus.CounterVec
	RateLimitedTotal prometheus.Counter
	RemovalsTotal    *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ActiveRooms: factory.NewGauge(prometheus.GaugeOpts{
			Name: "quizroom_active_rooms",
			Help: "Number of live rooms in the registry.",
		}),
		OpenConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "quizroom_open_connections",
			Help: "Number of connected participants across all rooms.",
		}),
		MessagesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quizroom_messages_total",
			Help: "Inbound messages dispatched, by kind.",
		}, []string{"kind"}),
		RateLimitedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "quizroom_rate_limited_total",
			Help: "Messages dropped because a connection tripped its rate limit.",
		}),
		RemovalsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quizroom_removals_total",
			Help: "Bans and kicks recorded, by kind.",
		}, []string{"kind"}),
	}
}

// Nil-safe helpers so rooms constructed without metrics stay quiet.

func (m *Metrics) RoomOpened() {
	if m != nil {
		m.ActiveRooms.Inc()
	}
}

func (m *Metrics) RoomClosed() {
	if m != nil {
		m.ActiveRooms.Dec()
	}
}

func (m *Metrics) ConnOpened() {
	if m != nil {
		m.OpenConnections.Inc()
	}
}

func (m *Metrics) ConnClosed() {
	if m != nil {
		m.OpenConnections.Dec()
	}
}

func (m *Metrics) Message(kind string) {
	if m != nil {
		m.MessagesTotal.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) RateLimited() {
	if m != nil {
		m.RateLimitedTotal.Inc()
	}
}

func (m *Metrics) Removal(kind string) {
	if m != nil {
		m.RemovalsTotal.WithLabelValues(kind).Inc()
	}
}
