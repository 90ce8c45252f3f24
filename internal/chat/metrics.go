package chat

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts connection and routing activity. All collectors are
// registered on the registerer passed to NewMetrics so tests can use
// an isolated prometheus registry.
type Metrics struct {
	ConnectionsTotal prometheus.Counter
	ActiveSessions   prometheus.Gauge
	MessagesRouted   *prometheus.CounterVec
	SendFailures     prometheus.Counter
}

// NewMetrics builds and registers the chat collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ConnectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "chat",
			Name:      "connections_total",
			Help:      "Connections accepted across all transports.",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "chat",
			Name:      "sessions_active",
			Help:      "Sessions currently registered.",
		}),
		MessagesRouted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chat",
			Name:      "messages_routed_total",
			Help:      "Routing operations performed, by kind.",
		}, []string{"kind"}),
		SendFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "chat",
			Name:      "send_failures_total",
			Help:      "Sends that failed and evicted the recipient.",
		}),
	}
}
