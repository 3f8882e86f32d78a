// Package metrics provides Prometheus instrumentation for the chat server:
// gauges for live sessions and raw connections, counters for message outcomes
// and presence sweeps.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ConnectionsOpen tracks the current number of attached WebSocket connections,
	// authenticated or not.
	ConnectionsOpen = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "acaragraph_connections_open",
		Help: "Current number of open WebSocket connections",
	})

	// SessionsOnline tracks the current number of authenticated live sessions
	// in the presence registry.
	SessionsOnline = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "acaragraph_sessions_online",
		Help: "Current number of authenticated live sessions",
	})

	// MessagesTotal counts submitted messages by outcome:
	// "sent", "rejected_validation", "rejected_moderation", "failed".
	MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "acaragraph_messages_total",
		Help: "Total number of message submissions by outcome",
	}, []string{"outcome"})

	// PresenceSweepsTotal counts reconciler sweep runs by result ("ok", "error").
	PresenceSweepsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "acaragraph_presence_sweeps_total",
		Help: "Total number of presence reconciliation sweeps",
	}, []string{"result"})

	// PresenceDemotionsTotal counts users demoted from online to away by sweeps.
	PresenceDemotionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "acaragraph_presence_demotions_total",
		Help: "Total number of stale users demoted to away",
	})
)

func init() {
	prometheus.MustRegister(
		ConnectionsOpen,
		SessionsOnline,
		MessagesTotal,
		PresenceSweepsTotal,
		PresenceDemotionsTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
