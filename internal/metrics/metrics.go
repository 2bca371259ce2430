// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Live push-channel connection count
//   - Broadcast fan-out volume and per-send outcomes
//   - Reaped (dead) connections
//   - Stored messages and purged expired messages
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Connections tracks currently registered push-channel handles.
	Connections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chat_connections",
		Help: "Number of live push-channel connections.",
	})

	// Broadcasts counts fan-out passes by event type.
	Broadcasts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_broadcasts_total",
		Help: "Broadcast fan-out passes by event type.",
	}, []string{"type"})

	// Sends counts individual pushes by outcome.
	Sends = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_broadcast_sends_total",
		Help: "Individual event pushes by outcome.",
	}, []string{"result"})

	// Reaped counts connections removed after a failed push.
	Reaped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_reaped_connections_total",
		Help: "Connections reaped after a failed push or heartbeat.",
	})

	// Messages counts stored chat messages.
	Messages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_messages_total",
		Help: "Messages accepted and stored.",
	})

	// Purged counts expired messages removed by retention sweeps.
	Purged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_purged_messages_total",
		Help: "Expired messages removed by retention sweeps.",
	})
)
