// Package metrics declares the Prometheus instrumentation for the signaling
// core.
//
// Naming convention: namespace_subsystem_name
//   - namespace: signalcore
//   - subsystem: websocket, room, host, session, sanitize, ratelimit
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "signalcore",
		Subsystem: "websocket",
		Name:      "connections_active",
		Help:      "Current number of live connections.",
	})

	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "signalcore",
		Subsystem: "room",
		Name:      "rooms_active",
		Help:      "Current number of active rooms.",
	})

	RoomParticipants = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "signalcore",
		Subsystem: "room",
		Name:      "participants_count",
		Help:      "Number of participants in each room.",
	}, []string{"room_id"})

	RegisteredHosts = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "signalcore",
		Subsystem: "host",
		Name:      "registered_total",
		Help:      "Current number of registered hosts.",
	})

	BusyHosts = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "signalcore",
		Subsystem: "host",
		Name:      "busy_total",
		Help:      "Current number of hosts bound to an active session.",
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "signalcore",
		Subsystem: "session",
		Name:      "active_total",
		Help:      "Current number of active remote-control sessions.",
	})

	InboundEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signalcore",
		Subsystem: "websocket",
		Name:      "events_total",
		Help:      "Total inbound events processed, by event name and outcome.",
	}, []string{"event", "outcome"})

	EventHandlingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "signalcore",
		Subsystem: "websocket",
		Name:      "event_handling_seconds",
		Help:      "Time spent handling an inbound event.",
		Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"event"})

	SanitizerRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signalcore",
		Subsystem: "sanitize",
		Name:      "rejections_total",
		Help:      "Payloads rejected by the event sanitizer, by reason.",
	}, []string{"reason"})

	ClaimOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signalcore",
		Subsystem: "host",
		Name:      "claim_outcomes_total",
		Help:      "Host claim arbitration outcomes.",
	}, []string{"outcome"})

	SessionOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signalcore",
		Subsystem: "session",
		Name:      "outcomes_total",
		Help:      "Remote-control session lifecycle outcomes.",
	}, []string{"outcome"})

	RateLimitExceeded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signalcore",
		Subsystem: "ratelimit",
		Name:      "exceeded_total",
		Help:      "Requests rejected by the rate limiter.",
	}, []string{"scope"})

	OutboundEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signalcore",
		Subsystem: "websocket",
		Name:      "outbound_total",
		Help:      "Outbound events by name and outcome (sent, dropped).",
	}, []string{"event", "outcome"})
)

func IncConnection() { ActiveConnections.Inc() }
func DecConnection() { ActiveConnections.Dec() }
