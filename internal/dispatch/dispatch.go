// Package dispatch implements transport.EventRouter, routing each inbound
// envelope to the Room Engine or the Remote-Control Engine per spec.md §6's
// event surface table. It is the only package that imports both engines; it
// holds no state and no business logic of its own.
package dispatch

import (
	"context"
	"time"

	"github.com/nimbusrelay/signalcore/internal/logging"
	"github.com/nimbusrelay/signalcore/internal/metrics"
	"github.com/nimbusrelay/signalcore/internal/remotectl"
	"github.com/nimbusrelay/signalcore/internal/roomengine"
	"github.com/nimbusrelay/signalcore/internal/tracing"
	"github.com/nimbusrelay/signalcore/internal/transport"
	"github.com/nimbusrelay/signalcore/internal/wire"

	"go.uber.org/zap"
)

// Dispatcher routes envelopes between the Transport Gateway and the two
// engines. Constructed once in cmd/signalcore and wired into the Gateway via
// SetRouter.
type Dispatcher struct {
	rooms  *roomengine.Engine
	remote *remotectl.Engine
}

// New builds a Dispatcher bound to both engines.
func New(rooms *roomengine.Engine, remote *remotectl.Engine) *Dispatcher {
	return &Dispatcher{rooms: rooms, remote: remote}
}

// Route implements transport.EventRouter. Tracing is pure observability
// (spec.md §10.4): the span never gates the outcome, only records it.
func (d *Dispatcher) Route(conn *transport.Connection, env wire.Envelope) {
	_, span := tracing.Tracer().Start(context.Background(), "event."+env.Event)
	defer span.End()

	start := time.Now()
	outcome := d.route(conn, env)
	metrics.EventHandlingDuration.WithLabelValues(env.Event).Observe(time.Since(start).Seconds())
	metrics.InboundEvents.WithLabelValues(env.Event, outcome).Inc()
}

func (d *Dispatcher) route(conn *transport.Connection, env wire.Envelope) string {
	switch env.Event {
	case wire.EventCreateRoom:
		d.rooms.CreateRoom(conn)

	case wire.EventJoinedRoom:
		var p wire.JoinedRoomPayload
		if !decode(conn, env, &p) {
			return "rejected"
		}
		d.rooms.JoinedRoom(conn, p)

	case wire.EventReady:
		d.rooms.Ready(conn)

	case wire.EventLeaveRoom:
		d.remote.LeaveRoomPartialTeardown(conn)
		d.rooms.LeaveRoom(conn)

	case wire.EventRemoteHostRegister:
		var p wire.RemoteHostRegisterPayload
		if !decode(conn, env, &p) {
			return "rejected"
		}
		d.remote.RegisterHost(conn, p.HostID)

	case wire.EventRemoteHostClaim:
		var p wire.RemoteHostClaimPayload
		if !decode(conn, env, &p) {
			return "rejected"
		}
		d.remote.ClaimHost(conn, p.HostID)

	case wire.EventRemoteHostsRequest:
		d.remote.RequestHostsList(conn)

	case wire.EventRemoteHostSetupRequest:
		var p wire.RemoteHostSetupRequestPayload
		if !decode(conn, env, &p) {
			return "rejected"
		}
		d.remote.RequestHostSetup(conn, p.TargetPeerID)

	case wire.EventRemoteHostSetupDecision:
		var p wire.RemoteHostSetupDecisionPayload
		if !decode(conn, env, &p) {
			return "rejected"
		}
		d.remote.DecideHostSetup(conn, p.RequestID, p.Accepted)

	case wire.EventRemoteSessionRequest:
		var p wire.RemoteSessionRequestPayload
		if !decode(conn, env, &p) {
			return "rejected"
		}
		d.remote.RequestSession(conn, p.HostID)

	case wire.EventRemoteSessionDecision, wire.EventRemoteSessionUIDecision:
		var p wire.RemoteSessionDecisionPayload
		if !decode(conn, env, &p) {
			return "rejected"
		}
		d.remote.DecideSession(conn, p.RequestID, p.Accepted, p.Reason)

	case wire.EventRemoteSessionStop:
		var p wire.RemoteSessionStopPayload
		if !decode(conn, env, &p) {
			return "rejected"
		}
		d.remote.StopSession(conn, p.SessionID)

	case wire.EventRemoteHostFrame:
		var p wire.RemoteHostFramePayload
		if !decode(conn, env, &p) {
			return "rejected"
		}
		d.remote.RelayFrame(conn, p)

	case wire.EventRemoteInput:
		var p wire.RemoteInputPayload
		if !decode(conn, env, &p) {
			return "rejected"
		}
		d.remote.RelayInput(conn, p)

	default:
		logging.Warn(nil, "unknown inbound event", zap.String("connectionId", conn.ID()), zap.String("event", env.Event))
		return "unknown"
	}
	return "ok"
}

// HandleDisconnect implements transport.EventRouter. It runs the
// Remote-Control Engine's full teardown cascade (spec.md §4.4 Connection
// teardown, steps 1-6) before the Room Engine's leave path (step 7).
func (d *Dispatcher) HandleDisconnect(conn *transport.Connection) {
	d.remote.HandleDisconnect(conn)
	d.rooms.LeaveRoom(conn)
}

func decode(conn *transport.Connection, env wire.Envelope, dst any) bool {
	if err := wire.Decode(env, dst); err != nil {
		logging.Warn(nil, "dropping malformed payload", zap.String("connectionId", conn.ID()), zap.String("event", env.Event), zap.Error(err))
		return false
	}
	return true
}
