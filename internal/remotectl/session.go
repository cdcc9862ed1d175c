package remotectl

import (
	"context"
	"time"

	"github.com/nimbusrelay/signalcore/internal/metrics"
	"github.com/nimbusrelay/signalcore/internal/sanitize"
	"github.com/nimbusrelay/signalcore/internal/tracing"
	"github.com/nimbusrelay/signalcore/internal/transport"
	"github.com/nimbusrelay/signalcore/internal/wire"
)

const maxFrameImageBytes = 6 * 1024 * 1024

// RequestSession handles `remote-session-request {hostId}` (spec.md §4.4
// Session request / approval).
func (e *Engine) RequestSession(conn *transport.Connection, hostID string) {
	hostID = sanitize.HostID(hostID)

	e.mu.Lock()
	h, ok := e.hosts[hostID]
	if !ok || !e.gateway.IsLive(h.connectionID) {
		if ok {
			delete(e.hosts, hostID)
		}
		e.mu.Unlock()
		e.emitError(conn.ID(), wire.ErrHostOffline, "host agent is not online")
		return
	}

	if !e.allowSameMachine {
		requesterNetwork := conn.State.NetworkID()
		if requesterNetwork != "" && h.networkID != "" && requesterNetwork == h.networkID && sanitize.IsLikelyPrivateOrLocal(requesterNetwork) {
			e.mu.Unlock()
			e.emitError(conn.ID(), wire.ErrSelfHostMachineBlocked, "cannot request remote control of a host on the same machine/network")
			return
		}
	}

	if h.activeSessionID != "" {
		e.mu.Unlock()
		e.emitError(conn.ID(), wire.ErrHostBusy, "host already has an active session")
		return
	}
	if _, pending := e.pendingByHost[hostID]; pending {
		e.mu.Unlock()
		e.emitError(conn.ID(), wire.ErrHostPending, "host already has a pending request")
		return
	}
	if _, ok := e.findControllerSessionLocked(conn.ID()); ok {
		e.mu.Unlock()
		e.emitError(conn.ID(), wire.ErrControllerBusy, "you already have an active controller session")
		return
	}
	if _, pending := e.pendingByController[conn.ID()]; pending {
		e.mu.Unlock()
		e.emitError(conn.ID(), wire.ErrControllerPending, "you already have a pending request")
		return
	}

	roomID := conn.State.RoomID()
	if roomID == "" {
		e.mu.Unlock()
		e.emitError(conn.ID(), wire.ErrRoomRequired, "join a room before requesting a session")
		return
	}

	claim, ok := e.claims[hostID]
	if !ok || claim.roomID != roomID || !e.gateway.IsInRoom(claim.roomID, claim.connectionID) {
		if ok {
			delete(e.claims, hostID)
		}
		e.mu.Unlock()
		e.emitError(conn.ID(), wire.ErrHostOwnerUnclaimed, "no claim authorizes this request")
		return
	}
	if claim.connectionID == conn.ID() {
		e.mu.Unlock()
		e.emitError(conn.ID(), wire.ErrSelfHostRequestBlocked, "cannot approve your own request")
		return
	}

	requestID := newID()
	_, span := tracing.Tracer().Start(context.Background(), "remote_session.consent")
	rec := &pendingRequestRecord{
		hostID:                 hostID,
		hostConnectionID:       h.connectionID,
		controllerConnectionID: conn.ID(),
		requesterPeerID:        conn.State.PeerID(),
		roomID:                 roomID,
		approverConnectionID:   claim.connectionID,
		span:                   span,
	}
	rec.timer = time.AfterFunc(pendingRequestTTL, func() { e.expirePendingRequest(requestID) })

	e.pendingRequests[requestID] = rec
	e.pendingByHost[hostID] = requestID
	e.pendingByController[conn.ID()] = requestID
	e.mu.Unlock()

	conn.State.SetPendingRemoteRequestID(requestID)

	conn.Emit(wire.EventRemoteSessionPending, wire.RemoteSessionPendingPayload{RequestID: requestID, HostID: hostID})
	e.gateway.EmitToConnection(claim.connectionID, wire.EventRemoteSessionRequestedUI, wire.RemoteSessionRequestedUIPayload{
		RequestID:     requestID,
		HostID:        hostID,
		RequesterPeer: rec.requesterPeerID,
	})
}

func (e *Engine) expirePendingRequest(requestID string) {
	e.mu.Lock()
	rec, ok := e.pendingRequests[requestID]
	if !ok {
		e.mu.Unlock()
		return
	}
	e.deletePendingRequestLocked(requestID, rec)
	e.mu.Unlock()

	e.gateway.EmitToConnection(rec.controllerConnectionID, wire.EventRemoteSessionError, wire.RemoteSessionErrorPayload{Code: wire.ErrRequestTimeout})
}

func (e *Engine) deletePendingRequestLocked(requestID string, rec *pendingRequestRecord) {
	if rec.span != nil {
		rec.span.End()
	}
	delete(e.pendingRequests, requestID)
	if e.pendingByHost[rec.hostID] == requestID {
		delete(e.pendingByHost, rec.hostID)
	}
	if e.pendingByController[rec.controllerConnectionID] == requestID {
		delete(e.pendingByController, rec.controllerConnectionID)
	}
}

// DecideSession handles `remote-session-decision` / the legacy
// `remote-session-ui-decision` alias.
func (e *Engine) DecideSession(conn *transport.Connection, requestID string, accepted bool, reason string) {
	e.mu.Lock()
	rec, ok := e.pendingRequests[requestID]
	if !ok {
		e.mu.Unlock()
		return
	}
	if conn.ID() != rec.approverConnectionID && conn.ID() != rec.hostConnectionID {
		e.mu.Unlock()
		return
	}
	rec.timer.Stop()
	e.deletePendingRequestLocked(requestID, rec)
	e.mu.Unlock()

	if st, ok := e.gateway.ConnectionState(rec.controllerConnectionID); ok {
		st.SetPendingRemoteRequestID("")
	}

	if !accepted {
		if reason == "" {
			reason = "request rejected"
		}
		e.emitError(rec.controllerConnectionID, wire.ErrRequestRejected, reason)
		return
	}

	e.mu.Lock()
	h, hostStillLive := e.hosts[rec.hostID]
	hostSame := hostStillLive && h.connectionID == rec.hostConnectionID
	hostBusy := hostStillLive && h.activeSessionID != ""
	controllerLive := e.gateway.IsLive(rec.controllerConnectionID)
	_, controllerAlreadyBound := e.findControllerSessionLocked(rec.controllerConnectionID)
	e.mu.Unlock()

	switch {
	case !hostSame:
		e.emitError(rec.controllerConnectionID, wire.ErrHostOffline, "host is no longer available")
		return
	case hostBusy:
		e.emitError(rec.controllerConnectionID, wire.ErrHostBusy, "host already has an active session")
		return
	case !controllerLive:
		return
	case controllerAlreadyBound:
		e.emitError(rec.hostConnectionID, wire.ErrControllerBusy, "the requester already has an active controller session")
		return
	}

	sessionID := newID()
	e.mu.Lock()
	if h, ok := e.hosts[rec.hostID]; ok {
		h.activeSessionID = sessionID
	}
	e.sessions[sessionID] = &sessionRecord{hostID: rec.hostID, hostConnectionID: rec.hostConnectionID, controllerConnectionID: rec.controllerConnectionID}
	e.mu.Unlock()

	// spec.md §4.4 Session success: stamp controllerSessionId on the
	// requester connection, hostSessionId on the host connection.
	if st, ok := e.gateway.ConnectionState(rec.hostConnectionID); ok {
		st.SetHostSessionID(sessionID)
	}
	if st, ok := e.gateway.ConnectionState(rec.controllerConnectionID); ok {
		st.SetControllerSessionID(sessionID)
	}

	metrics.ActiveSessions.Inc()
	metrics.SessionOutcomes.WithLabelValues("started").Inc()

	e.gateway.EmitToConnection(rec.hostConnectionID, wire.EventRemoteSessionStarted, wire.RemoteSessionStartedPayload{SessionID: sessionID, HostID: rec.hostID})
	e.gateway.EmitToConnection(rec.controllerConnectionID, wire.EventRemoteSessionStarted, wire.RemoteSessionStartedPayload{SessionID: sessionID, HostID: rec.hostID})
	e.broadcastHostsList()
}

// findControllerSessionLocked reports whether connectionID is bound as
// controller to any active session, via the connection's own stamped
// controllerSessionId rather than scanning e.sessions. Despite the name
// (kept for call-site continuity with the engine's locked sections), it
// reads connstate, not an engine registry, so it needs no e.mu.
func (e *Engine) findControllerSessionLocked(connectionID string) (string, bool) {
	st, ok := e.gateway.ConnectionState(connectionID)
	if !ok {
		return "", false
	}
	sessionID := st.ControllerSessionID()
	return sessionID, sessionID != ""
}

// findHostSessionLocked reports whether connectionID is bound as host to
// any active session, via the connection's own stamped hostSessionId.
func (e *Engine) findHostSessionLocked(connectionID string) (string, bool) {
	st, ok := e.gateway.ConnectionState(connectionID)
	if !ok {
		return "", false
	}
	sessionID := st.HostSessionID()
	return sessionID, sessionID != ""
}

// RelayFrame handles `remote-host-frame` (spec.md §4.4 Session relay).
func (e *Engine) RelayFrame(conn *transport.Connection, p wire.RemoteHostFramePayload) {
	if len(p.Image) == 0 || len(p.Image) > maxFrameImageBytes {
		return
	}

	e.mu.Lock()
	s, ok := e.sessions[p.SessionID]
	e.mu.Unlock()
	if !ok || s.hostConnectionID != conn.ID() {
		return
	}

	var ts int64
	if p.Timestamp != nil {
		ts = *p.Timestamp
	} else {
		ts = time.Now().UnixMilli()
	}

	e.gateway.EmitToConnection(s.controllerConnectionID, "remote-frame", wire.RemoteFramePayload{
		SessionID: p.SessionID,
		Image:     p.Image,
		Width:     p.Width,
		Height:    p.Height,
		Timestamp: ts,
	})
}

// RelayInput handles `remote-input` (spec.md §4.4 Session relay).
func (e *Engine) RelayInput(conn *transport.Connection, p wire.RemoteInputPayload) {
	e.mu.Lock()
	s, ok := e.sessions[p.SessionID]
	e.mu.Unlock()
	if !ok || s.controllerConnectionID != conn.ID() {
		return
	}

	normalized, ok := sanitize.RemoteEventFromMap(p.Event)
	if !ok {
		metrics.SanitizerRejections.WithLabelValues("remote-input").Inc()
		return
	}

	e.gateway.EmitToConnection(s.hostConnectionID, wire.EventRemoteInput, wire.RemoteInputPayload{
		SessionID: p.SessionID,
		Event:     remoteEventToMap(normalized),
	})
}

// StopSession handles `remote-session-stop {sessionId?}` (spec.md §4.4
// Session termination).
func (e *Engine) StopSession(conn *transport.Connection, sessionID string) {
	e.mu.Lock()
	if sessionID == "" {
		if sid, ok := e.findHostSessionLocked(conn.ID()); ok {
			sessionID = sid
		} else if sid, ok := e.findControllerSessionLocked(conn.ID()); ok {
			sessionID = sid
		}
	}

	s, ok := e.sessions[sessionID]
	if !ok {
		if reqID, pending := e.pendingByController[conn.ID()]; pending {
			rec := e.pendingRequests[reqID]
			rec.timer.Stop()
			e.deletePendingRequestLocked(reqID, rec)
			e.mu.Unlock()
			e.gateway.EmitToConnection(rec.hostConnectionID, wire.EventRemoteSessionError, wire.RemoteSessionErrorPayload{Code: wire.ErrRequestCancelled})
			return
		}
		e.mu.Unlock()
		return
	}

	if conn.ID() != s.hostConnectionID && conn.ID() != s.controllerConnectionID {
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	endedBy := "controller"
	if conn.ID() == s.hostConnectionID {
		endedBy = "host"
	}
	e.endSession(sessionID, endedBy)
}

// endSession implements spec.md §4.4 endSession(sessionId, endedBy).
func (e *Engine) endSession(sessionID, endedBy string) {
	e.mu.Lock()
	s, ok := e.sessions[sessionID]
	if !ok {
		e.mu.Unlock()
		return
	}
	delete(e.sessions, sessionID)
	if h, ok := e.hosts[s.hostID]; ok {
		h.activeSessionID = ""
	}
	e.mu.Unlock()

	if st, ok := e.gateway.ConnectionState(s.hostConnectionID); ok {
		st.SetHostSessionID("")
	}
	if st, ok := e.gateway.ConnectionState(s.controllerConnectionID); ok {
		st.SetControllerSessionID("")
	}

	metrics.ActiveSessions.Dec()
	metrics.SessionOutcomes.WithLabelValues("ended_" + endedBy).Inc()

	payload := wire.RemoteSessionEndedPayload{SessionID: sessionID, HostID: s.hostID, EndedBy: endedBy}
	e.gateway.EmitToConnection(s.hostConnectionID, wire.EventRemoteSessionEnded, payload)
	e.gateway.EmitToConnection(s.controllerConnectionID, wire.EventRemoteSessionEnded, payload)
	e.broadcastHostsList()
}

func remoteEventToMap(ev sanitize.RemoteEvent) map[string]any {
	m := map[string]any{"type": string(ev.Type)}
	switch {
	case ev.Key != "" || ev.Code != "":
		if ev.Key != "" {
			m["key"] = ev.Key
		}
		if ev.Code != "" {
			m["code"] = ev.Code
		}
		m["repeat"] = ev.Repeat
	default:
		m["x"] = ev.X
		m["y"] = ev.Y
		if ev.Button != "" {
			m["button"] = ev.Button
		}
		if string(ev.Type) == "wheel" {
			m["deltaX"] = ev.DeltaX
			m["deltaY"] = ev.DeltaY
		}
	}
	return m
}
