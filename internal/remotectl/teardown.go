package remotectl

import (
	"github.com/nimbusrelay/signalcore/internal/metrics"
	"github.com/nimbusrelay/signalcore/internal/transport"
	"github.com/nimbusrelay/signalcore/internal/wire"
)

// HandleDisconnect implements spec.md §4.4 Connection teardown steps 1-6.
// Step 7 (the Room Engine's leave path) is invoked by dispatch, which owns
// both engines and calls this before roomengine.LeaveRoom. It takes the live
// *transport.Connection rather than a bare id because the Gateway has
// already removed the connection from its own registry by the time this
// runs, so an id-based lookup of the disconnecting connection's own state
// would fail at exactly the moment it's needed.
func (e *Engine) HandleDisconnect(conn *transport.Connection) {
	e.releaseOwnedHost(conn)
	e.releaseClaimsAndAssignments(conn)
	e.cancelOutgoingRequest(conn)
	e.cancelApprovedRequests(conn)
	e.cancelHostSetupInvolving(conn)
	e.releaseControllerSession(conn)
}

// LeaveRoomPartialTeardown handles the `leave-room` event without a
// transport disconnect: spec.md §4.4 final paragraph restricts this to steps
// 2 (claims/assignments) and 5 (host-setup requests), leaving any active
// session or pending remote-control request untouched since the connection
// itself is still live.
func (e *Engine) LeaveRoomPartialTeardown(conn *transport.Connection) {
	e.releaseClaimsAndAssignments(conn)
	e.cancelHostSetupInvolving(conn)
}

// releaseOwnedHost is step 1.
func (e *Engine) releaseOwnedHost(conn *transport.Connection) {
	connectionID := conn.ID()

	e.mu.Lock()
	ownedHostID := conn.State.RemoteHostID()
	if ownedHostID == "" {
		e.mu.Unlock()
		return
	}
	h, ok := e.hosts[ownedHostID]
	if !ok || h.connectionID != connectionID {
		e.mu.Unlock()
		return
	}

	var activeSessionID string
	if h.activeSessionID != "" {
		activeSessionID = h.activeSessionID
	}

	var cancelled []*pendingRequestRecord
	for reqID, rec := range e.pendingRequests {
		if rec.hostConnectionID == connectionID {
			rec.timer.Stop()
			e.deletePendingRequestLocked(reqID, rec)
			cancelled = append(cancelled, rec)
		}
	}

	delete(e.hosts, ownedHostID)
	e.mu.Unlock()

	conn.State.SetRemoteHostID("")

	metrics.RegisteredHosts.Dec()

	if activeSessionID != "" {
		e.endSession(activeSessionID, "host-disconnected")
	}
	for _, rec := range cancelled {
		if st, ok := e.gateway.ConnectionState(rec.controllerConnectionID); ok {
			st.SetPendingRemoteRequestID("")
		}
		e.emitError(rec.controllerConnectionID, wire.ErrHostDisconnected, "host agent disconnected")
	}
	e.broadcastHostsList()
}

// releaseClaimsAndAssignments is step 2.
func (e *Engine) releaseClaimsAndAssignments(conn *transport.Connection) {
	connectionID := conn.ID()
	e.mu.Lock()
	defer e.mu.Unlock()
	for hostID, c := range e.claims {
		if c.connectionID == connectionID {
			delete(e.claims, hostID)
		}
	}
	for hostID, a := range e.assignments {
		if a.targetConnectionID == connectionID {
			a.timer.Stop()
			delete(e.assignments, hostID)
		}
	}
}

// cancelOutgoingRequest is step 3: cancel the connection's own pending
// remote-control request without separately notifying it (it's the one
// disconnecting); notify the host instead.
func (e *Engine) cancelOutgoingRequest(conn *transport.Connection) {
	connectionID := conn.ID()
	e.mu.Lock()
	reqID, ok := e.pendingByController[connectionID]
	if !ok {
		e.mu.Unlock()
		return
	}
	rec := e.pendingRequests[reqID]
	rec.timer.Stop()
	e.deletePendingRequestLocked(reqID, rec)
	e.mu.Unlock()

	conn.State.SetPendingRemoteRequestID("")

	e.emitError(rec.hostConnectionID, wire.ErrControllerDisconnected, "controller disconnected")
}

// cancelApprovedRequests is step 4: cancel every pending request where this
// connection is the approver.
func (e *Engine) cancelApprovedRequests(conn *transport.Connection) {
	connectionID := conn.ID()
	e.mu.Lock()
	var cancelled []*pendingRequestRecord
	for reqID, rec := range e.pendingRequests {
		if rec.approverConnectionID == connectionID {
			rec.timer.Stop()
			e.deletePendingRequestLocked(reqID, rec)
			cancelled = append(cancelled, rec)
		}
	}
	e.mu.Unlock()

	for _, rec := range cancelled {
		if st, ok := e.gateway.ConnectionState(rec.controllerConnectionID); ok {
			st.SetPendingRemoteRequestID("")
		}
		e.emitError(rec.controllerConnectionID, wire.ErrApproverDisconnected, "approver disconnected")
	}
}

// cancelHostSetupInvolving is step 5: cancel the connection's own
// outgoing host-setup request silently, and cancel every host-setup request
// targeting this connection with status "target-disconnected".
func (e *Engine) cancelHostSetupInvolving(conn *transport.Connection) {
	connectionID := conn.ID()

	e.mu.Lock()
	var ownRequestCancelled bool
	if reqID, ok := e.pendingSetupByRequester[connectionID]; ok {
		rec := e.pendingSetups[reqID]
		rec.timer.Stop()
		delete(e.pendingSetups, reqID)
		delete(e.pendingSetupByRequester, connectionID)
		ownRequestCancelled = true
	}

	var targeting []*pendingSetupRecord
	for reqID, rec := range e.pendingSetups {
		if rec.targetConnectionID == connectionID {
			rec.timer.Stop()
			delete(e.pendingSetups, reqID)
			if e.pendingSetupByRequester[rec.requesterConnectionID] == reqID {
				delete(e.pendingSetupByRequester, rec.requesterConnectionID)
			}
			targeting = append(targeting, rec)
		}
	}
	e.mu.Unlock()

	if ownRequestCancelled {
		conn.State.SetPendingHostSetupRequestID("")
	}
	if len(targeting) > 0 {
		conn.State.SetIncomingHostSetupRequestID("")
	}

	for _, rec := range targeting {
		if st, ok := e.gateway.ConnectionState(rec.requesterConnectionID); ok {
			st.SetPendingHostSetupRequestID("")
		}
		e.gateway.EmitToConnection(rec.requesterConnectionID, wire.EventRemoteHostSetupResult, wire.RemoteHostSetupResultPayload{
			RequestID: "",
			Status:    "target-disconnected",
		})
	}
}

// releaseControllerSession is step 6: end any session where this connection
// is the controller.
func (e *Engine) releaseControllerSession(conn *transport.Connection) {
	sessionID, ok := e.findControllerSessionLocked(conn.ID())
	if !ok {
		return
	}
	e.endSession(sessionID, "controller-disconnected")
}
