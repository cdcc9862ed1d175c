package remotectl

import (
	"time"

	"github.com/nimbusrelay/signalcore/internal/metrics"
	"github.com/nimbusrelay/signalcore/internal/sanitize"
	"github.com/nimbusrelay/signalcore/internal/transport"
	"github.com/nimbusrelay/signalcore/internal/wire"
)

// RegisterHost handles `remote-host-register {hostId}` (spec.md §4.4 Host
// registration).
func (e *Engine) RegisterHost(conn *transport.Connection, hostID string) {
	hostID = sanitize.HostID(hostID)
	if hostID == "" {
		return
	}

	e.mu.Lock()
	if existing, ok := e.hosts[hostID]; ok && e.gateway.IsLive(existing.connectionID) && existing.connectionID != conn.ID() {
		e.mu.Unlock()
		metrics.ClaimOutcomes.WithLabelValues("host-id-in-use").Inc()
		e.emitError(conn.ID(), wire.ErrHostIDInUse, "that host id is already in use")
		return
	}

	e.hosts[hostID] = &hostRecord{connectionID: conn.ID(), networkID: conn.State.NetworkID()}

	var autoAssignment *assignmentRecord
	if a, ok := e.assignments[hostID]; ok {
		autoAssignment = a
	}
	e.mu.Unlock()

	conn.State.SetRemoteHostID(hostID)

	metrics.RegisteredHosts.Inc()

	if autoAssignment != nil && e.gateway.IsLive(autoAssignment.targetConnectionID) && e.gateway.IsInRoom(autoAssignment.roomID, autoAssignment.targetConnectionID) {
		e.autoClaim(hostID, autoAssignment.targetConnectionID, autoAssignment.roomID)
	}

	conn.Emit(wire.EventRemoteHostRegistered, wire.RemoteHostRegisteredPayload{HostID: hostID})
	e.broadcastHostsList()
}

// autoClaim creates a claim on targetConnectionID's behalf and clears the
// matching assignment, per spec.md §4.4 Host registration / Host-setup
// handshake "accepted" branch.
func (e *Engine) autoClaim(hostID, targetConnectionID, roomID string) {
	e.mu.Lock()
	e.claims[hostID] = &claimRecord{connectionID: targetConnectionID, roomID: roomID}
	if a, ok := e.assignments[hostID]; ok {
		a.timer.Stop()
		delete(e.assignments, hostID)
	}
	e.mu.Unlock()

	e.gateway.EmitToConnection(targetConnectionID, wire.EventRemoteHostClaimed, wire.RemoteHostClaimedPayload{HostID: hostID, RoomID: roomID, Auto: true})
}

// RequestHostsList handles `remote-hosts-request`.
func (e *Engine) RequestHostsList(conn *transport.Connection) {
	conn.Emit(wire.EventRemoteHostsList, wire.RemoteHostsListPayload{Hosts: e.hostsListFor(conn.ID())})
}

// ClaimHost handles `remote-host-claim {hostId}` (spec.md §4.4 Claim
// arbitration).
func (e *Engine) ClaimHost(conn *transport.Connection, hostID string) {
	hostID = sanitize.HostID(hostID)
	roomID := conn.State.RoomID()
	if roomID == "" {
		e.emitError(conn.ID(), wire.ErrRoomRequired, "join a room before claiming a host")
		return
	}

	e.mu.Lock()

	if a, ok := e.assignments[hostID]; ok {
		if a.targetConnectionID != conn.ID() || a.roomID != roomID {
			e.mu.Unlock()
			e.emitError(conn.ID(), wire.ErrHostClaimAssignedOther, "this host is pre-assigned to another participant")
			return
		}
	}

	h, ok := e.hosts[hostID]
	if !ok || !e.gateway.IsLive(h.connectionID) {
		if ok {
			delete(e.hosts, hostID)
		}
		e.mu.Unlock()
		e.emitError(conn.ID(), wire.ErrHostOffline, "host agent is not online")
		return
	}

	claimerNetwork := conn.State.NetworkID()
	if claimerNetwork != "" && h.networkID != "" && claimerNetwork != h.networkID {
		e.mu.Unlock()
		e.emitError(conn.ID(), wire.ErrHostClaimOwnerMismatch, "claimant network origin does not match the host agent")
		return
	}

	if existing, ok := e.claims[hostID]; ok && existing.connectionID != conn.ID() && e.gateway.IsLive(existing.connectionID) && e.gateway.IsInRoom(existing.roomID, existing.connectionID) {
		e.mu.Unlock()
		e.emitError(conn.ID(), wire.ErrHostClaimedByOther, "another participant already claimed this host")
		return
	}

	e.claims[hostID] = &claimRecord{connectionID: conn.ID(), roomID: roomID}
	if a, ok := e.assignments[hostID]; ok {
		a.timer.Stop()
		delete(e.assignments, hostID)
	}
	e.mu.Unlock()

	metrics.ClaimOutcomes.WithLabelValues("claimed").Inc()
	conn.Emit(wire.EventRemoteHostClaimed, wire.RemoteHostClaimedPayload{HostID: hostID, RoomID: roomID})
	e.broadcastHostsList()
}

// RequestHostSetup handles `remote-host-setup-request {targetPeerId?}`
// (spec.md §4.4 Host-setup handshake).
func (e *Engine) RequestHostSetup(conn *transport.Connection, targetPeerID string) {
	roomID, requesterPeerID := conn.State.RoomID(), conn.State.PeerID()
	if roomID == "" {
		e.emitError(conn.ID(), wire.ErrRoomRequired, "join a room before requesting host setup")
		return
	}

	e.mu.Lock()
	if _, exists := e.pendingSetupByRequester[conn.ID()]; exists {
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	others := make([]string, 0)
	for _, p := range e.rooms.Participants(roomID) {
		if p != requesterPeerID {
			others = append(others, p)
		}
	}

	var targetPeer string
	switch {
	case len(others) == 0:
		e.emitError(conn.ID(), wire.ErrParticipantNotFound, "no other participant in this room")
		return
	case targetPeerID == "" && len(others) > 1:
		e.emitError(conn.ID(), wire.ErrParticipantRequired, "specify which participant to delegate to")
		return
	case targetPeerID == "":
		targetPeer = others[0]
	default:
		found := false
		for _, p := range others {
			if p == targetPeerID {
				found = true
				break
			}
		}
		if !found {
			e.emitError(conn.ID(), wire.ErrParticipantNotFound, "target participant not found in room")
			return
		}
		targetPeer = targetPeerID
	}

	targetConnID, ok := e.rooms.PeerConnectionID(roomID, targetPeer)
	if !ok {
		e.emitError(conn.ID(), wire.ErrParticipantNotFound, "target participant not found in room")
		return
	}

	suggestedHostID := sanitize.BuildSuggestedHostID(targetPeer)
	requestID := newID()

	rec := &pendingSetupRecord{
		requesterConnectionID: conn.ID(),
		requesterPeerID:       requesterPeerID,
		targetConnectionID:    targetConnID,
		targetPeerID:          targetPeer,
		roomID:                roomID,
		suggestedHostID:       suggestedHostID,
	}
	rec.timer = time.AfterFunc(pendingSetupTTL, func() { e.expirePendingSetup(requestID) })

	e.mu.Lock()
	e.pendingSetups[requestID] = rec
	e.pendingSetupByRequester[conn.ID()] = requestID
	e.mu.Unlock()

	conn.State.SetPendingHostSetupRequestID(requestID)
	if st, ok := e.gateway.ConnectionState(targetConnID); ok {
		st.SetIncomingHostSetupRequestID(requestID)
	}

	conn.Emit(wire.EventRemoteHostSetupPending, wire.RemoteHostSetupPendingPayload{RequestID: requestID, SuggestedHostID: suggestedHostID})
	e.gateway.EmitToConnection(targetConnID, wire.EventRemoteHostSetupRequested, wire.RemoteHostSetupRequestedPayload{
		RequestID:       requestID,
		RequesterPeerID: requesterPeerID,
		SuggestedHostID: suggestedHostID,
	})
}

func (e *Engine) expirePendingSetup(requestID string) {
	e.mu.Lock()
	rec, ok := e.pendingSetups[requestID]
	if !ok {
		e.mu.Unlock()
		return
	}
	delete(e.pendingSetups, requestID)
	if e.pendingSetupByRequester[rec.requesterConnectionID] == requestID {
		delete(e.pendingSetupByRequester, rec.requesterConnectionID)
	}
	e.mu.Unlock()

	if st, ok := e.gateway.ConnectionState(rec.requesterConnectionID); ok {
		st.SetPendingHostSetupRequestID("")
	}
	if st, ok := e.gateway.ConnectionState(rec.targetConnectionID); ok {
		st.SetIncomingHostSetupRequestID("")
	}

	e.gateway.EmitToConnection(rec.requesterConnectionID, wire.EventRemoteHostSetupResult, wire.RemoteHostSetupResultPayload{RequestID: requestID, Status: "timeout"})
}

// DecideHostSetup handles `remote-host-setup-decision {requestId, accepted}`.
func (e *Engine) DecideHostSetup(conn *transport.Connection, requestID string, accepted bool) {
	e.mu.Lock()
	rec, ok := e.pendingSetups[requestID]
	if !ok || rec.targetConnectionID != conn.ID() {
		e.mu.Unlock()
		return
	}
	rec.timer.Stop()
	delete(e.pendingSetups, requestID)
	if e.pendingSetupByRequester[rec.requesterConnectionID] == requestID {
		delete(e.pendingSetupByRequester, rec.requesterConnectionID)
	}
	e.mu.Unlock()

	conn.State.SetIncomingHostSetupRequestID("")
	if st, ok := e.gateway.ConnectionState(rec.requesterConnectionID); ok {
		st.SetPendingHostSetupRequestID("")
	}

	if !accepted {
		e.gateway.EmitToConnection(rec.requesterConnectionID, wire.EventRemoteHostSetupResult, wire.RemoteHostSetupResultPayload{RequestID: requestID, Status: "rejected"})
		return
	}

	assignment := &assignmentRecord{targetConnectionID: rec.targetConnectionID, roomID: rec.roomID}
	assignment.timer = time.AfterFunc(setupAssignmentTTL, func() { e.expireAssignment(rec.suggestedHostID) })

	e.mu.Lock()
	e.assignments[rec.suggestedHostID] = assignment
	var autoClaimed bool
	if h, ok := e.hosts[rec.suggestedHostID]; ok && e.gateway.IsLive(h.connectionID) {
		autoClaimed = true
	}
	e.mu.Unlock()

	if autoClaimed {
		e.autoClaim(rec.suggestedHostID, rec.targetConnectionID, rec.roomID)
	}

	e.gateway.EmitToConnection(rec.requesterConnectionID, wire.EventRemoteHostSetupResult, wire.RemoteHostSetupResultPayload{RequestID: requestID, Status: "accepted"})
	if autoClaimed {
		e.broadcastHostsList()
	}
}

func (e *Engine) expireAssignment(hostID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.assignments, hostID)
}
