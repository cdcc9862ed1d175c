package roomengine

import (
	"strings"
	"sync"

	"k8s.io/utils/set"

	"github.com/nimbusrelay/signalcore/internal/metrics"
	"github.com/nimbusrelay/signalcore/internal/sanitize"
	"github.com/nimbusrelay/signalcore/internal/transport"
	"github.com/nimbusrelay/signalcore/internal/wire"
)

// Engine owns every room in the process. Exactly one instance is
// constructed by cmd/signalcore and shared by the dispatch package.
type Engine struct {
	mu    sync.Mutex
	rooms map[string]*room

	gateway    *transport.Gateway
	autoCreate bool
}

// New constructs a Room Engine bound to a Gateway for transport-level
// membership and emits. autoCreate mirrors ROOM_AUTO_CREATE_ON_JOIN.
func New(gateway *transport.Gateway, autoCreate bool) *Engine {
	return &Engine{
		rooms:      make(map[string]*room),
		gateway:    gateway,
		autoCreate: autoCreate,
	}
}

// CreateRoom handles `create-room` (spec.md §4.3).
func (e *Engine) CreateRoom(conn *transport.Connection) {
	id := newRoomID()

	e.mu.Lock()
	e.rooms[id] = newRoom(id)
	e.mu.Unlock()

	e.gateway.JoinRoom(id, conn)
	conn.State.SetRoomAndPeer(id, conn.State.PeerID())

	metrics.ActiveRooms.Inc()
	conn.Emit(wire.EventRoomCreated, wire.RoomCreatedPayload{RoomID: id})
}

// JoinedRoom handles `joined-room {roomId, peerId}`.
func (e *Engine) JoinedRoom(conn *transport.Connection, payload wire.JoinedRoomPayload) {
	roomID := strings.TrimSpace(payload.RoomID)
	if roomID == "" {
		return
	}
	peerID := strings.TrimSpace(payload.PeerID)

	e.mu.Lock()
	r, ok := e.rooms[roomID]
	if !ok {
		if !e.autoCreate || !sanitize.IsUUIDLike(roomID) {
			e.mu.Unlock()
			conn.Emit(wire.EventRoomNotFound, wire.RoomNotFoundPayload{RoomID: roomID})
			return
		}
		r = newRoom(roomID)
		e.rooms[roomID] = r
		metrics.ActiveRooms.Inc()
	}
	e.mu.Unlock()

	e.gateway.JoinRoom(roomID, conn)
	e.prune(r)

	prevRoomID, prevPeerID := conn.State.RoomID(), conn.State.PeerID()
	if prevRoomID != "" && prevPeerID != "" && prevRoomID != roomID {
		e.removePeerFromRoom(prevRoomID, prevPeerID, conn.ID())
		e.gateway.LeaveRoom(prevRoomID, conn)
	}

	e.mu.Lock()
	if existingConnID, exists := r.peerToConnection[peerID]; exists && existingConnID != conn.ID() {
		delete(r.peerToConnection, peerID)
		delete(r.connectionToPeer, existingConnID)
		r.participants = removeString(r.participants, peerID)
		e.mu.Unlock()

		e.gateway.EmitToRoom(roomID, wire.EventUserLeft, wire.UserLeftPayload{PeerID: peerID}, "")
		e.gateway.LeaveRoomByID(roomID, existingConnID)
		e.mu.Lock()
	}

	if !containsString(r.participants, peerID) {
		r.participants = append(r.participants, peerID)
	}
	r.peerToConnection[peerID] = conn.ID()
	r.connectionToPeer[conn.ID()] = peerID
	participants := append([]string(nil), r.participants...)
	e.mu.Unlock()

	conn.State.SetRoomAndPeer(roomID, peerID)
	metrics.RoomParticipants.WithLabelValues(roomID).Set(float64(len(participants)))

	conn.Emit(wire.EventGetUsers, wire.GetUsersPayload{RoomID: roomID, Participants: participants})
}

// Ready handles `ready`: fan out user-joined once the connection is
// consistent with room state.
func (e *Engine) Ready(conn *transport.Connection) {
	roomID, peerID := conn.State.RoomID(), conn.State.PeerID()
	if roomID == "" || peerID == "" {
		return
	}

	e.mu.Lock()
	r, ok := e.rooms[roomID]
	e.mu.Unlock()
	if !ok {
		return
	}
	e.prune(r)
	e.mu.Lock()
	consistent := r.connectionToPeer[conn.ID()] == peerID
	e.mu.Unlock()

	if !consistent {
		return
	}

	e.gateway.EmitToRoom(roomID, wire.EventUserJoined, wire.UserJoinedPayload{PeerID: peerID}, conn.ID())
}

// LeaveRoom handles `leave-room` and the Room Engine portion of connection
// teardown (spec.md §4.4 Connection teardown, step 7).
func (e *Engine) LeaveRoom(conn *transport.Connection) {
	roomID, peerID := conn.State.RoomID(), conn.State.PeerID()
	if roomID == "" {
		return
	}

	if peerID != "" {
		e.removePeerFromRoom(roomID, peerID, conn.ID())
		e.gateway.EmitToRoom(roomID, wire.EventUserLeft, wire.UserLeftPayload{PeerID: peerID}, conn.ID())
	}
	e.gateway.LeaveRoom(roomID, conn)
	conn.State.ClearRoomAndPeer()

	e.mu.Lock()
	r, ok := e.rooms[roomID]
	e.mu.Unlock()
	if ok {
		e.prune(r)
	}
}

func (e *Engine) removePeerFromRoom(roomID, peerID, connectionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.rooms[roomID]
	if !ok {
		return
	}
	if r.peerToConnection[peerID] != connectionID {
		return
	}
	delete(r.peerToConnection, peerID)
	delete(r.connectionToPeer, connectionID)
	r.participants = removeString(r.participants, peerID)
}

// prune repairs the peer<->connection bijection after transport races and
// deletes the room if it is now empty at both the engine and transport
// level (spec.md §4.3 Pruning pass). Caller must not hold e.mu.
func (e *Engine) prune(r *room) {
	e.mu.Lock()
	for peerID, connID := range r.peerToConnection {
		if !e.gateway.IsLive(connID) || r.connectionToPeer[connID] != peerID {
			delete(r.peerToConnection, peerID)
		}
	}
	for connID, peerID := range r.connectionToPeer {
		if r.peerToConnection[peerID] != connID {
			delete(r.connectionToPeer, connID)
		}
	}

	live := set.New[string]()
	for peerID := range r.peerToConnection {
		live.Insert(peerID)
	}
	rebuilt := make([]string, 0, len(r.participants))
	for _, p := range r.participants {
		if live.Has(p) {
			rebuilt = append(rebuilt, p)
		}
	}
	r.participants = rebuilt
	metrics.RoomParticipants.WithLabelValues(r.id).Set(float64(len(rebuilt)))

	empty := len(r.participants) == 0
	roomID := r.id
	e.mu.Unlock()

	if empty && e.gateway.RoomSocketCount(roomID) == 0 {
		e.mu.Lock()
		delete(e.rooms, roomID)
		e.mu.Unlock()
		metrics.ActiveRooms.Dec()
		metrics.RoomParticipants.DeleteLabelValues(roomID)
	}
}

// Participants returns the current participant peer ids for a room, in
// join order. Used by the Remote-Control Engine's host-setup handshake to
// enumerate delegation targets (spec.md §4.4).
func (e *Engine) Participants(roomID string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.rooms[roomID]
	if !ok {
		return nil
	}
	return append([]string(nil), r.participants...)
}

// PeerConnectionID resolves a peer id to its live connection id within a
// room.
func (e *Engine) PeerConnectionID(roomID, peerID string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.rooms[roomID]
	if !ok {
		return "", false
	}
	connID, ok := r.peerToConnection[peerID]
	return connID, ok
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func removeString(ss []string, s string) []string {
	out := ss[:0]
	for _, v := range ss {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
