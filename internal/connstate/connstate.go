// Package connstate defines the per-connection attached state owned by the
// engines (not by the transport), per spec.md §9 "Dynamic attached
// connection state". A State is created once per live connection and
// mutated by whichever engine handles an event on it; every field access
// goes through a thread-safe getter/setter, mirroring the teacher's
// transport.Client Role field pattern (internal/v1/transport/client.go).
package connstate

import (
	"sync"
	"time"
)

// State is the mutable scratch space attached to one live connection.
type State struct {
	mu sync.RWMutex

	id          string
	connectedAt time.Time
	networkID   string

	roomID string
	peerID string

	remoteHostID               string
	controllerSessionID        string
	hostSessionID              string
	pendingRemoteRequestID     string
	pendingHostSetupRequestID  string
	incomingHostSetupRequestID string
}

// New creates connection-attached state for a freshly admitted connection.
func New(id, networkID string) *State {
	return &State{id: id, connectedAt: time.Now(), networkID: networkID}
}

func (s *State) ID() string { return s.id }

func (s *State) ConnectedAt() time.Time { return s.connectedAt }

func (s *State) NetworkID() string { return s.networkID }

func (s *State) RoomID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roomID
}

func (s *State) PeerID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.peerID
}

// SetRoomAndPeer stashes {roomId, peerId} together, as spec.md §4.3 requires
// for joined-room.
func (s *State) SetRoomAndPeer(roomID, peerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomID = roomID
	s.peerID = peerID
}

// ClearRoomAndPeer resets room membership, used by leave-room/disconnect.
func (s *State) ClearRoomAndPeer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomID = ""
	s.peerID = ""
}

func (s *State) RemoteHostID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.remoteHostID
}

func (s *State) SetRemoteHostID(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remoteHostID = v
}

func (s *State) ControllerSessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.controllerSessionID
}

func (s *State) SetControllerSessionID(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controllerSessionID = v
}

func (s *State) HostSessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hostSessionID
}

func (s *State) SetHostSessionID(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hostSessionID = v
}

func (s *State) PendingRemoteRequestID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pendingRemoteRequestID
}

func (s *State) SetPendingRemoteRequestID(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingRemoteRequestID = v
}

func (s *State) PendingHostSetupRequestID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pendingHostSetupRequestID
}

func (s *State) SetPendingHostSetupRequestID(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingHostSetupRequestID = v
}

func (s *State) IncomingHostSetupRequestID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.incomingHostSetupRequestID
}

func (s *State) SetIncomingHostSetupRequestID(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incomingHostSetupRequestID = v
}
