package remotectl

import (
	"sync"

	"github.com/google/uuid"

	"github.com/nimbusrelay/signalcore/internal/roomengine"
	"github.com/nimbusrelay/signalcore/internal/transport"
	"github.com/nimbusrelay/signalcore/internal/wire"
)

// Engine owns the host, claim, assignment, pending-request, pending-setup,
// and session registries. A single mutex guards all of them; cascade
// operations (disconnect, claim replacement) touch several registries at
// once and must not race each other, so per-registry locks are not worth
// the complexity spec.md §5 warns they introduce.
type Engine struct {
	mu sync.Mutex

	hosts                   map[string]*hostRecord
	claims                  map[string]*claimRecord
	assignments             map[string]*assignmentRecord
	pendingRequests         map[string]*pendingRequestRecord
	pendingByHost           map[string]string // hostId -> requestId
	pendingByController     map[string]string // controllerConnId -> requestId
	pendingSetups           map[string]*pendingSetupRecord
	pendingSetupByRequester map[string]string // requesterConnId -> requestId
	sessions                map[string]*sessionRecord

	gateway *transport.Gateway
	rooms   *roomengine.Engine

	allowSameMachine bool
}

// New constructs a Remote-Control Engine bound to a Gateway for emits and
// liveness/room-membership queries, and to the Room Engine for participant
// enumeration during the host-setup handshake. This is the one place the
// Remote-Control Engine depends on the Room Engine; the reverse dependency
// does not exist (spec.md §2).
func New(gateway *transport.Gateway, rooms *roomengine.Engine, allowSameMachineRemote bool) *Engine {
	return &Engine{
		hosts:                   make(map[string]*hostRecord),
		claims:                  make(map[string]*claimRecord),
		assignments:             make(map[string]*assignmentRecord),
		pendingRequests:         make(map[string]*pendingRequestRecord),
		pendingByHost:           make(map[string]string),
		pendingByController:    make(map[string]string),
		pendingSetups:           make(map[string]*pendingSetupRecord),
		pendingSetupByRequester: make(map[string]string),
		sessions:                make(map[string]*sessionRecord),
		gateway:                 gateway,
		rooms:                   rooms,
		allowSameMachine:        allowSameMachineRemote,
	}
}

func newID() string { return uuid.NewString() }

func (e *Engine) emitError(connectionID, code, message string) {
	e.gateway.EmitToConnection(connectionID, wire.EventRemoteSessionError, wire.RemoteSessionErrorPayload{Code: code, Message: message})
}

// broadcastHostsList fans the personalized hosts list out to every live
// connection (spec.md §4.4 Host listing). Must be called without e.mu held.
func (e *Engine) broadcastHostsList() {
	e.gateway.Broadcast(wire.EventRemoteHostsList, func(connectionID string) any {
		return wire.RemoteHostsListPayload{Hosts: e.hostsListFor(connectionID)}
	})
}

// hostsListFor computes the sorted, per-viewer host list (spec.md §4.4 Host
// listing), garbage-collecting stale claims it discovers along the way.
func (e *Engine) hostsListFor(viewerConnectionID string) []wire.HostListEntry {
	e.mu.Lock()
	type row struct {
		hostID string
		busy   bool
	}
	rows := make([]row, 0, len(e.hosts))
	for hostID, h := range e.hosts {
		rows = append(rows, row{hostID: hostID, busy: h.activeSessionID != ""})
	}

	viewerRoomID := e.gateway.RoomOf(viewerConnectionID)

	var staleClaims []string
	entries := make([]wire.HostListEntry, 0, len(rows))
	for _, r := range rows {
		ownership := "unclaimed"
		if c, ok := e.claims[r.hostID]; ok {
			if !e.gateway.IsLive(c.connectionID) || !e.gateway.IsInRoom(c.roomID, c.connectionID) {
				staleClaims = append(staleClaims, r.hostID)
			} else if c.connectionID == viewerConnectionID && c.roomID == viewerRoomID {
				ownership = "you"
			} else {
				ownership = "other"
			}
		}
		entries = append(entries, wire.HostListEntry{HostID: r.hostID, Busy: r.busy, Ownership: ownership})
	}
	for _, hostID := range staleClaims {
		delete(e.claims, hostID)
	}
	e.mu.Unlock()

	sortHostEntries(entries)
	return entries
}

func sortHostEntries(entries []wire.HostListEntry) {
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j-1].HostID > entries[j].HostID; j-- {
			entries[j-1], entries[j] = entries[j], entries[j-1]
		}
	}
}
