// Package roomengine implements the Room Engine (spec.md §4.3): room
// membership, the peer↔connection bijection, and the pruning pass that
// repairs that bijection after transport-layer races. It is grounded on the
// teacher's Room (internal/v1/room/room.go), generalized from a
// single-owner video-conference room with chat/draw-order bookkeeping to a
// bare membership registry keyed only by peer id. It has no reverse
// dependency on remotectl, per spec.md §2.
package roomengine

import "github.com/google/uuid"

// room is one in-memory room record (spec.md §3 Room).
type room struct {
	id               string
	participants     []string          // ordered, deduplicated join order
	peerToConnection map[string]string // peerId -> connectionId
	connectionToPeer map[string]string // connectionId -> peerId
}

func newRoom(id string) *room {
	return &room{
		id:               id,
		peerToConnection: make(map[string]string),
		connectionToPeer: make(map[string]string),
	}
}

func newRoomID() string { return uuid.NewString() }
