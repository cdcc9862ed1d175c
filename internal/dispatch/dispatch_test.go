package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusrelay/signalcore/internal/remotectl"
	"github.com/nimbusrelay/signalcore/internal/roomengine"
	"github.com/nimbusrelay/signalcore/internal/transport"
	"github.com/nimbusrelay/signalcore/internal/wire"
)

func newTestDispatcher() (*Dispatcher, *transport.Gateway, *roomengine.Engine, *remotectl.Engine) {
	gw := transport.New("", nil, nil)
	rooms := roomengine.New(gw, true)
	remote := remotectl.New(gw, rooms, false)
	return New(rooms, remote), gw, rooms, remote
}

func TestRouteCreateRoom(t *testing.T) {
	d, gw, _, _ := newTestDispatcher()
	conn := transport.NewTestConnection(gw, "c1", "")

	d.Route(conn, wire.Envelope{Event: wire.EventCreateRoom})

	assert.NotEmpty(t, conn.State.RoomID())
}

func TestRouteJoinedRoom(t *testing.T) {
	d, gw, _, _ := newTestDispatcher()
	creator := transport.NewTestConnection(gw, "creator", "")
	d.Route(creator, wire.Envelope{Event: wire.EventCreateRoom})
	roomID := creator.State.RoomID()

	joiner := transport.NewTestConnection(gw, "joiner", "")
	env := wire.Encode(wire.EventJoinedRoom, wire.JoinedRoomPayload{RoomID: roomID, PeerID: "p1"})
	d.Route(joiner, env)

	assert.Equal(t, roomID, joiner.State.RoomID())
	assert.Equal(t, "p1", joiner.State.PeerID())
}

func TestRouteMalformedPayloadDropped(t *testing.T) {
	d, gw, _, _ := newTestDispatcher()
	conn := transport.NewTestConnection(gw, "c1", "")

	d.Route(conn, wire.Envelope{Event: wire.EventJoinedRoom, Payload: []byte("not json")})

	assert.Empty(t, conn.State.RoomID())
}

func TestRouteUnknownEvent(t *testing.T) {
	d, gw, _, _ := newTestDispatcher()
	conn := transport.NewTestConnection(gw, "c1", "")

	assert.NotPanics(t, func() {
		d.Route(conn, wire.Envelope{Event: "not-a-real-event"})
	})
}

func TestRouteRemoteHostRegisterAndClaim(t *testing.T) {
	d, gw, rooms, remote := newTestDispatcher()
	host := transport.NewTestConnection(gw, "host-conn", "")
	d.Route(host, wire.Encode(wire.EventRemoteHostRegister, wire.RemoteHostRegisterPayload{HostID: "host-1"}))

	claimer := transport.NewTestConnection(gw, "claimer", "")
	rooms.CreateRoom(claimer)
	claimer.State.SetRoomAndPeer(claimer.State.RoomID(), "peer-1")
	d.Route(claimer, wire.Encode(wire.EventRemoteHostClaim, wire.RemoteHostClaimPayload{HostID: "host-1"}))

	_ = remote
	require.NotNil(t, remote)
}

func TestHandleDisconnectRunsBothEngines(t *testing.T) {
	d, gw, rooms, _ := newTestDispatcher()
	conn := transport.NewTestConnection(gw, "c1", "")
	rooms.CreateRoom(conn)
	roomID := conn.State.RoomID()
	conn.State.SetRoomAndPeer(roomID, "p1")

	d.HandleDisconnect(conn)

	assert.Empty(t, conn.State.RoomID())
}
