package remotectl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusrelay/signalcore/internal/transport"
)

func TestHandleDisconnectReleasesOwnedHost(t *testing.T) {
	e, gw, _ := newTestEngine()
	host := transport.NewTestConnection(gw, "host-conn", "")
	e.RegisterHost(host, "host-1")

	e.HandleDisconnect(host)

	_, exists := e.hosts["host-1"]
	assert.False(t, exists)
}

func TestHandleDisconnectEndsActiveSession(t *testing.T) {
	e, gw, _ := newTestEngine()
	host, claimer, hostID := setUpClaimedHost(t, e, gw)
	controller := transport.NewTestConnection(gw, "controller", "")
	controller.State.SetRoomAndPeer(claimer.State.RoomID(), "peer-2")
	e.RequestSession(controller, hostID)
	var requestID string
	for id := range e.pendingRequests {
		requestID = id
	}
	e.DecideSession(claimer, requestID, true, "")
	require.Len(t, e.sessions, 1)

	e.HandleDisconnect(host)

	assert.Len(t, e.sessions, 0)
}

func TestHandleDisconnectCancelsOutgoingRequest(t *testing.T) {
	e, gw, _ := newTestEngine()
	_, claimer, hostID := setUpClaimedHost(t, e, gw)
	controller := transport.NewTestConnection(gw, "controller", "")
	controller.State.SetRoomAndPeer(claimer.State.RoomID(), "peer-2")
	e.RequestSession(controller, hostID)
	require.Len(t, e.pendingRequests, 1)

	e.HandleDisconnect(controller)

	assert.Len(t, e.pendingRequests, 0)
}

func TestHandleDisconnectClearsClaims(t *testing.T) {
	e, gw, _ := newTestEngine()
	_, claimer, hostID := setUpClaimedHost(t, e, gw)
	require.Contains(t, e.claims, hostID)

	e.HandleDisconnect(claimer)

	_, claimed := e.claims[hostID]
	assert.False(t, claimed)
}

func TestLeaveRoomPartialTeardownOnlyClearsClaimsAndSetups(t *testing.T) {
	e, gw, _ := newTestEngine()
	_, claimer, hostID := setUpClaimedHost(t, e, gw)
	require.Contains(t, e.claims, hostID)

	e.LeaveRoomPartialTeardown(claimer)

	_, claimed := e.claims[hostID]
	assert.False(t, claimed)
}
