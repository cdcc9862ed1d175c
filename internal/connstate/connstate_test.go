package connstate

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaults(t *testing.T) {
	s := New("conn-1", "203.0.113.5")
	assert.Equal(t, "conn-1", s.ID())
	assert.Equal(t, "203.0.113.5", s.NetworkID())
	assert.Equal(t, "", s.RoomID())
	assert.Equal(t, "", s.PeerID())
	assert.False(t, s.ConnectedAt().IsZero())
}

func TestSetRoomAndPeer(t *testing.T) {
	s := New("conn-1", "")
	s.SetRoomAndPeer("room-1", "peer-1")
	assert.Equal(t, "room-1", s.RoomID())
	assert.Equal(t, "peer-1", s.PeerID())

	s.ClearRoomAndPeer()
	assert.Equal(t, "", s.RoomID())
	assert.Equal(t, "", s.PeerID())
}

func TestGettersSetters(t *testing.T) {
	s := New("conn-1", "")

	s.SetRemoteHostID("host-1")
	assert.Equal(t, "host-1", s.RemoteHostID())

	s.SetControllerSessionID("sess-1")
	assert.Equal(t, "sess-1", s.ControllerSessionID())

	s.SetHostSessionID("sess-2")
	assert.Equal(t, "sess-2", s.HostSessionID())

	s.SetPendingRemoteRequestID("req-1")
	assert.Equal(t, "req-1", s.PendingRemoteRequestID())

	s.SetPendingHostSetupRequestID("setup-1")
	assert.Equal(t, "setup-1", s.PendingHostSetupRequestID())

	s.SetIncomingHostSetupRequestID("incoming-1")
	assert.Equal(t, "incoming-1", s.IncomingHostSetupRequestID())
}

func TestConcurrentAccess(t *testing.T) {
	s := New("conn-1", "")
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.SetRoomAndPeer("room", "peer")
		}()
		go func() {
			defer wg.Done()
			_ = s.RoomID()
		}()
	}
	wg.Wait()
}
