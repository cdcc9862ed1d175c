package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	assert.Equal(t, "hello", String("  hello  ", 0))
	assert.Equal(t, "", String(42, 0))
	assert.Equal(t, "abcde", String("abcdefgh", 5))
}

func TestIsUUIDLike(t *testing.T) {
	assert.True(t, IsUUIDLike("550E8400-E29B-41D4-A716-446655440000"))
	assert.True(t, IsUUIDLike("550e8400-e29b-41d4-a716-446655440000"))
	assert.False(t, IsUUIDLike("not-a-uuid"))
	assert.False(t, IsUUIDLike(123))
}

func TestBuildSuggestedHostID(t *testing.T) {
	assert.Equal(t, "host-p2", BuildSuggestedHostID("p2"))
	assert.Equal(t, "host-abc123", BuildSuggestedHostID("abc!123"))

	got := BuildSuggestedHostID("!!!")
	require.True(t, strings.HasPrefix(got, "host-"))
	assert.Len(t, strings.TrimPrefix(got, "host-"), 8)
}

func TestRemoteEventFromMap_Pointer(t *testing.T) {
	ev, ok := RemoteEventFromMap(map[string]any{"type": "move", "x": 1.5, "y": -0.5})
	require.True(t, ok)
	assert.Equal(t, 1.0, ev.X)
	assert.Equal(t, 0.0, ev.Y)

	ev, ok = RemoteEventFromMap(map[string]any{"type": "click", "x": 0.5, "y": 0.5})
	require.True(t, ok)
	assert.Equal(t, "left", ev.Button)

	ev, ok = RemoteEventFromMap(map[string]any{"type": "click", "x": 0.5, "y": 0.5, "button": "right"})
	require.True(t, ok)
	assert.Equal(t, "right", ev.Button)

	ev, ok = RemoteEventFromMap(map[string]any{"type": "wheel", "x": 0.1, "y": 0.1})
	require.True(t, ok)
	assert.Equal(t, 0.0, ev.DeltaX)
}

func TestRemoteEventFromMap_Key(t *testing.T) {
	ev, ok := RemoteEventFromMap(map[string]any{"type": "key-down", "key": "a", "repeat": true})
	require.True(t, ok)
	assert.Equal(t, "a", ev.Key)
	assert.True(t, ev.Repeat)

	_, ok = RemoteEventFromMap(map[string]any{"type": "key-down"})
	assert.False(t, ok, "key event with neither key nor code must be rejected")
}

func TestRemoteEventFromMap_UnknownType(t *testing.T) {
	_, ok := RemoteEventFromMap(map[string]any{"type": "drag"})
	assert.False(t, ok)
}

func TestIsLikelyPrivateOrLocal(t *testing.T) {
	assert.True(t, IsLikelyPrivateOrLocal(LoopbackLocal))
	assert.True(t, IsLikelyPrivateOrLocal("10.0.0.5"))
	assert.True(t, IsLikelyPrivateOrLocal("192.168.1.1"))
	assert.True(t, IsLikelyPrivateOrLocal("169.254.1.1"))
	assert.True(t, IsLikelyPrivateOrLocal("172.16.0.1"))
	assert.True(t, IsLikelyPrivateOrLocal("172.31.255.255"))
	assert.False(t, IsLikelyPrivateOrLocal("172.32.0.1"))
	assert.True(t, IsLikelyPrivateOrLocal("fd12:3456::1"))
	assert.True(t, IsLikelyPrivateOrLocal("::ffff:10.0.0.5"))
	assert.False(t, IsLikelyPrivateOrLocal("8.8.8.8"))
}

func TestNetworkID(t *testing.T) {
	assert.Equal(t, LoopbackLocal, NetworkID("", "127.0.0.1:5000"))
	assert.Equal(t, LoopbackLocal, NetworkID("127.0.0.1, 10.0.0.1", ""))
	assert.Equal(t, "203.0.113.5", NetworkID("203.0.113.5, 10.0.0.1", ""))
	assert.Equal(t, "203.0.113.5", NetworkID("", "203.0.113.5:443"))
}
