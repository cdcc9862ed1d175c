// Package transport is the Transport Gateway (spec.md §4.1): it owns live
// connections, transport-level room socket membership, and the three
// fanout primitives engines call into (emitToConnection, emitToRoom,
// broadcast). It knows nothing about rooms, hosts, or sessions — those
// concerns live in roomengine/remotectl and reach the Gateway only through
// the EventRouter it calls into and the Connection it hands back. This
// mirrors the teacher's Hub (internal/v1/transport/hub.go), generalized
// from a JWT-authenticated video room registry to a shared-token-gated
// signaling gateway with no room business logic of its own.
package transport

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nimbusrelay/signalcore/internal/connstate"
	"github.com/nimbusrelay/signalcore/internal/logging"
	"github.com/nimbusrelay/signalcore/internal/metrics"
	"github.com/nimbusrelay/signalcore/internal/ratelimit"
	"github.com/nimbusrelay/signalcore/internal/sanitize"
	"github.com/nimbusrelay/signalcore/internal/wire"

	"go.uber.org/zap"
)

// MaxPayloadBytes is the per-connection inbound payload cap (spec.md §4.1).
const MaxPayloadBytes = 8 * 1024 * 1024

// Gateway is the central coordinator for all live connections.
type Gateway struct {
	mu          sync.Mutex
	connections map[string]*Connection
	roomSockets map[string]map[string]bool
	roomOf      map[string]string // connectionId -> roomId, mirrors roomSockets for O(1) reverse lookup

	router  EventRouter
	limiter *ratelimit.Limiter

	token       string
	corsOrigins []string

	upgrader websocket.Upgrader
}

// New builds a Gateway. router is set separately via SetRouter since the
// dispatch package that implements EventRouter is constructed after the
// Gateway (it needs a reference to this Gateway to emit).
func New(token string, corsOrigins []string, limiter *ratelimit.Limiter) *Gateway {
	return &Gateway{
		connections: make(map[string]*Connection),
		roomSockets: make(map[string]map[string]bool),
		roomOf:      make(map[string]string),
		limiter:     limiter,
		token:       strings.TrimSpace(token),
		corsOrigins: corsOrigins,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true }, // CORS is enforced by gin-contrib/cors on the HTTP surface
		},
	}
}

// SetRouter wires the event router. Must be called once before ServeWS is
// exposed to traffic.
func (g *Gateway) SetRouter(router EventRouter) {
	g.router = router
}

// ServeWS is the gin handler for the WebSocket upgrade endpoint. Admission
// per spec.md §6: if a REMOTE_CONTROL_TOKEN is configured, the handshake's
// token query parameter must match exactly after trimming, evaluated before
// any connection state is attached.
func (g *Gateway) ServeWS(c *gin.Context) {
	if !g.admit(c) {
		return
	}

	networkID := sanitize.NetworkID(c.GetHeader("X-Forwarded-For"), c.Request.RemoteAddr)

	if g.limiter != nil && !g.limiter.AllowConnect(c.Request.Context(), networkID) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limited"})
		return
	}

	conn, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Warn(c.Request.Context(), "websocket upgrade failed", zap.Error(err))
		return
	}

	id := uuid.NewString()
	client := newConnection(id, networkID, conn, g)

	g.mu.Lock()
	g.connections[id] = client
	g.mu.Unlock()

	metrics.IncConnection()

	go client.writePump()
	client.readPump(MaxPayloadBytes)
}

func (g *Gateway) admit(c *gin.Context) bool {
	if g.token == "" {
		return true
	}
	supplied := strings.TrimSpace(c.Query("token"))
	if supplied != g.token {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return false
	}
	return true
}

func (g *Gateway) handleDisconnect(conn *Connection) {
	g.mu.Lock()
	delete(g.connections, conn.ID())
	for roomID, sockets := range g.roomSockets {
		delete(sockets, conn.ID())
		if len(sockets) == 0 {
			delete(g.roomSockets, roomID)
		}
	}
	delete(g.roomOf, conn.ID())
	g.mu.Unlock()

	conn.closeSend()

	if g.router != nil {
		g.router.HandleDisconnect(conn)
	}
}

// JoinRoom adds a connection to a transport-level room. Per spec.md §9,
// this must be treated as awaitable — callers must observe its effect
// before checking room emptiness; here it is synchronous under the
// Gateway's mutex, which is sufficient to satisfy that ordering.
func (g *Gateway) JoinRoom(roomID string, conn *Connection) {
	g.JoinRoomByID(roomID, conn.ID())
}

// JoinRoomByID is JoinRoom for callers that only hold a connection id.
func (g *Gateway) JoinRoomByID(roomID, connectionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	sockets, ok := g.roomSockets[roomID]
	if !ok {
		sockets = make(map[string]bool)
		g.roomSockets[roomID] = sockets
	}
	sockets[connectionID] = true
	g.roomOf[connectionID] = roomID
}

// LeaveRoom removes a connection from a transport-level room.
func (g *Gateway) LeaveRoom(roomID string, conn *Connection) {
	g.LeaveRoomByID(roomID, conn.ID())
}

// LeaveRoomByID is LeaveRoom for callers that only hold a connection id.
func (g *Gateway) LeaveRoomByID(roomID, connectionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	sockets, ok := g.roomSockets[roomID]
	if !ok {
		return
	}
	delete(sockets, connectionID)
	if len(sockets) == 0 {
		delete(g.roomSockets, roomID)
	}
	if g.roomOf[connectionID] == roomID {
		delete(g.roomOf, connectionID)
	}
}

// RoomOf reports the room a connection is currently transport-joined to, or
// "" if none.
func (g *Gateway) RoomOf(connectionID string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.roomOf[connectionID]
}

// RoomSocketCount reports how many live sockets are transport-joined to a
// room, used by the Room Engine's pruning pass (spec.md §4.3).
func (g *Gateway) RoomSocketCount(roomID string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.roomSockets[roomID])
}

// IsLive reports whether a connection id still has a live socket, used by
// every "is this connection still live" check in the Remote-Control Engine.
func (g *Gateway) IsLive(connectionID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.connections[connectionID]
	return ok
}

// ConnectionState looks up the attached state for a live connection by id,
// for engines that only hold a counterpart's connection id (not its
// *Connection) and need to stamp or clear one of its fields — e.g. binding
// controllerSessionId/hostSessionId on the other side of a session.
func (g *Gateway) ConnectionState(connectionID string) (*connstate.State, bool) {
	g.mu.Lock()
	conn, ok := g.connections[connectionID]
	g.mu.Unlock()
	if !ok {
		return nil, false
	}
	return conn.State, true
}

// IsInRoom reports whether a connection id is transport-joined to roomID,
// used by claim/session arbitration to confirm an approver or claim holder
// is still present in the room it was recorded against.
func (g *Gateway) IsInRoom(roomID, connectionID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.roomSockets[roomID][connectionID]
}

// EmitToConnection sends an event to exactly one connection, if still live.
func (g *Gateway) EmitToConnection(connectionID, event string, payload any) {
	g.mu.Lock()
	conn, ok := g.connections[connectionID]
	g.mu.Unlock()
	if !ok {
		return
	}
	conn.Emit(event, payload)
}

// EmitToRoom fans an event out to every transport-joined socket in a room,
// optionally skipping one connection.
func (g *Gateway) EmitToRoom(roomID, event string, payload any, exceptConnectionID string) {
	g.mu.Lock()
	sockets := g.roomSockets[roomID]
	targets := make([]*Connection, 0, len(sockets))
	for connID := range sockets {
		if connID == exceptConnectionID {
			continue
		}
		if conn, ok := g.connections[connID]; ok {
			targets = append(targets, conn)
		}
	}
	g.mu.Unlock()

	for _, conn := range targets {
		conn.Emit(event, payload)
	}
}

// Broadcast fans an event out to every live connection, used for the hosts
// list (spec.md §4.4 Host listing: each receives a personalized payload, so
// callers pass a per-connection payload builder instead of a static value).
func (g *Gateway) Broadcast(event string, payloadFor func(connectionID string) any) {
	g.mu.Lock()
	ids := make([]string, 0, len(g.connections))
	for id := range g.connections {
		ids = append(ids, id)
	}
	g.mu.Unlock()

	for _, id := range ids {
		g.EmitToConnection(id, event, payloadFor(id))
	}
}

// Envelope re-exports wire.Envelope for callers that only import transport.
type Envelope = wire.Envelope
