package transport

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nimbusrelay/signalcore/internal/connstate"
	"github.com/nimbusrelay/signalcore/internal/logging"
	"github.com/nimbusrelay/signalcore/internal/metrics"
	"github.com/nimbusrelay/signalcore/internal/wire"

	"go.uber.org/zap"
)

// wsConnection is the subset of *websocket.Conn the Connection depends on,
// mirroring the teacher's transport.wsConnection seam for fakes in tests.
type wsConnection interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
}

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 64
)

// Connection is one live client socket plus the engine-owned scratch state
// attached to it (connstate.State). It owns the read/write goroutine pair,
// mirroring the teacher's Client readPump/writePump split in
// internal/v1/transport/client.go, generalized from binary protobuf framing
// to JSON envelopes.
type Connection struct {
	id      string
	conn    wsConnection
	gateway *Gateway
	State   *connstate.State

	send chan wire.Envelope

	closeOnce sync.Once
}

func newConnection(id, networkID string, conn wsConnection, gw *Gateway) *Connection {
	return &Connection{
		id:      id,
		conn:    conn,
		gateway: gw,
		State:   connstate.New(id, networkID),
		send:    make(chan wire.Envelope, sendBufferSize),
	}
}

func (c *Connection) ID() string { return c.id }

// Emit enqueues an outbound envelope. A full send buffer drops the message
// and logs a warning rather than blocking the caller — the Room/Remote
// engines must never stall on a slow reader.
func (c *Connection) Emit(event string, payload any) {
	env := wire.Encode(event, payload)
	select {
	case c.send <- env:
		metrics.OutboundEvents.WithLabelValues(event, "sent").Inc()
	default:
		metrics.OutboundEvents.WithLabelValues(event, "dropped").Inc()
		logging.Warn(nil, "dropping outbound event, send buffer full", zap.String("connectionId", c.id), zap.String("event", event))
	}
}

func (c *Connection) readPump(maxPayloadBytes int64) {
	defer func() {
		c.gateway.handleDisconnect(c)
		c.conn.Close()
		metrics.DecConnection()
	}()

	c.conn.SetReadLimit(maxPayloadBytes)

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var env wire.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			logging.Warn(nil, "dropping malformed envelope", zap.String("connectionId", c.id), zap.Error(err))
			continue
		}

		if c.gateway.limiter != nil && !c.gateway.limiter.AllowEvent(context.Background(), c.id) {
			continue
		}

		c.gateway.router.Route(c, env)
	}
}

func (c *Connection) writePump() {
	defer c.conn.Close()

	for env := range c.send {
		data, err := json.Marshal(env)
		if err != nil {
			continue
		}
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *Connection) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}
