package transport

import "time"

// fakeSocket is a minimal in-memory wsConnection. ReadMessage blocks until
// Close is called, so it never feeds a real readPump loop garbage; tests
// that need inbound traffic call a package's Route/handler methods directly
// instead of driving them through readPump.
type fakeSocket struct {
	outbox chan []byte
	closed chan struct{}
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{outbox: make(chan []byte, 64), closed: make(chan struct{})}
}

func (f *fakeSocket) ReadMessage() (int, []byte, error) {
	<-f.closed
	return 0, nil, errSocketClosed
}

func (f *fakeSocket) WriteMessage(_ int, data []byte) error {
	select {
	case f.outbox <- data:
	default:
	}
	return nil
}

func (f *fakeSocket) Close() error {
	select {
	case <-f.closed:
	default:
		close(f.closed)
	}
	return nil
}

func (f *fakeSocket) SetWriteDeadline(time.Time) error { return nil }
func (f *fakeSocket) SetReadLimit(int64)                {}

type fakeSocketClosedError struct{}

func (fakeSocketClosedError) Error() string { return "fake socket closed" }

var errSocketClosed error = fakeSocketClosedError{}

// NewTestConnection builds a live Connection registered on gw, backed by an
// in-memory socket instead of a network one. It exists so roomengine,
// remotectl, and dispatch can unit test against a real *Connection (with a
// real connstate.State and a real outbound send channel) without a
// websocket round trip, in the style of net/http/httptest: a small real
// in-memory implementation behind the wsConnection seam rather than an
// interface mock of Connection itself.
func NewTestConnection(gw *Gateway, id, networkID string) *Connection {
	conn := newConnection(id, networkID, newFakeSocket(), gw)
	gw.mu.Lock()
	gw.connections[id] = conn
	gw.mu.Unlock()
	go conn.writePump()
	return conn
}

// ForgetConnection removes a connection from the registry without running
// the HandleDisconnect teardown cascade, for tests that need IsLive to flip
// false mid-flow (e.g. a controller's socket dying between a session request
// and its decision) without exercising every teardown side effect.
func (g *Gateway) ForgetConnection(id string) {
	g.mu.Lock()
	delete(g.connections, id)
	g.mu.Unlock()
}
