package transport

import "github.com/nimbusrelay/signalcore/internal/wire"

// EventRouter dispatches an inbound envelope on behalf of the Gateway. The
// dispatch package implements this so that transport never imports the
// engines directly, preventing an import cycle between transport and
// roomengine/remotectl (both of which import transport to emit).
type EventRouter interface {
	Route(conn *Connection, env wire.Envelope)
	HandleDisconnect(conn *Connection)
}
