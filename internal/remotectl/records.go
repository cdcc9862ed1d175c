// Package remotectl implements the Remote-Control Engine (spec.md §4.4):
// host registration, claim arbitration, the host-setup handshake, session
// request/approval, frame/input relay, and session termination, plus the
// connection-teardown cascade that ties all of it together. It is grounded
// on the teacher's Room/Hub pairing (internal/v1/room, internal/v1/transport)
// for its mutex-guarded registry model (here one engine-wide mutex) and its
// time.AfterFunc-based grace-period cleanup (internal/v1/transport/hub.go
// removeRoom), generalized from a room-cleanup timer to the three consent
// timers spec.md §5 requires (pending request, pending setup request,
// setup assignment).
package remotectl

import (
	"time"

	"go.opentelemetry.io/otel/trace"
)

const (
	pendingRequestTTL  = 45 * time.Second
	pendingSetupTTL    = 45 * time.Second
	setupAssignmentTTL = 15 * time.Minute
)

// hostRecord is spec.md §3 Host.
type hostRecord struct {
	connectionID    string
	activeSessionID string
	networkID       string
}

// claimRecord is spec.md §3 Host claim.
type claimRecord struct {
	connectionID string
	roomID       string
}

// assignmentRecord is spec.md §3 Host-setup assignment.
type assignmentRecord struct {
	targetConnectionID string
	roomID             string
	timer              *time.Timer
}

// pendingRequestRecord is spec.md §3 Pending remote request. span covers the
// consent protocol from request to decision (spec.md §10.4), so slow
// approvers are visible in traces; it is always ended exactly once, by
// whichever path resolves the request (decision, timeout, or cancellation).
type pendingRequestRecord struct {
	hostID                 string
	hostConnectionID       string
	controllerConnectionID string
	requesterPeerID        string
	roomID                 string
	approverConnectionID   string
	timer                  *time.Timer
	span                   trace.Span
}

// pendingSetupRecord is spec.md §3 Pending host-setup request.
type pendingSetupRecord struct {
	requesterConnectionID string
	requesterPeerID       string
	targetConnectionID    string
	targetPeerID          string
	roomID                string
	suggestedHostID       string
	timer                 *time.Timer
}

// sessionRecord is spec.md §3 Session.
type sessionRecord struct {
	hostID                 string
	hostConnectionID       string
	controllerConnectionID string
}
