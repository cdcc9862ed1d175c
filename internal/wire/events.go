package wire

// Inbound event names, per spec.md §6 Event surface (inbound).
const (
	EventCreateRoom              = "create-room"
	EventJoinedRoom               = "joined-room"
	EventReady                    = "ready"
	EventLeaveRoom                = "leave-room"
	EventRemoteHostRegister       = "remote-host-register"
	EventRemoteHostClaim          = "remote-host-claim"
	EventRemoteHostsRequest       = "remote-hosts-request"
	EventRemoteHostSetupRequest   = "remote-host-setup-request"
	EventRemoteHostSetupDecision  = "remote-host-setup-decision"
	EventRemoteSessionRequest     = "remote-session-request"
	EventRemoteSessionDecision    = "remote-session-decision"
	EventRemoteSessionUIDecision  = "remote-session-ui-decision" // legacy alias, accepted inbound only
	EventRemoteSessionStop        = "remote-session-stop"
	EventRemoteHostFrame          = "remote-host-frame"
	EventRemoteInput              = "remote-input"
)

// Outbound event names, per spec.md §6 Event surface (outbound).
const (
	EventRoomCreated              = "room-created"
	EventRoomNotFound             = "room-not-found"
	EventGetUsers                 = "get-users"
	EventUserJoined               = "user-joined"
	EventUserLeft                 = "user-left"
	EventRemoteHostsList          = "remote-hosts-list"
	EventRemoteHostRegistered     = "remote-host-registered"
	EventRemoteHostClaimed        = "remote-host-claimed"
	EventRemoteHostSetupPending   = "remote-host-setup-pending"
	EventRemoteHostSetupRequested = "remote-host-setup-requested"
	EventRemoteHostSetupResult    = "remote-host-setup-result"
	EventRemoteSessionPending     = "remote-session-pending"
	EventRemoteSessionRequestedUI = "remote-session-requested-ui"
	EventRemoteSessionStarted     = "remote-session-started"
	EventRemoteSessionEnded       = "remote-session-ended"
	EventRemoteSessionError       = "remote-session-error"
)
