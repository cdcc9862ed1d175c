package wire

// Error codes carried on remote-session-error (and inlined in setup
// results), per spec.md §7.
const (
	ErrRoomRequired           = "room-required"
	ErrHostRequired           = "host-required"
	ErrHostNotFound           = "host-not-found"
	ErrHostOffline            = "host-offline"
	ErrHostIDInUse            = "host-id-in-use"
	ErrHostBusy               = "host-busy"
	ErrHostPending            = "host-pending"
	ErrControllerBusy         = "controller-busy"
	ErrControllerPending      = "controller-pending"
	ErrHostOwnerUnclaimed     = "host-owner-unclaimed"
	ErrHostClaimedByOther     = "host-claimed-by-other"
	ErrHostClaimAssignedOther = "host-claim-assigned-other"
	ErrHostClaimOwnerMismatch = "host-claim-owner-mismatch"
	ErrSelfHostRequestBlocked = "self-host-request-blocked"
	ErrSelfHostMachineBlocked = "self-host-machine-blocked"
	ErrRequestRejected        = "request-rejected"
	ErrRequestCancelled       = "request-cancelled"
	ErrRequestTimeout         = "request-timeout"
	ErrHostDisconnected       = "host-disconnected"
	ErrControllerDisconnected = "controller-disconnected"
	ErrApproverDisconnected   = "approver-disconnected"
	ErrParticipantRequired    = "participant-required"
	ErrParticipantNotFound    = "participant-not-found"
	ErrParticipantInvalid     = "participant-invalid"
)
