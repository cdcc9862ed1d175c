package wire

// Inbound payloads.

type JoinedRoomPayload struct {
	RoomID string `json:"roomId"`
	PeerID string `json:"peerId"`
}

type RemoteHostRegisterPayload struct {
	HostID string `json:"hostId"`
}

type RemoteHostClaimPayload struct {
	HostID string `json:"hostId"`
}

type RemoteHostSetupRequestPayload struct {
	TargetPeerID string `json:"targetPeerId,omitempty"`
}

type RemoteHostSetupDecisionPayload struct {
	RequestID string `json:"requestId"`
	Accepted  bool   `json:"accepted"`
}

type RemoteSessionRequestPayload struct {
	HostID string `json:"hostId"`
}

type RemoteSessionDecisionPayload struct {
	RequestID string `json:"requestId"`
	Accepted  bool   `json:"accepted"`
	Reason    string `json:"reason,omitempty"`
}

type RemoteSessionStopPayload struct {
	SessionID string `json:"sessionId,omitempty"`
}

type RemoteHostFramePayload struct {
	SessionID string  `json:"sessionId"`
	Image     string  `json:"image"`
	Width     *int    `json:"width,omitempty"`
	Height    *int    `json:"height,omitempty"`
	Timestamp *int64  `json:"timestamp,omitempty"`
}

type RemoteInputPayload struct {
	SessionID string         `json:"sessionId"`
	Event     map[string]any `json:"event"`
}

// Outbound payloads.

type RoomCreatedPayload struct {
	RoomID string `json:"roomId"`
}

type RoomNotFoundPayload struct {
	RoomID string `json:"roomId"`
}

type GetUsersPayload struct {
	RoomID       string   `json:"roomId"`
	Participants []string `json:"participants"`
}

type UserJoinedPayload struct {
	PeerID string `json:"peerId"`
}

type UserLeftPayload struct {
	PeerID string `json:"peerId"`
}

type HostListEntry struct {
	HostID    string `json:"hostId"`
	Busy      bool   `json:"busy"`
	Ownership string `json:"ownership"` // "unclaimed" | "you" | "other"
}

type RemoteHostsListPayload struct {
	Hosts []HostListEntry `json:"hosts"`
}

type RemoteHostRegisteredPayload struct {
	HostID string `json:"hostId"`
}

type RemoteHostClaimedPayload struct {
	HostID string `json:"hostId"`
	RoomID string `json:"roomId"`
	Auto   bool   `json:"auto,omitempty"`
}

type RemoteHostSetupPendingPayload struct {
	RequestID       string `json:"requestId"`
	SuggestedHostID string `json:"suggestedHostId"`
}

type RemoteHostSetupRequestedPayload struct {
	RequestID       string `json:"requestId"`
	RequesterPeerID string `json:"requesterPeerId"`
	SuggestedHostID string `json:"suggestedHostId"`
}

type RemoteHostSetupResultPayload struct {
	RequestID string `json:"requestId"`
	Status    string `json:"status"` // "accepted" | "rejected" | "timeout" | "target-disconnected"
}

type RemoteSessionPendingPayload struct {
	RequestID string `json:"requestId"`
	HostID    string `json:"hostId"`
}

type RemoteSessionRequestedUIPayload struct {
	RequestID     string `json:"requestId"`
	HostID        string `json:"hostId"`
	RequesterPeer string `json:"requesterPeerId"`
}

type RemoteSessionStartedPayload struct {
	SessionID string `json:"sessionId"`
	HostID    string `json:"hostId"`
}

type RemoteSessionEndedPayload struct {
	SessionID string `json:"sessionId"`
	HostID    string `json:"hostId"`
	EndedBy   string `json:"endedBy"`
}

type RemoteSessionErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

type RemoteFramePayload struct {
	SessionID string `json:"sessionId"`
	Image     string `json:"image"`
	Width     *int   `json:"width,omitempty"`
	Height    *int   `json:"height,omitempty"`
	Timestamp int64  `json:"timestamp"`
}
