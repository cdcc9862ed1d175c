// Package wire defines the JSON wire contract between a connection and the
// signaling core: a flat envelope carrying an event name and a raw payload,
// plus the typed payload structs for every event listed in spec.md §6. The
// envelope replaces the teacher's protobuf WebSocketMessage framing (see
// gen/proto, not carried into this tree) with the event-tagged JSON shape
// the spec's wire contract requires; it is grounded on the WSMessage pattern
// in other_examples/925b93a6_thatcooperguy-nvremote.
package wire

import "encoding/json"

// Envelope is the outer shape of every message exchanged over the
// transport, inbound or outbound.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Encode builds an Envelope for an outbound event, marshaling payload if
// non-nil. A marshal failure collapses to an empty payload rather than
// propagating — callers emit best-effort and never block on wire failures.
func Encode(event string, payload any) Envelope {
	if payload == nil {
		return Envelope{Event: event}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{Event: event}
	}
	return Envelope{Event: event, Payload: raw}
}

// Decode unmarshals an envelope's payload into dst. A nil/empty payload is a
// no-op success, matching events with no body (create-room, ready, ...).
func Decode(env Envelope, dst any) error {
	if len(env.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(env.Payload, dst)
}
