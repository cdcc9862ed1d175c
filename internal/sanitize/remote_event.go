package sanitize

import "math"

// RemoteEventType enumerates the accepted input-event type tags.
type RemoteEventType string

const (
	EventMove      RemoteEventType = "move"
	EventClick     RemoteEventType = "click"
	EventMouseDown RemoteEventType = "mouse-down"
	EventMouseUp   RemoteEventType = "mouse-up"
	EventWheel     RemoteEventType = "wheel"
	EventKeyDown   RemoteEventType = "key-down"
	EventKeyUp     RemoteEventType = "key-up"
)

var pointerEventTypes = map[RemoteEventType]bool{
	EventMove: true, EventClick: true, EventMouseDown: true, EventMouseUp: true, EventWheel: true,
}

var buttonEventTypes = map[RemoteEventType]bool{
	EventClick: true, EventMouseDown: true, EventMouseUp: true,
}

var keyEventTypes = map[RemoteEventType]bool{
	EventKeyDown: true, EventKeyUp: true,
}

var validButtons = map[string]bool{"left": true, "right": true, "middle": true}

// RemoteEvent is the normalized shape produced by RemoteEventFromMap. Only the
// fields relevant to the event's Type are meaningful.
type RemoteEvent struct {
	Type    RemoteEventType `json:"type"`
	X       float64         `json:"x,omitempty"`
	Y       float64         `json:"y,omitempty"`
	Button  string          `json:"button,omitempty"`
	DeltaX  float64         `json:"deltaX,omitempty"`
	DeltaY  float64         `json:"deltaY,omitempty"`
	Key     string          `json:"key,omitempty"`
	Code    string          `json:"code,omitempty"`
	Repeat  bool            `json:"repeat,omitempty"`
}

// rawRemoteEvent mirrors the wire shape accepted from remote-input payloads.
type rawRemoteEvent struct {
	Type   string  `json:"type"`
	X      any     `json:"x"`
	Y      any     `json:"y"`
	Button any     `json:"button"`
	DeltaX any     `json:"deltaX"`
	DeltaY any     `json:"deltaY"`
	Key    any     `json:"key"`
	Code   any     `json:"code"`
	Repeat any     `json:"repeat"`
}

// clamp01 clamps a finite float to [0,1]. Non-finite inputs clamp to 0.
func clamp01(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func asFinite(v any, fallback float64) (float64, bool) {
	f, ok := v.(float64)
	if !ok {
		return fallback, v == nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback, false
	}
	return f, true
}

// RemoteEventFromMap validates and normalizes an input event decoded from
// JSON into a generic map. It returns (event, true) on success, or
// (RemoteEvent{}, false) if the event is structurally invalid or carries an
// unrecognized type — such events must be dropped silently, never forwarded.
func RemoteEventFromMap(m map[string]any) (RemoteEvent, bool) {
	typ := RemoteEventType(String(m["type"], 32))

	switch {
	case pointerEventTypes[typ]:
		return sanitizePointerEvent(typ, m)
	case keyEventTypes[typ]:
		return sanitizeKeyEvent(typ, m)
	default:
		return RemoteEvent{}, false
	}
}

func sanitizePointerEvent(typ RemoteEventType, m map[string]any) (RemoteEvent, bool) {
	x, xOK := asFinite(m["x"], 0)
	y, yOK := asFinite(m["y"], 0)
	if !xOK || !yOK {
		return RemoteEvent{}, false
	}

	ev := RemoteEvent{Type: typ, X: clamp01(x), Y: clamp01(y)}

	if buttonEventTypes[typ] {
		button := String(m["button"], 16)
		if !validButtons[button] {
			button = "left"
		}
		ev.Button = button
	}

	if typ == EventWheel {
		dx, _ := asFinite(m["deltaX"], 0)
		dy, _ := asFinite(m["deltaY"], 0)
		ev.DeltaX = dx
		ev.DeltaY = dy
	}

	return ev, true
}

func sanitizeKeyEvent(typ RemoteEventType, m map[string]any) (RemoteEvent, bool) {
	key := String(m["key"], 64)
	code := String(m["code"], 64)
	if key == "" && code == "" {
		return RemoteEvent{}, false
	}

	repeat, _ := m["repeat"].(bool)

	return RemoteEvent{Type: typ, Key: key, Code: code, Repeat: repeat}, true
}
