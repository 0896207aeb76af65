package log

import (
	"time"
)

// Event represents a stream event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID uniquely identifies one transport attempt (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// URL is the subscription endpoint the event belongs to.
	URL string `cbor:"3,keyasint,omitempty"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// Type-specific payload (exactly one of these is set).
	Frame       *FrameEvent       `cbor:"6,keyasint,omitempty"` // Inbound frame
	StateChange *StateChangeEvent `cbor:"7,keyasint,omitempty"` // Lifecycle transition
	Error       *ErrorEventData   `cbor:"8,keyasint,omitempty"` // Errors at any layer
}

// Layer indicates which layer captured the event.
type Layer uint8

const (
	// LayerTransport is the connection layer (open/close).
	LayerTransport Layer = 0
	// LayerStream is the frame delivery layer.
	LayerStream Layer = 1
	// LayerService is the typed data service layer (parse/apply).
	LayerService Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerStream:
		return "STREAM"
	case LayerService:
		return "SERVICE"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryState indicates a lifecycle state transition.
	CategoryState Category = 0
	// CategoryFrame indicates an inbound frame.
	CategoryFrame Category = 1
	// CategoryError indicates an error event.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryState:
		return "STATE"
	case CategoryFrame:
		return "FRAME"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// MaxFrameCapture is the maximum number of frame bytes stored in a
// FrameEvent payload. Longer frames are truncated.
const MaxFrameCapture = 512

// FrameEvent captures one inbound frame.
type FrameEvent struct {
	// Size is the full frame size in bytes.
	Size int `cbor:"1,keyasint"`

	// Payload holds up to MaxFrameCapture bytes of the frame.
	Payload []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates the payload was cut at MaxFrameCapture.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// StateChangeEvent captures a lifecycle transition.
type StateChangeEvent struct {
	// Entity names what changed state ("subscription", "dashboard", ...).
	Entity string `cbor:"1,keyasint"`

	// OldState and NewState are the state names.
	OldState string `cbor:"2,keyasint"`
	NewState string `cbor:"3,keyasint"`

	// Reason describes what drove the transition, if known.
	Reason string `cbor:"4,keyasint,omitempty"`

	// RetryAt is set when the new state schedules a retry.
	RetryAt *time.Time `cbor:"5,keyasint,omitempty"`
}

// ErrorEventData captures an error at any layer.
type ErrorEventData struct {
	// Message is the error text.
	Message string `cbor:"1,keyasint"`

	// Context describes what was being done when the error occurred.
	Context string `cbor:"2,keyasint,omitempty"`
}

// NewStateChangeEvent builds a state transition event.
func NewStateChangeEvent(connID, url, entity, oldState, newState, reason string, retryAt *time.Time) Event {
	return Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		URL:          url,
		Layer:        LayerTransport,
		Category:     CategoryState,
		StateChange: &StateChangeEvent{
			Entity:   entity,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
			RetryAt:  retryAt,
		},
	}
}

// NewFrameEvent builds an inbound frame event, truncating the captured
// payload at MaxFrameCapture bytes.
func NewFrameEvent(connID, url string, frame []byte) Event {
	payload := frame
	truncated := false
	if len(payload) > MaxFrameCapture {
		payload = payload[:MaxFrameCapture]
		truncated = true
	}
	// Copy so the capture does not alias the caller's buffer.
	captured := make([]byte, len(payload))
	copy(captured, payload)

	return Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		URL:          url,
		Layer:        LayerStream,
		Category:     CategoryFrame,
		Frame: &FrameEvent{
			Size:      len(frame),
			Payload:   captured,
			Truncated: truncated,
		},
	}
}

// NewErrorEvent builds an error event at the given layer.
func NewErrorEvent(connID, url string, layer Layer, context string, err error) Event {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		URL:          url,
		Layer:        layer,
		Category:     CategoryError,
		Error: &ErrorEventData{
			Message: msg,
			Context: context,
		},
	}
}
