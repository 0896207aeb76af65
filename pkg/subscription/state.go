package subscription

// State represents the subscription lifecycle state.
type State uint8

const (
	// StateUnsubscribed indicates no transport attempt has been made, or
	// the caller explicitly tore the subscription down.
	StateUnsubscribed State = iota

	// StateSubscribing indicates a connection attempt is in flight.
	StateSubscribing

	// StateSubscribed indicates an open connection with an active stream.
	StateSubscribed

	// StateFailed indicates the last attempt failed and no auto-retry is
	// configured. Terminal until Subscribe or Refresh is called.
	StateFailed

	// StateWaiting indicates the last attempt failed and a retry is
	// scheduled; RetryTime reports when it fires.
	StateWaiting
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateUnsubscribed:
		return "UNSUBSCRIBED"
	case StateSubscribing:
		return "SUBSCRIBING"
	case StateSubscribed:
		return "SUBSCRIBED"
	case StateFailed:
		return "FAILED"
	case StateWaiting:
		return "WAITING"
	default:
		return "UNKNOWN"
	}
}
