package subscription

import (
	"encoding/json"
	"sync"
)

// Stream is a multicast stream of inbound frames.
//
// Listeners attached after frames were delivered do not receive past
// frames; a Stream is not a replay log. The Stream object is stable across
// resubscriptions of its owning Subscription, so listeners survive
// reconnects.
type Stream struct {
	mu        sync.Mutex
	nextID    uint64
	listeners []streamListener
}

type streamListener struct {
	id uint64
	fn func(frame json.RawMessage)
}

// NewStream creates an empty stream.
func NewStream() *Stream {
	return &Stream{}
}

// Listen attaches fn to the stream and returns a cancel function that
// detaches it. Cancel is idempotent. fn is invoked synchronously in frame
// arrival order; it must not block.
func (s *Stream) Listen(fn func(frame json.RawMessage)) (cancel func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, streamListener{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// ListenerCount returns the number of attached listeners.
func (s *Stream) ListenerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// publish delivers one frame to every listener.
// Listeners are invoked outside the stream lock so they may attach or
// cancel listeners without deadlocking.
func (s *Stream) publish(frame json.RawMessage) {
	s.mu.Lock()
	snapshot := make([]streamListener, len(s.listeners))
	copy(snapshot, s.listeners)
	s.mu.Unlock()

	for _, l := range snapshot {
		l.fn(frame)
	}
}
