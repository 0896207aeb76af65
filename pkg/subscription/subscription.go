package subscription

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/benchview/benchview-go/pkg/log"
	"github.com/benchview/benchview-go/pkg/transport"
)

// Caller misuse errors. Both indicate a lifecycle bug in the calling code.
var (
	// ErrNotSubscribed is returned by Refresh when no subscription exists.
	ErrNotSubscribed = errors.New("refresh requires an active subscription")

	// ErrNotWaiting is returned by RetryNow when no retry is scheduled.
	ErrNotWaiting = errors.New("retry-now requires a scheduled retry")
)

// RetryPolicy controls automatic reconnection after a failure.
type RetryPolicy struct {
	// Delay is the base retry delay. Zero disables auto-retry entirely:
	// a failure then parks the subscription in StateFailed until the
	// caller intervenes.
	Delay time.Duration

	// Backoff multiplies the previous delay on each consecutive failure.
	// Values below 1 are treated as 1 (no growth).
	Backoff float64

	// Max caps the delay. Zero means unbounded.
	Max time.Duration
}

// nextDelay advances from the previous delay (zero means first failure).
func (p RetryPolicy) nextDelay(prev time.Duration) time.Duration {
	if prev == 0 {
		prev = p.Delay
	} else {
		factor := p.Backoff
		if factor < 1 {
			factor = 1
		}
		prev = time.Duration(float64(prev) * factor)
	}
	if p.Max > 0 && prev > p.Max {
		prev = p.Max
	}
	return prev
}

// Option configures a Subscription.
type Option func(*Subscription)

// WithClock replaces the wall clock. Tests use this to drive retry timing.
func WithClock(c Clock) Option {
	return func(s *Subscription) { s.clock = c }
}

// WithLogger attaches a capture logger for stream events.
func WithLogger(l log.Logger) Option {
	return func(s *Subscription) { s.logger = l }
}

// WithEntity names this subscription in capture events
// (default "subscription").
func WithEntity(name string) Option {
	return func(s *Subscription) { s.entity = name }
}

// Subscription is a reconnect-aware handle around one logical
// publish/subscribe stream. The zero value is not usable; construct with
// New.
type Subscription struct {
	provider transport.Provider
	clock    Clock
	logger   log.Logger
	entity   string
	stream   *Stream

	mu    sync.Mutex
	state State

	// gen tags the current transport attempt; callbacks from older
	// generations are stale and dropped.
	gen     uint64
	current transport.Handle
	connID  string

	retryTimer Timer
	retryAt    time.Time

	// currentDelay is the backoff accumulator. Zero means the next failure
	// starts over at the base delay.
	currentDelay time.Duration

	// Saved subscribe parameters, reused by Refresh and automatic retry.
	url    string
	policy RetryPolicy
}

// New creates an unsubscribed Subscription using the given transport
// provider.
func New(provider transport.Provider, opts ...Option) *Subscription {
	s := &Subscription{
		provider: provider,
		clock:    SystemClock,
		logger:   log.NoopLogger{},
		entity:   "subscription",
		stream:   NewStream(),
		state:    StateUnsubscribed,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe opens a stream to url with the given retry policy. Any
// existing subscription is torn down silently first (no retry logic runs
// for it). The Messages stream is stable across calls: listeners attached
// before Subscribe keep receiving frames after reconnection.
func (s *Subscription) Subscribe(url string, policy RetryPolicy) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.teardownLocked()
	s.url = url
	s.policy = policy
	s.currentDelay = 0
	s.openLocked("subscribe")
}

// Unsubscribe cancels any pending retry, closes the owned transport, and
// returns to StateUnsubscribed. Safe to call in any state.
func (s *Subscription) Unsubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.teardownLocked()
	s.currentDelay = 0
	s.setStateLocked(StateUnsubscribed, "unsubscribe", nil)
}

// Refresh closes the current transport (if any) and immediately reopens
// using the saved parameters, bypassing any backoff delay.
//
// Refresh returns ErrNotSubscribed from StateUnsubscribed, and is a no-op
// while an attempt is already in flight (StateSubscribing) so repeated
// calls cannot open duplicate connections.
func (s *Subscription) Refresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateUnsubscribed:
		return ErrNotSubscribed
	case StateSubscribing:
		return nil
	}

	s.teardownLocked()
	s.openLocked("refresh")
	return nil
}

// RetryNow fires a scheduled retry immediately. The already-computed
// backoff value is kept for the next failure; only a successful open
// resets it.
//
// RetryNow returns ErrNotWaiting unless a retry is currently scheduled.
func (s *Subscription) RetryNow() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateWaiting {
		return ErrNotWaiting
	}

	s.teardownLocked()
	s.openLocked("retry now")
	return nil
}

// State returns the current lifecycle state.
func (s *Subscription) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsSubscribing reports whether a connection attempt is in flight.
func (s *Subscription) IsSubscribing() bool {
	return s.State() == StateSubscribing
}

// HasError reports whether the last attempt failed (StateFailed or
// StateWaiting).
func (s *Subscription) HasError() bool {
	state := s.State()
	return state == StateFailed || state == StateWaiting
}

// RetryTime returns the wall-clock time the pending retry fires.
// The second return is false unless the state is StateWaiting.
func (s *Subscription) RetryTime() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateWaiting {
		return time.Time{}, false
	}
	return s.retryAt, true
}

// Messages returns the multicast stream of inbound frames. The same
// Stream is returned for the life of the Subscription.
func (s *Subscription) Messages() *Stream {
	return s.stream
}

// teardownLocked silently abandons the current attempt: the retry timer is
// cancelled, the owned transport is closed, and the generation advances so
// in-flight callbacks from the old transport become stale. No retry logic
// runs.
func (s *Subscription) teardownLocked() {
	if s.retryTimer != nil {
		s.retryTimer.Stop()
		s.retryTimer = nil
	}
	s.retryAt = time.Time{}

	if s.current != nil {
		_ = s.current.Close()
		s.current = nil
	}
	s.gen++
}

// openLocked starts a new transport attempt for the saved URL.
func (s *Subscription) openLocked(reason string) {
	s.gen++
	gen := s.gen
	s.connID = uuid.New().String()
	s.setStateLocked(StateSubscribing, reason, nil)

	h, err := s.provider.Open(s.url, transport.Callbacks{
		OnOpen:    func() { s.handleOpen(gen) },
		OnClose:   func(err error) { s.handleClose(gen, err) },
		OnMessage: func(frame []byte) { s.handleMessage(gen, frame) },
	})
	if err != nil {
		// The attempt could not even start; treat it like a failed open.
		s.current = nil
		s.failLocked(err)
		return
	}
	s.current = h
}

// handleOpen is the transport OnOpen callback for generation gen.
func (s *Subscription) handleOpen(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return // stale transport
	}

	s.currentDelay = 0
	s.setStateLocked(StateSubscribed, "transport open", nil)
}

// handleClose is the transport OnClose callback for generation gen. It
// covers both open failures and drops of an established connection.
func (s *Subscription) handleClose(gen uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return // stale transport
	}

	s.current = nil
	s.failLocked(err)
}

// failLocked routes a failure to StateFailed or StateWaiting depending on
// whether auto-retry is configured.
func (s *Subscription) failLocked(err error) {
	reason := "connection closed"
	if err != nil {
		reason = err.Error()
	}

	if s.policy.Delay <= 0 {
		s.setStateLocked(StateFailed, reason, nil)
		return
	}

	delay := s.policy.nextDelay(s.currentDelay)
	s.currentDelay = delay
	s.retryAt = s.clock.Now().Add(delay)

	gen := s.gen
	s.retryTimer = s.clock.AfterFunc(delay, func() { s.handleRetryTimer(gen) })

	retryAt := s.retryAt
	s.setStateLocked(StateWaiting, reason, &retryAt)
}

// handleRetryTimer is the scheduled retry callback for generation gen.
func (s *Subscription) handleRetryTimer(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen || s.state != StateWaiting {
		return // cancelled or superseded
	}

	s.retryTimer = nil
	s.retryAt = time.Time{}
	s.openLocked("retry timer")
}

// handleMessage is the transport OnMessage callback for generation gen.
// The payload is republished unchanged; no transformation happens at this
// layer.
func (s *Subscription) handleMessage(gen uint64, frame []byte) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return // stale transport
	}
	connID, url := s.connID, s.url
	s.mu.Unlock()

	s.logger.Log(log.NewFrameEvent(connID, url, frame))
	s.stream.publish(json.RawMessage(frame))
}

// setStateLocked transitions to newState and captures the change.
func (s *Subscription) setStateLocked(newState State, reason string, retryAt *time.Time) {
	if s.state == newState {
		return
	}
	old := s.state
	s.state = newState
	s.logger.Log(log.NewStateChangeEvent(s.connID, s.url, s.entity,
		old.String(), newState.String(), reason, retryAt))
}
