package station

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/benchview/benchview-go/pkg/log"
	"github.com/benchview/benchview-go/pkg/subscription"
	"github.com/benchview/benchview-go/pkg/transport"
)

// StationService follows the test runs of a single station backend. The
// stream is incremental: each frame updates one test and records are
// never removed, so finished runs stay visible until the target changes.
type StationService struct {
	sub    *subscription.Subscription
	logger log.Logger
	client HTTPClient

	mu     sync.Mutex
	host   string
	port   int
	url    string
	cancel func()
	phases *descriptorCache
	tests  map[string]*TestState
}

// NewStationService creates a station service over the given transport.
// SubscribeTo must be called to pick a target station.
func NewStationService(provider transport.Provider, opts ...Option) *StationService {
	cfg := newServiceConfig(opts)
	s := &StationService{
		logger: cfg.logger,
		client: cfg.client,
		tests:  make(map[string]*TestState),
	}
	s.sub = subscription.New(provider,
		subscription.WithClock(cfg.clock),
		subscription.WithLogger(cfg.logger),
		subscription.WithEntity("station"),
	)
	return s
}

// SubscribeTo opens the test update stream of one station backend at
// ws://host:port/sub/station. Switching targets discards the previous
// station's tests and phase descriptors.
func (s *StationService) SubscribeTo(host string, port int, policy subscription.RetryPolicy) {
	url := fmt.Sprintf("ws://%s:%d/sub/station", host, port)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.host != host || s.port != port {
		s.tests = make(map[string]*TestState)
	}
	s.host = host
	s.port = port
	s.url = url
	s.phases = newDescriptorCache(s.client, host, port)
	s.cancel = s.sub.Messages().Listen(s.handleFrame)
	s.mu.Unlock()

	s.sub.Subscribe(url, policy)
}

// Unsubscribe closes the stream. Test records are kept.
func (s *StationService) Unsubscribe() {
	s.sub.Unsubscribe()
}

// Refresh tears down and reopens the current stream.
func (s *StationService) Refresh() error { return s.sub.Refresh() }

// RetryNow skips a pending retry delay.
func (s *StationService) RetryNow() error { return s.sub.RetryNow() }

// IsSubscribing reports whether a subscribe attempt is in flight.
func (s *StationService) IsSubscribing() bool { return s.sub.IsSubscribing() }

// HasError reports whether the stream is in a failure state.
func (s *StationService) HasError() bool { return s.sub.HasError() }

// RetryTime returns the pending retry deadline, if one is scheduled.
func (s *StationService) RetryTime() (time.Time, bool) { return s.sub.RetryTime() }

// SubscriptionState returns the underlying stream state.
func (s *StationService) SubscriptionState() subscription.State { return s.sub.State() }

// Target returns the currently subscribed station, if any.
func (s *StationService) Target() (host string, port int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.host, s.port, s.host != ""
}

// Tests returns the known test runs sorted by start time, newest first.
func (s *StationService) Tests() []*TestState {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*TestState, 0, len(s.tests))
	for _, ts := range s.tests {
		out = append(out, ts)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTimeMillis != out[j].StartTimeMillis {
			return out[i].StartTimeMillis > out[j].StartTimeMillis
		}
		return out[i].TestID < out[j].TestID
	})
	return out
}

// Test returns the record for a test id, if known.
func (s *StationService) Test(testID string) (*TestState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts, ok := s.tests[testID]
	return ts, ok
}

// RespondPlug posts an operator answer for a user input plug on the
// current target. It is a one-shot request independent of the stream.
func (s *StationService) RespondPlug(testID, plugName string, response any) error {
	s.mu.Lock()
	host, port := s.host, s.port
	s.mu.Unlock()
	if host == "" {
		return ErrNoTarget
	}
	return respondPlug(s.client, host, port, testID, plugName, response)
}

func (s *StationService) handleFrame(frame json.RawMessage) {
	w, err := parseTestFrame(frame)
	if err != nil {
		s.mu.Lock()
		url := s.url
		s.mu.Unlock()
		s.logger.Log(log.NewErrorEvent("", url, log.LayerService, "test frame", err))
		return
	}

	// Descriptor fetch does network I/O, keep it outside the lock.
	s.mu.Lock()
	phases := s.phases
	s.mu.Unlock()
	var descriptors []string
	if phases != nil {
		descriptors = phases.descriptors(*w.TestID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ts, ok := s.tests[*w.TestID]
	if !ok {
		ts = &TestState{}
		s.tests[*w.TestID] = ts
	}
	mergeTest(ts, w, descriptors)
}
