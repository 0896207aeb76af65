package station

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/benchview/benchview-go/pkg/log"
	"github.com/benchview/benchview-go/pkg/subscription"
	"github.com/benchview/benchview-go/pkg/transport"
)

// Option configures a service.
type Option func(*serviceConfig)

type serviceConfig struct {
	clock  subscription.Clock
	logger log.Logger
	client HTTPClient
}

// WithClock overrides the retry clock. Tests use a virtual clock.
func WithClock(c subscription.Clock) Option {
	return func(cfg *serviceConfig) { cfg.clock = c }
}

// WithLogger sets the capture logger for service level events.
func WithLogger(l log.Logger) Option {
	return func(cfg *serviceConfig) { cfg.logger = l }
}

// WithHTTPClient overrides the client used for side channel requests.
func WithHTTPClient(c HTTPClient) Option {
	return func(cfg *serviceConfig) { cfg.client = c }
}

func newServiceConfig(opts []Option) serviceConfig {
	cfg := serviceConfig{
		clock:  subscription.SystemClock,
		logger: log.NoopLogger{},
		client: defaultHTTPClient,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// DashboardService maintains the set of known stations from a dashboard
// snapshot stream. Every frame is a complete snapshot: stations missing
// from it are removed, existing records are updated in place so callers
// holding a *Station see changes without re-fetching.
type DashboardService struct {
	sub    *subscription.Subscription
	logger log.Logger

	mu       sync.Mutex
	url      string
	stations map[string]*Station
}

// NewDashboardService creates a dashboard service over the given
// transport. Subscribe must be called before any data arrives.
func NewDashboardService(provider transport.Provider, opts ...Option) *DashboardService {
	cfg := newServiceConfig(opts)
	s := &DashboardService{
		logger:   cfg.logger,
		stations: make(map[string]*Station),
	}
	s.sub = subscription.New(provider,
		subscription.WithClock(cfg.clock),
		subscription.WithLogger(cfg.logger),
		subscription.WithEntity("dashboard"),
	)
	s.sub.Messages().Listen(s.handleFrame)
	return s
}

// Subscribe opens the dashboard stream at <baseURL>/sub/dashboard.
// baseURL names the aggregator, e.g. "ws://localhost:12000".
func (s *DashboardService) Subscribe(baseURL string, policy subscription.RetryPolicy) {
	url := baseURL + "/sub/dashboard"
	s.mu.Lock()
	s.url = url
	s.mu.Unlock()
	s.sub.Subscribe(url, policy)
}

// Unsubscribe closes the stream. Known stations are kept for display.
func (s *DashboardService) Unsubscribe() {
	s.sub.Unsubscribe()
}

// Refresh tears down and reopens the current stream.
func (s *DashboardService) Refresh() error { return s.sub.Refresh() }

// RetryNow skips a pending retry delay.
func (s *DashboardService) RetryNow() error { return s.sub.RetryNow() }

// IsSubscribing reports whether a subscribe attempt is in flight.
func (s *DashboardService) IsSubscribing() bool { return s.sub.IsSubscribing() }

// HasError reports whether the stream is in a failure state.
func (s *DashboardService) HasError() bool { return s.sub.HasError() }

// RetryTime returns the pending retry deadline, if one is scheduled.
func (s *DashboardService) RetryTime() (time.Time, bool) { return s.sub.RetryTime() }

// SubscriptionState returns the underlying stream state.
func (s *DashboardService) SubscriptionState() subscription.State { return s.sub.State() }

// Stations returns the known stations sorted by key.
func (s *DashboardService) Stations() []*Station {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Station, 0, len(s.stations))
	for _, st := range s.stations {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// Station returns the record for host:port, if known.
func (s *DashboardService) Station(host string, port int) (*Station, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stations[StationKey(host, port)]
	return st, ok
}

func (s *DashboardService) handleFrame(frame json.RawMessage) {
	snapshot, err := parseDashboardFrame(frame)
	if err != nil {
		s.mu.Lock()
		url := s.url
		s.mu.Unlock()
		s.logger.Log(log.NewErrorEvent("", url, log.LayerService, "dashboard frame", err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, w := range snapshot {
		st, ok := s.stations[key]
		if !ok {
			st = &Station{}
			s.stations[key] = st
		}
		mergeStation(st, w)
	}
	for key := range s.stations {
		if _, ok := snapshot[key]; !ok {
			delete(s.stations, key)
		}
	}
}
