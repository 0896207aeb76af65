package benchview_test

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchview/benchview-go/pkg/discovery"
	"github.com/benchview/benchview-go/pkg/station"
	"github.com/benchview/benchview-go/pkg/subscription"
	"github.com/benchview/benchview-go/pkg/transport"
)

var testPolicy = subscription.RetryPolicy{
	Delay:   20 * time.Millisecond,
	Backoff: 2.0,
	Max:     200 * time.Millisecond,
}

// fakeStation is an in-process station backend: it serves the dashboard
// and station websocket streams, the phase descriptor endpoint, and the
// plug response endpoint on a single httptest server.
type fakeStation struct {
	t      *testing.T
	server *httptest.Server

	host string
	port int

	upgrader websocket.Upgrader

	mu             sync.Mutex
	dashFrames     []string
	stationFrames  []string
	plugBodies     []string
	dashConnCount  atomic.Int64
	dropFirstConns atomic.Int64
}

func newFakeStation(t *testing.T) *fakeStation {
	t.Helper()

	f := &fakeStation{t: t}

	mux := http.NewServeMux()
	mux.HandleFunc("/sub/dashboard", f.handleDashboard)
	mux.HandleFunc("/sub/station", f.handleStation)
	mux.HandleFunc("/tests/", f.handleTests)

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)

	u, err := url.Parse(f.server.URL)
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	f.host, f.port = host, port

	return f
}

func (f *fakeStation) setDashboardFrames(frames ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dashFrames = frames
}

func (f *fakeStation) setStationFrames(frames ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stationFrames = frames
}

func (f *fakeStation) handleDashboard(w http.ResponseWriter, r *http.Request) {
	n := f.dashConnCount.Add(1)

	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	// Drop the first N connections right after the handshake to force
	// the client through its retry path.
	if n <= f.dropFirstConns.Load() {
		return
	}

	f.mu.Lock()
	frames := f.dashFrames
	f.mu.Unlock()

	for _, frame := range frames {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
			return
		}
	}
	<-r.Context().Done()
}

func (f *fakeStation) handleStation(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	f.mu.Lock()
	frames := f.stationFrames
	f.mu.Unlock()

	for _, frame := range frames {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
			return
		}
	}
	<-r.Context().Done()
}

func (f *fakeStation) handleTests(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet:
		// Phase descriptor list for any test id.
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]map[string]string{
			{"name": "boot"},
			{"name": "measure_voltage"},
			{"name": "teardown"},
		})

	case r.Method == http.MethodPost:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.plugBodies = append(f.plugBodies, r.URL.Path+" "+string(body))
		f.mu.Unlock()
		w.WriteHeader(http.StatusOK)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeStation) recordedPlugBodies() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.plugBodies))
	copy(out, f.plugBodies)
	return out
}

func (f *fakeStation) dashboardSnapshot() string {
	key := station.StationKey(f.host, f.port)
	snapshot := map[string]map[string]any{
		key: {
			"station_id": "station-42",
			"host":       f.host,
			"port":       f.port,
			"status":     "ONLINE",
			"cell":       "cell-7",
			"test_type":  "smoke",
		},
	}
	data, err := json.Marshal(snapshot)
	require.NoError(f.t, err)
	return string(data)
}

// TestE2E_DashboardToStation runs the full flow over a real websocket
// transport: dashboard snapshot, watch the discovered station, receive
// test updates with synthesized phases, and answer a plug prompt.
func TestE2E_DashboardToStation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	f := newFakeStation(t)
	f.setDashboardFrames(f.dashboardSnapshot())
	f.setStationFrames(
		`{"test_id":"t1","status":"RUNNING","state":{
			"dut_id":"dut-9","start_time_millis":1700000000000,
			"phases":[{"name":"boot","status":"RUNNING"}],
			"plugs":[{"name":"UserInput","type":"UserInput","prompt":"Press the button"}]
		}}`,
		`{"test_id":"t1","status":"PASS","state":{
			"phases":[
				{"name":"boot","status":"PASS","measurements":[
					{"name":"voltage","outcome":"PASS","units":"V","value":"3.3"}
				]},
				{"name":"measure_voltage","status":"PASS"},
				{"name":"teardown","status":"PASS"}
			],
			"plugs":[]
		}}`,
	)

	provider := transport.NewWebSocketProvider(transport.WebSocketConfig{})

	dash := station.NewDashboardService(provider)
	dash.Subscribe("ws://"+station.StationKey(f.host, f.port), testPolicy)
	defer dash.Unsubscribe()

	require.Eventually(t, func() bool {
		return dash.SubscriptionState() == subscription.StateSubscribed &&
			len(dash.Stations()) == 1
	}, 5*time.Second, 10*time.Millisecond, "dashboard snapshot never arrived")

	entry, ok := dash.Station(f.host, f.port)
	require.True(t, ok)
	assert.Equal(t, "station-42", entry.StationID)
	assert.Equal(t, station.StationStatusOnline, entry.Status)
	assert.Equal(t, "cell-7", entry.Cell)

	stn := station.NewStationService(provider)
	stn.SubscribeTo(entry.Host, entry.Port, testPolicy)
	defer stn.Unsubscribe()

	require.Eventually(t, func() bool {
		ts, ok := stn.Test("t1")
		return ok && ts.Status == station.TestStatusPass
	}, 5*time.Second, 10*time.Millisecond, "test run never reached PASS")

	ts, ok := stn.Test("t1")
	require.True(t, ok)
	assert.Equal(t, "dut-9", ts.DUTID)
	assert.Equal(t, int64(1700000000000), ts.StartTimeMillis)

	require.Len(t, ts.Phases, 3)
	assert.Equal(t, "boot", ts.Phases[0].Name)
	assert.Equal(t, station.PhaseStatusPassed, ts.Phases[0].Status)
	require.Len(t, ts.Phases[0].Measurements, 1)
	assert.Equal(t, "voltage", ts.Phases[0].Measurements[0].Name)
	assert.Equal(t, "3.3", ts.Phases[0].Measurements[0].Value)

	require.NoError(t, stn.RespondPlug("t1", "UserInput", map[string]string{"response": "ok"}))
	bodies := f.recordedPlugBodies()
	require.Len(t, bodies, 1)
	assert.Contains(t, bodies[0], "/tests/t1/plugs/UserInput")
	assert.Contains(t, bodies[0], `"response":"ok"`)
}

// TestE2E_PhaseSynthesis checks that declared-but-unreached phases are
// appended as waiting using the live descriptor endpoint.
func TestE2E_PhaseSynthesis(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	f := newFakeStation(t)
	f.setStationFrames(
		`{"test_id":"t2","status":"RUNNING","state":{
			"phases":[{"name":"boot","status":"PASS"}]
		}}`,
	)

	provider := transport.NewWebSocketProvider(transport.WebSocketConfig{})
	stn := station.NewStationService(provider)
	stn.SubscribeTo(f.host, f.port, testPolicy)
	defer stn.Unsubscribe()

	require.Eventually(t, func() bool {
		ts, ok := stn.Test("t2")
		return ok && len(ts.Phases) == 3
	}, 5*time.Second, 10*time.Millisecond, "synthesized phases never appeared")

	ts, _ := stn.Test("t2")
	assert.Equal(t, station.PhaseStatusPassed, ts.Phases[0].Status)
	assert.Equal(t, "measure_voltage", ts.Phases[1].Name)
	assert.Equal(t, station.PhaseStatusWaiting, ts.Phases[1].Status)
	assert.Equal(t, "teardown", ts.Phases[2].Name)
	assert.Equal(t, station.PhaseStatusWaiting, ts.Phases[2].Status)
}

// TestE2E_StreamRecovery drops the first connection after the handshake
// and verifies the client retries and recovers on its own.
func TestE2E_StreamRecovery(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	f := newFakeStation(t)
	f.dropFirstConns.Store(2)
	f.setDashboardFrames(f.dashboardSnapshot())

	provider := transport.NewWebSocketProvider(transport.WebSocketConfig{})
	dash := station.NewDashboardService(provider)
	dash.Subscribe("ws://"+station.StationKey(f.host, f.port), testPolicy)
	defer dash.Unsubscribe()

	require.Eventually(t, func() bool {
		return len(dash.Stations()) == 1
	}, 5*time.Second, 10*time.Millisecond, "snapshot never arrived after reconnects")

	assert.GreaterOrEqual(t, f.dashConnCount.Load(), int64(3))
	assert.Equal(t, subscription.StateSubscribed, dash.SubscriptionState())
}

// TestE2E_Discovery tests that a client can discover an advertised
// station via mDNS.
func TestE2E_Discovery(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	advertiser, err := discovery.NewMDNSAdvertiser(discovery.AdvertiserConfig{})
	if err != nil {
		t.Fatalf("Failed to create advertiser: %v", err)
	}
	defer advertiser.Stop()

	info := &discovery.StationInfo{
		StationID: "e2e-station",
		Port:      12000,
		Cell:      "cell-1",
		TestType:  "smoke",
		Firmware:  "1.0",
	}
	if err := advertiser.Advertise(ctx, info); err != nil {
		t.Fatalf("Failed to advertise: %v", err)
	}

	// Give mDNS time to propagate
	time.Sleep(500 * time.Millisecond)

	browser, err := discovery.NewMDNSBrowser(discovery.BrowserConfig{})
	if err != nil {
		t.Fatalf("Failed to create browser: %v", err)
	}
	defer browser.Stop()

	browseCtx, browseCancel := context.WithTimeout(ctx, 5*time.Second)
	defer browseCancel()

	found, err := browser.FindByStationID(browseCtx, "e2e-station")
	if err != nil {
		t.Fatalf("Failed to find station: %v", err)
	}
	if found.StationID != "e2e-station" {
		t.Errorf("StationID = %q, want %q", found.StationID, "e2e-station")
	}
	if found.Port != 12000 {
		t.Errorf("Port = %d, want %d", found.Port, 12000)
	}
	if found.Cell != "cell-1" {
		t.Errorf("Cell = %q, want %q", found.Cell, "cell-1")
	}
}
