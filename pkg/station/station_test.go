package station

import (
	"net"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/benchview/benchview-go/pkg/log"
	"github.com/benchview/benchview-go/pkg/transport"
	"github.com/stretchr/testify/require"
)

type mockConn struct {
	mu     sync.Mutex
	cbs    transport.Callbacks
	closed bool
}

func (m *mockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockConn) fireOpen()                { m.cbs.OnOpen() }
func (m *mockConn) fireMessage(frame string) { m.cbs.OnMessage([]byte(frame)) }

type mockProvider struct {
	mu    sync.Mutex
	urls  []string
	conns []*mockConn
}

func (p *mockProvider) Open(url string, cbs transport.Callbacks) (transport.Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := &mockConn{cbs: cbs}
	p.urls = append(p.urls, url)
	p.conns = append(p.conns, c)
	return c, nil
}

func (p *mockProvider) last() *mockConn {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conns[len(p.conns)-1]
}

func (p *mockProvider) lastURL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.urls[len(p.urls)-1]
}

// eventRecorder captures log events for assertions.
type eventRecorder struct {
	mu     sync.Mutex
	events []log.Event
}

func (r *eventRecorder) Log(e log.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) errorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Category == log.CategoryError {
			n++
		}
	}
	return n
}

// splitHostPort extracts host and numeric port from an httptest URL.
func splitHostPort(t *testing.T, rawURL string) (string, int) {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return host, port
}
