package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const callbackTimeout = 5 * time.Second

// newEchoServer starts a websocket server that sends each payload in
// sendFrames to the client, then closes the connection.
func newEchoServer(t *testing.T, sendFrames ...string) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		for _, frame := range sendFrames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + srv.URL[len("http"):]
}

func TestWebSocketProvider_OpenAndReceive(t *testing.T) {
	srv := newEchoServer(t, `{"seq":1}`, `{"seq":2}`)

	opened := make(chan struct{}, 1)
	frames := make(chan string, 4)
	closed := make(chan error, 1)

	p := NewWebSocketProvider(WebSocketConfig{})
	h, err := p.Open(wsURL(srv), Callbacks{
		OnOpen:    func() { opened <- struct{}{} },
		OnMessage: func(frame []byte) { frames <- string(frame) },
		OnClose:   func(err error) { closed <- err },
	})
	require.NoError(t, err)
	defer h.Close()

	select {
	case <-opened:
	case <-time.After(callbackTimeout):
		t.Fatal("timed out waiting for OnOpen")
	}

	for _, want := range []string{`{"seq":1}`, `{"seq":2}`} {
		select {
		case got := <-frames:
			assert.Equal(t, want, got)
		case <-time.After(callbackTimeout):
			t.Fatal("timed out waiting for frame")
		}
	}

	select {
	case <-closed:
	case <-time.After(callbackTimeout):
		t.Fatal("timed out waiting for OnClose")
	}
}

func TestWebSocketProvider_DialFailure(t *testing.T) {
	// Grab a port with no listener.
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := wsURL(srv)
	srv.Close()

	opened := make(chan struct{}, 1)
	closed := make(chan error, 1)

	p := NewWebSocketProvider(WebSocketConfig{HandshakeTimeout: 2 * time.Second})
	h, err := p.Open(url, Callbacks{
		OnOpen:  func() { opened <- struct{}{} },
		OnClose: func(err error) { closed <- err },
	})
	require.NoError(t, err)
	defer h.Close()

	select {
	case err := <-closed:
		assert.Error(t, err)
	case <-time.After(callbackTimeout):
		t.Fatal("timed out waiting for OnClose")
	}

	select {
	case <-opened:
		t.Fatal("OnOpen fired for a failed dial")
	default:
	}
}

func TestWebSocketProvider_RejectsBadURL(t *testing.T) {
	p := NewWebSocketProvider(WebSocketConfig{})

	_, err := p.Open("ftp://example.com/stream", Callbacks{})
	assert.Error(t, err)

	_, err = p.Open("://not-a-url", Callbacks{})
	assert.Error(t, err)
}

func TestWebSocketProvider_CloseSuppressesOnClose(t *testing.T) {
	// Server that keeps the connection open until the client goes away.
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	opened := make(chan struct{}, 1)
	closed := make(chan error, 1)

	p := NewWebSocketProvider(WebSocketConfig{})
	h, err := p.Open(wsURL(srv), Callbacks{
		OnOpen:  func() { opened <- struct{}{} },
		OnClose: func(err error) { closed <- err },
	})
	require.NoError(t, err)

	select {
	case <-opened:
	case <-time.After(callbackTimeout):
		t.Fatal("timed out waiting for OnOpen")
	}

	// A caller-initiated Close must not surface as a connection failure.
	require.NoError(t, h.Close())

	select {
	case err := <-closed:
		t.Fatalf("OnClose fired after caller Close: %v", err)
	case <-time.After(300 * time.Millisecond):
	}
}
