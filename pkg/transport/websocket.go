package transport

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Defaults for WebSocketProvider.
const (
	// DefaultHandshakeTimeout bounds the dial plus websocket handshake.
	DefaultHandshakeTimeout = 30 * time.Second

	// DefaultMaxMessageSize is the maximum inbound frame size (1 MiB).
	DefaultMaxMessageSize = 1 << 20
)

// WebSocketConfig configures a WebSocketProvider.
type WebSocketConfig struct {
	// HandshakeTimeout bounds the connection attempt (default: 30s).
	HandshakeTimeout time.Duration

	// MaxMessageSize is the maximum inbound frame size in bytes
	// (default: 1 MiB). Oversized frames close the connection.
	MaxMessageSize int64
}

// WebSocketProvider opens websocket connections.
type WebSocketProvider struct {
	config WebSocketConfig
	dialer *websocket.Dialer
}

// NewWebSocketProvider creates a websocket-backed transport provider.
func NewWebSocketProvider(config WebSocketConfig) *WebSocketProvider {
	if config.HandshakeTimeout <= 0 {
		config.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if config.MaxMessageSize <= 0 {
		config.MaxMessageSize = DefaultMaxMessageSize
	}

	return &WebSocketProvider{
		config: config,
		dialer: &websocket.Dialer{
			HandshakeTimeout: config.HandshakeTimeout,
		},
	}
}

// Open starts a websocket connection attempt to rawURL.
// http/https URLs are accepted and rewritten to ws/wss.
func (p *WebSocketProvider) Open(rawURL string, cbs Callbacks) (Handle, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid subscription URL %q: %w", rawURL, err)
	}

	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}

	c := &wsConn{cbs: cbs}
	go c.run(p.dialer, u.String(), p.config.MaxMessageSize)

	return c, nil
}

// wsConn is one websocket connection attempt.
type wsConn struct {
	cbs Callbacks

	mu           sync.Mutex
	conn         *websocket.Conn
	closed       bool
	closeEmitted bool
}

// run dials and pumps inbound frames. It owns all callback delivery for
// this handle; everything runs on this one goroutine, so callbacks are
// sequential.
func (c *wsConn) run(dialer *websocket.Dialer, url string, maxMessageSize int64) {
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		c.emitClose(err)
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		conn.Close()
		return
	}
	c.conn = conn
	c.mu.Unlock()

	conn.SetReadLimit(maxMessageSize)
	c.emitOpen()

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			c.emitClose(err)
			return
		}
		c.emitMessage(frame)
	}
}

// Close tears down the connection and suppresses further callbacks.
func (c *wsConn) Close() error {
	c.mu.Lock()
	c.closed = true
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (c *wsConn) emitOpen() {
	c.mu.Lock()
	suppressed := c.closed
	c.mu.Unlock()

	if !suppressed && c.cbs.OnOpen != nil {
		c.cbs.OnOpen()
	}
}

func (c *wsConn) emitMessage(frame []byte) {
	c.mu.Lock()
	suppressed := c.closed
	c.mu.Unlock()

	if !suppressed && c.cbs.OnMessage != nil {
		c.cbs.OnMessage(frame)
	}
}

func (c *wsConn) emitClose(err error) {
	c.mu.Lock()
	suppressed := c.closed || c.closeEmitted
	c.closeEmitted = true
	c.mu.Unlock()

	if !suppressed && c.cbs.OnClose != nil {
		c.cbs.OnClose(err)
	}
}
