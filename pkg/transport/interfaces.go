package transport

// Callbacks carries the lifecycle callbacks for one connection attempt.
// Any field may be nil; nil callbacks are simply not invoked.
type Callbacks struct {
	// OnOpen is invoked once when the connection is established.
	OnOpen func()

	// OnClose is invoked once when the connection attempt fails or an
	// established connection drops. err describes the cause and may be nil
	// for an orderly remote close.
	OnClose func(err error)

	// OnMessage is invoked for each inbound frame, in arrival order.
	OnMessage func(frame []byte)
}

// Handle represents one owned connection.
// Implemented by wsConn and by test doubles.
type Handle interface {
	// Close tears down the connection. After Close returns, no further
	// callbacks are delivered for this handle.
	Close() error
}

// Provider opens message-oriented streaming connections.
// Implemented by WebSocketProvider.
type Provider interface {
	// Open starts a connection attempt to the given URL. It returns a
	// handle immediately; success or failure is reported later through cbs.
	// An error is returned only for requests that cannot be attempted at
	// all (for example an unparsable URL).
	Open(url string, cbs Callbacks) (Handle, error)
}

// Compile-time interface satisfaction checks.
var (
	_ Provider = (*WebSocketProvider)(nil)
	_ Handle   = (*wsConn)(nil)
)
