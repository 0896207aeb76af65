// Package transport provides the streaming transport seam used by the
// subscription layer.
//
// The core abstraction is Provider: a factory that opens a bidirectional,
// message-oriented connection to a URL and reports its lifecycle through
// Callbacks. Providers carry no retry logic; reconnection policy lives
// entirely in the subscription layer.
//
// # Callback Delivery
//
// Providers MUST invoke callbacks asynchronously, never from inside Open.
// This mirrors browser-socket semantics: Open returns a handle immediately
// and the open/close/message events arrive later. Callbacks for a single
// handle are delivered sequentially from one goroutine.
//
// # Failure Model
//
// A connection that never opens and a connection that drops after opening
// both end with a single OnClose call carrying the underlying error. OnClose
// is invoked at most once per handle.
package transport
