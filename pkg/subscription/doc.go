// Package subscription implements the resilient publish/subscribe handle
// used by the benchview data services.
//
// A Subscription owns at most one streaming transport connection at a time,
// tracks a five-state lifecycle, retries failed connections with exponential
// backoff, and republishes inbound frames on a multicast Stream that any
// number of listeners may attach to.
//
// # Lifecycle
//
//	UNSUBSCRIBED -> Subscribe -> SUBSCRIBING -> open    -> SUBSCRIBED
//	                                         -> close   -> FAILED   (no retry configured)
//	                                         -> close   -> WAITING  (retry scheduled)
//	WAITING -> timer fires / RetryNow -> SUBSCRIBING
//
// Exactly one state is active at a time. IsSubscribing reports
// SUBSCRIBING; HasError reports FAILED or WAITING.
//
// # Backoff
//
// The first failure after a successful open retries after the base delay;
// each consecutive failure multiplies the previous delay by the backoff
// factor, clamped to the configured maximum. Any successful open resets
// the accumulator to the base delay.
//
// # Stale Transports
//
// Subscribe and Refresh may be called while callbacks from a previous
// transport are still in flight. Every transport attempt is tagged with a
// generation number; callbacks from superseded generations are silently
// dropped. This is the only cancellation mechanism the package needs.
//
// # Concurrency
//
// All public operations and all transport/timer callbacks are serialized
// on one internal mutex; no operation observes a half-updated state
// machine. Frames are delivered to Stream listeners in arrival order.
package subscription
