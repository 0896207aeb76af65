// Package log provides structured event capture for benchview streams.
//
// This package defines the Logger interface and Event types for recording
// what happens on a subscription: transport attempts, state transitions,
// inbound frames, and frame handling errors. It is separate from
// operational logging (slog): event capture produces a machine-readable
// trace of stream behavior for debugging reconnect storms and parse
// failures after the fact.
//
// # Basic Usage
//
// Applications configure capture by providing a Logger implementation:
//
//	// For development: mirror events into slog
//	sub := subscription.New(provider, subscription.WithLogger(log.NewSlogAdapter(slog.Default())))
//
//	// For production: write to a binary capture file
//	capture, _ := log.NewFileLogger("/var/log/benchview/dashboard.blog")
//
//	// Both at once
//	log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), capture)
//
// # Event Types
//
// Events are captured at three layers:
//   - Transport: connection attempts opening and closing
//   - Stream: inbound frames (FrameEvent)
//   - Service: frame validation/parse errors (ErrorEventData)
//
// State transitions carry a StateChangeEvent at whichever layer produced
// them.
//
// # File Format
//
// Capture files use CBOR encoding with the .blog extension. Reader streams
// events back out of a capture file, optionally filtered.
package log
