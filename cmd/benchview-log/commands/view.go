// Package commands implements the benchview-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/benchview/benchview-go/pkg/log"
)

// FilterFlags holds raw command line filter values.
type FilterFlags struct {
	Layer     string
	Category  string
	ConnID    string
	URL       string
	TimeStart string
	TimeEnd   string
}

// BuildFilter converts command line flag values into a log.Filter.
func BuildFilter(flags FilterFlags) (log.Filter, error) {
	filter := log.Filter{
		ConnectionID: flags.ConnID,
		URL:          flags.URL,
	}

	if flags.Layer != "" {
		l, err := ParseLayerFlag(flags.Layer)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Layer = &l
	}

	if flags.Category != "" {
		c, err := ParseCategoryFlag(flags.Category)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Category = &c
	}

	if flags.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, flags.TimeStart)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid time-start: %w", err)
		}
		filter.TimeStart = &t
	}

	if flags.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, flags.TimeEnd)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid time-end: %w", err)
		}
		filter.TimeEnd = &t
	}

	return filter, nil
}

// ParseLayerFlag parses a layer name from the command line.
func ParseLayerFlag(s string) (log.Layer, error) {
	switch s {
	case "transport":
		return log.LayerTransport, nil
	case "stream":
		return log.LayerStream, nil
	case "service":
		return log.LayerService, nil
	default:
		return 0, fmt.Errorf("unknown layer %q (transport, stream, service)", s)
	}
}

// ParseCategoryFlag parses a category name from the command line.
func ParseCategoryFlag(s string) (log.Category, error) {
	switch s {
	case "state":
		return log.CategoryState, nil
	case "frame":
		return log.CategoryFrame, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("unknown category %q (state, frame, error)", s)
	}
}

// RunView reads the capture file and prints matching events.
func RunView(path string, filter log.Filter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open capture file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(w, event)
	}

	return nil
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	connID := shortenConnID(event.ConnectionID)

	fmt.Fprintf(w, "%s [conn:%s] %s %s\n", ts, connID, event.Layer, eventTypeLabel(event))
	if event.URL != "" {
		fmt.Fprintf(w, "  URL: %s\n", event.URL)
	}

	switch {
	case event.Frame != nil:
		formatFrameDetails(w, event.Frame)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// eventTypeLabel names the event payload for the header line.
func eventTypeLabel(event log.Event) string {
	switch {
	case event.Frame != nil:
		return "Frame"
	case event.StateChange != nil:
		return "State"
	case event.Error != nil:
		return "Error"
	default:
		return "Unknown"
	}
}

// shortenConnID returns the first 8 characters of the connection ID.
func shortenConnID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// formatFrameDetails writes frame-specific details.
func formatFrameDetails(w io.Writer, frame *log.FrameEvent) {
	fmt.Fprintf(w, "  Size: %d bytes\n", frame.Size)
	if len(frame.Payload) > 0 {
		fmt.Fprintf(w, "  Data: %s", frame.Payload)
		if frame.Truncated {
			fmt.Fprintf(w, " (truncated)")
		}
		fmt.Fprintln(w)
	}
}

// formatStateChangeDetails writes state transition details.
func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  %s: %s -> %s\n", sc.Entity, sc.OldState, sc.NewState)
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
	if sc.RetryAt != nil {
		fmt.Fprintf(w, "  RetryAt: %s\n", sc.RetryAt.UTC().Format(time.RFC3339))
	}
}

// formatErrorDetails writes error details.
func formatErrorDetails(w io.Writer, e *log.ErrorEventData) {
	fmt.Fprintf(w, "  Error: %s\n", e.Message)
	if e.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", e.Context)
	}
}
