package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/benchview/benchview-go/pkg/log"
)

// exportRecord is the flattened JSON shape of one capture event.
type exportRecord struct {
	Timestamp    string `json:"timestamp"`
	ConnectionID string `json:"connection_id"`
	URL          string `json:"url,omitempty"`
	Layer        string `json:"layer"`
	Category     string `json:"category"`

	// Frame fields
	FrameSize      int    `json:"frame_size,omitempty"`
	FramePayload   string `json:"frame_payload,omitempty"`
	FrameTruncated bool   `json:"frame_truncated,omitempty"`

	// State change fields
	Entity   string `json:"entity,omitempty"`
	OldState string `json:"old_state,omitempty"`
	NewState string `json:"new_state,omitempty"`
	Reason   string `json:"reason,omitempty"`
	RetryAt  string `json:"retry_at,omitempty"`

	// Error fields
	Error        string `json:"error,omitempty"`
	ErrorContext string `json:"error_context,omitempty"`
}

func toExportRecord(event log.Event) exportRecord {
	rec := exportRecord{
		Timestamp:    event.Timestamp.UTC().Format(time.RFC3339Nano),
		ConnectionID: event.ConnectionID,
		URL:          event.URL,
		Layer:        event.Layer.String(),
		Category:     event.Category.String(),
	}

	if event.Frame != nil {
		rec.FrameSize = event.Frame.Size
		rec.FramePayload = string(event.Frame.Payload)
		rec.FrameTruncated = event.Frame.Truncated
	}
	if event.StateChange != nil {
		rec.Entity = event.StateChange.Entity
		rec.OldState = event.StateChange.OldState
		rec.NewState = event.StateChange.NewState
		rec.Reason = event.StateChange.Reason
		if event.StateChange.RetryAt != nil {
			rec.RetryAt = event.StateChange.RetryAt.UTC().Format(time.RFC3339Nano)
		}
	}
	if event.Error != nil {
		rec.Error = event.Error.Message
		rec.ErrorContext = event.Error.Context
	}

	return rec
}

// RunExport converts the capture file to JSONL or CSV.
func RunExport(path, format, output string) error {
	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open capture file: %w", err)
	}
	defer reader.Close()

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format %q (jsonl, csv)", format)
	}
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	enc := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := enc.Encode(toExportRecord(event)); err != nil {
			return err
		}
	}
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "connection_id", "url", "layer", "category", "detail"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return cw.Error()
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		row := []string{
			event.Timestamp.UTC().Format(time.RFC3339Nano),
			event.ConnectionID,
			event.URL,
			event.Layer.String(),
			event.Category.String(),
			csvDetail(event),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
}

// csvDetail summarizes the event payload in one cell.
func csvDetail(event log.Event) string {
	switch {
	case event.Frame != nil:
		return "size=" + strconv.Itoa(event.Frame.Size)
	case event.StateChange != nil:
		return event.StateChange.OldState + "->" + event.StateChange.NewState
	case event.Error != nil:
		return event.Error.Message
	default:
		return ""
	}
}
