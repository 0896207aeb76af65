package station

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Frame validation errors.
var (
	ErrMalformedFrame = errors.New("malformed frame")
	ErrMissingTestID  = errors.New("frame missing test_id")
)

// stationWire is the raw shape of one dashboard snapshot entry. Pointer
// fields distinguish "absent" from "zero" so partial updates retain the
// previous value.
type stationWire struct {
	StationID       *string `json:"station_id"`
	Host            *string `json:"host"`
	Port            *int    `json:"port"`
	Status          *string `json:"status"`
	Cell            *string `json:"cell"`
	TestType        *string `json:"test_type"`
	TestDescription *string `json:"test_description"`
}

// parseDashboardFrame validates and decodes a dashboard snapshot frame:
// a JSON object keyed by "host:port".
func parseDashboardFrame(frame json.RawMessage) (map[string]stationWire, error) {
	var snapshot map[string]stationWire
	if err := json.Unmarshal(frame, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	return snapshot, nil
}

// mergeStation applies a partial update onto an existing record in place.
// Fields absent from the update keep their previous value.
func mergeStation(dst *Station, w stationWire) {
	if w.StationID != nil {
		dst.StationID = *w.StationID
	}
	if w.Host != nil {
		dst.Host = *w.Host
	}
	if w.Port != nil {
		dst.Port = *w.Port
	}
	if w.Status != nil {
		dst.Status = stationStatusFromWire(*w.Status)
	}
	if w.Cell != nil {
		dst.Cell = *w.Cell
	}
	if w.TestType != nil {
		dst.TestType = *w.TestType
	}
	if w.TestDescription != nil {
		dst.TestDescription = *w.TestDescription
	}
}

// testWire is the raw shape of one station test update frame.
type testWire struct {
	TestID *string        `json:"test_id"`
	Status *string        `json:"status"`
	State  *testStateWire `json:"state"`
}

type testStateWire struct {
	DUTID           *string         `json:"dut_id"`
	StartTimeMillis *int64          `json:"start_time_millis"`
	Phases          []phaseWire     `json:"phases"`
	Logs            []logRecordWire `json:"log_records"`
	Plugs           []plugStateWire `json:"plugs"`
}

type phaseWire struct {
	Name            string            `json:"name"`
	Status          *string           `json:"status"`
	StartTimeMillis *int64            `json:"start_time_millis"`
	EndTimeMillis   *int64            `json:"end_time_millis"`
	Measurements    []measurementWire `json:"measurements"`
	Attachments     []attachmentWire  `json:"attachments"`
}

type measurementWire struct {
	Name       string   `json:"name"`
	Outcome    *string  `json:"outcome"`
	Units      *string  `json:"units"`
	Validators []string `json:"validators"`
	Value      *string  `json:"value"`
}

type attachmentWire struct {
	Name     string  `json:"name"`
	MIMEType *string `json:"mime_type"`
}

type logRecordWire struct {
	Level           *string `json:"level"`
	Logger          *string `json:"logger"`
	Message         *string `json:"message"`
	TimestampMillis *int64  `json:"timestamp_millis"`
}

type plugStateWire struct {
	Name   string  `json:"name"`
	Type   *string `json:"type"`
	Prompt *string `json:"prompt"`
}

// parseTestFrame validates and decodes a station test update frame.
func parseTestFrame(frame json.RawMessage) (testWire, error) {
	var w testWire
	if err := json.Unmarshal(frame, &w); err != nil {
		return testWire{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if w.TestID == nil || *w.TestID == "" {
		return testWire{}, ErrMissingTestID
	}
	return w, nil
}

// mergeTest applies a test update onto an existing record in place.
// descriptors is the declared phase list for this test id (possibly nil);
// it is used to synthesize not-yet-run phases after the reported ones.
func mergeTest(dst *TestState, w testWire, descriptors []string) {
	dst.TestID = *w.TestID
	if w.Status != nil {
		dst.Status = testStatusFromWire(*w.Status)
	}

	if w.State == nil {
		return
	}
	state := *w.State

	if state.DUTID != nil {
		dst.DUTID = *state.DUTID
	}
	if state.StartTimeMillis != nil {
		dst.StartTimeMillis = *state.StartTimeMillis
	}

	if state.Phases != nil {
		dst.Phases = buildPhases(state.Phases, descriptors)
		dst.Attachments = flattenAttachments(dst.Phases)
	}
	if state.Logs != nil {
		dst.Logs = buildLogs(state.Logs)
	}
	if state.Plugs != nil {
		dst.Plugs = buildPlugs(state.Plugs)
	}
}

// buildPhases converts reported phases and appends a synthesized waiting
// phase for every declared descriptor the report has not reached yet,
// preserving declaration order.
func buildPhases(reported []phaseWire, descriptors []string) []Phase {
	phases := make([]Phase, 0, len(reported)+len(descriptors))
	seen := make(map[string]bool, len(reported))

	for _, w := range reported {
		seen[w.Name] = true
		p := Phase{Name: w.Name}
		if w.Status != nil {
			p.Status = phaseStatusFromWire(*w.Status)
		}
		if w.StartTimeMillis != nil {
			p.StartTimeMillis = *w.StartTimeMillis
		}
		if w.EndTimeMillis != nil {
			p.EndTimeMillis = *w.EndTimeMillis
		}
		for _, m := range w.Measurements {
			p.Measurements = append(p.Measurements, buildMeasurement(m))
		}
		for _, a := range w.Attachments {
			p.Attachments = append(p.Attachments, buildAttachment(w.Name, a))
		}
		phases = append(phases, p)
	}

	for _, name := range descriptors {
		if seen[name] {
			continue
		}
		phases = append(phases, Phase{Name: name, Status: PhaseStatusWaiting})
	}

	return phases
}

func buildMeasurement(w measurementWire) Measurement {
	m := Measurement{Name: w.Name, Validators: w.Validators}
	if w.Outcome != nil {
		m.Status = measurementStatusFromWire(*w.Outcome)
	}
	if w.Units != nil {
		m.Units = *w.Units
	}
	if w.Value != nil {
		m.Value = *w.Value
	}
	return m
}

func buildAttachment(phaseName string, w attachmentWire) Attachment {
	a := Attachment{PhaseName: phaseName, Name: w.Name}
	if w.MIMEType != nil {
		a.MIMEType = *w.MIMEType
	}
	return a
}

func buildLogs(wires []logRecordWire) []LogRecord {
	logs := make([]LogRecord, 0, len(wires))
	for _, w := range wires {
		r := LogRecord{}
		if w.Level != nil {
			r.Level = *w.Level
		}
		if w.Logger != nil {
			r.Logger = *w.Logger
		}
		if w.Message != nil {
			r.Message = *w.Message
		}
		if w.TimestampMillis != nil {
			r.TimestampMillis = *w.TimestampMillis
		}
		logs = append(logs, r)
	}
	return logs
}

func buildPlugs(wires []plugStateWire) []PlugState {
	plugs := make([]PlugState, 0, len(wires))
	for _, w := range wires {
		p := PlugState{Name: w.Name}
		if w.Type != nil {
			p.Type = *w.Type
		}
		if w.Prompt != nil {
			p.Prompt = *w.Prompt
		}
		plugs = append(plugs, p)
	}
	return plugs
}

// flattenAttachments collects every phase attachment into one list for
// consumers that render an attachments panel.
func flattenAttachments(phases []Phase) []Attachment {
	var all []Attachment
	for _, p := range phases {
		all = append(all, p.Attachments...)
	}
	return all
}
