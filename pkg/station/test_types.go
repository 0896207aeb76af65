package station

// TestStatus is the overall state of one test run.
type TestStatus uint8

const (
	// TestStatusWaiting indicates the test has not started executing.
	TestStatusWaiting TestStatus = iota

	// TestStatusRunning indicates phases are executing.
	TestStatusRunning

	// TestStatusPass and the following are terminal outcomes.
	TestStatusPass
	TestStatusFail
	TestStatusError
	TestStatusTimeout
	TestStatusAborted
)

// String returns a human-readable status name.
func (s TestStatus) String() string {
	switch s {
	case TestStatusWaiting:
		return "WAITING_FOR_TEST_START"
	case TestStatusRunning:
		return "RUNNING"
	case TestStatusPass:
		return "PASS"
	case TestStatusFail:
		return "FAIL"
	case TestStatusError:
		return "ERROR"
	case TestStatusTimeout:
		return "TIMEOUT"
	case TestStatusAborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}

// testStatusFromWire maps the backend's status string to the enum.
func testStatusFromWire(s string) TestStatus {
	switch s {
	case "WAITING_FOR_TEST_START":
		return TestStatusWaiting
	case "RUNNING":
		return TestStatusRunning
	case "PASS":
		return TestStatusPass
	case "FAIL":
		return TestStatusFail
	case "ERROR":
		return TestStatusError
	case "TIMEOUT":
		return TestStatusTimeout
	case "ABORTED":
		return TestStatusAborted
	default:
		return TestStatusWaiting
	}
}

// PhaseStatus is the state of one phase within a test run.
type PhaseStatus uint8

const (
	// PhaseStatusWaiting indicates the phase has not run yet.
	PhaseStatusWaiting PhaseStatus = iota

	// PhaseStatusRunning indicates the phase is executing.
	PhaseStatusRunning

	// PhaseStatusPassed, PhaseStatusFailed and PhaseStatusSkipped are
	// terminal outcomes.
	PhaseStatusPassed
	PhaseStatusFailed
	PhaseStatusSkipped
)

// String returns a human-readable status name.
func (s PhaseStatus) String() string {
	switch s {
	case PhaseStatusWaiting:
		return "WAITING"
	case PhaseStatusRunning:
		return "RUNNING"
	case PhaseStatusPassed:
		return "PASS"
	case PhaseStatusFailed:
		return "FAIL"
	case PhaseStatusSkipped:
		return "SKIP"
	default:
		return "UNKNOWN"
	}
}

// phaseStatusFromWire maps the backend's status string to the enum.
func phaseStatusFromWire(s string) PhaseStatus {
	switch s {
	case "RUNNING":
		return PhaseStatusRunning
	case "PASS":
		return PhaseStatusPassed
	case "FAIL":
		return PhaseStatusFailed
	case "SKIP":
		return PhaseStatusSkipped
	default:
		return PhaseStatusWaiting
	}
}

// MeasurementStatus is the validation outcome of one measurement.
type MeasurementStatus uint8

const (
	// MeasurementStatusUnset indicates the measurement was never taken.
	MeasurementStatusUnset MeasurementStatus = iota

	// MeasurementStatusPass and MeasurementStatusFail are outcomes.
	MeasurementStatusPass
	MeasurementStatusFail
)

// String returns a human-readable status name.
func (s MeasurementStatus) String() string {
	switch s {
	case MeasurementStatusPass:
		return "PASS"
	case MeasurementStatusFail:
		return "FAIL"
	default:
		return "UNSET"
	}
}

// measurementStatusFromWire maps the backend's outcome string to the enum.
func measurementStatusFromWire(s string) MeasurementStatus {
	switch s {
	case "PASS":
		return MeasurementStatusPass
	case "FAIL":
		return MeasurementStatusFail
	default:
		return MeasurementStatusUnset
	}
}

// TestState is one test run on a station.
type TestState struct {
	// TestID identifies the run.
	TestID string

	// Status is the overall run state.
	Status TestStatus

	// DUTID identifies the device under test, once known.
	DUTID string

	// StartTimeMillis is the run start in epoch milliseconds.
	StartTimeMillis int64

	// Phases holds executed and running phases in execution order,
	// followed by not-yet-run phases synthesized from the descriptor
	// list in declaration order.
	Phases []Phase

	// Logs are the run's log records in emission order.
	Logs []LogRecord

	// Attachments is a flattened view of every phase attachment.
	Attachments []Attachment

	// Plugs are the operator-interaction endpoints currently active.
	Plugs []PlugState
}

// Phase is one phase of a test run.
type Phase struct {
	Name            string
	Status          PhaseStatus
	StartTimeMillis int64
	EndTimeMillis   int64
	Measurements    []Measurement
	Attachments     []Attachment
}

// Measurement is one measured value within a phase.
type Measurement struct {
	Name       string
	Status     MeasurementStatus
	Units      string
	Validators []string
	Value      string
}

// LogRecord is one log line emitted by a test run.
type LogRecord struct {
	Level           string
	Logger          string
	Message         string
	TimestampMillis int64
}

// Attachment is one file attached by a phase.
type Attachment struct {
	// PhaseName is the phase that produced the attachment.
	PhaseName string

	Name     string
	MIMEType string
}

// PlugState describes one operator-interaction endpoint of a test run.
type PlugState struct {
	Name   string
	Type   string
	Prompt string
}
