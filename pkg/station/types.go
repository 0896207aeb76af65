package station

import "fmt"

// StationStatus is the reachability of a station backend as reported by
// the dashboard snapshot.
type StationStatus uint8

const (
	// StationStatusUnknown indicates the backend reported an unrecognized
	// status string.
	StationStatusUnknown StationStatus = iota

	// StationStatusOnline indicates the station is reachable.
	StationStatusOnline

	// StationStatusUnreachable indicates the station missed its checkins.
	StationStatusUnreachable
)

// String returns a human-readable status name.
func (s StationStatus) String() string {
	switch s {
	case StationStatusOnline:
		return "ONLINE"
	case StationStatusUnreachable:
		return "UNREACHABLE"
	default:
		return "UNKNOWN"
	}
}

// stationStatusFromWire maps the backend's status string to the enum.
func stationStatusFromWire(s string) StationStatus {
	switch s {
	case "ONLINE":
		return StationStatusOnline
	case "UNREACHABLE":
		return StationStatusUnreachable
	default:
		return StationStatusUnknown
	}
}

// Station is one test station known to the dashboard.
type Station struct {
	// StationID is the backend-assigned identifier.
	StationID string

	// Host and Port locate the station's API.
	Host string
	Port int

	// Status is the reachability reported by the last snapshot.
	Status StationStatus

	// Descriptive fields; optional, retained across partial updates.
	Cell            string
	TestType        string
	TestDescription string
}

// Key returns the store key for this station.
func (s *Station) Key() string {
	return StationKey(s.Host, s.Port)
}

// StationKey builds the "host:port" store key.
func StationKey(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
