package discovery

import (
	"context"
	"errors"
	"time"
)

// mDNS service parameters for station discovery.
const (
	// ServiceTypeStation is the DNS-SD service type stations register.
	ServiceTypeStation = "_teststation._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultPort is the station API port used when a TXT record does
	// not carry one.
	DefaultPort = 12000

	// BrowseTimeout is the default timeout for browse operations.
	BrowseTimeout = 10 * time.Second

	// MaxInstanceNameLen is the DNS label limit for instance names.
	MaxInstanceNameLen = 63
)

// TXT record keys.
const (
	// TXTKeyStationID is the backend-assigned station identifier.
	TXTKeyStationID = "sid"

	// TXTKeyCell is the station's cell label.
	TXTKeyCell = "cell"

	// TXTKeyTestType is the test type the station runs.
	TXTKeyTestType = "tt"

	// TXTKeyFirmware is the backend firmware/framework version.
	TXTKeyFirmware = "fw"
)

// Discovery errors.
var (
	// ErrMissingRequired indicates a TXT record lacks a required key.
	ErrMissingRequired = errors.New("missing required TXT record")

	// ErrInvalidTXTRecord indicates a TXT record value is malformed.
	ErrInvalidTXTRecord = errors.New("invalid TXT record")

	// ErrInstanceNameTooLong indicates an instance name exceeds the DNS
	// label limit.
	ErrInstanceNameTooLong = errors.New("instance name too long")

	// ErrNotFound indicates no matching station was discovered.
	ErrNotFound = errors.New("station not found")
)

// StationInfo is the identity a station backend advertises.
type StationInfo struct {
	// StationID is the backend-assigned identifier. Required.
	StationID string

	// Port is the station API port. Zero means DefaultPort.
	Port uint16

	// Optional descriptive fields.
	Cell     string
	TestType string
	Firmware string
}

// StationEntry is one discovered station backend.
type StationEntry struct {
	// InstanceName is the mDNS instance name.
	InstanceName string

	// StationID is the backend-assigned identifier from the TXT record.
	StationID string

	// Host and Port locate the station API.
	Host string
	Port uint16

	// Addresses are the resolved IP addresses, aggregated across
	// interfaces.
	Addresses []string

	// Optional descriptive fields from the TXT record.
	Cell     string
	TestType string
	Firmware string
}

// Browser finds station backends on the local network.
type Browser interface {
	// BrowseStations searches for station backends. The channel emits
	// each station once and is closed when the context is cancelled.
	BrowseStations(ctx context.Context) (<-chan *StationEntry, error)

	// FindByStationID searches until a station with the given id
	// answers or the context expires.
	FindByStationID(ctx context.Context, stationID string) (*StationEntry, error)

	// Stop stops all active browsing operations.
	Stop()
}

// Advertiser announces a station backend on the local network. Station
// backends written in Go use this; the dashboard only browses.
type Advertiser interface {
	// Advertise starts announcing the station. A second call replaces
	// the previous announcement.
	Advertise(ctx context.Context, info *StationInfo) error

	// Update rewrites the TXT record of the active announcement.
	Update(info *StationInfo) error

	// Stop withdraws the announcement.
	Stop()
}

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// BrowseTimeout is the default timeout for browse operations.
	// Default: 10 seconds.
	BrowseTimeout time.Duration

	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string
}

// DefaultBrowserConfig returns the default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		BrowseTimeout: BrowseTimeout,
		Interface:     "",
	}
}

// AdvertiserConfig configures advertiser behavior.
type AdvertiserConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// TTL overrides the record time-to-live. Zero keeps the library
	// default.
	TTL time.Duration
}
