// Package version provides station framework version parsing and comparison.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Current is the station framework version this client tracks.
const Current = "1.0"

// FrameworkVersion represents a parsed "major.minor" framework version as
// advertised by stations, for example in their mDNS firmware TXT record.
// An optional ".patch" component is accepted and retained.
type FrameworkVersion struct {
	Major uint16
	Minor uint16
	Patch uint16
}

// Parse parses a "major.minor" or "major.minor.patch" version string.
func Parse(s string) (FrameworkVersion, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 && len(parts) != 3 {
		return FrameworkVersion{}, fmt.Errorf("invalid version %q: expected major.minor", s)
	}

	major, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil || parts[0] == "" {
		return FrameworkVersion{}, fmt.Errorf("invalid version %q: bad major component", s)
	}

	minor, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil || parts[1] == "" {
		return FrameworkVersion{}, fmt.Errorf("invalid version %q: bad minor component", s)
	}

	var patch uint64
	if len(parts) == 3 {
		patch, err = strconv.ParseUint(parts[2], 10, 16)
		if err != nil || parts[2] == "" {
			return FrameworkVersion{}, fmt.Errorf("invalid version %q: bad patch component", s)
		}
	}

	return FrameworkVersion{Major: uint16(major), Minor: uint16(minor), Patch: uint16(patch)}, nil
}

// String returns the version as "major.minor" or "major.minor.patch" when a
// patch component is present.
func (v FrameworkVersion) String() string {
	if v.Patch != 0 {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compatible returns true if the other version has the same major version.
func (v FrameworkVersion) Compatible(other FrameworkVersion) bool {
	return v.Major == other.Major
}

// CompatibleWithCurrent reports whether a station-advertised version string
// shares a major version with Current. Unparseable strings are treated as
// compatible since stations are free to advertise arbitrary firmware labels.
func CompatibleWithCurrent(s string) bool {
	if s == "" {
		return true
	}
	v, err := Parse(s)
	if err != nil {
		return true
	}
	current, _ := Parse(Current)
	return current.Compatible(v)
}
