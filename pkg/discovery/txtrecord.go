package discovery

import (
	"fmt"
	"strings"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeStationTXT creates TXT records for station discovery.
func EncodeStationTXT(info *StationInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	// Required
	txt[TXTKeyStationID] = info.StationID

	// Optional
	if info.Cell != "" {
		txt[TXTKeyCell] = info.Cell
	}
	if info.TestType != "" {
		txt[TXTKeyTestType] = info.TestType
	}
	if info.Firmware != "" {
		txt[TXTKeyFirmware] = info.Firmware
	}

	return txt
}

// DecodeStationTXT parses TXT records from station discovery.
func DecodeStationTXT(txt TXTRecordMap) (*StationInfo, error) {
	info := &StationInfo{}

	var ok bool
	info.StationID, ok = txt[TXTKeyStationID]
	if !ok || info.StationID == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyStationID)
	}

	info.Cell = txt[TXTKeyCell]
	info.TestType = txt[TXTKeyTestType]
	info.Firmware = txt[TXTKeyFirmware]

	return info, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to a slice of "key=value"
// strings, the format mDNS libraries use.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	return result
}

// StringsToTXTRecords parses a slice of "key=value" strings into a
// TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		parts := strings.SplitN(s, "=", 2)
		if len(parts) == 2 {
			txt[parts[0]] = parts[1]
		} else if len(parts) == 1 && parts[0] != "" {
			// Key without value (boolean flag)
			txt[parts[0]] = ""
		}
	}
	return txt
}

// ValidateInstanceName checks if an instance name is valid for mDNS.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInstanceNameTooLong)
	}
	if len(name) > MaxInstanceNameLen {
		return ErrInstanceNameTooLong
	}
	return nil
}
