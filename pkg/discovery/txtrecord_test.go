package discovery

import (
	"errors"
	"strings"
	"testing"
)

func TestEncodeStationTXT(t *testing.T) {
	info := &StationInfo{
		StationID: "sta-42",
		Cell:      "cell-3",
		TestType:  "burn-in",
		Firmware:  "2.1.0",
	}

	txt := EncodeStationTXT(info)

	if txt[TXTKeyStationID] != "sta-42" {
		t.Errorf("sid = %q, want %q", txt[TXTKeyStationID], "sta-42")
	}
	if txt[TXTKeyCell] != "cell-3" {
		t.Errorf("cell = %q, want %q", txt[TXTKeyCell], "cell-3")
	}
	if txt[TXTKeyTestType] != "burn-in" {
		t.Errorf("tt = %q, want %q", txt[TXTKeyTestType], "burn-in")
	}
	if txt[TXTKeyFirmware] != "2.1.0" {
		t.Errorf("fw = %q, want %q", txt[TXTKeyFirmware], "2.1.0")
	}
}

func TestEncodeStationTXTOmitsEmptyOptionals(t *testing.T) {
	txt := EncodeStationTXT(&StationInfo{StationID: "sta-42"})

	if len(txt) != 1 {
		t.Errorf("len(txt) = %d, want 1", len(txt))
	}
	if _, ok := txt[TXTKeyCell]; ok {
		t.Error("cell key present for empty value")
	}
}

func TestDecodeStationTXTRoundTrip(t *testing.T) {
	info := &StationInfo{
		StationID: "sta-42",
		Cell:      "cell-3",
		TestType:  "burn-in",
		Firmware:  "2.1.0",
	}

	decoded, err := DecodeStationTXT(EncodeStationTXT(info))
	if err != nil {
		t.Fatalf("DecodeStationTXT: %v", err)
	}

	if decoded.StationID != info.StationID {
		t.Errorf("StationID = %q, want %q", decoded.StationID, info.StationID)
	}
	if decoded.Cell != info.Cell {
		t.Errorf("Cell = %q, want %q", decoded.Cell, info.Cell)
	}
	if decoded.TestType != info.TestType {
		t.Errorf("TestType = %q, want %q", decoded.TestType, info.TestType)
	}
	if decoded.Firmware != info.Firmware {
		t.Errorf("Firmware = %q, want %q", decoded.Firmware, info.Firmware)
	}
}

func TestDecodeStationTXTMissingStationID(t *testing.T) {
	_, err := DecodeStationTXT(TXTRecordMap{TXTKeyCell: "cell-3"})
	if !errors.Is(err, ErrMissingRequired) {
		t.Errorf("err = %v, want ErrMissingRequired", err)
	}

	_, err = DecodeStationTXT(TXTRecordMap{TXTKeyStationID: ""})
	if !errors.Is(err, ErrMissingRequired) {
		t.Errorf("err = %v, want ErrMissingRequired", err)
	}
}

func TestTXTRecordStringConversion(t *testing.T) {
	txt := TXTRecordMap{"sid": "sta-42", "cell": "cell-3"}

	strs := TXTRecordsToStrings(txt)
	if len(strs) != 2 {
		t.Fatalf("len(strs) = %d, want 2", len(strs))
	}
	for _, s := range strs {
		if !strings.Contains(s, "=") {
			t.Errorf("entry %q lacks key=value form", s)
		}
	}

	back := StringsToTXTRecords(strs)
	if back["sid"] != "sta-42" || back["cell"] != "cell-3" {
		t.Errorf("round trip = %v, want %v", back, txt)
	}
}

func TestStringsToTXTRecordsBooleanFlag(t *testing.T) {
	txt := StringsToTXTRecords([]string{"flag", "k=v=extra"})

	if v, ok := txt["flag"]; !ok || v != "" {
		t.Errorf("flag = %q (present=%v), want empty value", v, ok)
	}
	// Only the first '=' splits.
	if txt["k"] != "v=extra" {
		t.Errorf("k = %q, want %q", txt["k"], "v=extra")
	}
}

func TestValidateInstanceName(t *testing.T) {
	if err := ValidateInstanceName("BenchView-sta-42"); err != nil {
		t.Errorf("valid name rejected: %v", err)
	}
	if err := ValidateInstanceName(""); err == nil {
		t.Error("empty name accepted")
	}
	if err := ValidateInstanceName(strings.Repeat("x", MaxInstanceNameLen+1)); !errors.Is(err, ErrInstanceNameTooLong) {
		t.Errorf("err = %v, want ErrInstanceNameTooLong", err)
	}
}

func TestMergeAddresses(t *testing.T) {
	merged := mergeAddresses([]string{"10.0.0.1"}, []string{"10.0.0.1", "10.0.0.2"})
	if len(merged) != 2 {
		t.Fatalf("len(merged) = %d, want 2", len(merged))
	}
	if merged[0] != "10.0.0.1" || merged[1] != "10.0.0.2" {
		t.Errorf("merged = %v", merged)
	}
}
