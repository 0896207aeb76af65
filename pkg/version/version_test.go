package version

import (
	"testing"
)

func TestParse_Valid(t *testing.T) {
	tests := []struct {
		input string
		major uint16
		minor uint16
		patch uint16
	}{
		{"1.0", 1, 0, 0},
		{"1.1", 1, 1, 0},
		{"2.0", 2, 0, 0},
		{"10.23", 10, 23, 0},
		{"1.4.2", 1, 4, 2},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.input, err)
			}
			if v.Major != tt.major {
				t.Errorf("Major = %d, want %d", v.Major, tt.major)
			}
			if v.Minor != tt.minor {
				t.Errorf("Minor = %d, want %d", v.Minor, tt.minor)
			}
			if v.Patch != tt.patch {
				t.Errorf("Patch = %d, want %d", v.Patch, tt.patch)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []string{
		"",
		"1",
		"abc",
		"1.x",
		"-1.0",
		"1.0.0.0",
		"1..0",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			if err == nil {
				t.Errorf("Parse(%q) should return error", input)
			}
		})
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		v    FrameworkVersion
		want string
	}{
		{FrameworkVersion{Major: 1, Minor: 0}, "1.0"},
		{FrameworkVersion{Major: 2, Minor: 3}, "2.3"},
		{FrameworkVersion{Major: 1, Minor: 4, Patch: 2}, "1.4.2"},
	}

	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestCompatible(t *testing.T) {
	v10, _ := Parse("1.0")
	v12, _ := Parse("1.2")
	v20, _ := Parse("2.0")

	if !v10.Compatible(v12) {
		t.Error("1.0 should be compatible with 1.2")
	}
	if !v12.Compatible(v10) {
		t.Error("1.2 should be compatible with 1.0")
	}
	if v10.Compatible(v20) {
		t.Error("1.0 should not be compatible with 2.0")
	}
}

func TestCompatibleWithCurrent(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"1.0", true},
		{"1.7", true},
		{"1.7.3", true},
		{"2.0", false},
		{"", true},
		{"custom-build", true},
	}

	for _, tt := range tests {
		if got := CompatibleWithCurrent(tt.input); got != tt.want {
			t.Errorf("CompatibleWithCurrent(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestCurrentParses(t *testing.T) {
	if _, err := Parse(Current); err != nil {
		t.Fatalf("Current %q does not parse: %v", Current, err)
	}
}
