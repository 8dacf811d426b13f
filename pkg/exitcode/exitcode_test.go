package exitcode

import (
	"testing"
)

func TestExitCodeConstants(t *testing.T) {
	codes := map[string]int{
		"Success":         Success,
		"GeneralError":    GeneralError,
		"ConfigError":     ConfigError,
		"SchemaError":     SchemaError,
		"FileSystemError": FileSystemError,
		"NetworkError":    NetworkError,
		"StatusError":     StatusError,
		"TimeoutError":    TimeoutError,
	}
	seen := make(map[int]string)
	for name, code := range codes {
		if other, dup := seen[code]; dup {
			t.Errorf("%s and %s share exit code %d", name, other, code)
		}
		seen[code] = name
	}
	if Success != 0 {
		t.Errorf("Success = %v, expected 0", Success)
	}
	if ConfigError != 2 {
		t.Errorf("ConfigError = %v, expected 2", ConfigError)
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{Success, "Success"},
		{GeneralError, "General error"},
		{ConfigError, "Configuration error"},
		{SchemaError, "Unexpected response shape"},
		{FileSystemError, "File system error"},
		{NetworkError, "Network error"},
		{StatusError, "Upstream status error"},
		{TimeoutError, "Timeout error"},
		{999, "Unknown error"},
	}

	for _, tt := range tests {
		if got := String(tt.code); got != tt.expected {
			t.Errorf("String(%d) = %q, expected %q", tt.code, got, tt.expected)
		}
	}
}
