// Package exitcode provides standardized exit codes for relinfo
package exitcode

// Exit codes for the relinfo CLI
const (
	Success         = 0
	GeneralError    = 1
	ConfigError     = 2
	SchemaError     = 3
	FileSystemError = 4
	NetworkError    = 5
	StatusError     = 6
	TimeoutError    = 7
)

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case ConfigError:
		return "Configuration error"
	case SchemaError:
		return "Unexpected response shape"
	case FileSystemError:
		return "File system error"
	case NetworkError:
		return "Network error"
	case StatusError:
		return "Upstream status error"
	case TimeoutError:
		return "Timeout error"
	default:
		return "Unknown error"
	}
}
