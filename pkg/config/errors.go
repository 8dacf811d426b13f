package config

import "fmt"

// Error reports invalid configuration. It is always fatal and is raised
// before any network activity.
type Error struct {
	Key     string
	Message string
	Wrapped error
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("invalid %s: %s: %v", e.Key, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("invalid %s: %s", e.Key, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}
