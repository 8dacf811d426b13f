package releases

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Errors with structured information for handling. None of them are retried.

// ErrNotModified reports a 304 answer to a conditional request. It is a skip
// outcome, not a failure.
var ErrNotModified = errors.New("not modified")

// IsNotModified checks if an error is a not-modified skip
func IsNotModified(err error) bool {
	return errors.Is(err, ErrNotModified)
}

// NetworkError indicates a network/transport error
type NetworkError struct {
	Source  string // API source (e.g., "github")
	URL     string // URL that failed
	Wrapped error  // Underlying error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error fetching from %s (%s): %v", e.Source, e.URL, e.Wrapped)
}

func (e *NetworkError) Unwrap() error {
	return e.Wrapped
}

// StatusError indicates an HTTP status other than 200 or 304
type StatusError struct {
	Resource   string // e.g. "release latest", "release list page 2"
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to retrieve %s: HTTP %d", e.Resource, e.StatusCode)
}

// RateLimitError indicates a rate limit was hit. It is classified so callers
// can report it; no back-off is attempted.
type RateLimitError struct {
	// Source is the API that rate limited
	Source string

	// StatusCode is 403 or 429
	StatusCode int

	// RetryAfter is when the rate limit resets, from X-RateLimit-Reset
	RetryAfter time.Time

	// Limit is the rate limit that was exceeded (requests per hour)
	Limit int

	// Remaining is how many requests are left
	Remaining int

	// Message is a human-readable explanation
	Message string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter.IsZero() {
		return fmt.Sprintf("%s rate limit exceeded (%d/%d): %s", e.Source, e.Remaining, e.Limit, e.Message)
	}

	wait := time.Until(e.RetryAfter)
	if wait < 0 {
		wait = 0
	}

	return fmt.Sprintf("%s rate limit exceeded (%d/%d), retry after %v: %s",
		e.Source, e.Remaining, e.Limit, wait.Round(time.Minute), e.Message)
}

// IsRateLimitError checks if an error is a rate limit error
func IsRateLimitError(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}

// SchemaError indicates a decoded body with an unexpected shape
type SchemaError struct {
	Resource string
	Message  string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("unexpected %s shape: %s", e.Resource, e.Message)
}

// ParseError indicates a response parsing/decoding error
type ParseError struct {
	Source  string // API source
	Message string // What failed to parse
	Wrapped error  // Underlying error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s response from %s: %v", e.Message, e.Source, e.Wrapped)
}

func (e *ParseError) Unwrap() error {
	return e.Wrapped
}

// checkStatus classifies a response. It returns nil for 200 and
// ErrNotModified for 304.
func checkStatus(resp *http.Response, resource, url string) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil

	case resp.StatusCode == http.StatusNotModified:
		return ErrNotModified

	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		return parseRateLimitError(resp, url)

	default:
		return &StatusError{Resource: resource, URL: url, StatusCode: resp.StatusCode}
	}
}

func parseRateLimitError(resp *http.Response, url string) error {
	// X-RateLimit-Limit: total requests per hour
	// X-RateLimit-Remaining: requests remaining
	// X-RateLimit-Reset: Unix timestamp when limit resets

	limit := 60 // Default unauthenticated limit
	if limitStr := resp.Header.Get("X-RateLimit-Limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = parsed
		}
	}

	remaining := 0
	if remainingStr := resp.Header.Get("X-RateLimit-Remaining"); remainingStr != "" {
		if parsed, err := strconv.Atoi(remainingStr); err == nil {
			remaining = parsed
		}
	}

	var retryAfter time.Time
	if resetStr := resp.Header.Get("X-RateLimit-Reset"); resetStr != "" {
		if resetUnix, err := strconv.ParseInt(resetStr, 10, 64); err == nil {
			retryAfter = time.Unix(resetUnix, 0)
		}
	}

	return &RateLimitError{
		Source:     "github",
		StatusCode: resp.StatusCode,
		RetryAfter: retryAfter,
		Limit:      limit,
		Remaining:  remaining,
		Message:    fmt.Sprintf("HTTP %d for %s", resp.StatusCode, url),
	}
}
