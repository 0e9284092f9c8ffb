package core

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized       = errors.New("no access token")
	ErrCloseNotConfigured = errors.New("close position endpoint is not configured")
	ErrEmptyAddress       = errors.New("wallet address is required")
)

// UpstreamError is returned when the venue answers with a non-success status
// or with an error code embedded in an otherwise successful body.
type UpstreamError struct {
	StatusCode int
	Message    string // venue "message" field, when present
	Body       string // raw response body
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("venue error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("venue error %d: %s", e.StatusCode, e.Body)
}

// TransportError wraps a failure to reach the venue at all.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("venue %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
