package apiclient

import (
	"errors"
	"fmt"
	"strings"
)

// NetworkError is a transport failure: DNS, refused connection, reset,
// timeout. Retryable.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a 5xx response. Retryable.
type ServerError struct {
	Op     string
	Status int
	Body   string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: server error %d: %s", e.Op, e.Status, e.Body)
}

// ClientError is a 4xx response other than 404. Not retried.
type ClientError struct {
	Op     string
	Status int
	Body   string
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("%s: client error %d: %s", e.Op, e.Status, e.Body)
}

// NotFoundError is a 404, or a lookup the API reported as missing.
type NotFoundError struct {
	Op       string
	Resource string
	ID       int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s %d not found", e.Op, e.Resource, e.ID)
}

// ValidationError rejects input before any request is made.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// DataShapeError describes a received record that lacks required fields.
type DataShapeError struct {
	Index   int
	Missing []string
	Err     error
}

func (e *DataShapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("record %d: malformed: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("record %d: missing %s", e.Index, strings.Join(e.Missing, ", "))
}

func (e *DataShapeError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is worth another attempt.
func IsRetryable(err error) bool {
	var netErr *NetworkError
	var srvErr *ServerError
	return errors.As(err, &netErr) || errors.As(err, &srvErr)
}
