package detection

import (
	"context"
	"errors"
	"fmt"
)

// InvalidInputError reports a selection that cannot be used: nothing was
// chosen or the payload is empty.
type InvalidInputError struct{ Reason string }

func (e *InvalidInputError) Error() string { return e.Reason }

var (
	// ErrNoSelection is returned when a submit is attempted without a selection.
	ErrNoSelection = &InvalidInputError{Reason: "Please select an image file first!"}
	// ErrEmptyFile is returned when the chosen file has no content.
	ErrEmptyFile = &InvalidInputError{Reason: "selected file is empty"}
)

// ServiceError carries a non-success HTTP status from the detection endpoint.
type ServiceError struct {
	StatusCode int
	StatusText string
}

func (e *ServiceError) Error() string { return "Server error: " + e.StatusText }

// MalformedResponseError wraps a body that could not be decoded as a result.
type MalformedResponseError struct{ Cause error }

func (e *MalformedResponseError) Error() string {
	if e.Cause != nil && e.Cause.Error() != "" {
		return e.Cause.Error()
	}
	return "malformed response"
}

func (e *MalformedResponseError) Unwrap() error { return e.Cause }

func errMissingField(name string) error { return fmt.Errorf("missing field %q", name) }

const fallbackMessage = "Something went wrong"

// Message returns the user facing text for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallbackMessage
}

// Kind classifies err for logs and metrics.
func Kind(err error) string {
	var (
		inv *InvalidInputError
		svc *ServiceError
		bad *MalformedResponseError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &inv):
		return "invalid_input"
	case errors.As(err, &svc):
		return "service"
	case errors.As(err, &bad):
		return "malformed"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "transport"
	}
}
