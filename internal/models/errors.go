package models

import "fmt"

// ValidationReason names why a requested range was rejected before any request
type ValidationReason string

const (
	ReasonEmpty  ValidationReason = "empty"  // a date field is blank
	ReasonFormat ValidationReason = "format" // not a YYYY-MM-DD date
	ReasonOrder  ValidationReason = "order"  // start is not before end
	ReasonPast   ValidationReason = "past"   // start is before today
)

// ValidationError is raised by the range selector; no request is sent
type ValidationError struct {
	Reason ValidationReason
	Field  string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid date range (%s): %s", e.Reason, e.Field)
	}
	return fmt.Sprintf("invalid date range (%s)", e.Reason)
}

// TransportError covers network failures and bodies that are not JSON
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("forecast backend unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerError is a response that explicitly signals failure.
// Message is the server-supplied text and may be empty.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("forecast backend error (HTTP %d)", e.StatusCode)
	}
	return fmt.Sprintf("forecast backend error (HTTP %d): %s", e.StatusCode, e.Message)
}
