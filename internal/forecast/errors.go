package forecast

import (
	"errors"
	"fmt"
)

// Fetch failures fall into three groups. The poller handles them identically,
// but they stay distinct for logging and metrics.

// TransportError covers connection failures and timeouts.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("transport: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// RemoteStatusError covers HTTP responses with status >= 400.
type RemoteStatusError struct {
	URL        string
	StatusCode int
}

func (e *RemoteStatusError) Error() string {
	return fmt.Sprintf("%s returned %d", e.URL, e.StatusCode)
}

// ParseError covers malformed or structurally incomplete payloads.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// Reason maps a fetch error onto its taxonomy bucket for log fields and
// metric labels.
func Reason(err error) string {
	var (
		te *TransportError
		se *RemoteStatusError
		pe *ParseError
	)
	switch {
	case errors.As(err, &te):
		return "transport"
	case errors.As(err, &se):
		return "status"
	case errors.As(err, &pe):
		return "parse"
	default:
		return "other"
	}
}
