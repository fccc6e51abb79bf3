package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnexpectedShape is returned when a 2xx body is not a task list.
var ErrUnexpectedShape = errors.New("unexpected response format from server")

// StatusError is an application-level failure: the server answered with a non-2xx status.
type StatusError struct {
	Op         string
	Method     string
	URL        string
	StatusCode int

	// Detail is the human-readable reason parsed from the error payload, if any.
	Detail string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
}

// TransportError means the request never produced an HTTP response
// (connection refused, DNS failure, reset, ...).
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: failed to reach %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError wraps a 2xx response whose body could not be decoded.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *DecodeError) Unwrap() error { return e.Err }

func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// errorDetail extracts a reason from an error payload. It understands the chat
// endpoint's {reply} and the common {detail}, {message}, {error} shapes.
func errorDetail(body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, k := range []string{"reply", "detail", "message", "error"} {
		raw, ok := payload[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}
