package chat

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyMessage = errors.New("chat: message is empty")
	ErrBusy         = errors.New("chat: a request is already in progress")
)

// RequestError is an application-level failure: the server answered, but not
// with a usable reply.
type RequestError struct {
	Reason string
	Err    error
}

func (e *RequestError) Error() string { return fmt.Sprintf("chat: %s", e.Reason) }
func (e *RequestError) Unwrap() error { return e.Err }

// NetworkError means the server could not be reached.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("chat: %s: %v", NetworkReason, e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }
