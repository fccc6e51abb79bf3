package taskstore

import (
	"errors"

	"todo-dashboard/internal/apiclient"
)

// Alert texts shown by every front end. The operation prefixes are followed by Reason(err).
const (
	AlertEmptyName = "Please enter a task name"
	AlertLoad      = "Could not load tasks. Please try again later."
	AlertAdd       = "Could not add task: "
	AlertUpdate    = "Could not update task: "
	AlertToggle    = "Could not toggle task status: "
	AlertDelete    = "Could not delete task: "

	networkReason = "Failed to connect to server. Is the API running?"
)

// Reason is the part of an alert after its prefix: the failure as the user
// should read it.
func Reason(err error) string {
	var se *apiclient.StatusError
	if errors.As(err, &se) {
		return se.Error()
	}
	if apiclient.IsTransport(err) {
		return networkReason
	}
	if inner := errors.Unwrap(err); inner != nil {
		return inner.Error()
	}
	return err.Error()
}

// AlertFor maps an operation error to the alert text. A failed reload after
// the operation reports the load alert instead.
func AlertFor(prefix string, err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrEmptyName) {
		return AlertEmptyName
	}
	var le *LoadError
	if errors.As(err, &le) {
		return AlertLoad
	}
	return prefix + Reason(err)
}
