package cli

import (
	"errors"
	"fmt"
	"io"

	"todo-dashboard/internal/taskstore"
)

var errAborted = errors.New("aborted")

// alertError carries the user-facing alert text for a failed task operation.
type alertError struct {
	msg string
	err error
}

func (e *alertError) Error() string { return e.msg }

func (e *alertError) Unwrap() error { return e.err }

func taskFailure(prefix string, err error) error {
	return &alertError{msg: taskstore.AlertFor(prefix, err), err: err}
}

type notFoundError struct {
	id int
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("Task %d not found", e.id)
}

// reportedError marks an error whose message writeErr already printed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

// ReportError prints err to w unless a command already did. Cobra's own
// errors (unknown flags, wrong argument counts) are printed here.
func ReportError(w io.Writer, err error) {
	if err == nil {
		return
	}
	var re *reportedError
	if errors.As(err, &re) {
		return
	}
	fmt.Fprintln(w, "Error: "+err.Error())
}
