package taskstore

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyName rejects an add whose name is blank after trimming. No request is sent.
	ErrEmptyName = errors.New("task name is empty")

	ErrUnknownField = errors.New("unknown task field")
	ErrInvalidValue = errors.New("invalid field value")
)

type LoadError struct{ Err error }

func (e *LoadError) Error() string { return fmt.Sprintf("load tasks: %v", e.Err) }

func (e *LoadError) Unwrap() error { return e.Err }

type AddError struct {
	Name string
	Err  error
}

func (e *AddError) Error() string { return fmt.Sprintf("add task %q: %v", e.Name, e.Err) }

func (e *AddError) Unwrap() error { return e.Err }

type UpdateError struct {
	ID    int
	Field string
	Err   error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("update task %d (%s): %v", e.ID, e.Field, e.Err)
}

func (e *UpdateError) Unwrap() error { return e.Err }

type DeleteError struct {
	ID  int
	Err error
}

func (e *DeleteError) Error() string { return fmt.Sprintf("delete task %d: %v", e.ID, e.Err) }

func (e *DeleteError) Unwrap() error { return e.Err }
