package taskdb

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("task not found")
	ErrDuplicateID = errors.New("task id already exists")
)

// NotFoundError names the missing task. It matches ErrNotFound.
type NotFoundError struct{ ID int }

func (e *NotFoundError) Error() string        { return fmt.Sprintf("Task %d not found", e.ID) }
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// DuplicateError names the id that is already taken. It matches ErrDuplicateID.
type DuplicateError struct{ ID int }

func (e *DuplicateError) Error() string        { return fmt.Sprintf("Task id %d already exists", e.ID) }
func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicateID }
