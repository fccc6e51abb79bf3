package model

import (
	"fmt"
	"strings"
)

// Task mirrors the server-owned task record.
type Task struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      bool   `json:"status"`
}

// Completed reports whether the task is done.
func (t Task) Completed() bool { return t.Status }

type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// Filters lists the filters in display order.
var Filters = []Filter{FilterAll, FilterActive, FilterCompleted}

func ParseFilter(s string) (Filter, error) {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case FilterAll:
		return FilterAll, nil
	case FilterActive:
		return FilterActive, nil
	case FilterCompleted:
		return FilterCompleted, nil
	default:
		return "", fmt.Errorf("invalid filter %q (expected all|active|completed)", s)
	}
}

// Match reports whether a task with the given status belongs to the filter.
func (f Filter) Match(status bool) bool {
	switch f {
	case FilterActive:
		return !status
	case FilterCompleted:
		return status
	default:
		return true
	}
}

func (f Filter) Label() string {
	switch f {
	case FilterActive:
		return "Active"
	case FilterCompleted:
		return "Completed"
	default:
		return "All"
	}
}

// Stats holds the derived task counters.
type Stats struct {
	Active    int `json:"active"`
	Completed int `json:"completed"`
}
