package model

import (
	"time"
)

// Task is a single to-do item.
type Task struct {
	ID          string
	Title       string
	Description string
	DueDate     time.Time
	Importance  Importance
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// State returns the completion-state label of the task.
func (t Task) State() State {
	if t.Completed {
		return StateCompleted
	}
	return StatePending
}

// State is the completion-state label used for filtering.
type State string

const (
	StatePending   State = "pending"
	StateCompleted State = "completed"
)

// DateOnly truncates t to its calendar date at 00:00 UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
