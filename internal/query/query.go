// Package query filters, orders and classifies in-memory task lists.
package query

import (
	"errors"
	"slices"

	"taskdesk/internal/model"
)

// ErrUnknownSortKey is returned for a sort key that is not one of the SortKey constants.
var ErrUnknownSortKey = errors.New("unknown sort key")

// SortKey selects the ordering applied by Sort.
type SortKey string

const (
	SortNewest     SortKey = "newest"
	SortOldest     SortKey = "oldest"
	SortDeadline   SortKey = "deadline"
	SortImportance SortKey = "importance"
)

// ParseSortKey validates a sort key. An empty key means SortNewest.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case "":
		return SortNewest, nil
	case SortNewest, SortOldest, SortDeadline, SortImportance:
		return k, nil
	}
	return "", ErrUnknownSortKey
}

// Filter narrows a task list. A nil slice selects everything for that dimension.
type Filter struct {
	States      []model.State
	Importances []model.Importance
}

// All is the filter that keeps every task.
var All = Filter{}

// Match reports whether a task passes both the state and the importance selection.
func (f Filter) Match(t model.Task) bool {
	if f.States != nil && !slices.Contains(f.States, t.State()) {
		return false
	}
	if f.Importances != nil && !slices.Contains(f.Importances, t.Importance) {
		return false
	}
	return true
}

// FilterTasks returns the tasks that match f, preserving input order.
func FilterTasks(tasks []model.Task, f Filter) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Sort orders tasks in place by key. Equal keys keep their input order.
func Sort(tasks []model.Task, key SortKey) error {
	var cmp func(a, b model.Task) int
	switch key {
	case SortNewest, "":
		cmp = func(a, b model.Task) int { return b.CreatedAt.Compare(a.CreatedAt) }
	case SortOldest:
		cmp = func(a, b model.Task) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case SortDeadline:
		cmp = func(a, b model.Task) int { return a.DueDate.Compare(b.DueDate) }
	case SortImportance:
		cmp = func(a, b model.Task) int { return a.Importance.Rank() - b.Importance.Rank() }
	default:
		return ErrUnknownSortKey
	}
	slices.SortStableFunc(tasks, cmp)
	return nil
}

// Apply filters and then sorts a copy of tasks. The input slice is left untouched.
func Apply(tasks []model.Task, f Filter, key SortKey) ([]model.Task, error) {
	out := FilterTasks(tasks, f)
	if err := Sort(out, key); err != nil {
		return nil, err
	}
	return out, nil
}
