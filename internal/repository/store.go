package repository

import (
	"context"

	"taskdesk/internal/model"
)

// ListFilter is the predicate a backend may push down when listing.
type ListFilter struct {
	Completed *bool
}

// Match reports whether t passes the filter.
func (f ListFilter) Match(t model.Task) bool {
	return f.Completed == nil || *f.Completed == t.Completed
}

func filterList(tasks []model.Task, f ListFilter) []model.Task {
	if f.Completed == nil {
		return tasks
	}
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// TaskStore is the persistence contract every backend implements.
//
// Delete is an idempotent no-op for unknown ids. List returns an empty slice,
// never an error, for an empty or uninitialised store.
type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	List(ctx context.Context, filter ListFilter) ([]model.Task, error)
	Get(ctx context.Context, id string) (*model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	UpdateStatus(ctx context.Context, id string, completed bool) error
	Delete(ctx context.Context, id string) error
	Probe(ctx context.Context) error
	Close() error
}
