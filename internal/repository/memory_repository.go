package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"taskdesk/internal/model"
)

// MemoryRepository keeps tasks in process memory. It is meant to be scoped to
// a single session through SessionProvider.
type MemoryRepository struct {
	mu    sync.RWMutex
	order []string
	tasks map[string]model.Task
}

var _ TaskStore = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tasks: make(map[string]model.Task)}
}

// Create adds a new task
func (r *MemoryRepository) Create(_ context.Context, task *model.Task) error {
	ensureID(task)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tasks[task.ID]; exists {
		return fmt.Errorf("%w: task %s already exists", ErrWrite, task.ID)
	}
	r.tasks[task.ID] = *task
	r.order = append(r.order, task.ID)
	return nil
}

// List returns tasks in insertion order
func (r *MemoryRepository) List(_ context.Context, filter ListFilter) ([]model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Task, 0, len(r.order))
	for _, id := range r.order {
		if t := r.tasks[id]; filter.Match(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Get retrieves a task by its ID
func (r *MemoryRepository) Get(_ context.Context, id string) (*model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return &t, nil
}

// Update replaces the editable fields of an existing task
func (r *MemoryRepository) Update(_ context.Context, task *model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.tasks[task.ID]
	if !ok {
		return ErrTaskNotFound
	}
	task.CreatedAt = current.CreatedAt
	task.UpdatedAt = time.Now().UTC()
	r.tasks[task.ID] = *task
	return nil
}

// UpdateStatus sets the completed flag of a task
func (r *MemoryRepository) UpdateStatus(_ context.Context, id string, completed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return ErrTaskNotFound
	}
	t.Completed = completed
	t.UpdatedAt = time.Now().UTC()
	r.tasks[id] = t
	return nil
}

// Delete removes a task by its ID
func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return nil
	}
	delete(r.tasks, id)
	r.order = slices.DeleteFunc(r.order, func(v string) bool { return v == id })
	return nil
}

func (r *MemoryRepository) Probe(context.Context) error { return nil }

func (r *MemoryRepository) Close() error { return nil }
