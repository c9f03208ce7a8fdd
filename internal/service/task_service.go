// Package service implements the task operations on top of a TaskStore.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"taskdesk/internal/model"
	"taskdesk/internal/query"
	"taskdesk/internal/repository"
	"taskdesk/internal/stats"
)

// ErrValidation is returned when input is rejected before reaching the store.
var ErrValidation = errors.New("validation failed")

var validate = validator.New()

// TaskInput carries the user-editable fields of a task.
type TaskInput struct {
	Title       string `validate:"required,max=100"`
	Description string `validate:"max=500"`
	// DueDate defaults to today on create and to the current value on edit.
	DueDate *time.Time
	// Importance defaults to medium on create and to the current value on edit.
	Importance model.Importance
}

// TaskService runs one request's worth of task operations against a store.
type TaskService struct {
	store repository.TaskStore
	now   func() time.Time
}

// NewTaskService returns a service over store. now supplies the current time
// in the location that defines "today".
func NewTaskService(store repository.TaskStore, now func() time.Time) *TaskService {
	if now == nil {
		now = time.Now
	}
	return &TaskService{store: store, now: now}
}

// Today is the current calendar date.
func (s *TaskService) Today() time.Time {
	return model.DateOnly(s.now())
}

func (s *TaskService) normalize(in *TaskInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s", ErrValidation, describe(verrs[0]))
		}
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if in.Importance != "" && !in.Importance.Valid() {
		return fmt.Errorf("%w: importance must be low, medium or high", ErrValidation)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	}
	return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
}

// Create validates in and persists a new pending task.
func (s *TaskService) Create(ctx context.Context, in TaskInput) (*model.Task, error) {
	if err := s.normalize(&in); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task := &model.Task{
		Title:       in.Title,
		Description: in.Description,
		DueDate:     s.Today(),
		Importance:  model.ImportanceMedium,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.DueDate != nil {
		task.DueDate = model.DateOnly(*in.DueDate)
	}
	if in.Importance != "" {
		task.Importance = in.Importance
	}

	if err := s.store.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// List fetches tasks and applies the filter and ordering. A single selected
// state is pushed down to the store.
func (s *TaskService) List(ctx context.Context, f query.Filter, key query.SortKey) ([]model.Task, error) {
	var lf repository.ListFilter
	if len(f.States) == 1 {
		completed := f.States[0] == model.StateCompleted
		lf.Completed = &completed
	}

	tasks, err := s.store.List(ctx, lf)
	if err != nil {
		return nil, err
	}
	return query.Apply(tasks, f, key)
}

// Get returns a single task.
func (s *TaskService) Get(ctx context.Context, id string) (*model.Task, error) {
	return s.store.Get(ctx, id)
}

// Edit replaces the editable fields of a task. Past due dates are allowed.
func (s *TaskService) Edit(ctx context.Context, id string, in TaskInput) (*model.Task, error) {
	if err := s.normalize(&in); err != nil {
		return nil, err
	}

	task, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	task.Title = in.Title
	task.Description = in.Description
	if in.DueDate != nil {
		task.DueDate = model.DateOnly(*in.DueDate)
	}
	if in.Importance != "" {
		task.Importance = in.Importance
	}

	if err := s.store.Update(ctx, task); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

// SetStatus marks a task completed or pending.
func (s *TaskService) SetStatus(ctx context.Context, id string, completed bool) (*model.Task, error) {
	if err := s.store.UpdateStatus(ctx, id, completed); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

// Toggle flips the completed flag of a task.
func (s *TaskService) Toggle(ctx context.Context, id string) (*model.Task, error) {
	task, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.SetStatus(ctx, id, !task.Completed)
}

// Delete removes a task. Unknown ids are ignored.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// ClearCompleted deletes every completed task and reports how many were removed.
func (s *TaskService) ClearCompleted(ctx context.Context) (int, error) {
	done := true
	return s.deleteMatching(ctx, repository.ListFilter{Completed: &done})
}

// DeleteAll deletes every task and reports how many were removed.
func (s *TaskService) DeleteAll(ctx context.Context) (int, error) {
	return s.deleteMatching(ctx, repository.ListFilter{})
}

// deleteMatching removes tasks one by one. A failure stops the sweep and
// leaves the already deleted tasks deleted.
func (s *TaskService) deleteMatching(ctx context.Context, f repository.ListFilter) (int, error) {
	tasks, err := s.store.List(ctx, f)
	if err != nil {
		return 0, err
	}
	for i, t := range tasks {
		if err := s.store.Delete(ctx, t.ID); err != nil {
			return i, err
		}
	}
	return len(tasks), nil
}

// Stats summarises every stored task as of today.
func (s *TaskService) Stats(ctx context.Context) (stats.Summary, error) {
	tasks, err := s.store.List(ctx, repository.ListFilter{})
	if err != nil {
		return stats.Summary{}, err
	}
	return stats.Compute(tasks, s.now()), nil
}
