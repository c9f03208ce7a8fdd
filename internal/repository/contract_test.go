package repository_test

import (
	"context"
	"testing"
	"time"

	"taskdesk/internal/model"
	"taskdesk/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTask(title string, importance model.Importance, dueInDays int) *model.Task {
	now := time.Now().UTC()
	return &model.Task{
		Title:       title,
		Description: "description of " + title,
		DueDate:     model.DateOnly(now).AddDate(0, 0, dueInDays),
		Importance:  importance,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func boolPtr(b bool) *bool { return &b }

// runStoreContract exercises the behaviour every TaskStore must share.
func runStoreContract(t *testing.T, open func(t *testing.T) repository.TaskStore) {
	ctx := context.Background()

	t.Run("empty store lists nothing", func(t *testing.T) {
		store := open(t)

		tasks, err := store.List(ctx, repository.ListFilter{})

		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("create then list round-trips fields", func(t *testing.T) {
		store := open(t)
		task := newTask("Buy milk", model.ImportanceLow, 5)

		require.NoError(t, store.Create(ctx, task))
		assert.NotEmpty(t, task.ID)

		tasks, err := store.List(ctx, repository.ListFilter{})
		require.NoError(t, err)
		require.Len(t, tasks, 1)

		got := tasks[0]
		assert.Equal(t, task.ID, got.ID)
		assert.Equal(t, task.Title, got.Title)
		assert.Equal(t, task.Description, got.Description)
		assert.True(t, task.DueDate.Equal(got.DueDate))
		assert.Equal(t, model.ImportanceLow, got.Importance)
		assert.False(t, got.Completed)
		assert.True(t, task.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("create keeps a caller supplied id", func(t *testing.T) {
		store := open(t)
		task := newTask("With id", model.ImportanceHigh, 1)
		task.ID = "fixed-id"

		require.NoError(t, store.Create(ctx, task))

		got, err := store.Get(ctx, "fixed-id")
		require.NoError(t, err)
		assert.Equal(t, "With id", got.Title)
	})

	t.Run("create rejects a duplicate id", func(t *testing.T) {
		store := open(t)
		task := newTask("first", model.ImportanceLow, 1)
		task.ID = "same"
		require.NoError(t, store.Create(ctx, task))

		again := newTask("second", model.ImportanceHigh, 2)
		again.ID = "same"
		err := store.Create(ctx, again)

		assert.ErrorIs(t, err, repository.ErrWrite)
		got, err := store.Get(ctx, "same")
		require.NoError(t, err)
		assert.Equal(t, "first", got.Title)

		tasks, err := store.List(ctx, repository.ListFilter{})
		require.NoError(t, err)
		assert.Len(t, tasks, 1)
	})

	t.Run("get unknown id", func(t *testing.T) {
		store := open(t)

		_, err := store.Get(ctx, "missing")

		assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	})

	t.Run("update status and filter", func(t *testing.T) {
		store := open(t)
		a := newTask("a", model.ImportanceHigh, 1)
		b := newTask("b", model.ImportanceMedium, 2)
		require.NoError(t, store.Create(ctx, a))
		require.NoError(t, store.Create(ctx, b))

		require.NoError(t, store.UpdateStatus(ctx, a.ID, true))

		done, err := store.List(ctx, repository.ListFilter{Completed: boolPtr(true)})
		require.NoError(t, err)
		require.Len(t, done, 1)
		assert.Equal(t, a.ID, done[0].ID)
		assert.False(t, done[0].UpdatedAt.Before(done[0].CreatedAt))

		pending, err := store.List(ctx, repository.ListFilter{Completed: boolPtr(false)})
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, b.ID, pending[0].ID)

		require.NoError(t, store.UpdateStatus(ctx, a.ID, false))
		got, err := store.Get(ctx, a.ID)
		require.NoError(t, err)
		assert.False(t, got.Completed)
	})

	t.Run("update status of unknown id", func(t *testing.T) {
		store := open(t)

		err := store.UpdateStatus(ctx, "missing", true)

		assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	})

	t.Run("update edits fields and keeps creation time", func(t *testing.T) {
		store := open(t)
		task := newTask("draft", model.ImportanceLow, 3)
		require.NoError(t, store.Create(ctx, task))
		created := task.CreatedAt

		edited := *task
		edited.Title = "final"
		edited.Description = ""
		edited.Importance = model.ImportanceHigh
		edited.DueDate = task.DueDate.AddDate(0, 0, -10)
		require.NoError(t, store.Update(ctx, &edited))

		got, err := store.Get(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "final", got.Title)
		assert.Empty(t, got.Description)
		assert.Equal(t, model.ImportanceHigh, got.Importance)
		assert.True(t, edited.DueDate.Equal(got.DueDate))
		assert.True(t, created.Equal(got.CreatedAt))
		assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
	})

	t.Run("update unknown id", func(t *testing.T) {
		store := open(t)
		task := newTask("ghost", model.ImportanceLow, 1)
		task.ID = "missing"

		err := store.Update(ctx, task)

		assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		store := open(t)
		task := newTask("gone", model.ImportanceMedium, 0)
		require.NoError(t, store.Create(ctx, task))

		require.NoError(t, store.Delete(ctx, task.ID))
		require.NoError(t, store.Delete(ctx, task.ID))
		require.NoError(t, store.Delete(ctx, "never-existed"))

		tasks, err := store.List(ctx, repository.ListFilter{})
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("probe", func(t *testing.T) {
		store := open(t)

		assert.NoError(t, store.Probe(ctx))
	})
}
