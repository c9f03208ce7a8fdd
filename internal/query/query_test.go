package query_test

import (
	"testing"
	"time"

	"taskdesk/internal/model"
	"taskdesk/internal/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func sampleTasks() []model.Task {
	return []model.Task{
		{ID: "a", Title: "low-old", Importance: model.ImportanceLow, CreatedAt: base, DueDate: base.AddDate(0, 0, 9)},
		{ID: "b", Title: "high-mid", Importance: model.ImportanceHigh, CreatedAt: base.Add(time.Hour), DueDate: base.AddDate(0, 0, 2), Completed: true},
		{ID: "c", Title: "medium-new", Importance: model.ImportanceMedium, CreatedAt: base.Add(2 * time.Hour), DueDate: base.AddDate(0, 0, 5)},
		{ID: "d", Title: "high-newest", Importance: model.ImportanceHigh, CreatedAt: base.Add(3 * time.Hour), DueDate: base.AddDate(0, 0, -1)},
	}
}

func ids(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestFilterTasks_AllKeepsMembership(t *testing.T) {
	tasks := sampleTasks()

	everything := query.Filter{
		States:      []model.State{model.StatePending, model.StateCompleted},
		Importances: model.Importances,
	}

	assert.ElementsMatch(t, ids(tasks), ids(query.FilterTasks(tasks, query.All)))
	assert.ElementsMatch(t, ids(tasks), ids(query.FilterTasks(tasks, everything)))
}

func TestFilterTasks_ByStateAndImportance(t *testing.T) {
	tasks := sampleTasks()

	pending := query.FilterTasks(tasks, query.Filter{States: []model.State{model.StatePending}})
	assert.Equal(t, []string{"a", "c", "d"}, ids(pending))

	highDone := query.FilterTasks(tasks, query.Filter{
		States:      []model.State{model.StateCompleted},
		Importances: []model.Importance{model.ImportanceHigh},
	})
	assert.Equal(t, []string{"b"}, ids(highDone))

	none := query.FilterTasks(tasks, query.Filter{States: []model.State{}})
	assert.Empty(t, none)
}

func TestSort_Keys(t *testing.T) {
	cases := []struct {
		key  query.SortKey
		want []string
	}{
		{query.SortNewest, []string{"d", "c", "b", "a"}},
		{query.SortOldest, []string{"a", "b", "c", "d"}},
		{query.SortDeadline, []string{"d", "b", "c", "a"}},
		{query.SortImportance, []string{"b", "d", "c", "a"}},
	}

	for _, tc := range cases {
		t.Run(string(tc.key), func(t *testing.T) {
			tasks := sampleTasks()
			require.NoError(t, query.Sort(tasks, tc.key))
			assert.Equal(t, tc.want, ids(tasks))
		})
	}
}

func TestSort_ImportanceIsStableAndGrouped(t *testing.T) {
	var tasks []model.Task
	levels := []model.Importance{model.ImportanceLow, model.ImportanceHigh, model.ImportanceMedium}
	for i := 0; i < 12; i++ {
		tasks = append(tasks, model.Task{ID: string(rune('a' + i)), Importance: levels[i%3]})
	}

	require.NoError(t, query.Sort(tasks, query.SortImportance))

	for i := 1; i < len(tasks); i++ {
		assert.LessOrEqual(t, tasks[i-1].Importance.Rank(), tasks[i].Importance.Rank())
	}
	// ties keep input order
	assert.Equal(t, []string{"b", "e", "h", "k"}, ids(tasks[:4]))
}

func TestSort_UnknownKey(t *testing.T) {
	err := query.Sort(sampleTasks(), "alphabetical")
	assert.ErrorIs(t, err, query.ErrUnknownSortKey)
}

func TestParseSortKey(t *testing.T) {
	k, err := query.ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, query.SortNewest, k)

	k, err = query.ParseSortKey("deadline")
	require.NoError(t, err)
	assert.Equal(t, query.SortDeadline, k)

	_, err = query.ParseSortKey("title")
	assert.ErrorIs(t, err, query.ErrUnknownSortKey)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	tasks := sampleTasks()
	before := ids(tasks)

	out, err := query.Apply(tasks, query.Filter{Importances: []model.Importance{model.ImportanceHigh}}, query.SortOldest)

	require.NoError(t, err)
	assert.Equal(t, []string{"b", "d"}, ids(out))
	assert.Equal(t, before, ids(tasks))
}
