// Package stats reduces a task list into summary counts.
package stats

import (
	"math"
	"time"

	"taskdesk/internal/model"
	"taskdesk/internal/query"
)

// ImportanceCounts holds the number of tasks at each importance level.
type ImportanceCounts struct {
	High   int
	Medium int
	Low    int
}

// Summary is the aggregate view of a task list.
type Summary struct {
	Total                int
	Completed            int
	Pending              int
	CompletionPercentage int
	ByImportance         ImportanceCounts
	Overdue              int
	DueToday             int
}

// Compute summarises tasks as of today. Overdue and due-today counts only
// consider pending tasks.
func Compute(tasks []model.Task, today time.Time) Summary {
	var s Summary
	s.Total = len(tasks)

	for _, t := range tasks {
		if t.Completed {
			s.Completed++
		}

		switch t.Importance {
		case model.ImportanceHigh:
			s.ByImportance.High++
		case model.ImportanceMedium:
			s.ByImportance.Medium++
		case model.ImportanceLow:
			s.ByImportance.Low++
		}

		if t.Completed {
			continue
		}
		switch days := query.DaysRemaining(t.DueDate, today); {
		case days < 0:
			s.Overdue++
		case days == 0:
			s.DueToday++
		}
	}

	s.Pending = s.Total - s.Completed
	s.CompletionPercentage = Percentage(s.Completed, s.Total)
	return s
}

// Percentage returns part/total as a whole percentage, rounding halves to
// even. It is 0 when total is 0.
func Percentage(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.RoundToEven(float64(part) / float64(total) * 100))
}
