package query

import (
	"fmt"
	"time"

	"taskdesk/internal/model"
)

// DeadlineStatus is the display bucket of a due date relative to today.
type DeadlineStatus string

const (
	DeadlineOverdue  DeadlineStatus = "overdue"
	DeadlineToday    DeadlineStatus = "due_today"
	DeadlineSoon     DeadlineStatus = "due_soon"
	DeadlineUpcoming DeadlineStatus = "upcoming"
)

// SoonWindow is the largest number of remaining days still classified as due soon.
const SoonWindow = 3

// Deadline is the derived, never persisted classification of a due date.
type Deadline struct {
	Status        DeadlineStatus
	DaysRemaining int
	Message       string
}

// DaysRemaining returns due minus today in whole calendar days.
// Clock time and location offsets are ignored.
func DaysRemaining(due, today time.Time) int {
	const secondsPerDay = 24 * 60 * 60
	return int((model.DateOnly(due).Unix() - model.DateOnly(today).Unix()) / secondsPerDay)
}

// Classify buckets a due date against today.
func Classify(due, today time.Time) Deadline {
	days := DaysRemaining(due, today)
	switch {
	case days < 0:
		return Deadline{
			Status:        DeadlineOverdue,
			DaysRemaining: days,
			Message:       fmt.Sprintf("overdue by %d days", -days),
		}
	case days == 0:
		return Deadline{Status: DeadlineToday, Message: "due today"}
	case days <= SoonWindow:
		return Deadline{
			Status:        DeadlineSoon,
			DaysRemaining: days,
			Message:       fmt.Sprintf("due soon, in %d days", days),
		}
	default:
		return Deadline{
			Status:        DeadlineUpcoming,
			DaysRemaining: days,
			Message:       "due on " + due.Format("02/01/2006"),
		}
	}
}
