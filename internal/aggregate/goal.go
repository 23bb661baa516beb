// Package aggregate holds the pure computations behind weekly goals, streaks,
// reminders and finance totals. Nothing here touches storage.
package aggregate

import (
	"math"

	"trackpal/internal/model"
)

// DeriveState maps a goal's subtasks to its lifecycle state. A goal without
// subtasks is never done.
func DeriveState(subtasks []model.Subtask) model.GoalState {
	completed, total := Progress(subtasks)
	switch {
	case total == 0:
		return model.GoalNotStarted
	case completed == total:
		return model.GoalDone
	case completed == 0:
		return model.GoalNotStarted
	default:
		return model.GoalInProgress
	}
}

// Progress counts completed subtasks.
func Progress(subtasks []model.Subtask) (completed, total int) {
	for _, st := range subtasks {
		if st.Completed {
			completed++
		}
	}
	return completed, len(subtasks)
}

// Percent returns completed/total as a rounded percentage, 0 when total is 0.
func Percent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// WeeklyProgress sums subtask progress across goals.
func WeeklyProgress(goals []model.Goal) (completed, total int) {
	for _, g := range goals {
		c, t := Progress(g.Subtasks)
		completed += c
		total += t
	}
	return completed, total
}
