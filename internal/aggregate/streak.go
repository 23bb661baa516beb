package aggregate

import "trackpal/internal/model"

// Streak holds a user's weekly streak counters.
type Streak struct {
	Count   int
	Longest int
}

// AllCompleted is true when goals is non-empty and every goal is done.
func AllCompleted(goals []model.Goal) bool {
	if len(goals) == 0 {
		return false
	}
	for _, g := range goals {
		if g.State != model.GoalDone {
			return false
		}
	}
	return true
}

// EvaluateStreak applies one week's outcome to prev. A week without goals
// resets the streak.
func EvaluateStreak(prev Streak, goals []model.Goal) (Streak, bool) {
	if !AllCompleted(goals) {
		return Streak{Count: 0, Longest: prev.Longest}, false
	}
	next := Streak{Count: prev.Count + 1, Longest: prev.Longest}
	if next.Count > next.Longest {
		next.Longest = next.Count
	}
	return next, true
}
