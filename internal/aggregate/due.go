package aggregate

import (
	"time"

	"trackpal/internal/model"
)

// DueWindow returns the calendar dates for today and tomorrow, relative to
// now in now's location.
func DueWindow(now time.Time) (today, tomorrow time.Time) {
	today = CalendarDate(now)
	return today, today.AddDate(0, 0, 1)
}

// IsDueSoon reports whether g is not done and its deadline is today or
// tomorrow.
func IsDueSoon(g model.Goal, now time.Time) bool {
	if g.State == model.GoalDone || g.Deadline == nil {
		return false
	}
	today, tomorrow := DueWindow(now)
	d := CalendarDate(g.Deadline.UTC())
	return d.Equal(today) || d.Equal(tomorrow)
}

// GroupDueSoon groups the due-soon goals by owner. Users without a qualifying
// goal are absent from the result. Order within a user is unspecified.
func GroupDueSoon(goals []model.Goal, now time.Time) map[uint][]model.Goal {
	grouped := make(map[uint][]model.Goal)
	for _, g := range goals {
		if !IsDueSoon(g, now) {
			continue
		}
		grouped[g.UserID] = append(grouped[g.UserID], g)
	}
	return grouped
}
