package aggregate

import "time"

const dateLayout = "2006-01-02"

// Week is an inclusive Sunday-to-Saturday window in a fixed location.
type Week struct {
	Start time.Time
	End   time.Time
}

// WeekOf returns the week containing t, evaluated in t's location. Start is
// Sunday 00:00 and End is the last instant of the following Saturday.
func WeekOf(t time.Time) Week {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	start := day.AddDate(0, 0, -int(day.Weekday()))
	end := start.AddDate(0, 0, 7).Add(-time.Nanosecond)
	return Week{Start: start, End: end}
}

// Contains reports whether t falls inside the window, bounds included.
func (w Week) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Key identifies the week by its start date.
func (w Week) Key() string {
	return w.Start.Format(dateLayout)
}

// CalendarDate truncates t to its calendar day in t's location and returns
// that day as midnight UTC. Dates are stored in this form.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses YYYY-MM-DD into a calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.UTC)
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}
