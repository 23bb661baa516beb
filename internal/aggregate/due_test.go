package aggregate

import (
	"testing"
	"time"

	"trackpal/internal/model"
)

func dateptr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestGroupDueSoon(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

	goals := []model.Goal{
		{ID: 1, UserID: 10, Title: "today open", State: model.GoalInProgress, Deadline: dateptr(2026, 10, 15)},
		{ID: 2, UserID: 10, Title: "today done", State: model.GoalDone, Deadline: dateptr(2026, 10, 15)},
		{ID: 3, UserID: 20, Title: "tomorrow", State: model.GoalNotStarted, Deadline: dateptr(2026, 10, 16)},
		{ID: 4, UserID: 20, Title: "in two days", State: model.GoalNotStarted, Deadline: dateptr(2026, 10, 17)},
		{ID: 5, UserID: 30, Title: "no deadline", State: model.GoalNotStarted},
		{ID: 6, UserID: 30, Title: "yesterday", State: model.GoalInProgress, Deadline: dateptr(2026, 10, 14)},
	}

	got := GroupDueSoon(goals, now)

	if len(got) != 2 {
		t.Fatalf("got %d users, want 2: %+v", len(got), got)
	}
	if ids := goalIDs(got[10]); len(ids) != 1 || ids[0] != 1 {
		t.Errorf("user 10 goals = %v, want [1]", ids)
	}
	if ids := goalIDs(got[20]); len(ids) != 1 || ids[0] != 3 {
		t.Errorf("user 20 goals = %v, want [3]", ids)
	}
	if _, ok := got[30]; ok {
		t.Error("user 30 has no qualifying goal and must be absent")
	}
}

func TestDueWindowUsesLocalCalendarDay(t *testing.T) {
	// 23:30 on the 15th in UTC-5 is already the 16th in UTC.
	loc := time.FixedZone("UTC-5", -5*3600)
	now := time.Date(2026, 10, 15, 23, 30, 0, 0, loc)

	today, tomorrow := DueWindow(now)
	if FormatDate(today) != "2026-10-15" || FormatDate(tomorrow) != "2026-10-16" {
		t.Errorf("DueWindow() = %s, %s", FormatDate(today), FormatDate(tomorrow))
	}

	g := model.Goal{State: model.GoalInProgress, Deadline: dateptr(2026, 10, 17)}
	if IsDueSoon(g, now) {
		t.Error("deadline two local days away must not be due soon")
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-02-28")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if !d.Equal(*dateptr(2026, 2, 28)) {
		t.Errorf("ParseDate = %v", d)
	}
	if _, err := ParseDate("28/02/2026"); err == nil {
		t.Error("expected error for non ISO date")
	}
}

func goalIDs(goals []model.Goal) []uint {
	ids := make([]uint, 0, len(goals))
	for _, g := range goals {
		ids = append(ids, g.ID)
	}
	return ids
}
