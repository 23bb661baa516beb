package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"trackpal/internal/apperr"
	"trackpal/internal/model"
)

// Thursday; the week runs from Sunday 2026-10-11.
var streakNow = time.Date(2026, 10, 15, 23, 0, 0, 0, time.UTC)

func addGoal(t *testing.T, store *memGoals, userID uint, created time.Time, done ...bool) {
	t.Helper()
	g := &model.Goal{UserID: userID, Title: "g", CreatedAt: created}
	for _, d := range done {
		g.Subtasks = append(g.Subtasks, model.Subtask{Title: "s", Completed: d})
	}
	allDone := len(done) > 0
	for _, d := range done {
		allDone = allDone && d
	}
	if allDone {
		g.State = model.GoalDone
	} else {
		g.State = model.GoalInProgress
	}
	if err := store.CreateGoal(context.Background(), g); err != nil {
		t.Fatalf("seed goal: %v", err)
	}
}

func TestStreakService_EvaluateAll(t *testing.T) {
	goals := newMemGoals()
	profiles := newMemProfiles(
		model.Profile{ID: 1, WeeklyStreakCount: 2, WeeklyLongestStreak: 2},
		model.Profile{ID: 2, WeeklyStreakCount: 5, WeeklyLongestStreak: 7},
		model.Profile{ID: 3, WeeklyStreakCount: 4, WeeklyLongestStreak: 4},
	)
	addGoal(t, goals, 1, streakNow.Add(-24*time.Hour), true)
	addGoal(t, goals, 1, streakNow.Add(-48*time.Hour), true, true)
	addGoal(t, goals, 2, streakNow.Add(-24*time.Hour), true, false)
	// User 3 only has a goal from last week, so this week is empty.
	addGoal(t, goals, 3, streakNow.AddDate(0, 0, -7), true)

	svc := NewStreakService(goals, profiles, time.UTC)
	report, err := svc.EvaluateAll(context.Background(), streakNow)
	if err != nil {
		t.Fatalf("EvaluateAll() error = %v", err)
	}
	if report.Evaluated != 3 || report.Skipped != 0 || report.Failed != 0 {
		t.Errorf("report = %+v", report)
	}
	if report.Week != "2026-10-11" || report.RunID == "" {
		t.Errorf("report = %+v", report)
	}

	tests := []struct {
		id             uint
		count, longest int
	}{
		{1, 3, 3},
		{2, 0, 7},
		{3, 0, 4},
	}
	for _, tt := range tests {
		p, _ := profiles.GetProfile(context.Background(), tt.id)
		if p.WeeklyStreakCount != tt.count || p.WeeklyLongestStreak != tt.longest {
			t.Errorf("user %d streak = %d/%d, want %d/%d", tt.id, p.WeeklyStreakCount, p.WeeklyLongestStreak, tt.count, tt.longest)
		}
		if p.WeeklyLastStreakUpdated == nil || !p.WeeklyLastStreakUpdated.Equal(streakNow) {
			t.Errorf("user %d last updated = %v", tt.id, p.WeeklyLastStreakUpdated)
		}
		if p.WeeklyLongestStreak < p.WeeklyStreakCount {
			t.Errorf("user %d longest < count", tt.id)
		}
	}
}

func TestStreakService_SecondRunSameWeekIsNoop(t *testing.T) {
	goals := newMemGoals()
	profiles := newMemProfiles(model.Profile{ID: 1})
	addGoal(t, goals, 1, streakNow.Add(-time.Hour), true)

	svc := NewStreakService(goals, profiles, time.UTC)
	ctx := context.Background()

	if _, err := svc.EvaluateAll(ctx, streakNow); err != nil {
		t.Fatalf("first run: %v", err)
	}
	report, err := svc.EvaluateAll(ctx, streakNow.Add(time.Minute))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if report.Skipped != 1 || report.Evaluated != 0 {
		t.Errorf("second run report = %+v", report)
	}

	p, _ := profiles.GetProfile(ctx, 1)
	if p.WeeklyStreakCount != 1 {
		t.Errorf("count = %d, want 1 after two runs in the same week", p.WeeklyStreakCount)
	}

	// The next week is evaluated again.
	report, err = svc.EvaluateAll(ctx, streakNow.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("next week: %v", err)
	}
	if report.Evaluated != 1 {
		t.Errorf("next week report = %+v", report)
	}
}

func TestStreakService_PerUserFailureIsolated(t *testing.T) {
	goals := newMemGoals()
	profiles := newMemProfiles(
		model.Profile{ID: 1},
		model.Profile{ID: 2},
		model.Profile{ID: 3},
	)
	for _, id := range []uint{1, 2, 3} {
		addGoal(t, goals, id, streakNow.Add(-time.Hour), true)
	}
	goals.listErr[1] = apperr.Upstream("list goals", errors.New("disk I/O error"))
	profiles.updateErr[2] = apperr.Upstream("update profile", errors.New("database is locked"))

	svc := NewStreakService(goals, profiles, time.UTC)
	report, err := svc.EvaluateAll(context.Background(), streakNow)
	if err != nil {
		t.Fatalf("EvaluateAll() error = %v", err)
	}
	if report.Failed != 2 || report.Evaluated != 1 {
		t.Errorf("report = %+v", report)
	}
	p, _ := profiles.GetProfile(context.Background(), 3)
	if p.WeeklyStreakCount != 1 {
		t.Errorf("user 3 count = %d, want 1", p.WeeklyStreakCount)
	}
}

func TestStreakService_StopsOnCancel(t *testing.T) {
	profiles := newMemProfiles(model.Profile{ID: 1}, model.Profile{ID: 2})
	svc := NewStreakService(newMemGoals(), profiles, time.UTC)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.EvaluateAll(ctx, streakNow); !errors.Is(err, context.Canceled) {
		t.Errorf("EvaluateAll() error = %v, want context.Canceled", err)
	}
	if profiles.updates != 0 {
		t.Errorf("updates = %d after cancel", profiles.updates)
	}
}

func TestStreakService_UsesConfiguredZone(t *testing.T) {
	// 01:00 Sunday in UTC+3 is still Saturday in UTC.
	loc := time.FixedZone("UTC+3", 3*3600)
	now := time.Date(2026, 10, 18, 1, 0, 0, 0, loc)

	goals := newMemGoals()
	profiles := newMemProfiles(model.Profile{ID: 1})
	addGoal(t, goals, 1, now.Add(-30*time.Minute), true)

	svc := NewStreakService(goals, profiles, loc)
	report, err := svc.EvaluateAll(context.Background(), now)
	if err != nil {
		t.Fatalf("EvaluateAll() error = %v", err)
	}
	if report.Week != "2026-10-18" {
		t.Errorf("week = %q, want 2026-10-18", report.Week)
	}
	p, _ := profiles.GetProfile(context.Background(), 1)
	if p.WeeklyStreakCount != 1 {
		t.Errorf("count = %d", p.WeeklyStreakCount)
	}
}

func TestStreakService_Evaluate(t *testing.T) {
	goals := newMemGoals()
	profiles := newMemProfiles(model.Profile{ID: 1, WeeklyStreakCount: 1, WeeklyLongestStreak: 1})
	addGoal(t, goals, 1, streakNow.Add(-time.Hour), true, true)

	svc := NewStreakService(goals, profiles, time.UTC)
	ctx := context.Background()

	p, err := svc.Evaluate(ctx, 1, streakNow)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if p.WeeklyStreakCount != 2 || p.WeeklyLongestStreak != 2 || p.WeeklyLastStreakWeek != "2026-10-11" {
		t.Errorf("profile = %+v", p)
	}

	p, err = svc.Evaluate(ctx, 1, streakNow.Add(time.Minute))
	if err != nil {
		t.Fatalf("second Evaluate() error = %v", err)
	}
	if p.WeeklyStreakCount != 2 {
		t.Errorf("count = %d after a second call in the same week", p.WeeklyStreakCount)
	}

	if _, err := svc.Evaluate(ctx, 99, streakNow); !apperr.IsNotFound(err) {
		t.Errorf("unknown user error = %v, want not found", err)
	}
}

func TestStreakService_EvaluateEndedWeek(t *testing.T) {
	// Sunday 00:05; the week of 2026-10-11 ended five minutes ago.
	now := time.Date(2026, 10, 18, 0, 5, 0, 0, time.UTC)
	lateGoal := time.Date(2026, 10, 17, 23, 58, 0, 0, time.UTC)

	tests := []struct {
		name      string
		at        time.Time
		wantWeek  string
		wantCount int
	}{
		{name: "sunday closes the previous week", at: now, wantWeek: "2026-10-11", wantCount: 1},
		{name: "saturday evaluates the running week", at: lateGoal.Add(time.Minute), wantWeek: "2026-10-11", wantCount: 1},
		{name: "monday evaluates the running week", at: now.AddDate(0, 0, 1), wantWeek: "2026-10-18", wantCount: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			goals := newMemGoals()
			profiles := newMemProfiles(model.Profile{ID: 1})
			addGoal(t, goals, 1, lateGoal, true)

			svc := NewStreakService(goals, profiles, time.UTC)
			report, err := svc.EvaluateEndedWeek(context.Background(), tt.at)
			if err != nil {
				t.Fatalf("EvaluateEndedWeek() error = %v", err)
			}
			if report.Week != tt.wantWeek || report.Evaluated != 1 {
				t.Errorf("report = %+v", report)
			}
			p, _ := profiles.GetProfile(context.Background(), 1)
			if p.WeeklyStreakCount != tt.wantCount {
				t.Errorf("count = %d, want %d", p.WeeklyStreakCount, tt.wantCount)
			}
		})
	}
}

func TestStreakService_SlowUserDoesNotStopRun(t *testing.T) {
	goals := newMemGoals()
	profiles := newMemProfiles(model.Profile{ID: 1}, model.Profile{ID: 2}, model.Profile{ID: 3})
	for _, id := range []uint{1, 2, 3} {
		addGoal(t, goals, id, streakNow.Add(-time.Hour), true)
	}
	goals.stall[2] = true

	svc := NewStreakService(goals, profiles, time.UTC)
	svc.SetUserTimeout(50 * time.Millisecond)

	report, err := svc.EvaluateAll(context.Background(), streakNow)
	if err != nil {
		t.Fatalf("EvaluateAll() error = %v", err)
	}
	if report.Evaluated != 2 || report.Failed != 1 {
		t.Errorf("report = %+v", report)
	}
	p, _ := profiles.GetProfile(context.Background(), 3)
	if p.WeeklyStreakCount != 1 {
		t.Errorf("user 3 count = %d, want 1", p.WeeklyStreakCount)
	}
}
