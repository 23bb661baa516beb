package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"trackpal/internal/aggregate"
	"trackpal/internal/apperr"
	"trackpal/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedGoal(t *testing.T, repo *GoalRepository, userID uint, created time.Time, flags ...bool) *model.Goal {
	t.Helper()
	goal := &model.Goal{
		UserID:    userID,
		Title:     "Ship it",
		Priority:  model.PriorityMedium,
		CreatedAt: created,
	}
	for _, done := range flags {
		goal.Subtasks = append(goal.Subtasks, model.Subtask{Title: "step", Completed: done})
	}
	goal.State = aggregate.DeriveState(goal.Subtasks)
	if err := repo.CreateGoal(context.Background(), goal); err != nil {
		t.Fatalf("create goal: %v", err)
	}
	return goal
}

func TestGoalRepository_CreateAndGet(t *testing.T) {
	repo := NewGoalRepository(newTestDB(t))
	ctx := context.Background()

	goal := seedGoal(t, repo, 1, time.Now(), true, false)
	if goal.ID == 0 {
		t.Fatal("goal id not assigned")
	}

	got, err := repo.GetGoal(ctx, 1, goal.ID)
	if err != nil {
		t.Fatalf("get goal: %v", err)
	}
	if len(got.Subtasks) != 2 {
		t.Errorf("subtasks = %d, want 2", len(got.Subtasks))
	}
	if got.State != model.GoalInProgress {
		t.Errorf("state = %q", got.State)
	}

	if _, err := repo.GetGoal(ctx, 2, goal.ID); !apperr.IsNotFound(err) {
		t.Errorf("other user's goal: err = %v, want not found", err)
	}
}

func TestGoalRepository_ToggleSubtaskRederivesState(t *testing.T) {
	repo := NewGoalRepository(newTestDB(t))
	ctx := context.Background()

	goal := seedGoal(t, repo, 1, time.Now(), true, false)
	open := goal.Subtasks[1]

	updated, err := repo.ToggleSubtask(ctx, open.ID, true, aggregate.DeriveState)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if updated.State != model.GoalDone {
		t.Errorf("state after completing last subtask = %q, want done", updated.State)
	}

	updated, err = repo.ToggleSubtask(ctx, goal.Subtasks[0].ID, false, aggregate.DeriveState)
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if updated.State != model.GoalInProgress {
		t.Errorf("state = %q, want in-progress", updated.State)
	}

	if _, err := repo.ToggleSubtask(ctx, 9999, true, aggregate.DeriveState); !apperr.IsNotFound(err) {
		t.Errorf("unknown subtask: err = %v, want not found", err)
	}
}

func TestGoalRepository_ToggleSubtaskRollsBack(t *testing.T) {
	db := newTestDB(t)
	repo := NewGoalRepository(db)
	ctx := context.Background()

	goal := seedGoal(t, repo, 1, time.Now(), false)

	// Fail every write to the goals table so the state update aborts.
	failGoals := func(tx *gorm.DB) {
		if tx.Statement.Table == "goals" {
			_ = tx.AddError(errors.New("injected failure"))
		}
	}
	if err := db.Callback().Update().Before("gorm:update").Register("test:fail_goals", failGoals); err != nil {
		t.Fatalf("register callback: %v", err)
	}

	if _, err := repo.ToggleSubtask(ctx, goal.Subtasks[0].ID, true, aggregate.DeriveState); !apperr.IsUpstream(err) {
		t.Fatalf("err = %v, want upstream error", err)
	}

	if err := db.Callback().Update().Remove("test:fail_goals"); err != nil {
		t.Fatalf("remove callback: %v", err)
	}

	subtasks, err := repo.ListSubtasks(ctx, goal.ID)
	if err != nil {
		t.Fatalf("list subtasks: %v", err)
	}
	if subtasks[0].Completed {
		t.Error("subtask completion was committed despite failed state update")
	}
	got, err := repo.GetGoal(ctx, 1, goal.ID)
	if err != nil {
		t.Fatalf("get goal: %v", err)
	}
	if got.State != model.GoalNotStarted {
		t.Errorf("state = %q, want not-started", got.State)
	}
}

func TestGoalRepository_ReplaceGoal(t *testing.T) {
	repo := NewGoalRepository(newTestDB(t))
	ctx := context.Background()

	goal := seedGoal(t, repo, 1, time.Now(), false, false)
	kept := goal.Subtasks[0]
	kept.Title = "renamed"

	goal.Title = "Edited"
	goal.Subtasks = []model.Subtask{kept, {Title: "brand new"}}
	goal.State = aggregate.DeriveState(goal.Subtasks)
	if err := repo.ReplaceGoal(ctx, goal); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err := repo.GetGoal(ctx, 1, goal.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Edited" {
		t.Errorf("title = %q", got.Title)
	}
	if len(got.Subtasks) != 2 {
		t.Fatalf("subtasks = %+v", got.Subtasks)
	}
	if got.Subtasks[0].ID != kept.ID || got.Subtasks[0].Title != "renamed" {
		t.Errorf("kept subtask = %+v", got.Subtasks[0])
	}
	if got.Subtasks[1].Title != "brand new" {
		t.Errorf("new subtask = %+v", got.Subtasks[1])
	}
}

func TestGoalRepository_DeleteCascades(t *testing.T) {
	repo := NewGoalRepository(newTestDB(t))
	ctx := context.Background()

	goal := seedGoal(t, repo, 1, time.Now(), true, true)
	if err := repo.DeleteGoal(ctx, 1, goal.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	subtasks, err := repo.ListSubtasks(ctx, goal.ID)
	if err != nil {
		t.Fatalf("list subtasks: %v", err)
	}
	if len(subtasks) != 0 {
		t.Errorf("subtasks left behind: %+v", subtasks)
	}
	if err := repo.DeleteGoal(ctx, 1, goal.ID); !apperr.IsNotFound(err) {
		t.Errorf("second delete: err = %v, want not found", err)
	}
}

func TestGoalRepository_ListGoalsForUserInRange(t *testing.T) {
	repo := NewGoalRepository(newTestDB(t))
	ctx := context.Background()

	week := aggregate.WeekOf(time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC))
	atStart := seedGoal(t, repo, 1, week.Start, true)
	atEnd := seedGoal(t, repo, 1, week.End, true)
	seedGoal(t, repo, 1, week.Start.Add(-time.Second), true)
	seedGoal(t, repo, 1, week.End.Add(time.Second), true)
	seedGoal(t, repo, 2, week.Start.Add(time.Hour), true)

	goals, err := repo.ListGoalsForUserInRange(ctx, 1, week.Start, week.End)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(goals) != 2 {
		t.Fatalf("goals = %d, want 2 (inclusive bounds)", len(goals))
	}
	if goals[0].ID != atStart.ID || goals[1].ID != atEnd.ID {
		t.Errorf("got ids %d,%d", goals[0].ID, goals[1].ID)
	}
	if len(goals[0].Subtasks) != 1 {
		t.Error("subtasks were not preloaded")
	}
}

func TestGoalRepository_ListGoalsDueBetween(t *testing.T) {
	repo := NewGoalRepository(newTestDB(t))
	ctx := context.Background()

	today, tomorrow := aggregate.DueWindow(time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC))
	mk := func(userID uint, deadline time.Time, state model.GoalState) uint {
		g := &model.Goal{UserID: userID, Title: "g", State: state, Priority: model.PriorityLow, Deadline: &deadline}
		if err := repo.CreateGoal(ctx, g); err != nil {
			t.Fatalf("create: %v", err)
		}
		return g.ID
	}

	dueToday := mk(1, today, model.GoalInProgress)
	mk(1, today, model.GoalDone)
	dueTomorrow := mk(2, tomorrow, model.GoalNotStarted)
	mk(2, tomorrow.AddDate(0, 0, 1), model.GoalNotStarted)

	goals, err := repo.ListGoalsDueBetween(ctx, today, tomorrow)
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	if len(goals) != 2 || goals[0].ID != dueToday || goals[1].ID != dueTomorrow {
		t.Errorf("due goals = %+v", goals)
	}
}

func TestGoalRepository_ListUserGoalsDueBetween(t *testing.T) {
	repo := NewGoalRepository(newTestDB(t))
	ctx := context.Background()

	today, tomorrow := aggregate.DueWindow(time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC))
	mk := func(userID uint, deadline time.Time, state model.GoalState) uint {
		g := &model.Goal{UserID: userID, Title: "g", State: state, Priority: model.PriorityLow, Deadline: &deadline}
		if err := repo.CreateGoal(ctx, g); err != nil {
			t.Fatalf("create: %v", err)
		}
		return g.ID
	}

	dueTomorrow := mk(1, tomorrow, model.GoalNotStarted)
	dueToday := mk(1, today, model.GoalInProgress)
	mk(1, today, model.GoalDone)
	mk(1, tomorrow.AddDate(0, 0, 1), model.GoalNotStarted)
	mk(2, today, model.GoalNotStarted)

	goals, err := repo.ListUserGoalsDueBetween(ctx, 1, today, tomorrow)
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	if len(goals) != 2 || goals[0].ID != dueToday || goals[1].ID != dueTomorrow {
		t.Errorf("due goals = %+v", goals)
	}

	none, err := repo.ListUserGoalsDueBetween(ctx, 3, today, tomorrow)
	if err != nil || len(none) != 0 {
		t.Errorf("user without goals = %d, %v", len(none), err)
	}
}
