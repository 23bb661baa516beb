package service

import (
	"context"
	"strings"
	"time"

	"trackpal/internal/aggregate"
	"trackpal/internal/apperr"
	"trackpal/internal/model"
)

// SubtaskInput is a subtask as sent by a client. IDs <= 0 denote subtasks
// that are not persisted yet.
type SubtaskInput struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// GoalInput represents data required to create or edit a goal.
type GoalInput struct {
	Title    string         `json:"title"`
	Priority model.Priority `json:"priority"`
	// Deadline is a YYYY-MM-DD calendar date; empty clears it.
	Deadline string         `json:"deadline"`
	Subtasks []SubtaskInput `json:"tasks"`
}

// WeeklyProgress summarizes subtask completion across the current week.
type WeeklyProgress struct {
	Week      string `json:"week"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Percent   int    `json:"percent"`
	Goals     int    `json:"goals"`
}

// GoalService wraps goal-related business logic. Goal state is always
// derived from subtasks.
type GoalService struct {
	goals GoalStore
	loc   *time.Location
}

func NewGoalService(goals GoalStore, loc *time.Location) *GoalService {
	if loc == nil {
		loc = time.UTC
	}
	return &GoalService{goals: goals, loc: loc}
}

func (s *GoalService) CreateGoal(ctx context.Context, userID uint, input GoalInput) (*model.Goal, error) {
	goal := model.Goal{UserID: userID}
	if err := applyGoalInput(&goal, input); err != nil {
		return nil, err
	}
	for _, st := range input.Subtasks {
		title := normalizeTitle(st.Title)
		if title == "" {
			continue
		}
		goal.Subtasks = append(goal.Subtasks, model.Subtask{Title: title, Completed: st.Completed})
	}
	goal.State = aggregate.DeriveState(goal.Subtasks)

	if err := s.goals.CreateGoal(ctx, &goal); err != nil {
		return nil, err
	}
	return &goal, nil
}

func (s *GoalService) GetGoal(ctx context.Context, userID, goalID uint) (*model.Goal, error) {
	return s.goals.GetGoal(ctx, userID, goalID)
}

func (s *GoalService) ListGoals(ctx context.Context, userID uint) ([]model.Goal, error) {
	return s.goals.ListGoals(ctx, userID)
}

// ListWeek returns the goals created during the week containing now.
func (s *GoalService) ListWeek(ctx context.Context, userID uint, now time.Time) ([]model.Goal, error) {
	week := aggregate.WeekOf(now.In(s.loc))
	return s.goals.ListGoalsForUserInRange(ctx, userID, week.Start, week.End)
}

// UpdateGoal edits title, priority, deadline and the subtask list. Subtasks
// with empty titles are dropped, existing subtasks missing from the input are
// deleted, and the state is recomputed.
func (s *GoalService) UpdateGoal(ctx context.Context, userID, goalID uint, input GoalInput) (*model.Goal, error) {
	goal, err := s.goals.GetGoal(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if err := applyGoalInput(goal, input); err != nil {
		return nil, err
	}

	existing := make(map[uint]model.Subtask, len(goal.Subtasks))
	for _, st := range goal.Subtasks {
		existing[st.ID] = st
	}

	subtasks := make([]model.Subtask, 0, len(input.Subtasks))
	for _, in := range input.Subtasks {
		title := normalizeTitle(in.Title)
		if title == "" {
			continue
		}
		if in.ID <= 0 {
			subtasks = append(subtasks, model.Subtask{GoalID: goal.ID, Title: title, Completed: in.Completed})
			continue
		}
		st, ok := existing[uint(in.ID)]
		if !ok {
			return nil, apperr.Invalid("tasks", "subtask does not belong to this goal")
		}
		st.Title = title
		st.Completed = in.Completed
		subtasks = append(subtasks, st)
	}
	goal.Subtasks = subtasks
	goal.State = aggregate.DeriveState(subtasks)

	if err := s.goals.ReplaceGoal(ctx, goal); err != nil {
		return nil, err
	}
	return s.goals.GetGoal(ctx, userID, goalID)
}

func (s *GoalService) DeleteGoal(ctx context.Context, userID, goalID uint) error {
	return s.goals.DeleteGoal(ctx, userID, goalID)
}

// ToggleSubtask sets a subtask's completion and returns the parent goal with
// its re-derived state. Subtasks of other users' goals are reported as not
// found.
func (s *GoalService) ToggleSubtask(ctx context.Context, userID, subtaskID uint, completed bool) (*model.Goal, error) {
	st, err := s.goals.GetSubtask(ctx, subtaskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.goals.GetGoal(ctx, userID, st.GoalID); err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("subtask")
		}
		return nil, err
	}
	return s.goals.ToggleSubtask(ctx, subtaskID, completed, aggregate.DeriveState)
}

// WeeklyProgress reports completion across the goals of the current week.
func (s *GoalService) WeeklyProgress(ctx context.Context, userID uint, now time.Time) (WeeklyProgress, error) {
	week := aggregate.WeekOf(now.In(s.loc))
	goals, err := s.goals.ListGoalsForUserInRange(ctx, userID, week.Start, week.End)
	if err != nil {
		return WeeklyProgress{}, err
	}
	completed, total := aggregate.WeeklyProgress(goals)
	return WeeklyProgress{
		Week:      week.Key(),
		Completed: completed,
		Total:     total,
		Percent:   aggregate.Percent(completed, total),
		Goals:     len(goals),
	}, nil
}

func applyGoalInput(goal *model.Goal, input GoalInput) error {
	title := normalizeTitle(input.Title)
	if title == "" {
		return apperr.Invalid("title", "title is required")
	}
	priority := input.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.Valid() {
		return apperr.Invalid("priority", "priority must be low, medium or high")
	}

	goal.Title = title
	goal.Priority = priority
	goal.Deadline = nil
	if d := strings.TrimSpace(input.Deadline); d != "" {
		deadline, err := aggregate.ParseDate(d)
		if err != nil {
			return apperr.Invalid("deadline", "deadline must be YYYY-MM-DD")
		}
		goal.Deadline = &deadline
	}
	return nil
}

func normalizeTitle(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
