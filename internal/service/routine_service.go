package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"trackpal/internal/aggregate"
	"trackpal/internal/apperr"
	"trackpal/internal/model"
)

// RoutineInput represents data required to add a routine task.
type RoutineInput struct {
	Title     string                `json:"title"`
	Category  model.RoutineCategory `json:"category"`
	StartTime string                `json:"start_time"`
}

// RoutineDay is the routine checklist of one day.
type RoutineDay struct {
	Date      string              `json:"date"`
	Tasks     []model.RoutineTask `json:"tasks"`
	Completed int                 `json:"completed"`
	Percent   int                 `json:"percent"`
}

// RoutineService manages daily routine tasks.
type RoutineService struct {
	routines RoutineStore
	loc      *time.Location
}

func NewRoutineService(routines RoutineStore, loc *time.Location) *RoutineService {
	if loc == nil {
		loc = time.UTC
	}
	return &RoutineService{routines: routines, loc: loc}
}

func (s *RoutineService) AddTask(ctx context.Context, userID uint, input RoutineInput) (*model.RoutineTask, error) {
	title := normalizeTitle(input.Title)
	if title == "" {
		return nil, apperr.Invalid("title", "title is required")
	}
	if !input.Category.Valid() {
		return nil, apperr.Invalid("category", "category must be growth, health, core or leisure")
	}

	task := model.RoutineTask{UserID: userID, Title: title, Category: input.Category}
	if raw := strings.TrimSpace(input.StartTime); raw != "" {
		if !validClock(raw) {
			return nil, apperr.Invalid("start_time", "start time must be HH:MM")
		}
		task.StartTime = &raw
	}

	if err := s.routines.CreateRoutineTask(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Day returns the tasks created on the calendar day containing now.
func (s *RoutineService) Day(ctx context.Context, userID uint, now time.Time) (RoutineDay, error) {
	local := now.In(s.loc)
	y, m, d := local.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, s.loc)
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)

	tasks, err := s.routines.ListRoutineTasks(ctx, userID, start, end)
	if err != nil {
		return RoutineDay{}, err
	}

	day := RoutineDay{Date: start.Format("2006-01-02"), Tasks: tasks}
	for _, task := range tasks {
		if task.Completed {
			day.Completed++
		}
	}
	day.Percent = aggregate.Percent(day.Completed, len(tasks))
	return day, nil
}

func (s *RoutineService) SetCompleted(ctx context.Context, userID, taskID uint, completed bool) (*model.RoutineTask, error) {
	return s.routines.SetRoutineCompleted(ctx, userID, taskID, completed)
}

func (s *RoutineService) DeleteTask(ctx context.Context, userID, taskID uint) error {
	return s.routines.DeleteRoutineTask(ctx, userID, taskID)
}

// validClock accepts HH:MM on a 24 hour clock.
func validClock(raw string) bool {
	_, _, err := parseClock(raw)
	return err == nil
}

func parseClock(raw string) (hour, minute int, err error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 2 {
		return 0, 0, apperr.Invalid("time", "expected HH:MM")
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, apperr.Invalid("time", "invalid hour in "+raw)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, apperr.Invalid("time", "invalid minute in "+raw)
	}
	return hour, minute, nil
}
