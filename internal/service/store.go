package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"trackpal/internal/model"
	"trackpal/internal/repository"
)

// GoalStore is the goal persistence used by the services.
type GoalStore interface {
	CreateGoal(ctx context.Context, goal *model.Goal) error
	GetGoal(ctx context.Context, userID, goalID uint) (*model.Goal, error)
	ListGoals(ctx context.Context, userID uint) ([]model.Goal, error)
	ReplaceGoal(ctx context.Context, goal *model.Goal) error
	DeleteGoal(ctx context.Context, userID, goalID uint) error
	GetSubtask(ctx context.Context, subtaskID uint) (*model.Subtask, error)
	ListSubtasks(ctx context.Context, goalID uint) ([]model.Subtask, error)
	SetSubtaskCompleted(ctx context.Context, subtaskID uint, completed bool) (*model.Subtask, error)
	SetGoalState(ctx context.Context, goalID uint, state model.GoalState) error
	// ToggleSubtask sets completion and persists the re-derived goal state
	// atomically.
	ToggleSubtask(ctx context.Context, subtaskID uint, completed bool, derive func([]model.Subtask) model.GoalState) (*model.Goal, error)
	ListGoalsForUserInRange(ctx context.Context, userID uint, start, end time.Time) ([]model.Goal, error)
	ListGoalsDueBetween(ctx context.Context, from, to time.Time) ([]model.Goal, error)
	ListUserGoalsDueBetween(ctx context.Context, userID uint, from, to time.Time) ([]model.Goal, error)
}

// ProfileStore is the profile persistence used by the services.
type ProfileStore interface {
	CreateProfile(ctx context.Context, profile *model.Profile) error
	GetProfile(ctx context.Context, userID uint) (*model.Profile, error)
	ListProfiles(ctx context.Context) ([]model.Profile, error)
	UpdateProfile(ctx context.Context, userID uint, fields map[string]interface{}) error
	FindByLinkCode(ctx context.Context, code string) (*model.Profile, error)
	FindByTelegramChat(ctx context.Context, chatID int64) (*model.Profile, error)
	// LinkTelegramChat binds chatID to one profile only.
	LinkTelegramChat(ctx context.Context, userID uint, chatID int64) error
}

type TransactionStore interface {
	CreateTransaction(ctx context.Context, tx *model.Transaction) error
	GetTransaction(ctx context.Context, userID, id uint) (*model.Transaction, error)
	SaveTransaction(ctx context.Context, tx *model.Transaction) error
	DeleteTransaction(ctx context.Context, userID, id uint) error
	ListTransactions(ctx context.Context, userID uint, filter repository.TransactionFilter) ([]model.Transaction, error)
}

type BudgetStore interface {
	UpsertCategory(ctx context.Context, userID uint, name string, budget decimal.Decimal) (*model.BudgetCategory, error)
	ListCategories(ctx context.Context, userID uint) ([]model.BudgetCategory, error)
	DeleteCategory(ctx context.Context, userID, categoryID uint) error
}

type RoutineStore interface {
	CreateRoutineTask(ctx context.Context, task *model.RoutineTask) error
	ListRoutineTasks(ctx context.Context, userID uint, start, end time.Time) ([]model.RoutineTask, error)
	SetRoutineCompleted(ctx context.Context, userID, taskID uint, completed bool) (*model.RoutineTask, error)
	DeleteRoutineTask(ctx context.Context, userID, taskID uint) error
}

var (
	_ GoalStore        = (*repository.GoalRepository)(nil)
	_ ProfileStore     = (*repository.ProfileRepository)(nil)
	_ TransactionStore = (*repository.TransactionRepository)(nil)
	_ BudgetStore      = (*repository.BudgetRepository)(nil)
	_ RoutineStore     = (*repository.RoutineRepository)(nil)
)
