package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"trackpal/internal/apperr"
	"trackpal/internal/model"
)

// GoalRepository handles goals and their subtasks.
type GoalRepository struct {
	db *gorm.DB
}

func NewGoalRepository(db *gorm.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

// CreateGoal inserts the goal together with its subtasks.
func (r *GoalRepository) CreateGoal(ctx context.Context, goal *model.Goal) error {
	if !goal.CreatedAt.IsZero() {
		goal.CreatedAt = goal.CreatedAt.UTC()
	}
	if goal.Deadline != nil {
		d := goal.Deadline.UTC()
		goal.Deadline = &d
	}
	if err := r.db.WithContext(ctx).Create(goal).Error; err != nil {
		return apperr.Upstream("create goal", err)
	}
	return nil
}

func (r *GoalRepository) GetGoal(ctx context.Context, userID, goalID uint) (*model.Goal, error) {
	var goal model.Goal
	err := r.db.WithContext(ctx).
		Preload("Subtasks", orderSubtasks).
		Where("user_id = ? AND id = ?", userID, goalID).
		First(&goal).Error
	if err != nil {
		return nil, classify("get goal", "goal", err)
	}
	return &goal, nil
}

func (r *GoalRepository) ListGoals(ctx context.Context, userID uint) ([]model.Goal, error) {
	var goals []model.Goal
	if err := r.db.WithContext(ctx).
		Preload("Subtasks", orderSubtasks).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&goals).Error; err != nil {
		return nil, apperr.Upstream("list goals", err)
	}
	return goals, nil
}

// ReplaceGoal saves the goal's editable fields and makes its stored subtask
// set equal to goal.Subtasks. Subtasks with ID 0 are inserted; stored
// subtasks missing from the list are deleted.
func (r *GoalRepository) ReplaceGoal(ctx context.Context, goal *model.Goal) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		keep := make([]uint, 0, len(goal.Subtasks))
		for _, st := range goal.Subtasks {
			if st.ID != 0 {
				keep = append(keep, st.ID)
			}
		}

		stale := tx.Where("goal_id = ?", goal.ID)
		if len(keep) > 0 {
			stale = stale.Where("id NOT IN ?", keep)
		}
		if err := stale.Delete(&model.Subtask{}).Error; err != nil {
			return err
		}

		for i := range goal.Subtasks {
			goal.Subtasks[i].GoalID = goal.ID
			if err := tx.Save(&goal.Subtasks[i]).Error; err != nil {
				return err
			}
		}

		var deadline interface{}
		if goal.Deadline != nil {
			deadline = goal.Deadline.UTC()
		}
		res := tx.Model(&model.Goal{}).
			Where("user_id = ? AND id = ?", goal.UserID, goal.ID).
			Updates(map[string]interface{}{
				"title":    goal.Title,
				"priority": goal.Priority,
				"deadline": deadline,
				"state":    goal.State,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return classify("replace goal", "goal", err)
}

// DeleteGoal removes a goal and every subtask it owns.
func (r *GoalRepository) DeleteGoal(ctx context.Context, userID, goalID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND id = ?", userID, goalID).Delete(&model.Goal{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("goal_id = ?", goalID).Delete(&model.Subtask{}).Error
	})
	return classify("delete goal", "goal", err)
}

func (r *GoalRepository) GetSubtask(ctx context.Context, subtaskID uint) (*model.Subtask, error) {
	var st model.Subtask
	if err := r.db.WithContext(ctx).First(&st, subtaskID).Error; err != nil {
		return nil, classify("get subtask", "subtask", err)
	}
	return &st, nil
}

func (r *GoalRepository) ListSubtasks(ctx context.Context, goalID uint) ([]model.Subtask, error) {
	var subtasks []model.Subtask
	if err := orderSubtasks(r.db.WithContext(ctx)).Where("goal_id = ?", goalID).Find(&subtasks).Error; err != nil {
		return nil, apperr.Upstream("list subtasks", err)
	}
	return subtasks, nil
}

func (r *GoalRepository) SetSubtaskCompleted(ctx context.Context, subtaskID uint, completed bool) (*model.Subtask, error) {
	db := r.db.WithContext(ctx)
	res := db.Model(&model.Subtask{}).Where("id = ?", subtaskID).Update("completed", completed)
	if res.Error != nil {
		return nil, apperr.Upstream("set subtask completed", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("subtask")
	}
	var st model.Subtask
	if err := db.First(&st, subtaskID).Error; err != nil {
		return nil, classify("reload subtask", "subtask", err)
	}
	return &st, nil
}

func (r *GoalRepository) SetGoalState(ctx context.Context, goalID uint, state model.GoalState) error {
	res := r.db.WithContext(ctx).Model(&model.Goal{}).Where("id = ?", goalID).Update("state", state)
	if res.Error != nil {
		return apperr.Upstream("set goal state", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("goal")
	}
	return nil
}

// ToggleSubtask sets a subtask's completion flag, re-derives the parent
// goal's state from its subtasks and persists it, all in one transaction.
// Any failure leaves both rows untouched.
func (r *GoalRepository) ToggleSubtask(ctx context.Context, subtaskID uint, completed bool, derive func([]model.Subtask) model.GoalState) (*model.Goal, error) {
	var goal *model.Goal
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &GoalRepository{db: tx}

		st, err := txRepo.SetSubtaskCompleted(ctx, subtaskID, completed)
		if err != nil {
			return err
		}
		subtasks, err := txRepo.ListSubtasks(ctx, st.GoalID)
		if err != nil {
			return err
		}
		state := derive(subtasks)
		if err := txRepo.SetGoalState(ctx, st.GoalID, state); err != nil {
			return err
		}

		var g model.Goal
		if err := tx.First(&g, st.GoalID).Error; err != nil {
			return err
		}
		g.Subtasks = subtasks
		goal = &g
		return nil
	})
	if err != nil {
		return nil, classify("toggle subtask", "goal", err)
	}
	return goal, nil
}

// ListGoalsForUserInRange returns goals created within [start, end].
func (r *GoalRepository) ListGoalsForUserInRange(ctx context.Context, userID uint, start, end time.Time) ([]model.Goal, error) {
	var goals []model.Goal
	if err := r.db.WithContext(ctx).
		Preload("Subtasks", orderSubtasks).
		Where("user_id = ? AND created_at >= ? AND created_at <= ?", userID, start.UTC(), end.UTC()).
		Order("created_at ASC").
		Find(&goals).Error; err != nil {
		return nil, apperr.Upstream("list goals in range", err)
	}
	return goals, nil
}

// ListGoalsDueBetween returns goals that are not done and whose deadline
// lies within [from, to].
func (r *GoalRepository) ListGoalsDueBetween(ctx context.Context, from, to time.Time) ([]model.Goal, error) {
	var goals []model.Goal
	if err := r.db.WithContext(ctx).
		Where("state <> ? AND deadline IS NOT NULL AND deadline >= ? AND deadline <= ?", model.GoalDone, from.UTC(), to.UTC()).
		Order("user_id ASC, deadline ASC").
		Find(&goals).Error; err != nil {
		return nil, apperr.Upstream("list goals due", err)
	}
	return goals, nil
}

// ListUserGoalsDueBetween is ListGoalsDueBetween restricted to one user.
func (r *GoalRepository) ListUserGoalsDueBetween(ctx context.Context, userID uint, from, to time.Time) ([]model.Goal, error) {
	var goals []model.Goal
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND state <> ? AND deadline IS NOT NULL AND deadline >= ? AND deadline <= ?", userID, model.GoalDone, from.UTC(), to.UTC()).
		Order("deadline ASC, id ASC").
		Find(&goals).Error; err != nil {
		return nil, apperr.Upstream("list user goals due", err)
	}
	return goals, nil
}

func orderSubtasks(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}
