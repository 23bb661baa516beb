package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"trackpal/internal/apperr"
	"trackpal/internal/model"
)

// RoutineRepository handles daily routine tasks.
type RoutineRepository struct {
	db *gorm.DB
}

func NewRoutineRepository(db *gorm.DB) *RoutineRepository {
	return &RoutineRepository{db: db}
}

func (r *RoutineRepository) CreateRoutineTask(ctx context.Context, task *model.RoutineTask) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return apperr.Upstream("create routine task", err)
	}
	return nil
}

// ListRoutineTasks returns tasks created within [start, end].
func (r *RoutineRepository) ListRoutineTasks(ctx context.Context, userID uint, start, end time.Time) ([]model.RoutineTask, error) {
	var tasks []model.RoutineTask
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ? AND created_at <= ?", userID, start.UTC(), end.UTC()).
		Order("start_time IS NULL, start_time ASC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, apperr.Upstream("list routine tasks", err)
	}
	return tasks, nil
}

func (r *RoutineRepository) SetRoutineCompleted(ctx context.Context, userID, taskID uint, completed bool) (*model.RoutineTask, error) {
	db := r.db.WithContext(ctx)
	res := db.Model(&model.RoutineTask{}).Where("user_id = ? AND id = ?", userID, taskID).Update("completed", completed)
	if res.Error != nil {
		return nil, apperr.Upstream("set routine completed", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("routine task")
	}
	var task model.RoutineTask
	if err := db.First(&task, taskID).Error; err != nil {
		return nil, classify("reload routine task", "routine task", err)
	}
	return &task, nil
}

// Delete removes a routine task for the given user.
func (r *RoutineRepository) DeleteRoutineTask(ctx context.Context, userID, taskID uint) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).Delete(&model.RoutineTask{})
	if res.Error != nil {
		return apperr.Upstream("delete routine task", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("routine task")
	}
	return nil
}
