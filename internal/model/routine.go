package model

import "time"

// RoutineCategory groups daily routine tasks.
type RoutineCategory string

const (
	RoutineGrowth  RoutineCategory = "growth"
	RoutineHealth  RoutineCategory = "health"
	RoutineCore    RoutineCategory = "core"
	RoutineLeisure RoutineCategory = "leisure"
)

func (c RoutineCategory) Valid() bool {
	switch c {
	case RoutineGrowth, RoutineHealth, RoutineCore, RoutineLeisure:
		return true
	}
	return false
}

// RoutineTask is a recurring daily checklist item.
type RoutineTask struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"index" json:"user_id"`
	Title     string          `json:"title"`
	Category  RoutineCategory `gorm:"size:16" json:"category"`
	Completed bool            `gorm:"default:false" json:"completed"`
	// StartTime is an optional HH:MM wall-clock time.
	StartTime *string   `json:"start_time"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
