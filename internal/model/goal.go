package model

import "time"

// GoalState is the lifecycle state of a weekly goal.
type GoalState string

const (
	GoalNotStarted GoalState = "not-started"
	GoalInProgress GoalState = "in-progress"
	GoalDone       GoalState = "done"
)

// Priority ranks weekly goals.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Goal is a weekly objective made of subtasks.
type Goal struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"index" json:"user_id"`
	Title    string    `json:"title"`
	State    GoalState `gorm:"index;size:16" json:"state"`
	Priority Priority  `gorm:"size:8" json:"priority"`
	// Deadline is a calendar date stored as midnight UTC.
	Deadline  *time.Time `gorm:"index" json:"deadline"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Subtasks  []Subtask  `gorm:"foreignKey:GoalID" json:"tasks"`
}

// Subtask is a completable unit of work owned by exactly one goal.
type Subtask struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GoalID    uint      `gorm:"index" json:"goal_id"`
	Title     string    `json:"title"`
	Completed bool      `gorm:"default:false" json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
