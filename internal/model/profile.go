package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Profile stores per-user settings and the weekly streak counters.
type Profile struct {
	ID                      uint            `gorm:"primaryKey" json:"id"`
	Email                   string          `gorm:"index" json:"email"`
	DisplayName             string          `json:"display_name"`
	TelegramChatID          int64           `gorm:"index" json:"telegram_chat_id,omitempty"`
	TelegramLinkCode        string          `gorm:"index" json:"telegram_link_code,omitempty"`
	MonthlyBudget           decimal.Decimal `gorm:"type:DECIMAL(20,8)" json:"monthly_budget"`
	WeeklyStreakCount       int             `gorm:"default:0" json:"weekly_streak_count"`
	WeeklyLongestStreak     int             `gorm:"default:0" json:"weekly_longest_streak"`
	WeeklyLastStreakUpdated *time.Time      `json:"weekly_last_streak_updated"`
	// WeeklyLastStreakWeek is the start date (YYYY-MM-DD) of the last week
	// the streak was evaluated for.
	WeeklyLastStreakWeek string    `json:"weekly_last_streak_week,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
