package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetCategory is a named spending envelope. Spending transactions whose
// source matches Name count against it.
type BudgetCategory struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"index:idx_user_budget_name,unique" json:"user_id"`
	Name      string          `gorm:"index:idx_user_budget_name,unique" json:"category"`
	Budget    decimal.Decimal `gorm:"type:DECIMAL(20,8)" json:"budget"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
