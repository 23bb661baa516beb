package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionCategory classifies money movements.
type TransactionCategory string

const (
	CategoryIncome    TransactionCategory = "Income"
	CategorySpending  TransactionCategory = "Spending"
	CategorySaving    TransactionCategory = "Saving"
	CategoryInvesting TransactionCategory = "Investing"
)

// TransactionCategories lists every category in display order.
var TransactionCategories = []TransactionCategory{
	CategoryIncome,
	CategorySpending,
	CategorySaving,
	CategoryInvesting,
}

func (c TransactionCategory) Valid() bool {
	for _, known := range TransactionCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Transaction is a single finance entry.
type Transaction struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"index" json:"user_id"`
	// Date is a calendar date stored as midnight UTC.
	Date      time.Time           `gorm:"index" json:"date"`
	Source    string              `json:"source"`
	Category  TransactionCategory `gorm:"index;size:16" json:"category"`
	Amount    decimal.Decimal     `gorm:"type:DECIMAL(20,8)" json:"amount"`
	Notes     string              `json:"notes"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}
