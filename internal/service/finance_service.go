package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"trackpal/internal/aggregate"
	"trackpal/internal/apperr"
	"trackpal/internal/model"
	"trackpal/internal/repository"
)

// TransactionInput represents data required to record a transaction.
type TransactionInput struct {
	Date     string                    `json:"date"`
	Source   string                    `json:"source"`
	Category model.TransactionCategory `json:"category"`
	Amount   decimal.Decimal           `json:"amount"`
	Notes    string                    `json:"notes"`
}

// TransactionQuery filters a transaction listing. Month is YYYY-MM.
type TransactionQuery struct {
	Month    string
	Category model.TransactionCategory
	Source   string
}

// FinanceService wraps transactions, budget categories and the monthly budget.
type FinanceService struct {
	transactions TransactionStore
	budgets      BudgetStore
	profiles     ProfileStore
	loc          *time.Location
}

func NewFinanceService(transactions TransactionStore, budgets BudgetStore, profiles ProfileStore, loc *time.Location) *FinanceService {
	if loc == nil {
		loc = time.UTC
	}
	return &FinanceService{transactions: transactions, budgets: budgets, profiles: profiles, loc: loc}
}

func (s *FinanceService) CreateTransaction(ctx context.Context, userID uint, input TransactionInput) (*model.Transaction, error) {
	tx := model.Transaction{UserID: userID}
	if err := applyTransactionInput(&tx, input); err != nil {
		return nil, err
	}
	if err := s.transactions.CreateTransaction(ctx, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

func (s *FinanceService) UpdateTransaction(ctx context.Context, userID, id uint, input TransactionInput) (*model.Transaction, error) {
	tx, err := s.transactions.GetTransaction(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := applyTransactionInput(tx, input); err != nil {
		return nil, err
	}
	if err := s.transactions.SaveTransaction(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *FinanceService) DeleteTransaction(ctx context.Context, userID, id uint) error {
	return s.transactions.DeleteTransaction(ctx, userID, id)
}

func (s *FinanceService) ListTransactions(ctx context.Context, userID uint, query TransactionQuery) ([]model.Transaction, error) {
	filter := repository.TransactionFilter{Source: strings.TrimSpace(query.Source)}
	if query.Category != "" {
		if !query.Category.Valid() {
			return nil, apperr.Invalid("category", "unknown transaction category")
		}
		filter.Category = query.Category
	}
	if query.Month != "" {
		start, err := time.ParseInLocation("2006-01", query.Month, time.UTC)
		if err != nil {
			return nil, apperr.Invalid("month", "month must be YYYY-MM")
		}
		filter.From = start
		filter.To = start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	}
	return s.transactions.ListTransactions(ctx, userID, filter)
}

// Summary folds every transaction of the user into totals.
func (s *FinanceService) Summary(ctx context.Context, userID uint) (aggregate.FinanceSummary, error) {
	txs, err := s.transactions.ListTransactions(ctx, userID, repository.TransactionFilter{})
	if err != nil {
		return aggregate.FinanceSummary{}, err
	}
	return aggregate.Summarize(txs), nil
}

func (s *FinanceService) SetMonthlyBudget(ctx context.Context, userID uint, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperr.Invalid("monthly_budget", "monthly budget must be greater than zero")
	}
	return s.profiles.UpdateProfile(ctx, userID, map[string]interface{}{"monthly_budget": amount})
}

func (s *FinanceService) AddBudgetCategory(ctx context.Context, userID uint, name string, budget decimal.Decimal) (*model.BudgetCategory, error) {
	name = normalizeTitle(name)
	if name == "" {
		return nil, apperr.Invalid("category", "category name is required")
	}
	if !budget.IsPositive() {
		return nil, apperr.Invalid("budget", "budget must be greater than zero")
	}
	return s.budgets.UpsertCategory(ctx, userID, name, budget)
}

func (s *FinanceService) ListBudgetCategories(ctx context.Context, userID uint) ([]model.BudgetCategory, error) {
	return s.budgets.ListCategories(ctx, userID)
}

func (s *FinanceService) DeleteBudgetCategory(ctx context.Context, userID, categoryID uint) error {
	return s.budgets.DeleteCategory(ctx, userID, categoryID)
}

// BudgetOverview compares the spending of the month containing now against
// the monthly budget and the budget categories.
func (s *FinanceService) BudgetOverview(ctx context.Context, userID uint, now time.Time) (aggregate.BudgetOverview, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return aggregate.BudgetOverview{}, err
	}
	categories, err := s.budgets.ListCategories(ctx, userID)
	if err != nil {
		return aggregate.BudgetOverview{}, err
	}
	txs, err := s.ListTransactions(ctx, userID, TransactionQuery{
		Month:    now.In(s.loc).Format("2006-01"),
		Category: model.CategorySpending,
	})
	if err != nil {
		return aggregate.BudgetOverview{}, err
	}
	return aggregate.Budget(profile.MonthlyBudget, categories, txs), nil
}

func applyTransactionInput(tx *model.Transaction, input TransactionInput) error {
	date, err := aggregate.ParseDate(strings.TrimSpace(input.Date))
	if err != nil {
		return apperr.Invalid("date", "date must be YYYY-MM-DD")
	}
	source := normalizeTitle(input.Source)
	if source == "" {
		return apperr.Invalid("source", "source is required")
	}
	if !input.Category.Valid() {
		return apperr.Invalid("category", "category must be Income, Spending, Saving or Investing")
	}
	if input.Amount.IsNegative() {
		return apperr.Invalid("amount", "amount must not be negative")
	}

	tx.Date = date
	tx.Source = source
	tx.Category = input.Category
	tx.Amount = input.Amount
	tx.Notes = strings.TrimSpace(input.Notes)
	return nil
}
