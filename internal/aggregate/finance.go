package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"trackpal/internal/model"
)

// MonthAmount is a per-month total keyed by YYYY-MM.
type MonthAmount struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// FinanceSummary is the read-side fold over a user's transactions.
type FinanceSummary struct {
	ByCategory      map[model.TransactionCategory]decimal.Decimal `json:"by_category"`
	BySource        map[string]decimal.Decimal                    `json:"by_source"`
	Balance         decimal.Decimal                               `json:"balance"`
	MonthlySpending []MonthAmount                                 `json:"monthly_spending"`
}

// SumByCategory totals the transactions of one category.
func SumByCategory(txs []model.Transaction, category model.TransactionCategory) decimal.Decimal {
	sum := decimal.Zero
	for _, tx := range txs {
		if tx.Category == category {
			sum = sum.Add(tx.Amount)
		}
	}
	return sum
}

// TotalBalance is income minus spending, plus saving and investing.
func TotalBalance(income, spending, saving, investing decimal.Decimal) decimal.Decimal {
	return income.Sub(spending).Add(saving).Add(investing)
}

// Summarize folds txs into per-category, per-source and per-month totals.
func Summarize(txs []model.Transaction) FinanceSummary {
	summary := FinanceSummary{
		ByCategory: make(map[model.TransactionCategory]decimal.Decimal, len(model.TransactionCategories)),
		BySource:   make(map[string]decimal.Decimal),
	}
	for _, c := range model.TransactionCategories {
		summary.ByCategory[c] = decimal.Zero
	}

	months := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		summary.ByCategory[tx.Category] = summary.ByCategory[tx.Category].Add(tx.Amount)
		summary.BySource[tx.Source] = summary.BySource[tx.Source].Add(tx.Amount)
		if tx.Category == model.CategorySpending {
			key := tx.Date.UTC().Format("2006-01")
			months[key] = months[key].Add(tx.Amount)
		}
	}

	summary.Balance = TotalBalance(
		summary.ByCategory[model.CategoryIncome],
		summary.ByCategory[model.CategorySpending],
		summary.ByCategory[model.CategorySaving],
		summary.ByCategory[model.CategoryInvesting],
	)

	for month, amount := range months {
		summary.MonthlySpending = append(summary.MonthlySpending, MonthAmount{Month: month, Amount: amount})
	}
	sort.Slice(summary.MonthlySpending, func(i, j int) bool {
		return summary.MonthlySpending[i].Month < summary.MonthlySpending[j].Month
	})
	return summary
}

// BudgetLine is the spend against one budget category.
type BudgetLine struct {
	Category string          `json:"category"`
	Budget   decimal.Decimal `json:"budget"`
	Spent    decimal.Decimal `json:"spent"`
	Percent  int             `json:"percent"`
}

// BudgetOverview compares spending against the monthly budget.
type BudgetOverview struct {
	MonthlyBudget decimal.Decimal `json:"monthly_budget"`
	TotalSpent    decimal.Decimal `json:"total_spent"`
	Remaining     decimal.Decimal `json:"remaining"`
	// RemainingPercent is Remaining relative to MonthlyBudget; 0 without a budget.
	RemainingPercent int          `json:"remaining_percent"`
	Lines            []BudgetLine `json:"lines"`
}

// Budget computes spending per budget category. Spending counts against a
// category when the transaction source equals the category name.
func Budget(monthly decimal.Decimal, categories []model.BudgetCategory, txs []model.Transaction) BudgetOverview {
	spent := make(map[string]decimal.Decimal, len(categories))
	for _, tx := range txs {
		if tx.Category == model.CategorySpending {
			spent[tx.Source] = spent[tx.Source].Add(tx.Amount)
		}
	}

	overview := BudgetOverview{MonthlyBudget: monthly, TotalSpent: decimal.Zero}
	hundred := decimal.NewFromInt(100)
	for _, c := range categories {
		s := spent[c.Name]
		line := BudgetLine{Category: c.Name, Budget: c.Budget, Spent: s}
		if c.Budget.IsPositive() {
			pct := s.Div(c.Budget).Mul(hundred)
			if pct.GreaterThan(hundred) {
				pct = hundred
			}
			line.Percent = int(pct.Round(0).IntPart())
		}
		overview.Lines = append(overview.Lines, line)
		overview.TotalSpent = overview.TotalSpent.Add(s)
	}

	overview.Remaining = monthly.Sub(overview.TotalSpent)
	if monthly.IsPositive() {
		overview.RemainingPercent = int(overview.Remaining.Div(monthly).Mul(hundred).Round(0).IntPart())
	}
	return overview
}
