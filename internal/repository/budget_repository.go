package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"trackpal/internal/apperr"
	"trackpal/internal/model"
)

// BudgetRepository manages budget categories.
type BudgetRepository struct {
	db *gorm.DB
}

func NewBudgetRepository(db *gorm.DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

// UpsertCategory creates the named category or updates its budget.
func (r *BudgetRepository) UpsertCategory(ctx context.Context, userID uint, name string, budget decimal.Decimal) (*model.BudgetCategory, error) {
	var category model.BudgetCategory
	db := r.db.WithContext(ctx)
	err := db.Where("user_id = ? AND name = ?", userID, name).First(&category).Error
	switch {
	case err == nil:
		if err := db.Model(&category).Update("budget", budget).Error; err != nil {
			return nil, apperr.Upstream("update budget category", err)
		}
		category.Budget = budget
		return &category, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		category = model.BudgetCategory{UserID: userID, Name: name, Budget: budget}
		if err := db.Create(&category).Error; err != nil {
			return nil, apperr.Upstream("create budget category", err)
		}
		return &category, nil
	default:
		return nil, apperr.Upstream("find budget category", err)
	}
}

func (r *BudgetRepository) ListCategories(ctx context.Context, userID uint) ([]model.BudgetCategory, error) {
	var categories []model.BudgetCategory
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperr.Upstream("list budget categories", err)
	}
	return categories, nil
}

func (r *BudgetRepository) DeleteCategory(ctx context.Context, userID, categoryID uint) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, categoryID).Delete(&model.BudgetCategory{})
	if res.Error != nil {
		return apperr.Upstream("delete budget category", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("budget category")
	}
	return nil
}
