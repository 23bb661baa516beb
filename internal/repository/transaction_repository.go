package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"trackpal/internal/apperr"
	"trackpal/internal/model"
)

// TransactionFilter narrows a transaction listing. Zero values mean "any".
type TransactionFilter struct {
	From     time.Time
	To       time.Time
	Category model.TransactionCategory
	Source   string
}

// TransactionRepository handles CRUD for finance transactions.
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) CreateTransaction(ctx context.Context, tx *model.Transaction) error {
	tx.Date = tx.Date.UTC()
	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil {
		return apperr.Upstream("create transaction", err)
	}
	return nil
}

func (r *TransactionRepository) GetTransaction(ctx context.Context, userID, id uint) (*model.Transaction, error) {
	var tx model.Transaction
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&tx).Error; err != nil {
		return nil, classify("get transaction", "transaction", err)
	}
	return &tx, nil
}

func (r *TransactionRepository) SaveTransaction(ctx context.Context, tx *model.Transaction) error {
	tx.Date = tx.Date.UTC()
	res := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("user_id = ? AND id = ?", tx.UserID, tx.ID).
		Updates(map[string]interface{}{
			"date":     tx.Date,
			"source":   tx.Source,
			"category": tx.Category,
			"amount":   tx.Amount,
			"notes":    tx.Notes,
		})
	if res.Error != nil {
		return apperr.Upstream("update transaction", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("transaction")
	}
	return nil
}

func (r *TransactionRepository) DeleteTransaction(ctx context.Context, userID, id uint) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(&model.Transaction{})
	if res.Error != nil {
		return apperr.Upstream("delete transaction", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("transaction")
	}
	return nil
}

// ListTransactions returns the user's transactions, newest first.
func (r *TransactionRepository) ListTransactions(ctx context.Context, userID uint, filter TransactionFilter) ([]model.Transaction, error) {
	var txs []model.Transaction
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	q = applyTransactionFilter(q, filter)
	if err := q.Order("date DESC, id DESC").Find(&txs).Error; err != nil {
		return nil, apperr.Upstream("list transactions", err)
	}
	return txs, nil
}

func applyTransactionFilter(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if !f.From.IsZero() {
		q = q.Where("date >= ?", f.From.UTC())
	}
	if !f.To.IsZero() {
		q = q.Where("date <= ?", f.To.UTC())
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Source != "" {
		q = q.Where("source = ?", f.Source)
	}
	return q
}
