package repository

import (
	"context"
	"errors"

	"allowance/internal/model"

	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *gorm.DB, trans *model.AllowanceTransaction) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(trans).Error
}

func (r *TransactionRepository) GetByTransactionNo(ctx context.Context, transactionNo string) (*model.AllowanceTransaction, error) {
	var trans model.AllowanceTransaction
	err := r.db.WithContext(ctx).Where("transaction_no = ?", transactionNo).First(&trans).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &trans, nil
}

// GetLatestByChild 返回孩子最近一笔流水，没有流水时返回 nil
func (r *TransactionRepository) GetLatestByChild(ctx context.Context, child string) (*model.AllowanceTransaction, error) {
	var trans model.AllowanceTransaction
	err := r.db.WithContext(ctx).
		Where("child = ?", child).
		Order("id DESC").
		First(&trans).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &trans, nil
}

func (r *TransactionRepository) ListByChild(ctx context.Context, child string, page, pageSize int) ([]*model.AllowanceTransaction, int64, error) {
	var transactions []*model.AllowanceTransaction
	var total int64

	query := r.db.WithContext(ctx).
		Model(&model.AllowanceTransaction{}).
		Where("child = ?", child).
		Session(&gorm.Session{})

	err := query.Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	err = query.
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&transactions).Error

	return transactions, total, err
}
