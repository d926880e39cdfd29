package repository

import (
	"context"
	"errors"
	"time"

	"allowance/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrAllowanceNotFound     = errors.New("零花钱额度不存在")
	ErrInsufficientAllowance = errors.New("额度不足")
	ErrOptimisticLock        = errors.New("乐观锁冲突，请重试")
)

type AllowanceRepository struct {
	db *gorm.DB
}

func NewAllowanceRepository(db *gorm.DB) *AllowanceRepository {
	return &AllowanceRepository{db: db}
}

func (r *AllowanceRepository) GetByChild(ctx context.Context, tx *gorm.DB, child string) (*model.Allowance, error) {
	if tx == nil {
		tx = r.db
	}
	var allowance model.Allowance
	err := tx.WithContext(ctx).Where("child = ?", child).First(&allowance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAllowanceNotFound
		}
		return nil, err
	}
	return &allowance, nil
}

func (r *AllowanceRepository) GetByChildForUpdate(ctx context.Context, tx *gorm.DB, child string) (*model.Allowance, error) {
	var allowance model.Allowance
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("child = ?", child).
		First(&allowance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAllowanceNotFound
		}
		return nil, err
	}
	return &allowance, nil
}

// Upsert 创建或覆盖孩子的额度记录，家长和额度整体替换
func (r *AllowanceRepository) Upsert(ctx context.Context, tx *gorm.DB, child, parent string, amount uint64) error {
	if tx == nil {
		tx = r.db
	}
	allowance := &model.Allowance{
		Child:  child,
		Parent: parent,
		Amount: amount,
	}
	return tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "child"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"parent":     parent,
				"amount":     amount,
				"version":    gorm.Expr("version + 1"),
				"updated_at": time.Now(),
			}),
		}).
		Create(allowance).Error
}

// Deduct 扣减额度
// 条件更新保证余额不会变成负数，version 防止锁过期后的并发覆盖
func (r *AllowanceRepository) Deduct(ctx context.Context, tx *gorm.DB, child string, amount uint64, version int) error {
	result := tx.WithContext(ctx).
		Model(&model.Allowance{}).
		Where("child = ? AND amount >= ? AND version = ?", child, amount, version).
		Updates(map[string]interface{}{
			"amount":  gorm.Expr("amount - ?", amount),
			"version": gorm.Expr("version + 1"),
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		allowance, err := r.GetByChild(ctx, tx, child)
		if err != nil {
			return err
		}
		if allowance.Amount < amount {
			return ErrInsufficientAllowance
		}
		return ErrOptimisticLock
	}

	return nil
}

func (r *AllowanceRepository) ListByParent(ctx context.Context, parent string) ([]*model.Allowance, error) {
	var allowances []*model.Allowance
	err := r.db.WithContext(ctx).
		Where("parent = ?", parent).
		Order("child ASC").
		Find(&allowances).Error
	return allowances, err
}

// ListAfterID 按主键分批遍历，供对账任务使用
func (r *AllowanceRepository) ListAfterID(ctx context.Context, afterID int64, limit int) ([]*model.Allowance, error) {
	var allowances []*model.Allowance
	err := r.db.WithContext(ctx).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Find(&allowances).Error
	return allowances, err
}
