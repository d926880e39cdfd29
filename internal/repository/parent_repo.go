package repository

import (
	"context"
	"errors"

	"allowance/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ParentRepository struct {
	db *gorm.DB
}

func NewParentRepository(db *gorm.DB) *ParentRepository {
	return &ParentRepository{db: db}
}

// Register 登记家长，重复登记不报错
// 返回值 created 表示本次是否新增
func (r *ParentRepository) Register(ctx context.Context, principal string) (bool, error) {
	parent := &model.Parent{Principal: principal}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "principal"}},
			DoNothing: true,
		}).
		Create(parent)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *ParentRepository) Exists(ctx context.Context, tx *gorm.DB, principal string) (bool, error) {
	if tx == nil {
		tx = r.db
	}
	var parent model.Parent
	err := tx.WithContext(ctx).Where("principal = ?", principal).First(&parent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
