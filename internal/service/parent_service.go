package service

import (
	"context"
	"fmt"

	"allowance/internal/model"
	"allowance/internal/repository"
	"allowance/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ParentService struct {
	parentRepo    *repository.ParentRepository
	allowanceRepo *repository.AllowanceRepository
}

func NewParentService(db *gorm.DB) *ParentService {
	return &ParentService{
		parentRepo:    repository.NewParentRepository(db),
		allowanceRepo: repository.NewAllowanceRepository(db),
	}
}

// Register 将调用方登记为家长
// 重复登记同样返回成功，不改变已有状态
func (s *ParentService) Register(ctx context.Context, caller string) (bool, error) {
	if err := ValidatePrincipal(caller); err != nil {
		return false, err
	}

	created, err := s.parentRepo.Register(ctx, caller)
	if err != nil {
		return false, fmt.Errorf("登记家长失败: %w", err)
	}

	if created {
		logger.L().Info("家长登记成功", zap.String("parent", caller))
	}
	return true, nil
}

func (s *ParentService) IsParent(ctx context.Context, principal string) (bool, error) {
	if err := ValidatePrincipal(principal); err != nil {
		return false, err
	}
	return s.parentRepo.Exists(ctx, nil, principal)
}

// ListChildren 列出该家长最后设置过额度的所有孩子
func (s *ParentService) ListChildren(ctx context.Context, parent string) ([]*model.Allowance, error) {
	if err := ValidatePrincipal(parent); err != nil {
		return nil, err
	}
	return s.allowanceRepo.ListByParent(ctx, parent)
}
