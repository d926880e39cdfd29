package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"allowance/internal/config"
	"allowance/internal/infrastructure/lock"
	"allowance/internal/model"
	"allowance/internal/repository"
	"allowance/pkg/idgen"
	"allowance/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const lockRetryInterval = 100 * time.Millisecond

type AllowanceService struct {
	db              *gorm.DB
	redisClient     *redis.Client
	cfg             *config.Config
	parentRepo      *repository.ParentRepository
	allowanceRepo   *repository.AllowanceRepository
	transactionRepo *repository.TransactionRepository
	outboxRepo      *repository.OutboxRepository
}

func NewAllowanceService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *AllowanceService {
	return &AllowanceService{
		db:              db,
		redisClient:     redisClient,
		cfg:             cfg,
		parentRepo:      repository.NewParentRepository(db),
		allowanceRepo:   repository.NewAllowanceRepository(db),
		transactionRepo: repository.NewTransactionRepository(db),
		outboxRepo:      repository.NewOutboxRepository(db),
	}
}

// AllowanceInfo get-allowance 的返回结构
type AllowanceInfo struct {
	Amount uint64 `json:"amount"`
	Parent string `json:"parent"`
}

// SetAllowance 家长为孩子设置额度，覆盖该孩子已有的记录
func (s *AllowanceService) SetAllowance(ctx context.Context, caller, child string, amount uint64) (bool, error) {
	if err := ValidatePrincipal(caller); err != nil {
		return false, err
	}
	if err := ValidatePrincipal(child); err != nil {
		return false, err
	}

	transactionNo := idgen.GenerateTransactionNo(idgen.PrefixSet)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		isParent, err := s.parentRepo.Exists(ctx, tx, caller)
		if err != nil {
			return fmt.Errorf("查询家长失败: %w", err)
		}
		if !isParent {
			return ErrNotParent
		}

		var before uint64
		existing, err := s.allowanceRepo.GetByChildForUpdate(ctx, tx, child)
		switch {
		case err == nil:
			before = existing.Amount
		case errors.Is(err, repository.ErrAllowanceNotFound):
		default:
			return fmt.Errorf("查询额度失败: %w", err)
		}

		if err := s.allowanceRepo.Upsert(ctx, tx, child, caller, amount); err != nil {
			return fmt.Errorf("设置额度失败: %w", err)
		}

		trans := &model.AllowanceTransaction{
			TransactionNo: transactionNo,
			Child:         child,
			Parent:        caller,
			Type:          model.TransactionTypeSet,
			Amount:        amount,
			BalanceBefore: before,
			BalanceAfter:  amount,
		}
		if err := s.transactionRepo.Create(ctx, tx, trans); err != nil {
			return fmt.Errorf("记录流水失败: %w", err)
		}

		return s.writeOutbox(ctx, tx, model.EventAllowanceSet, trans)
	})
	if err != nil {
		return false, err
	}

	logger.L().Info("额度设置成功",
		zap.String("transaction_no", transactionNo),
		zap.String("parent", caller),
		zap.String("child", child),
		zap.Uint64("amount", amount),
	)
	return true, nil
}

// Spend 孩子消费额度
// 余额不足时拒绝且不修改任何状态
func (s *AllowanceService) Spend(ctx context.Context, child string, amount uint64) (bool, error) {
	if err := ValidatePrincipal(child); err != nil {
		return false, err
	}
	if amount == 0 {
		return false, ErrInvalidAmount
	}

	transactionNo := idgen.GenerateTransactionNo(idgen.PrefixSpend)

	spendLock := lock.NewSpendLock(s.redisClient, child, transactionNo)
	if err := spendLock.Lock(ctx, lockRetryInterval, s.cfg.Business.LockMaxRetries); err != nil {
		if errors.Is(err, lock.ErrLockFailed) {
			return false, fmt.Errorf("%w: %v", ErrSystemBusy, err)
		}
		return false, fmt.Errorf("获取消费锁失败: %w", err)
	}
	defer func() {
		if err := spendLock.Unlock(context.WithoutCancel(ctx)); err != nil {
			logger.L().Warn("释放消费锁失败", zap.String("key", spendLock.Key()), zap.Error(err))
		}
	}()

	var trans *model.AllowanceTransaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		allowance, err := s.allowanceRepo.GetByChildForUpdate(ctx, tx, child)
		if err != nil {
			return err
		}
		if allowance.Amount < amount {
			return ErrInsufficientAllowance
		}

		if err := s.allowanceRepo.Deduct(ctx, tx, child, amount, allowance.Version); err != nil {
			return err
		}

		trans = &model.AllowanceTransaction{
			TransactionNo: transactionNo,
			Child:         child,
			Parent:        allowance.Parent,
			Type:          model.TransactionTypeSpend,
			Amount:        amount,
			BalanceBefore: allowance.Amount,
			BalanceAfter:  allowance.Amount - amount,
		}
		if err := s.transactionRepo.Create(ctx, tx, trans); err != nil {
			return fmt.Errorf("记录流水失败: %w", err)
		}

		return s.writeOutbox(ctx, tx, model.EventAllowanceSpent, trans)
	})
	if err != nil {
		return false, err
	}

	logger.L().Info("额度消费成功",
		zap.String("transaction_no", transactionNo),
		zap.String("child", child),
		zap.Uint64("amount", amount),
		zap.Uint64("balance_after", trans.BalanceAfter),
	)
	return true, nil
}

func (s *AllowanceService) GetAllowance(ctx context.Context, child string) (*AllowanceInfo, error) {
	if err := ValidatePrincipal(child); err != nil {
		return nil, err
	}

	allowance, err := s.allowanceRepo.GetByChild(ctx, nil, child)
	if err != nil {
		return nil, err
	}

	return &AllowanceInfo{
		Amount: allowance.Amount,
		Parent: allowance.Parent,
	}, nil
}

// TransactionPage 流水分页结果，Page / PageSize 为实际生效的分页参数
type TransactionPage struct {
	List     []*model.AllowanceTransaction `json:"list"`
	Total    int64                         `json:"total"`
	Page     int                           `json:"page"`
	PageSize int                           `json:"page_size"`
}

func (s *AllowanceService) ListTransactions(ctx context.Context, child string, page, pageSize int) (*TransactionPage, error) {
	if err := ValidatePrincipal(child); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	list, total, err := s.transactionRepo.ListByChild(ctx, child, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &TransactionPage{
		List:     list,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// GetTransaction 按流水号查询单条流水
func (s *AllowanceService) GetTransaction(ctx context.Context, transactionNo string) (*model.AllowanceTransaction, error) {
	trans, err := s.transactionRepo.GetByTransactionNo(ctx, transactionNo)
	if err != nil {
		return nil, err
	}
	if trans == nil {
		return nil, ErrTransactionNotFound
	}
	return trans, nil
}

func (s *AllowanceService) writeOutbox(ctx context.Context, tx *gorm.DB, event string, trans *model.AllowanceTransaction) error {
	payload, err := json.Marshal(model.AllowanceEvent{
		Event:         event,
		TransactionNo: trans.TransactionNo,
		Child:         trans.Child,
		Parent:        trans.Parent,
		Amount:        trans.Amount,
		BalanceAfter:  trans.BalanceAfter,
		OccurredAt:    time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("序列化消息失败: %w", err)
	}

	msg := &model.OutboxMessage{
		MessageKey: trans.Child,
		Topic:      s.cfg.Kafka.Topic.AllowanceEvent,
		Payload:    string(payload),
		Status:     model.OutboxStatusPending,
	}
	if err := s.outboxRepo.Create(ctx, tx, msg); err != nil {
		return fmt.Errorf("写入消息失败: %w", err)
	}
	return nil
}
