package job

import (
	"context"
	"sync"
	"time"

	"allowance/internal/config"
	"allowance/internal/model"
	"allowance/internal/repository"
	"allowance/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LedgerAuditJob 定期核对额度表与流水表
// 每个孩子的当前额度应等于其最后一笔流水的 balance_after，只告警不修复
type LedgerAuditJob struct {
	allowanceRepo   *repository.AllowanceRepository
	transactionRepo *repository.TransactionRepository
	stopCh          chan struct{}
	stopOnce        sync.Once
	interval        time.Duration
	batchSize       int
}

// AuditMismatch 一条对账差异
type AuditMismatch struct {
	Child        string
	Amount       uint64
	BalanceAfter uint64
	HasFlow      bool
}

func NewLedgerAuditJob(db *gorm.DB, cfg *config.Config) *LedgerAuditJob {
	interval := time.Duration(cfg.Business.AuditIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	return &LedgerAuditJob{
		allowanceRepo:   repository.NewAllowanceRepository(db),
		transactionRepo: repository.NewTransactionRepository(db),
		stopCh:          make(chan struct{}),
		interval:        interval,
		batchSize:       200,
	}
}

func (j *LedgerAuditJob) Start(ctx context.Context) {
	log := logger.L().Named("ledger_audit")
	log.Info("对账任务启动", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("收到停止信号，任务退出")
			return
		case <-j.stopCh:
			log.Info("任务停止")
			return
		case <-ticker.C:
			if _, err := j.Audit(ctx); err != nil {
				log.Error("对账失败", zap.Error(err))
			}
		}
	}
}

func (j *LedgerAuditJob) Stop() {
	j.stopOnce.Do(func() { close(j.stopCh) })
}

// Audit 全量核对一轮，返回发现的差异
func (j *LedgerAuditJob) Audit(ctx context.Context) ([]AuditMismatch, error) {
	var mismatches []AuditMismatch
	var afterID int64

	for {
		batch, err := j.allowanceRepo.ListAfterID(ctx, afterID, j.batchSize)
		if err != nil {
			return mismatches, err
		}
		if len(batch) == 0 {
			break
		}

		for _, allowance := range batch {
			m, err := j.check(ctx, allowance)
			if err != nil {
				return mismatches, err
			}
			if m != nil {
				logger.L().Warn("额度与流水不一致",
					zap.String("child", m.Child),
					zap.Uint64("amount", m.Amount),
					zap.Uint64("balance_after", m.BalanceAfter),
					zap.Bool("has_flow", m.HasFlow),
				)
				mismatches = append(mismatches, *m)
			}
		}
		afterID = batch[len(batch)-1].ID
	}

	return mismatches, nil
}

func (j *LedgerAuditJob) check(ctx context.Context, allowance *model.Allowance) (*AuditMismatch, error) {
	latest, err := j.transactionRepo.GetLatestByChild(ctx, allowance.Child)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return &AuditMismatch{Child: allowance.Child, Amount: allowance.Amount}, nil
	}
	if latest.BalanceAfter != allowance.Amount {
		return &AuditMismatch{
			Child:        allowance.Child,
			Amount:       allowance.Amount,
			BalanceAfter: latest.BalanceAfter,
			HasFlow:      true,
		}, nil
	}
	return nil, nil
}
