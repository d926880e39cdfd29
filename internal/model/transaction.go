package model

import (
	"time"
)

const (
	TransactionTypeSet   = "SET"   // 家长设置额度
	TransactionTypeSpend = "SPEND" // 孩子消费
)

// AllowanceTransaction 额度流水表
// 只追加，记录每次额度变动前后的余额，用于对账
type AllowanceTransaction struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionNo string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"transaction_no"`
	Child         string    `gorm:"type:varchar(128);index;not null" json:"child"`
	Parent        string    `gorm:"type:varchar(128);not null" json:"parent"`
	Type          string    `gorm:"type:varchar(20);not null" json:"type"`
	Amount        uint64    `gorm:"not null" json:"amount"`
	BalanceBefore uint64    `gorm:"not null" json:"balance_before"`
	BalanceAfter  uint64    `gorm:"not null" json:"balance_after"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AllowanceTransaction) TableName() string {
	return "allowance_transaction"
}
