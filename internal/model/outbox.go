package model

import (
	"time"
)

const (
	OutboxStatusPending = "PENDING"
	OutboxStatusSent    = "SENT"
	OutboxStatusFailed  = "FAILED"
)

const (
	EventAllowanceSet   = "allowance.set"
	EventAllowanceSpent = "allowance.spent"
)

// OutboxMessage 本地消息表，与业务变更在同一事务内写入
type OutboxMessage struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	MessageKey string    `gorm:"type:varchar(128);not null" json:"message_key"`
	Topic      string    `gorm:"type:varchar(64);not null" json:"topic"`
	Payload    string    `gorm:"type:text;not null" json:"payload"`
	Status     string    `gorm:"type:varchar(20);index;not null;default:PENDING" json:"status"`
	RetryCount int       `gorm:"not null;default:0" json:"retry_count"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (OutboxMessage) TableName() string {
	return "outbox_message"
}

// AllowanceEvent 发往 Kafka 的额度变更事件
type AllowanceEvent struct {
	Event         string `json:"event"`
	TransactionNo string `json:"transaction_no"`
	Child         string `json:"child"`
	Parent        string `json:"parent"`
	Amount        uint64 `json:"amount"`
	BalanceAfter  uint64 `json:"balance_after"`
	OccurredAt    string `json:"occurred_at"`
}

// AllModels 需要自动迁移的表
func AllModels() []interface{} {
	return []interface{}{
		&Parent{},
		&Allowance{},
		&AllowanceTransaction{},
		&OutboxMessage{},
	}
}
