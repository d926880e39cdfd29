package model

import (
	"time"
)

// Allowance 零花钱额度表
// 每个孩子最多一条记录，最后一次 set-allowance 覆盖之前的家长和额度
type Allowance struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"-"`
	Child     string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"child"`
	Parent    string    `gorm:"type:varchar(128);index;not null" json:"parent"` // 最后设置额度的家长
	Amount    uint64    `gorm:"not null;default:0" json:"amount"`               // 剩余可用额度，不会为负
	Version   int       `gorm:"not null;default:0" json:"-"`                    // 乐观锁版本号
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Allowance) TableName() string {
	return "allowance"
}
