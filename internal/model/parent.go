package model

import (
	"time"
)

// Parent 已注册家长表
// 只有出现在此表中的身份才能为孩子设置零花钱额度
type Parent struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Principal string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"principal"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Parent) TableName() string {
	return "parent"
}
