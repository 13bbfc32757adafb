package model

import "time"

// Merchant 商家模型
type Merchant struct {
	MerchantID  uint64    `db:"merchant_id" json:"merchant_id"`
	UserID      uint64    `db:"user_id" json:"user_id"` // 商家关联的用户账号
	Name        string    `db:"name" json:"name"`
	Logo        string    `db:"logo" json:"logo"`
	Description string    `db:"description" json:"description"`
	Status      int       `db:"status" json:"status"` // 0: 禁用, 1: 正常
	CreateTime  time.Time `db:"create_time" json:"create_time"`
	UpdateTime  time.Time `db:"update_time" json:"update_time"`
}
