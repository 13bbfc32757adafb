package model

import "time"

// Address 收货地址模型
type Address struct {
	AddressID  uint64    `db:"address_id" json:"address_id"`
	UserID     uint64    `db:"user_id" json:"user_id"`
	Receiver   string    `db:"receiver" json:"receiver"`
	Phone      string    `db:"phone" json:"phone"`
	Province   string    `db:"province" json:"province"`
	City       string    `db:"city" json:"city"`
	District   string    `db:"district" json:"district"`
	Detail     string    `db:"detail" json:"detail"`
	IsDefault  bool      `db:"is_default" json:"is_default"`
	CreateTime time.Time `db:"create_time" json:"create_time"`
	UpdateTime time.Time `db:"update_time" json:"update_time"`
}
