package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Plan 订阅套餐模型
type Plan struct {
	PlanID       uint64          `db:"plan_id" json:"plan_id"`
	Name         string          `db:"name" json:"name"`
	Description  string          `db:"description" json:"description"`
	MonthlyPrice decimal.Decimal `db:"monthly_price" json:"monthly_price"`
	Status       int             `db:"status" json:"status"` // 0: 下架, 1: 上架
	CreateTime   time.Time       `db:"create_time" json:"create_time"`
	UpdateTime   time.Time       `db:"update_time" json:"update_time"`
}
