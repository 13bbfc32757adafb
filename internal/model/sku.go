package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sku 商品SKU模型
type Sku struct {
	SkuID      uint64          `db:"sku_id" json:"sku_id"`
	ProductID  uint64          `db:"product_id" json:"product_id"`
	MerchantID uint64          `db:"merchant_id" json:"merchant_id"`
	Title      string          `db:"title" json:"title"`
	Image      string          `db:"image" json:"image"`
	Price      decimal.Decimal `db:"price" json:"price"`
	Stock      int             `db:"stock" json:"stock"`
	Properties string          `db:"properties" json:"properties"` // SKU属性，JSON格式
	Status     int             `db:"status" json:"status"`         // 0: 下架, 1: 上架
	CreateTime time.Time       `db:"create_time" json:"create_time"`
	UpdateTime time.Time       `db:"update_time" json:"update_time"`
}
