package model

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"auroramall/internal/status"
)

// 订单类型
const (
	OrderTypeProduct      = 1 // 商品订单
	OrderTypeSubscription = 2 // 订阅订单
)

// Order 订单模型
type Order struct {
	OrderID        uint64             `db:"order_id" json:"order_id"`
	OrderNo        string             `db:"order_no" json:"order_no"`
	UserID         uint64             `db:"user_id" json:"user_id"`
	OrderType      int                `db:"order_type" json:"order_type"` // 1: 商品订单, 2: 订阅订单
	RelatedID      uint64             `db:"related_id" json:"related_id"` // 商品订单为商家ID，订阅订单为套餐ID
	TotalAmount    decimal.Decimal    `db:"total_amount" json:"total_amount"`
	PaidAmount     decimal.Decimal    `db:"paid_amount" json:"paid_amount"`
	ShippingFee    decimal.Decimal    `db:"shipping_fee" json:"shipping_fee"`
	DiscountAmount decimal.Decimal    `db:"discount_amount" json:"discount_amount"`
	CouponAmount   decimal.Decimal    `db:"coupon_amount" json:"coupon_amount"`
	OrderStatus    status.OrderStatus `db:"order_status" json:"order_status"`
	AddressID      sql.NullInt64      `db:"address_id" json:"address_id,omitempty"`
	OrderNote      string             `db:"order_note" json:"order_note"`
	MerchantNote   string             `db:"merchant_note" json:"merchant_note"`
	LogisticsInfo  sql.NullString     `db:"logistics_info" json:"logistics_info,omitempty"`
	// 订阅订单专用字段
	SubscriptionMonths sql.NullInt64 `db:"subscription_months" json:"subscription_months,omitempty"`
	SubscriptionStart  sql.NullTime  `db:"subscription_start" json:"subscription_start,omitempty"`
	SubscriptionEnd    sql.NullTime  `db:"subscription_end" json:"subscription_end,omitempty"`
	CreateTime         time.Time     `db:"create_time" json:"create_time"`
	UpdateTime         time.Time     `db:"update_time" json:"update_time"`
	ExpireTime         sql.NullTime  `db:"expire_time" json:"expire_time,omitempty"`
}

// OrderItem 订单项模型
type OrderItem struct {
	ItemID     uint64          `db:"item_id" json:"item_id"`
	OrderID    uint64          `db:"order_id" json:"order_id"`
	ProductID  uint64          `db:"product_id" json:"product_id"`
	SkuID      uint64          `db:"sku_id" json:"sku_id"`
	MerchantID uint64          `db:"merchant_id" json:"merchant_id"`
	Title      string          `db:"title" json:"title"`
	Image      string          `db:"image" json:"image"`
	Price      decimal.Decimal `db:"price" json:"price"`
	Quantity   int             `db:"quantity" json:"quantity"`
	SkuProps   string          `db:"sku_props" json:"sku_props"` // SKU属性快照，JSON格式
	ItemNote   string          `db:"item_note" json:"item_note"`
	CreateTime time.Time       `db:"create_time" json:"create_time"`
}

// Logistics 物流信息，序列化为JSON后存入订单的logistics_info字段
type Logistics struct {
	Company        string `json:"company"`
	TrackingNumber string `json:"trackingNumber"`
	ShipTime       string `json:"shipTime"`
	ShipNote       string `json:"shipNote,omitempty"`
}

// OrderDetail 订单详情，聚合订单、订单项、收货地址与商家信息
type OrderDetail struct {
	Order    *Order       `json:"order"`
	Items    []*OrderItem `json:"items"`
	Address  *Address     `json:"address,omitempty"`
	Merchant *Merchant    `json:"merchant,omitempty"`
}

// OrderStatistics 按状态统计的订单数量
type OrderStatistics struct {
	PendingPayment  int `db:"pending_payment" json:"pending_payment"`
	PendingShipment int `db:"pending_shipment" json:"pending_shipment"`
	Shipped         int `db:"shipped" json:"shipped"`
	Completed       int `db:"completed" json:"completed"`
	Refunding       int `db:"refunding" json:"refunding"`
}
