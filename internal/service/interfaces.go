package service

import (
	"time"

	"github.com/shopspring/decimal"

	"auroramall/internal/model"
	"auroramall/internal/status"
)

// OrderRepo 订单存储接口
type OrderRepo interface {
	CreateOrderGroup(order *model.Order, items []*model.OrderItem, payment *model.Payment) error
	GetByID(orderID uint64) (*model.Order, error)
	UpdateStatusCAS(orderID uint64, expected, next status.OrderStatus) (bool, error)
	UpdateLogisticsCAS(orderID uint64, expected, next status.OrderStatus, logisticsJSON string) (bool, error)
	UpdatePaidAmount(orderID uint64, paidAmount decimal.Decimal) error
	ListByUser(userID uint64, statuses []status.OrderStatus, page, pageSize int) ([]*model.Order, int, error)
	ListByMerchant(merchantID uint64, statuses []status.OrderStatus, page, pageSize int) ([]*model.Order, int, error)
	ListExpired(now time.Time, limit int) ([]*model.Order, error)
	HasActiveSubscription(userID, planID uint64, now time.Time) (bool, error)
	Statistics(userID uint64) (*model.OrderStatistics, error)
}

// OrderItemRepo 订单项存储接口
type OrderItemRepo interface {
	ListByOrderID(orderID uint64) ([]*model.OrderItem, error)
}

// PaymentRepo 支付单存储接口
type PaymentRepo interface {
	GetByPaymentNo(paymentNo string) (*model.Payment, error)
	GetByOrderID(orderID uint64) (*model.Payment, error)
	MarkSucceededCAS(paymentID uint64, channel, thirdPartyNo string, payTime time.Time) (bool, error)
	UpdateStatusCAS(paymentID uint64, expected, next int) (bool, error)
	MarkRefunded(paymentID uint64, refundNo string, refundTime time.Time) error
	UpdateChannel(paymentID uint64, channel string) error
	HasSucceededByOrderID(orderID uint64) (bool, error)
}

// MerchantRepo 商家存储接口
type MerchantRepo interface {
	GetByID(merchantID uint64) (*model.Merchant, error)
	GetByUserID(userID uint64) (*model.Merchant, error)
}

// SkuRepo 商品SKU存储接口
type SkuRepo interface {
	GetByID(skuID uint64) (*model.Sku, error)
	DeductStock(skuID uint64, quantity int) (bool, error)
	RestoreStock(skuID uint64, quantity int) error
}

// PlanRepo 订阅套餐存储接口
type PlanRepo interface {
	GetByID(planID uint64) (*model.Plan, error)
}

// AddressRepo 收货地址存储接口
type AddressRepo interface {
	GetByID(addressID uint64) (*model.Address, error)
}

// Notifier 异步通知接口，由pkg/async的工作器实现
type Notifier interface {
	AddTask(handler func())
}
