package model

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// 支付单状态
const (
	PaymentStatusCreated   = 1 // 已创建
	PaymentStatusPending   = 2 // 支付中
	PaymentStatusSucceeded = 3 // 支付成功
	PaymentStatusFailed    = 4 // 支付失败
	PaymentStatusCancelled = 5 // 已取消
	PaymentStatusRefunded  = 6 // 已退款
)

// Payment 支付单模型
type Payment struct {
	PaymentID     uint64          `db:"payment_id" json:"payment_id"`
	PaymentNo     string          `db:"payment_no" json:"payment_no"`
	OrderID       uint64          `db:"order_id" json:"order_id"`
	UserID        uint64          `db:"user_id" json:"user_id"`
	Channel       string          `db:"channel" json:"channel"` // wechat、alipay、bank、balance
	PaymentAmount decimal.Decimal `db:"payment_amount" json:"payment_amount"`
	PaymentStatus int             `db:"payment_status" json:"payment_status"`
	ThirdPartyNo  sql.NullString  `db:"third_party_no" json:"third_party_no,omitempty"` // 第三方交易流水号
	RefundNo      sql.NullString  `db:"refund_no" json:"refund_no,omitempty"`
	PayTime       sql.NullTime    `db:"pay_time" json:"pay_time,omitempty"`
	RefundTime    sql.NullTime    `db:"refund_time" json:"refund_time,omitempty"`
	CreateTime    time.Time       `db:"create_time" json:"create_time"`
	UpdateTime    time.Time       `db:"update_time" json:"update_time"`
}

// PaymentChannel 支付渠道
type PaymentChannel struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Icon    string `json:"icon"`
	Enabled bool   `json:"enabled"`
}

// PaymentSession 支付会话，创建支付时返回给客户端用于跳转收银台
type PaymentSession struct {
	PaymentNo string          `json:"payment_no"`
	OrderNo   string          `json:"order_no"`
	Channel   string          `json:"channel"`
	Amount    decimal.Decimal `json:"amount"`
	PayParams map[string]any  `json:"pay_params"` // 各渠道拉起支付所需的参数
	ExpireAt  time.Time       `json:"expire_at"`
}
