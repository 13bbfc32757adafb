package repository

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"auroramall/internal/model"
)

// PaymentRepository 支付单存储库
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository 创建支付单存储库
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// GetByPaymentNo 根据支付单号获取支付单
func (r *PaymentRepository) GetByPaymentNo(paymentNo string) (*model.Payment, error) {
	var payment model.Payment
	query := `SELECT * FROM payments WHERE payment_no = ?`
	err := r.db.Get(&payment, query, paymentNo)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetByOrderID 获取订单关联的支付单
func (r *PaymentRepository) GetByOrderID(orderID uint64) (*model.Payment, error) {
	var payment model.Payment
	query := `SELECT * FROM payments WHERE order_id = ? ORDER BY create_time DESC LIMIT 1`
	err := r.db.Get(&payment, query, orderID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// MarkSucceededCAS 以乐观锁方式将支付单标记为支付成功
// 仅当当前状态为已创建、支付中或已取消时生效，同时写入支付时间与第三方流水号
// 已取消也在匹配范围内：网关确认说明资金已到账，并发到达的用户取消作废
func (r *PaymentRepository) MarkSucceededCAS(paymentID uint64, channel, thirdPartyNo string, payTime time.Time) (bool, error) {
	query := `
		UPDATE payments
		SET payment_status = ?, channel = ?, third_party_no = ?, pay_time = ?, update_time = CURRENT_TIMESTAMP
		WHERE payment_id = ? AND payment_status IN (?, ?, ?)
	`
	res, err := r.db.Exec(query,
		model.PaymentStatusSucceeded, channel,
		sql.NullString{String: thirdPartyNo, Valid: thirdPartyNo != ""},
		payTime, paymentID,
		model.PaymentStatusCreated, model.PaymentStatusPending, model.PaymentStatusCancelled,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// UpdateStatusCAS 以乐观锁方式更新支付单状态
func (r *PaymentRepository) UpdateStatusCAS(paymentID uint64, expected, next int) (bool, error) {
	query := `
		UPDATE payments
		SET payment_status = ?, update_time = CURRENT_TIMESTAMP
		WHERE payment_id = ? AND payment_status = ?
	`
	res, err := r.db.Exec(query, next, paymentID, expected)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// MarkRefunded 将支付单标记为已退款并写入退款单号与退款时间
func (r *PaymentRepository) MarkRefunded(paymentID uint64, refundNo string, refundTime time.Time) error {
	query := `
		UPDATE payments
		SET payment_status = ?, refund_no = ?, refund_time = ?, update_time = CURRENT_TIMESTAMP
		WHERE payment_id = ?
	`
	_, err := r.db.Exec(query, model.PaymentStatusRefunded, refundNo, refundTime, paymentID)
	return err
}

// UpdateChannel 更新支付单的支付渠道
func (r *PaymentRepository) UpdateChannel(paymentID uint64, channel string) error {
	query := `UPDATE payments SET channel = ?, update_time = CURRENT_TIMESTAMP WHERE payment_id = ?`
	_, err := r.db.Exec(query, channel, paymentID)
	return err
}

// HasSucceededByOrderID 判断订单是否已有支付成功的支付单
func (r *PaymentRepository) HasSucceededByOrderID(orderID uint64) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM payments WHERE order_id = ? AND payment_status = ?`
	err := r.db.Get(&count, query, orderID, model.PaymentStatusSucceeded)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
