package repository

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"auroramall/internal/model"
	"auroramall/internal/status"
)

// OrderRepository 订单存储库
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository 创建订单存储库
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateOrderGroup 在同一事务中创建订单、订单项和支付单
// 任意一步失败则整体回滚
func (r *OrderRepository) CreateOrderGroup(order *model.Order, items []*model.OrderItem, payment *model.Payment) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	orderQuery := `
		INSERT INTO orders (
			order_no, user_id, order_type, related_id, total_amount, paid_amount,
			shipping_fee, discount_amount, coupon_amount, order_status, address_id,
			order_note, merchant_note, subscription_months, subscription_start,
			subscription_end, expire_time
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := tx.Exec(
		orderQuery,
		order.OrderNo, order.UserID, order.OrderType, order.RelatedID,
		order.TotalAmount, order.PaidAmount, order.ShippingFee,
		order.DiscountAmount, order.CouponAmount, order.OrderStatus,
		order.AddressID, order.OrderNote, order.MerchantNote,
		order.SubscriptionMonths, order.SubscriptionStart, order.SubscriptionEnd,
		order.ExpireTime,
	)
	if err != nil {
		return err
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return err
	}
	order.OrderID = uint64(orderID)

	itemQuery := `
		INSERT INTO order_items (
			order_id, product_id, sku_id, merchant_id, title, image, price, quantity, sku_props, item_note
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, item := range items {
		item.OrderID = order.OrderID
		if _, err = tx.Exec(
			itemQuery,
			item.OrderID, item.ProductID, item.SkuID, item.MerchantID,
			item.Title, item.Image, item.Price, item.Quantity, item.SkuProps, item.ItemNote,
		); err != nil {
			return err
		}
	}

	paymentQuery := `
		INSERT INTO payments (
			payment_no, order_id, user_id, channel, payment_amount, payment_status
		) VALUES (?, ?, ?, ?, ?, ?)
	`
	payment.OrderID = order.OrderID
	res, err = tx.Exec(
		paymentQuery,
		payment.PaymentNo, payment.OrderID, payment.UserID,
		payment.Channel, payment.PaymentAmount, payment.PaymentStatus,
	)
	if err != nil {
		return err
	}
	paymentID, err := res.LastInsertId()
	if err != nil {
		return err
	}
	payment.PaymentID = uint64(paymentID)

	return tx.Commit()
}

// GetByID 根据订单ID获取订单
func (r *OrderRepository) GetByID(orderID uint64) (*model.Order, error) {
	var order model.Order
	query := `SELECT * FROM orders WHERE order_id = ?`
	err := r.db.Get(&order, query, orderID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatusCAS 以乐观锁方式更新订单状态
// 仅当当前状态等于expected时才更新，返回是否更新成功
func (r *OrderRepository) UpdateStatusCAS(orderID uint64, expected, next status.OrderStatus) (bool, error) {
	query := `
		UPDATE orders
		SET order_status = ?, update_time = CURRENT_TIMESTAMP
		WHERE order_id = ? AND order_status = ?
	`
	res, err := r.db.Exec(query, next, orderID, expected)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// UpdateLogisticsCAS 以乐观锁方式更新物流信息并迁移订单状态
func (r *OrderRepository) UpdateLogisticsCAS(orderID uint64, expected, next status.OrderStatus, logisticsJSON string) (bool, error) {
	query := `
		UPDATE orders
		SET order_status = ?, logistics_info = ?, update_time = CURRENT_TIMESTAMP
		WHERE order_id = ? AND order_status = ?
	`
	res, err := r.db.Exec(query, next, logisticsJSON, orderID, expected)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// UpdatePaidAmount 更新订单实付金额
func (r *OrderRepository) UpdatePaidAmount(orderID uint64, paidAmount decimal.Decimal) error {
	query := `UPDATE orders SET paid_amount = ?, update_time = CURRENT_TIMESTAMP WHERE order_id = ?`
	_, err := r.db.Exec(query, paidAmount, orderID)
	return err
}

// ListByUser 分页获取用户订单，按状态过滤（statuses为空时不过滤），不包含已删除订单
func (r *OrderRepository) ListByUser(userID uint64, statuses []status.OrderStatus, page, pageSize int) ([]*model.Order, int, error) {
	countQuery := `SELECT COUNT(*) FROM orders WHERE user_id = ? AND order_status != ?`
	listQuery := `SELECT * FROM orders WHERE user_id = ? AND order_status != ?`
	args := []interface{}{userID, status.Deleted}

	if len(statuses) > 0 {
		in := ` AND order_status IN (?)`
		countQuery += in
		listQuery += in
		args = append(args, statuses)
	}

	countQuery, countArgs, err := sqlx.In(countQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.db.Get(&total, countQuery, countArgs...); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*model.Order{}, 0, nil
	}

	listQuery += ` ORDER BY create_time DESC LIMIT ? OFFSET ?`
	args = append(args, pageSize, (page-1)*pageSize)
	listQuery, listArgs, err := sqlx.In(listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	var orders []*model.Order
	if err := r.db.Select(&orders, listQuery, listArgs...); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListByMerchant 分页获取商家的商品订单，按状态过滤
func (r *OrderRepository) ListByMerchant(merchantID uint64, statuses []status.OrderStatus, page, pageSize int) ([]*model.Order, int, error) {
	countQuery := `SELECT COUNT(*) FROM orders WHERE order_type = ? AND related_id = ? AND order_status != ?`
	listQuery := `SELECT * FROM orders WHERE order_type = ? AND related_id = ? AND order_status != ?`
	args := []interface{}{model.OrderTypeProduct, merchantID, status.Deleted}

	if len(statuses) > 0 {
		in := ` AND order_status IN (?)`
		countQuery += in
		listQuery += in
		args = append(args, statuses)
	}

	countQuery, countArgs, err := sqlx.In(countQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.db.Get(&total, countQuery, countArgs...); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*model.Order{}, 0, nil
	}

	listQuery += ` ORDER BY create_time DESC LIMIT ? OFFSET ?`
	args = append(args, pageSize, (page-1)*pageSize)
	listQuery, listArgs, err := sqlx.In(listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	var orders []*model.Order
	if err := r.db.Select(&orders, listQuery, listArgs...); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListExpired 获取已超时仍未支付的订单
func (r *OrderRepository) ListExpired(now time.Time, limit int) ([]*model.Order, error) {
	var orders []*model.Order
	query := `
		SELECT * FROM orders
		WHERE order_status = ? AND expire_time IS NOT NULL AND expire_time <= ?
		ORDER BY expire_time ASC LIMIT ?
	`
	err := r.db.Select(&orders, query, status.PendingPayment, now, limit)
	return orders, err
}

// HasActiveSubscription 判断用户是否已有生效中的订阅订单
func (r *OrderRepository) HasActiveSubscription(userID, planID uint64, now time.Time) (bool, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM orders
		WHERE user_id = ? AND order_type = ? AND related_id = ?
		AND order_status = ? AND subscription_end > ?
	`
	err := r.db.Get(&count, query, userID, model.OrderTypeSubscription, planID, status.Completed, now)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Statistics 按状态统计用户订单数量
func (r *OrderRepository) Statistics(userID uint64) (*model.OrderStatistics, error) {
	var stats model.OrderStatistics
	query := `
		SELECT
			COUNT(CASE WHEN order_status = ? THEN 1 END) AS pending_payment,
			COUNT(CASE WHEN order_status IN (?, ?) THEN 1 END) AS pending_shipment,
			COUNT(CASE WHEN order_status = ? THEN 1 END) AS shipped,
			COUNT(CASE WHEN order_status = ? THEN 1 END) AS completed,
			COUNT(CASE WHEN order_status = ? THEN 1 END) AS refunding
		FROM orders WHERE user_id = ?
	`
	err := r.db.Get(&stats, query,
		status.PendingPayment, status.Paid, status.PendingShipment,
		status.Shipped, status.Completed, status.Refunding, userID,
	)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
