package repository

import (
	"github.com/jmoiron/sqlx"

	"auroramall/internal/model"
)

// OrderItemRepository 订单项存储库
type OrderItemRepository struct {
	db *sqlx.DB
}

// NewOrderItemRepository 创建订单项存储库
func NewOrderItemRepository(db *sqlx.DB) *OrderItemRepository {
	return &OrderItemRepository{db: db}
}

// ListByOrderID 获取订单的所有订单项
func (r *OrderItemRepository) ListByOrderID(orderID uint64) ([]*model.OrderItem, error) {
	var items []*model.OrderItem
	query := `SELECT * FROM order_items WHERE order_id = ?`
	err := r.db.Select(&items, query, orderID)
	return items, err
}
