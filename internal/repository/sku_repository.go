package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"auroramall/internal/model"
)

// SkuRepository 商品SKU存储库
type SkuRepository struct {
	db *sqlx.DB
}

// NewSkuRepository 创建SKU存储库
func NewSkuRepository(db *sqlx.DB) *SkuRepository {
	return &SkuRepository{db: db}
}

// GetByID 根据SKU ID获取SKU
func (r *SkuRepository) GetByID(skuID uint64) (*model.Sku, error) {
	var sku model.Sku
	query := `SELECT * FROM skus WHERE sku_id = ?`
	err := r.db.Get(&sku, query, skuID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sku, nil
}

// DeductStock 扣减库存，库存不足时不更新
func (r *SkuRepository) DeductStock(skuID uint64, quantity int) (bool, error) {
	query := `UPDATE skus SET stock = stock - ?, update_time = CURRENT_TIMESTAMP WHERE sku_id = ? AND stock >= ?`
	res, err := r.db.Exec(query, quantity, skuID, quantity)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// RestoreStock 恢复库存，用于取消订单或退款
func (r *SkuRepository) RestoreStock(skuID uint64, quantity int) error {
	query := `UPDATE skus SET stock = stock + ?, update_time = CURRENT_TIMESTAMP WHERE sku_id = ?`
	_, err := r.db.Exec(query, quantity, skuID)
	return err
}
