package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"auroramall/internal/model"
)

// MerchantRepository 商家存储库
type MerchantRepository struct {
	db *sqlx.DB
}

// NewMerchantRepository 创建商家存储库
func NewMerchantRepository(db *sqlx.DB) *MerchantRepository {
	return &MerchantRepository{db: db}
}

// GetByID 根据商家ID获取商家
func (r *MerchantRepository) GetByID(merchantID uint64) (*model.Merchant, error) {
	var merchant model.Merchant
	query := `SELECT * FROM merchants WHERE merchant_id = ?`
	err := r.db.Get(&merchant, query, merchantID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &merchant, nil
}

// GetByUserID 根据用户ID获取其名下的商家
func (r *MerchantRepository) GetByUserID(userID uint64) (*model.Merchant, error) {
	var merchant model.Merchant
	query := `SELECT * FROM merchants WHERE user_id = ?`
	err := r.db.Get(&merchant, query, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &merchant, nil
}
