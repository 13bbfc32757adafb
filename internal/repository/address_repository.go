package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"auroramall/internal/model"
)

// AddressRepository 收货地址存储库
type AddressRepository struct {
	db *sqlx.DB
}

// NewAddressRepository 创建收货地址存储库
func NewAddressRepository(db *sqlx.DB) *AddressRepository {
	return &AddressRepository{db: db}
}

// GetByID 根据地址ID获取收货地址
func (r *AddressRepository) GetByID(addressID uint64) (*model.Address, error) {
	var address model.Address
	query := `SELECT * FROM addresses WHERE address_id = ?`
	err := r.db.Get(&address, query, addressID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &address, nil
}
