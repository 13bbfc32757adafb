package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"auroramall/internal/model"
)

// PlanRepository 订阅套餐存储库
type PlanRepository struct {
	db *sqlx.DB
}

// NewPlanRepository 创建订阅套餐存储库
func NewPlanRepository(db *sqlx.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// GetByID 根据套餐ID获取套餐
func (r *PlanRepository) GetByID(planID uint64) (*model.Plan, error) {
	var plan model.Plan
	query := `SELECT * FROM plans WHERE plan_id = ? AND status = 1`
	err := r.db.Get(&plan, query, planID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}
