package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tillpoint/internal/model"
)

// SaleRepository is read-only: sales are owned by the sales subsystem, this
// service only consumes their totals for reconciliation.
type SaleRepository interface {
	ListByRegister(ctx context.Context, registerID uuid.UUID) ([]model.Sale, error)
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) ListByRegister(ctx context.Context, registerID uuid.UUID) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).
		Where("cash_register_id = ?", registerID).
		Order("created_at ASC").
		Find(&sales).Error
	return sales, err
}
