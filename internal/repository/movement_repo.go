package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tillpoint/internal/model"
)

// MovementRepository is the append-only cash ledger. There is deliberately no
// Update or Delete — movements are immutable once created, and the interface
// makes that a compile-time guarantee.
type MovementRepository interface {
	Create(ctx context.Context, m *model.CashMovement) error
	// ListByRegister returns the ledger for one register in creation order.
	ListByRegister(ctx context.Context, registerID uuid.UUID) ([]model.CashMovement, error)
}

type movementRepo struct{ db *gorm.DB }

func NewMovementRepository(db *gorm.DB) MovementRepository { return &movementRepo{db: db} }

func (r *movementRepo) Create(ctx context.Context, m *model.CashMovement) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *movementRepo) ListByRegister(ctx context.Context, registerID uuid.UUID) ([]model.CashMovement, error) {
	var movs []model.CashMovement
	err := r.db.WithContext(ctx).
		Where("cash_register_id = ?", registerID).
		Order("created_at ASC").
		Find(&movs).Error
	return movs, err
}
