package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tillpoint/internal/model"
)

// ErrNotFound is returned when a lookup matches no register.
var ErrNotFound = errors.New("register not found")

// CloseFields carries everything written exactly once at close time.
type CloseFields struct {
	ClosingBalance decimal.Decimal
	Difference     decimal.Decimal
	ClosedBy       string
	Notes          string
}

type RegisterRepository interface {
	Create(ctx context.Context, r *model.CashRegister) error
	// FindOpen returns the single open register, or ErrNotFound.
	FindOpen(ctx context.Context) (*model.CashRegister, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.CashRegister, error)
	// Close flips status to closed and writes the closing fields. It refuses
	// to touch a register that is not open (the guard rides in the WHERE
	// clause, so a concurrent close loses cleanly).
	Close(ctx context.Context, id uuid.UUID, f CloseFields) error
	UpdateExpectedBalance(ctx context.Context, id uuid.UUID, expected decimal.Decimal) error
	ListClosed(ctx context.Context, page, limit int) ([]model.CashRegister, int64, error)
}

type registerRepo struct{ db *gorm.DB }

func NewRegisterRepository(db *gorm.DB) RegisterRepository { return &registerRepo{db: db} }

func (r *registerRepo) Create(ctx context.Context, reg *model.CashRegister) error {
	return r.db.WithContext(ctx).Create(reg).Error
}

func (r *registerRepo) FindOpen(ctx context.Context) (*model.CashRegister, error) {
	var reg model.CashRegister
	err := r.db.WithContext(ctx).Where("status = ?", model.RegisterOpen).First(&reg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CashRegister, error) {
	var reg model.CashRegister
	err := r.db.WithContext(ctx).First(&reg, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registerRepo) Close(ctx context.Context, id uuid.UUID, f CloseFields) error {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&model.CashRegister{}).
		Where("id = ? AND status = ?", id, model.RegisterOpen).
		Updates(map[string]interface{}{
			"status":          model.RegisterClosed,
			"closing_balance": f.ClosingBalance,
			"difference":      f.Difference,
			"closed_by":       f.ClosedBy,
			"closed_at":       now,
			"notes":           f.Notes,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *registerRepo) UpdateExpectedBalance(ctx context.Context, id uuid.UUID, expected decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&model.CashRegister{}).
		Where("id = ?", id).
		Update("expected_balance", expected).Error
}

func (r *registerRepo) ListClosed(ctx context.Context, page, limit int) ([]model.CashRegister, int64, error) {
	var regs []model.CashRegister
	var total int64

	q := r.db.WithContext(ctx).Model(&model.CashRegister{}).Where("status = ?", model.RegisterClosed)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("closed_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&regs).Error
	return regs, total, err
}

// IsPermissionError reports whether err looks like a database privilege
// failure (SQLSTATE 42501 surfaces as "permission denied" in the driver text).
func IsPermissionError(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "permission denied")
}
