package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale status values relevant to reconciliation.
const (
	SaleCompleted = "completed"
	SaleCancelled = "cancelled"
)

// Sale is owned by the sales subsystem; this service only reads it.
// Cancelled sales are excluded from reconciliation totals.
type Sale struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CashRegisterID uuid.UUID       `gorm:"type:uuid;index;not null" json:"cash_register_id"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Status         string          `gorm:"type:varchar(20);not null;default:'completed'" json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
}
