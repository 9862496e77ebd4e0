package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Register status values.
const (
	RegisterOpen   = "open"
	RegisterClosed = "closed"
)

// Movement types. A supply adds cash to the drawer; bleed removes cash for
// safekeeping; change removes cash to provide change elsewhere.
const (
	MovementSupply = "supply"
	MovementBleed  = "bleed"
	MovementChange = "change"
)

// CashRegister represents one open-to-close cash drawer session.
// Status: "open" | "closed". At most one register is open at any time.
// Once closed, a register is a terminal historical record — nothing mutates it.
type CashRegister struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Status         string          `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	OpeningBalance decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"opening_balance"`
	OpenedBy       string          `gorm:"type:varchar(100);not null" json:"opened_by"`
	OpenedAt       time.Time       `json:"opened_at"`

	// ExpectedBalance is a derived cache: opening + sales + supplies - bleeds - change.
	// Recomputed from a fresh read after every movement, never incremented blindly.
	ExpectedBalance decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"expected_balance"`

	// Closing fields — set exactly once, at close time.
	ClosingBalance *decimal.Decimal `gorm:"type:decimal(12,2)" json:"closing_balance"`
	Difference     *decimal.Decimal `gorm:"type:decimal(12,2)" json:"difference"` // closing - expected, signed
	ClosedBy       *string          `gorm:"type:varchar(100)" json:"closed_by"`
	ClosedAt       *time.Time       `json:"closed_at"`
	Notes          *string          `json:"notes"`

	Movements []CashMovement `gorm:"foreignKey:CashRegisterID" json:"movements,omitempty"`
}

// IsOpen reports whether the register still accepts movements.
func (r *CashRegister) IsOpen() bool { return r.Status == RegisterOpen }

// CashMovement is an immutable entry in the cash ledger of an open register.
// Movements are NEVER updated or deleted — corrections create inverse entries.
type CashMovement struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CashRegisterID uuid.UUID       `gorm:"type:uuid;index;not null" json:"cash_register_id"`
	Type           string          `gorm:"type:varchar(20);not null" json:"type"` // supply | bleed | change
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Description    string          `gorm:"not null" json:"description"`
	CreatedBy      string          `gorm:"type:varchar(100);not null" json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
}
