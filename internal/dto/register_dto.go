package dto

import (
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenRegisterRequest struct {
	OpeningBalance decimal.Decimal `json:"opening_balance" validate:"min=0"`
}

type MovementRequest struct {
	Type        string          `json:"type"        validate:"required,oneof=supply bleed change"`
	Amount      decimal.Decimal `json:"amount"      validate:"min=0"`
	Description string          `json:"description" validate:"required,min=3"`
}

type CloseRegisterRequest struct {
	ClosingBalance decimal.Decimal `json:"closing_balance" validate:"min=0"`
	Notes          string          `json:"notes"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// ReconciliationResponse mirrors service.Reconciliation for API consumers.
type ReconciliationResponse struct {
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	TotalSales     decimal.Decimal `json:"total_sales"`
	TotalSupplies  decimal.Decimal `json:"total_supplies"`
	TotalBleeds    decimal.Decimal `json:"total_bleeds"`
	TotalChange    decimal.Decimal `json:"total_change"`
	Expected       decimal.Decimal `json:"expected_balance"`
}

type RegisterResponse struct {
	ID              string           `json:"id"`
	Status          string           `json:"status"`
	OpeningBalance  decimal.Decimal  `json:"opening_balance"`
	OpenedBy        string           `json:"opened_by"`
	OpenedAt        string           `json:"opened_at"`
	ExpectedBalance decimal.Decimal  `json:"expected_balance"`
	ClosingBalance  *decimal.Decimal `json:"closing_balance,omitempty"`
	Difference      *decimal.Decimal `json:"difference,omitempty"`
	ClosedBy        *string          `json:"closed_by,omitempty"`
	ClosedAt        *string          `json:"closed_at,omitempty"`
	Notes           *string          `json:"notes,omitempty"`
}

// RegisterReportResponse is the session report: the register plus the
// reconciliation breakdown behind its expected balance.
type RegisterReportResponse struct {
	Register       RegisterResponse       `json:"register"`
	Reconciliation ReconciliationResponse `json:"reconciliation"`
	MovementCount  int                    `json:"movement_count"`
	SaleCount      int                    `json:"sale_count"`
}
