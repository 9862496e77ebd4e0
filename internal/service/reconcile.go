package service

import (
	"github.com/shopspring/decimal"

	"tillpoint/internal/model"
)

// Reconciliation is the breakdown behind an expected balance. It backs both
// the close paths and the session report views — there is exactly one formula.
type Reconciliation struct {
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	TotalSales     decimal.Decimal `json:"total_sales"`
	TotalSupplies  decimal.Decimal `json:"total_supplies"`
	TotalBleeds    decimal.Decimal `json:"total_bleeds"`
	TotalChange    decimal.Decimal `json:"total_change"`
	Expected       decimal.Decimal `json:"expected_balance"`
}

// Reconcile computes the expected balance of a register from its opening
// balance, its movement ledger, and the sales recorded against it.
//
//	expected = opening + sales(non-cancelled) + supplies - bleeds - change
//
// Cancelled sales are excluded. The result is order-independent: decimal
// addition over the inputs is exact, so permuting movements or sales never
// changes the outcome.
func Reconcile(opening decimal.Decimal, movements []model.CashMovement, sales []model.Sale) Reconciliation {
	rec := Reconciliation{
		OpeningBalance: opening,
		TotalSales:     decimal.Zero,
		TotalSupplies:  decimal.Zero,
		TotalBleeds:    decimal.Zero,
		TotalChange:    decimal.Zero,
	}

	for _, s := range sales {
		if s.Status == model.SaleCancelled {
			continue
		}
		rec.TotalSales = rec.TotalSales.Add(s.Total)
	}

	for _, m := range movements {
		switch m.Type {
		case model.MovementSupply:
			rec.TotalSupplies = rec.TotalSupplies.Add(m.Amount)
		case model.MovementBleed:
			rec.TotalBleeds = rec.TotalBleeds.Add(m.Amount)
		case model.MovementChange:
			rec.TotalChange = rec.TotalChange.Add(m.Amount)
		}
	}

	rec.Expected = rec.OpeningBalance.
		Add(rec.TotalSales).
		Add(rec.TotalSupplies).
		Sub(rec.TotalBleeds).
		Sub(rec.TotalChange)

	return rec
}

// ComputeClosingBalance returns only the expected balance. The automatic close
// path uses this as the system-counted closing amount.
func ComputeClosingBalance(opening decimal.Decimal, movements []model.CashMovement, sales []model.Sale) decimal.Decimal {
	return Reconcile(opening, movements, sales).Expected
}
