package service

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"tillpoint/internal/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestReconcileFullBreakdown(t *testing.T) {
	// opening 100 + sales 200 + supply 50 - bleed 20 = 330
	movements := []model.CashMovement{
		{Type: model.MovementSupply, Amount: d("50.00")},
		{Type: model.MovementBleed, Amount: d("20.00")},
	}
	sales := []model.Sale{
		{Total: d("200.00"), Status: model.SaleCompleted},
	}

	rec := Reconcile(d("100.00"), movements, sales)

	assert.Equal(t, "200", rec.TotalSales.String())
	assert.Equal(t, "50", rec.TotalSupplies.String())
	assert.Equal(t, "20", rec.TotalBleeds.String())
	assert.Equal(t, "0", rec.TotalChange.String())
	assert.Equal(t, "330", rec.Expected.String())
}

func TestReconcileExcludesCancelledSales(t *testing.T) {
	sales := []model.Sale{
		{Total: d("200.00"), Status: model.SaleCompleted},
		{Total: d("75.00"), Status: model.SaleCancelled},
	}

	rec := Reconcile(d("100.00"), nil, sales)

	assert.Equal(t, "200", rec.TotalSales.String())
	assert.Equal(t, "300", rec.Expected.String())
}

func TestReconcileSubtractsChange(t *testing.T) {
	movements := []model.CashMovement{
		{Type: model.MovementSupply, Amount: d("50.00")},
		{Type: model.MovementChange, Amount: d("30.00")},
	}

	rec := Reconcile(d("100.00"), movements, nil)

	assert.Equal(t, "30", rec.TotalChange.String())
	assert.Equal(t, "120", rec.Expected.String())
}

func TestReconcileOrderIndependent(t *testing.T) {
	movements := []model.CashMovement{
		{Type: model.MovementSupply, Amount: d("10.10")},
		{Type: model.MovementSupply, Amount: d("0.01")},
		{Type: model.MovementBleed, Amount: d("5.55")},
		{Type: model.MovementChange, Amount: d("2.22")},
		{Type: model.MovementBleed, Amount: d("0.99")},
	}
	sales := []model.Sale{
		{Total: d("19.99"), Status: model.SaleCompleted},
		{Total: d("0.01"), Status: model.SaleCompleted},
		{Total: d("123.45"), Status: model.SaleCancelled},
	}

	want := Reconcile(d("33.33"), movements, sales).Expected

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 25; i++ {
		rng.Shuffle(len(movements), func(a, b int) { movements[a], movements[b] = movements[b], movements[a] })
		rng.Shuffle(len(sales), func(a, b int) { sales[a], sales[b] = sales[b], sales[a] })
		got := Reconcile(d("33.33"), movements, sales).Expected
		assert.True(t, want.Equal(got), "permutation %d changed the result: %s vs %s", i, want, got)
	}
}

func TestReconcileEmptyInputs(t *testing.T) {
	rec := Reconcile(d("0.00"), nil, nil)
	assert.True(t, rec.Expected.IsZero())
}
