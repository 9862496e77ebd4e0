//go:build integration

package repository

// Integration tests against a real Postgres via testcontainers.
// Run with: go test -tags integration ./internal/repository/... -v

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"tillpoint/internal/infra"
	"tillpoint/internal/model"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("tillpoint_test"),
		tcPostgres.WithUsername("tillpoint"),
		tcPostgres.WithPassword("tillpoint"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db))
	return db
}

func TestRegisterLifecycleAgainstPostgres(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := NewRegisterRepository(db)

	// No open register yet.
	_, err := repo.FindOpen(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	reg := &model.CashRegister{
		Status:          model.RegisterOpen,
		OpeningBalance:  decimal.NewFromInt(100),
		ExpectedBalance: decimal.NewFromInt(100),
		OpenedBy:        "alice",
		OpenedAt:        time.Now(),
	}
	require.NoError(t, repo.Create(ctx, reg))
	require.NotEqual(t, "00000000-0000-0000-0000-000000000000", reg.ID.String())

	found, err := repo.FindOpen(ctx)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, found.ID)

	// The partial unique index enforces the single-open invariant in the DB.
	dup := &model.CashRegister{
		Status:          model.RegisterOpen,
		OpeningBalance:  decimal.NewFromInt(50),
		ExpectedBalance: decimal.NewFromInt(50),
		OpenedBy:        "bob",
		OpenedAt:        time.Now(),
	}
	assert.Error(t, repo.Create(ctx, dup))

	require.NoError(t, repo.UpdateExpectedBalance(ctx, reg.ID, decimal.NewFromInt(150)))

	fields := CloseFields{
		ClosingBalance: decimal.NewFromInt(150),
		Difference:     decimal.Zero,
		ClosedBy:       "alice",
		Notes:          "end of shift",
	}
	require.NoError(t, repo.Close(ctx, reg.ID, fields))

	// A second close on the same register is refused by the status guard.
	assert.ErrorIs(t, repo.Close(ctx, reg.ID, fields), ErrNotFound)

	closed, err := repo.FindByID(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RegisterClosed, closed.Status)
	require.NotNil(t, closed.ClosingBalance)
	assert.True(t, closed.ClosingBalance.Equal(decimal.NewFromInt(150)))
	assert.NotNil(t, closed.ClosedAt)

	regs, total, err := repo.ListClosed(ctx, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, regs, 1)
}

func TestMovementLedgerOrderAgainstPostgres(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	regRepo := NewRegisterRepository(db)
	movRepo := NewMovementRepository(db)

	reg := &model.CashRegister{
		Status:          model.RegisterOpen,
		OpeningBalance:  decimal.NewFromInt(100),
		ExpectedBalance: decimal.NewFromInt(100),
		OpenedBy:        "alice",
		OpenedAt:        time.Now(),
	}
	require.NoError(t, regRepo.Create(ctx, reg))

	for i, typ := range []string{model.MovementSupply, model.MovementBleed, model.MovementChange} {
		mov := &model.CashMovement{
			CashRegisterID: reg.ID,
			Type:           typ,
			Amount:         decimal.NewFromInt(int64(10 * (i + 1))),
			Description:    "ledger entry",
			CreatedBy:      "alice",
			CreatedAt:      time.Now().Add(time.Duration(i) * time.Millisecond),
		}
		require.NoError(t, movRepo.Create(ctx, mov))
	}

	movs, err := movRepo.ListByRegister(ctx, reg.ID)
	require.NoError(t, err)
	require.Len(t, movs, 3)
	assert.Equal(t, model.MovementSupply, movs[0].Type)
	assert.Equal(t, model.MovementBleed, movs[1].Type)
	assert.Equal(t, model.MovementChange, movs[2].Type)
}
