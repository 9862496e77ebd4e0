package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tillpoint/internal/model"
)

// NewDatabase establishes a GORM connection backed by pgx and runs AutoMigrate
// for the register tables. The sales table is also migrated here so a fresh
// development database works end to end, even though sales rows are written by
// the sales subsystem in production.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return db, nil
}

// RunMigrations creates or updates the schema. Also used by integration tests.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.CashRegister{},
		&model.CashMovement{},
		&model.Sale{},
	); err != nil {
		return err
	}

	// Partial unique index backing the single-open-register invariant. GORM
	// cannot express partial indexes through tags.
	return db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_cash_registers_single_open
		ON cash_registers ((status)) WHERE status = 'open'
	`).Error
}
