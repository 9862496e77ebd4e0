package worker

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillpoint/internal/dto"
	"tillpoint/internal/model"
	"tillpoint/internal/service"
)

// fakeRegisters is a minimal RegisterService: the scheduler only uses
// Current and AutoClose.
type fakeRegisters struct {
	current        *model.CashRegister
	autoCloseCalls int
	autoCloseErr   error
	lastCutoff     string
	// keepCurrent simulates a stale in-memory register that survives a close
	// (the idempotency guard must still prevent a second close).
	keepCurrent bool
}

func (f *fakeRegisters) Current() *model.CashRegister {
	if f.current == nil {
		return nil
	}
	cp := *f.current
	return &cp
}

func (f *fakeRegisters) AutoClose(_ context.Context, cutoff string) (*model.CashRegister, error) {
	f.autoCloseCalls++
	f.lastCutoff = cutoff
	if f.autoCloseErr != nil {
		return nil, f.autoCloseErr
	}
	closed := *f.current
	closed.Status = model.RegisterClosed
	closing := closed.ExpectedBalance
	closed.ClosingBalance = &closing
	if !f.keepCurrent {
		f.current = nil
	}
	return &closed, nil
}

func (f *fakeRegisters) Open(context.Context, dto.OpenRegisterRequest, string) (*model.CashRegister, error) {
	panic("not used")
}
func (f *fakeRegisters) AddMovement(context.Context, dto.MovementRequest, string) (*model.CashRegister, error) {
	panic("not used")
}
func (f *fakeRegisters) Close(context.Context, dto.CloseRegisterRequest, string) (*model.CashRegister, error) {
	panic("not used")
}
func (f *fakeRegisters) Refresh(context.Context) (*model.CashRegister, error) { return f.current, nil }
func (f *fakeRegisters) Report(context.Context, uuid.UUID) (*dto.RegisterReportResponse, error) {
	panic("not used")
}
func (f *fakeRegisters) Movements(context.Context, uuid.UUID) ([]model.CashMovement, error) {
	panic("not used")
}
func (f *fakeRegisters) History(context.Context, int, int) ([]dto.RegisterResponse, int64, error) {
	panic("not used")
}

var _ service.RegisterService = (*fakeRegisters)(nil)

func openRegister() *model.CashRegister {
	return &model.CashRegister{
		ID:              uuid.New(),
		Status:          model.RegisterOpen,
		OpeningBalance:  decimal.NewFromInt(100),
		ExpectedBalance: decimal.NewFromInt(100),
		OpenedBy:        "alice",
	}
}

func at(hour, minute int) func() time.Time {
	return func() time.Time {
		return time.Date(2025, time.March, 14, hour, minute, 0, 0, time.Local)
	}
}

func newTestCloser(regs *fakeRegisters, settings service.Settings, now func() time.Time) *autoCloser {
	return newAutoCloser(AutoCloseConfig{
		Registers:     regs,
		Settings:      settings,
		DefaultCutoff: "22:00",
		Interval:      time.Minute,
		Now:           now,
	})
}

// ── ParseCutoff ──────────────────────────────────────────────────────────────

func TestParseCutoff(t *testing.T) {
	cases := []struct {
		in           string
		hour, minute int
	}{
		{"22:00", 22, 0},
		{"7:5", 7, 5},
		{"00:00", 0, 0},
		{"23:59", 23, 59},
		{" 21:30 ", 21, 30},
		// Malformed strings fall back to 22:00 entirely.
		{"abc", 22, 0},
		{"", 22, 0},
		{"1030", 22, 0},
		{"10:30:15", 22, 0},
		// Out-of-range components fall back independently.
		{"25:30", 22, 30},
		{"10:75", 10, 0},
		{"-1:-5", 22, 0},
	}
	for _, tc := range cases {
		h, m := ParseCutoff(tc.in)
		assert.Equal(t, tc.hour, h, "hour for %q", tc.in)
		assert.Equal(t, tc.minute, m, "minute for %q", tc.in)
	}
}

// ── Ticks ────────────────────────────────────────────────────────────────────

func TestTickClosesPastCutoff(t *testing.T) {
	regs := &fakeRegisters{current: openRegister()}
	a := newTestCloser(regs, service.StaticSettings{}, at(22, 1))

	a.tick(context.Background())

	assert.Equal(t, 1, regs.autoCloseCalls)
	assert.Equal(t, "22:00", regs.lastCutoff)
}

func TestTickIdempotentPerRegister(t *testing.T) {
	// Even if the register were (incorrectly) still visible after the close,
	// the processed-id guard must stop a second attempt — the ticker keeps
	// firing every interval once the cutoff has passed.
	regs := &fakeRegisters{current: openRegister(), keepCurrent: true}
	a := newTestCloser(regs, service.StaticSettings{}, at(22, 1))

	a.tick(context.Background())
	a.tick(context.Background()) // 22:02 tick, same register
	a.tick(context.Background())

	assert.Equal(t, 1, regs.autoCloseCalls)
}

func TestTickBeforeCutoff(t *testing.T) {
	regs := &fakeRegisters{current: openRegister()}
	a := newTestCloser(regs, service.StaticSettings{}, at(21, 59))

	a.tick(context.Background())

	assert.Equal(t, 0, regs.autoCloseCalls)
}

func TestTickNoOpenRegister(t *testing.T) {
	regs := &fakeRegisters{}
	a := newTestCloser(regs, service.StaticSettings{}, at(23, 0))

	a.tick(context.Background())

	assert.Equal(t, 0, regs.autoCloseCalls)
}

func TestTickMalformedCutoffFallsBack(t *testing.T) {
	settings := service.StaticSettings{service.SettingAutoCloseCutoff: "abc"}

	// Behaves exactly as if the cutoff were 22:00.
	regs := &fakeRegisters{current: openRegister()}
	a := newTestCloser(regs, settings, at(21, 59))
	a.tick(context.Background())
	assert.Equal(t, 0, regs.autoCloseCalls)

	regs = &fakeRegisters{current: openRegister()}
	a = newTestCloser(regs, settings, at(22, 0))
	a.tick(context.Background())
	assert.Equal(t, 1, regs.autoCloseCalls)
	assert.Equal(t, "22:00", regs.lastCutoff)
}

func TestCutoffChangeTakesEffectNextTick(t *testing.T) {
	settings := service.StaticSettings{service.SettingAutoCloseCutoff: "23:30"}
	regs := &fakeRegisters{current: openRegister()}
	a := newTestCloser(regs, settings, at(22, 30))

	a.tick(context.Background())
	assert.Equal(t, 0, regs.autoCloseCalls, "22:30 is before the 23:30 cutoff")

	// Supervisor moves the cutoff earlier while the register is still open.
	settings[service.SettingAutoCloseCutoff] = "22:15"
	a.tick(context.Background())
	assert.Equal(t, 1, regs.autoCloseCalls)
	assert.Equal(t, "22:15", regs.lastCutoff)
}

func TestTickRecheckAfterCloseFailure(t *testing.T) {
	// A failed close must NOT mark the register as processed — the next tick
	// retries the whole operation.
	regs := &fakeRegisters{current: openRegister(), autoCloseErr: assert.AnError}
	a := newTestCloser(regs, service.StaticSettings{}, at(22, 5))

	a.tick(context.Background())
	require.Equal(t, 1, regs.autoCloseCalls)

	regs.autoCloseErr = nil
	a.tick(context.Background())
	assert.Equal(t, 2, regs.autoCloseCalls)
}

func TestTickClosedOutOfBand(t *testing.T) {
	// Register closed manually between the Current() read and AutoClose —
	// the scheduler records it as processed and stays quiet.
	regs := &fakeRegisters{current: openRegister(), autoCloseErr: service.ErrNoOpenRegister, keepCurrent: true}
	a := newTestCloser(regs, service.StaticSettings{}, at(22, 5))

	a.tick(context.Background())
	a.tick(context.Background())

	assert.Equal(t, 1, regs.autoCloseCalls)
}
