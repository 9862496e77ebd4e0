package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"tillpoint/internal/dto"
	"tillpoint/internal/model"
	"tillpoint/internal/repository"
)

// RegisterService owns the register lifecycle: closed → open → closed.
// It is the only writer of the "current register" value; everything else
// (handlers, the auto-close scheduler) reads through it.
type RegisterService interface {
	Open(ctx context.Context, req dto.OpenRegisterRequest, openedBy string) (*model.CashRegister, error)
	AddMovement(ctx context.Context, req dto.MovementRequest, createdBy string) (*model.CashRegister, error)
	Close(ctx context.Context, req dto.CloseRegisterRequest, closedBy string) (*model.CashRegister, error)
	// AutoClose is the system close path: the recomputed expected balance is
	// taken as the closing balance, so the recorded difference is zero.
	AutoClose(ctx context.Context, cutoff string) (*model.CashRegister, error)
	// Refresh replaces in-memory state with the authoritative open register.
	Refresh(ctx context.Context) (*model.CashRegister, error)
	// Current returns a snapshot of the open register, or nil.
	Current() *model.CashRegister

	Report(ctx context.Context, id uuid.UUID) (*dto.RegisterReportResponse, error)
	Movements(ctx context.Context, id uuid.UUID) ([]model.CashMovement, error)
	History(ctx context.Context, page, limit int) ([]dto.RegisterResponse, int64, error)
}

type registerService struct {
	registers repository.RegisterRepository
	movements repository.MovementRepository
	sales     repository.SaleRepository
	notifier  Notifier

	mu      sync.Mutex
	current *model.CashRegister
}

func NewRegisterService(
	registers repository.RegisterRepository,
	movements repository.MovementRepository,
	sales repository.SaleRepository,
	notifier Notifier,
) RegisterService {
	return &registerService{
		registers: registers,
		movements: movements,
		sales:     sales,
		notifier:  notifier,
	}
}

// ── Open ─────────────────────────────────────────────────────────────────────

func (s *registerService) Open(ctx context.Context, req dto.OpenRegisterRequest, openedBy string) (*model.CashRegister, error) {
	// Input is refused before any persistence call. Zero is a legal float.
	if req.OpeningBalance.IsNegative() {
		return nil, &ValidationError{Field: "opening_balance", Reason: "must be a non-negative amount"}
	}
	if openedBy == "" {
		return nil, &ValidationError{Field: "opened_by", Reason: "operator label is required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.current.IsOpen() {
		return nil, ErrRegisterAlreadyOpen
	}
	// The store is authoritative: another session (or a previous run of this
	// one) may have left a register open.
	if existing, err := s.registers.FindOpen(ctx); err == nil && existing != nil {
		s.current = existing
		return nil, ErrRegisterAlreadyOpen
	}

	reg := &model.CashRegister{
		Status:          model.RegisterOpen,
		OpeningBalance:  req.OpeningBalance,
		ExpectedBalance: req.OpeningBalance,
		OpenedBy:        openedBy,
		OpenedAt:        time.Now(),
	}
	if err := s.registers.Create(ctx, reg); err != nil {
		perr := s.persistErr("open register", err)
		s.notifier.Notify(ctx, perr.Error(), SeverityError)
		return nil, perr
	}

	s.current = reg
	s.notifier.Notify(ctx, fmt.Sprintf("Cash register opened by %s", openedBy), SeverityInfo)
	snap := *reg
	return &snap, nil
}

// ── AddMovement ──────────────────────────────────────────────────────────────

func (s *registerService) AddMovement(ctx context.Context, req dto.MovementRequest, createdBy string) (*model.CashRegister, error) {
	if req.Amount.IsNegative() {
		return nil, &ValidationError{Field: "amount", Reason: "must be a non-negative amount"}
	}
	switch req.Type {
	case model.MovementSupply, model.MovementBleed, model.MovementChange:
	default:
		return nil, &ValidationError{Field: "type", Reason: "must be supply, bleed or change"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || !s.current.IsOpen() {
		return nil, ErrNoOpenRegister
	}

	mov := &model.CashMovement{
		CashRegisterID: s.current.ID,
		Type:           req.Type,
		Amount:         req.Amount,
		Description:    req.Description,
		CreatedBy:      createdBy,
		CreatedAt:      time.Now(),
	}
	if err := s.movements.Create(ctx, mov); err != nil {
		perr := s.persistErr("record movement", err)
		s.notifier.Notify(ctx, perr.Error(), SeverityError)
		return nil, perr
	}

	// Read-after-write refresh: the ledger may have been appended to by the
	// sales subsystem, so the expected balance is always recomputed from a
	// fresh read rather than incremented in memory. A failed refresh degrades
	// to the cached value — the movement itself is already durable.
	if fresh, err := s.recomputeExpected(ctx, s.current.ID); err != nil {
		log.Warn().Err(err).Str("register_id", s.current.ID.String()).
			Msg("expected balance refresh failed, keeping cached value")
	} else {
		s.current = fresh
	}

	s.notifier.Notify(ctx,
		fmt.Sprintf("Movement recorded: %s %s", req.Type, req.Amount.StringFixed(2)),
		SeverityInfo)
	snap := *s.current
	return &snap, nil
}

// ── Close ────────────────────────────────────────────────────────────────────

func (s *registerService) Close(ctx context.Context, req dto.CloseRegisterRequest, closedBy string) (*model.CashRegister, error) {
	if req.ClosingBalance.IsNegative() {
		return nil, &ValidationError{Field: "closing_balance", Reason: "must be a non-negative amount"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeCurrent(ctx, &req.ClosingBalance, closedBy, req.Notes, SeverityInfo)
}

func (s *registerService) AutoClose(ctx context.Context, cutoff string) (*model.CashRegister, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes := fmt.Sprintf("Closed automatically at configured cutoff %s", cutoff)
	return s.closeCurrent(ctx, nil, "system", notes, SeverityWarning)
}

// closeCurrent funnels both the manual and the automatic close through a
// single path so the reconciliation formula cannot diverge between them.
// A nil closing balance means "take the recomputed expected balance".
// Caller must hold s.mu.
func (s *registerService) closeCurrent(ctx context.Context, closing *decimal.Decimal, closedBy, notes, severity string) (*model.CashRegister, error) {
	if s.current == nil || !s.current.IsOpen() {
		return nil, ErrNoOpenRegister
	}
	// Defensive: never send malformed state to the store.
	if s.current.ID == uuid.Nil {
		return nil, ErrMissingRegisterID
	}

	expected := s.current.ExpectedBalance
	if fresh, err := s.recomputeExpected(ctx, s.current.ID); err != nil {
		log.Warn().Err(err).Str("register_id", s.current.ID.String()).
			Msg("pre-close reconciliation failed, closing against cached expected balance")
	} else {
		s.current = fresh
		expected = fresh.ExpectedBalance
	}

	closingBalance := expected
	if closing != nil {
		closingBalance = *closing
	}
	difference := closingBalance.Sub(expected)

	fields := repository.CloseFields{
		ClosingBalance: closingBalance,
		Difference:     difference,
		ClosedBy:       closedBy,
		Notes:          notes,
	}
	if err := s.registers.Close(ctx, s.current.ID, fields); err != nil {
		perr := s.persistErr("close register", err)
		s.notifier.Notify(ctx, perr.Error(), SeverityError)
		// No optimistic transition: the register stays open in memory.
		return nil, perr
	}

	closed := *s.current
	now := time.Now()
	closed.Status = model.RegisterClosed
	closed.ClosingBalance = &closingBalance
	closed.Difference = &difference
	closed.ClosedBy = &closedBy
	closed.ClosedAt = &now
	closed.Notes = &notes
	s.current = nil

	s.notifier.Notify(ctx,
		fmt.Sprintf("Cash register closed by %s, difference %s", closedBy, difference.StringFixed(2)),
		severity)
	return &closed, nil
}

// ── Refresh / Current ────────────────────────────────────────────────────────

func (s *registerService) Refresh(ctx context.Context) (*model.CashRegister, error) {
	reg, err := s.registers.FindOpen(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case err == nil:
		s.current = reg
		snap := *reg
		return &snap, nil
	case errors.Is(err, repository.ErrNotFound):
		s.current = nil
		return nil, nil
	default:
		return nil, s.persistErr("refresh register", err)
	}
}

func (s *registerService) Current() *model.CashRegister {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	snap := *s.current
	return &snap
}

// ── Reports ──────────────────────────────────────────────────────────────────

func (s *registerService) Report(ctx context.Context, id uuid.UUID) (*dto.RegisterReportResponse, error) {
	reg, err := s.registers.FindByID(ctx, id)
	if err != nil {
		return nil, s.persistErr("load register", err)
	}

	// Report previews are advisory: a failed ledger or sales read degrades to
	// the opening balance instead of failing the whole report.
	movs, err := s.movements.ListByRegister(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("register_id", id.String()).Msg("report: ledger read failed")
		movs = nil
	}
	sales, err := s.sales.ListByRegister(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("register_id", id.String()).Msg("report: sales read failed")
		sales = nil
	}

	rec := Reconcile(reg.OpeningBalance, movs, sales)
	return &dto.RegisterReportResponse{
		Register: toRegisterResponse(reg),
		Reconciliation: dto.ReconciliationResponse{
			OpeningBalance: rec.OpeningBalance,
			TotalSales:     rec.TotalSales,
			TotalSupplies:  rec.TotalSupplies,
			TotalBleeds:    rec.TotalBleeds,
			TotalChange:    rec.TotalChange,
			Expected:       rec.Expected,
		},
		MovementCount: len(movs),
		SaleCount:     len(sales),
	}, nil
}

func (s *registerService) Movements(ctx context.Context, id uuid.UUID) ([]model.CashMovement, error) {
	movs, err := s.movements.ListByRegister(ctx, id)
	if err != nil {
		return nil, s.persistErr("load movements", err)
	}
	return movs, nil
}

func (s *registerService) History(ctx context.Context, page, limit int) ([]dto.RegisterResponse, int64, error) {
	regs, total, err := s.registers.ListClosed(ctx, page, limit)
	if err != nil {
		return nil, 0, s.persistErr("load history", err)
	}
	out := make([]dto.RegisterResponse, 0, len(regs))
	for i := range regs {
		out = append(out, toRegisterResponse(&regs[i]))
	}
	return out, total, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// recomputeExpected reloads the register, its ledger, and its sales, applies
// the reconciliation formula, and persists the refreshed expected balance.
func (s *registerService) recomputeExpected(ctx context.Context, id uuid.UUID) (*model.CashRegister, error) {
	reg, err := s.registers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	movs, err := s.movements.ListByRegister(ctx, id)
	if err != nil {
		return nil, err
	}
	sales, err := s.sales.ListByRegister(ctx, id)
	if err != nil {
		return nil, err
	}

	reg.ExpectedBalance = ComputeClosingBalance(reg.OpeningBalance, movs, sales)
	if err := s.registers.UpdateExpectedBalance(ctx, id, reg.ExpectedBalance); err != nil {
		return nil, err
	}
	return reg, nil
}

func (s *registerService) persistErr(op string, err error) *PersistenceError {
	return &PersistenceError{
		Op:               op,
		PermissionDenied: repository.IsPermissionError(err),
		Err:              err,
	}
}

func toRegisterResponse(reg *model.CashRegister) dto.RegisterResponse {
	resp := dto.RegisterResponse{
		ID:              reg.ID.String(),
		Status:          reg.Status,
		OpeningBalance:  reg.OpeningBalance,
		OpenedBy:        reg.OpenedBy,
		OpenedAt:        reg.OpenedAt.Format(time.RFC3339),
		ExpectedBalance: reg.ExpectedBalance,
		ClosingBalance:  reg.ClosingBalance,
		Difference:      reg.Difference,
		ClosedBy:        reg.ClosedBy,
		Notes:           reg.Notes,
	}
	if reg.ClosedAt != nil {
		t := reg.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	return resp
}
