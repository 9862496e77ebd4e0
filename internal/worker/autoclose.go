package worker

// autoclose.go
// Background goroutine that closes a register left open past the configured
// cutoff time of day. It polls the in-memory current register once per
// interval (plus one immediate check on start) and funnels the close through
// the same RegisterService path as a manual close.

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"tillpoint/internal/service"
)

// Cutoff fallbacks when the configured HH:MM cannot be parsed. Each component
// falls back independently.
const (
	DefaultCutoffHour   = 22
	DefaultCutoffMinute = 0
)

// AutoCloseConfig holds all dependencies for the auto-close scheduler.
type AutoCloseConfig struct {
	Registers service.RegisterService
	Settings  service.Settings
	// DefaultCutoff is used when the settings collaborator has no override.
	DefaultCutoff string
	Interval      time.Duration

	// Dispatcher and ReportEmail enable the close-report email; either may be
	// empty, which disables delivery.
	Dispatcher  *Dispatcher
	ReportEmail string

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

// autoCloser carries the per-lifetime idempotency guard: once a register id
// has been auto-closed, later ticks for that id are no-ops even though the
// ticker keeps firing after the cutoff has passed.
type autoCloser struct {
	cfg       AutoCloseConfig
	processed map[uuid.UUID]struct{}
}

func newAutoCloser(cfg AutoCloseConfig) *autoCloser {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &autoCloser{
		cfg:       cfg,
		processed: make(map[uuid.UUID]struct{}),
	}
}

// StartAutoClose launches the scheduler goroutine. It checks immediately on
// activation, then every cfg.Interval, and respects ctx for teardown — the
// ticker is stopped when the owning session ends, leaving no orphaned timers.
func StartAutoClose(ctx context.Context, cfg AutoCloseConfig) {
	a := newAutoCloser(cfg)

	go func() {
		ticker := time.NewTicker(a.cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", a.cfg.Interval).Msg("autoclose: started")
		a.tick(ctx)

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("autoclose: shutting down")
				return
			case <-ticker.C:
				a.tick(ctx)
			}
		}
	}()
}

func (a *autoCloser) tick(ctx context.Context) {
	reg := a.cfg.Registers.Current()
	if reg == nil {
		return
	}
	if _, done := a.processed[reg.ID]; done {
		return
	}

	// The cutoff is re-read every tick so a settings change while the
	// register is still open takes effect without a restart.
	cutoffStr := a.cfg.Settings.Get(ctx, service.SettingAutoCloseCutoff, a.cfg.DefaultCutoff)
	hour, minute := ParseCutoff(cutoffStr)

	now := a.cfg.Now()
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if now.Before(cutoff) {
		return
	}

	label := fmt.Sprintf("%02d:%02d", hour, minute)
	closed, err := a.cfg.Registers.AutoClose(ctx, label)
	if err != nil {
		if errors.Is(err, service.ErrNoOpenRegister) {
			// Closed out of band between the Current() read and now.
			a.processed[reg.ID] = struct{}{}
			return
		}
		log.Error().Err(err).Str("register_id", reg.ID.String()).Msg("autoclose: close failed")
		return
	}

	a.processed[reg.ID] = struct{}{}
	log.Warn().
		Str("register_id", closed.ID.String()).
		Str("cutoff", label).
		Str("closing_balance", closed.ClosingBalance.StringFixed(2)).
		Msg("autoclose: register closed automatically")

	if a.cfg.Dispatcher != nil && a.cfg.ReportEmail != "" {
		payload := CloseReportPayload{
			ToEmail:        a.cfg.ReportEmail,
			RegisterID:     closed.ID.String(),
			OpenedBy:       closed.OpenedBy,
			OpeningBalance: closed.OpeningBalance.StringFixed(2),
			ClosingBalance: closed.ClosingBalance.StringFixed(2),
			Cutoff:         label,
		}
		if err := a.cfg.Dispatcher.EnqueueCloseReport(ctx, payload); err != nil {
			log.Error().Err(err).Msg("autoclose: failed to enqueue close report email")
		}
	}
}

// ParseCutoff parses an HH:MM cutoff defensively. A malformed string falls
// back to 22:00; out-of-range numeric components fall back independently
// (hour to 22, minute to 0).
func ParseCutoff(s string) (hour, minute int) {
	hour, minute = DefaultCutoffHour, DefaultCutoffMinute

	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return hour, minute
	}
	if h, err := strconv.Atoi(parts[0]); err == nil && h >= 0 && h <= 23 {
		hour = h
	}
	if m, err := strconv.Atoi(parts[1]); err == nil && m >= 0 && m <= 59 {
		minute = m
	}
	return hour, minute
}
