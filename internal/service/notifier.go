package service

import "context"

// Notification severities.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Notifier is the fire-and-forget side-channel for user-visible status
// messages. Implementations must never fail the calling operation — delivery
// is best effort and no return value is consumed.
type Notifier interface {
	Notify(ctx context.Context, message, severity string)
}

// NopNotifier discards every notification. Useful for tests and tooling.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string, string) {}
