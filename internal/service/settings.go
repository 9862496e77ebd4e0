package service

import "context"

// Settings is the read-only configuration collaborator. Get returns the value
// stored under key, or fallback when the key is absent or the backend is
// unreachable. The auto-close scheduler re-reads its cutoff through this
// interface on every tick, so runtime changes take effect without a restart.
type Settings interface {
	Get(ctx context.Context, key, fallback string) string
}

// Well-known settings keys.
const (
	SettingAutoCloseCutoff = "register:auto_close_cutoff"
)

// StaticSettings serves values from a fixed map (tests, dev tooling).
type StaticSettings map[string]string

func (s StaticSettings) Get(_ context.Context, key, fallback string) string {
	if v, ok := s[key]; ok {
		return v
	}
	return fallback
}
