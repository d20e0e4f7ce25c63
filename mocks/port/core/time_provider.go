package core

import (
	"context"
	"time"

	coreport "github.com/wishloop/payout-engine/internal/domain/port/core"
)

// FixedTimeProvider implements TimeProvider with a settable clock so tests
// get deterministic timestamps.
type FixedTimeProvider struct {
	Current time.Time
}

// NewFixedTimeProvider creates a provider frozen at a fixed instant.
func NewFixedTimeProvider() *FixedTimeProvider {
	return &FixedTimeProvider{
		Current: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Now returns the frozen time.
func (p *FixedTimeProvider) Now() time.Time {
	return p.Current
}

// Since measures against the frozen time.
func (p *FixedTimeProvider) Since(t time.Time) time.Duration {
	return p.Current.Sub(t)
}

// WithTimeout returns a cancelable context; the frozen clock never fires
// real deadlines.
func (p *FixedTimeProvider) WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithCancel(ctx)
}

// Advance moves the frozen clock forward.
func (p *FixedTimeProvider) Advance(d time.Duration) {
	p.Current = p.Current.Add(d)
}

var _ coreport.TimeProvider = (*FixedTimeProvider)(nil)
