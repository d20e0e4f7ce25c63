package payment

import (
	"context"
	"fmt"

	"github.com/wishloop/payout-engine/internal/domain/entity"
	errs "github.com/wishloop/payout-engine/internal/domain/error"
	paymentport "github.com/wishloop/payout-engine/internal/domain/port/payment"
)

// StubGateway is a configurable PayoutGateway that records every call.
type StubGateway struct {
	GatewayRail entity.PayoutRail
	Ref         string
	Err         error
	Calls       []paymentport.PayoutRequest
}

// Rail returns the configured rail.
func (g *StubGateway) Rail() entity.PayoutRail {
	return g.GatewayRail
}

// Payout records the request and returns the configured outcome.
func (g *StubGateway) Payout(ctx context.Context, req paymentport.PayoutRequest) (string, error) {
	g.Calls = append(g.Calls, req)
	if g.Err != nil {
		return "", g.Err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return g.Ref, nil
}

// StubRegistry resolves gateways from a plain map.
type StubRegistry struct {
	Gateways map[entity.PayoutRail]paymentport.PayoutGateway
}

// NewStubRegistry builds a registry over the given gateways.
func NewStubRegistry(gateways ...paymentport.PayoutGateway) *StubRegistry {
	m := make(map[entity.PayoutRail]paymentport.PayoutGateway, len(gateways))
	for _, g := range gateways {
		m[g.Rail()] = g
	}
	return &StubRegistry{Gateways: m}
}

// Gateway returns the gateway for the rail, or ErrInvalidRail.
func (r *StubRegistry) Gateway(rail entity.PayoutRail) (paymentport.PayoutGateway, error) {
	g, ok := r.Gateways[rail]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidRail, rail)
	}
	return g, nil
}

// StubPlatformBalance reports a fixed platform balance.
type StubPlatformBalance struct {
	Cents int64
	Err   error
}

// AvailableCents returns the configured balance or error.
func (p *StubPlatformBalance) AvailableCents(ctx context.Context) (int64, error) {
	if p.Err != nil {
		return 0, p.Err
	}
	return p.Cents, nil
}

// RecordingNotifier captures every receipt it is asked to send.
type RecordingNotifier struct {
	Contributions []paymentport.ContributionNotice
	Withdrawals   []paymentport.WithdrawalNotice
	Err           error
}

// ContributionSettled records the notice.
func (n *RecordingNotifier) ContributionSettled(ctx context.Context, notice paymentport.ContributionNotice) error {
	if n.Err != nil {
		return n.Err
	}
	n.Contributions = append(n.Contributions, notice)
	return nil
}

// WithdrawalCompleted records the notice.
func (n *RecordingNotifier) WithdrawalCompleted(ctx context.Context, notice paymentport.WithdrawalNotice) error {
	if n.Err != nil {
		return n.Err
	}
	n.Withdrawals = append(n.Withdrawals, notice)
	return nil
}

var (
	_ paymentport.PayoutGateway           = (*StubGateway)(nil)
	_ paymentport.GatewayRegistry         = (*StubRegistry)(nil)
	_ paymentport.PlatformBalanceProvider = (*StubPlatformBalance)(nil)
	_ paymentport.Notifier                = (*RecordingNotifier)(nil)
)
