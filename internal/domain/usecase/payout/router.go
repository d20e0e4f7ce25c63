package payout

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wishloop/payout-engine/internal/domain/entity"
	coreport "github.com/wishloop/payout-engine/internal/domain/port/core"
	"github.com/wishloop/payout-engine/internal/domain/port/payment"
	"github.com/wishloop/payout-engine/internal/domain/port/persistence"
)

// Router opportunistically forwards a just-settled contribution to the
// recipient over the rail the money arrived on, skipping the held balance.
// It is a best-effort optimization: it never returns an error and never
// retries. A missed forward simply leaves the net amount in the balance for
// manual withdrawal.
type Router struct {
	uow         persistence.UnitOfWork
	gateways    payment.GatewayRegistry
	logger      coreport.Logger
	tp          coreport.TimeProvider
	callTimeout time.Duration
}

// NewRouter creates an auto-payout router. callTimeout bounds each external
// payout call.
func NewRouter(
	uow persistence.UnitOfWork,
	gateways payment.GatewayRegistry,
	logger coreport.Logger,
	tp coreport.TimeProvider,
	callTimeout time.Duration,
) *Router {
	return &Router{
		uow:         uow,
		gateways:    gateways,
		logger:      logger,
		tp:          tp,
		callTimeout: callTimeout,
	}
}

// railForProvider maps the capture rail the money arrived on to the payout
// rail it can leave on.
func railForProvider(provider entity.CaptureProvider) (entity.PayoutRail, bool) {
	switch provider {
	case entity.ProviderPayPal:
		return entity.RailPayPal, true
	case entity.ProviderStripe:
		return entity.RailBank, true
	}
	return "", false
}

// Attempt forwards the contribution's net amount when the recipient has the
// matching rail configured. Returns true when the money was forwarded and
// the balance decremented, false when it stays in the balance.
func (r *Router) Attempt(ctx context.Context, c *entity.Contribution, recipient *entity.Recipient) bool {
	rail, ok := railForProvider(c.Provider)
	if !ok || !recipient.RailConfigured(rail) {
		return false
	}

	gateway, err := r.gateways.Gateway(rail)
	if err != nil {
		r.logger.Warn("No gateway for auto-payout rail", map[string]any{
			"rail":  string(rail),
			"error": err.Error(),
		})
		return false
	}

	net := c.NetCents()
	reference := uuid.NewString()

	callCtx, cancel := r.tp.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	providerRef, err := gateway.Payout(callCtx, payment.PayoutRequest{
		Reference:   reference,
		Destination: recipient.RailDestination(rail),
		AmountCents: net,
		Description: "auto-payout of settled contribution",
	})
	if err != nil {
		// No ledger mutation happened; the net amount stays in the balance.
		r.logger.Warn("Auto-payout call failed, funds remain in balance", map[string]any{
			"contribution_id": c.ID,
			"recipient_id":    recipient.ID,
			"rail":            string(rail),
			"amount":          entity.FormatCents(net),
			"error":           err.Error(),
		})
		return false
	}

	if err := r.recordForward(ctx, c, recipient, net, providerRef); err != nil {
		// The transfer went out but the ledger update failed. Surface loudly
		// for reconciliation; the provider reference is the audit trail.
		r.logger.Error("Auto-payout sent but ledger update failed", map[string]any{
			"contribution_id": c.ID,
			"recipient_id":    recipient.ID,
			"rail":            string(rail),
			"amount":          entity.FormatCents(net),
			"provider_ref":    providerRef,
			"error":           err.Error(),
		})
		return true
	}

	r.logger.Info("Contribution auto-forwarded to recipient", map[string]any{
		"contribution_id": c.ID,
		"recipient_id":    recipient.ID,
		"rail":            string(rail),
		"amount":          entity.FormatCents(net),
		"provider_ref":    providerRef,
	})
	return true
}

// recordForward decrements the received balance by the forwarded net amount
// and appends the audit line, in one transaction.
func (r *Router) recordForward(
	ctx context.Context,
	c *entity.Contribution,
	recipient *entity.Recipient,
	net int64,
	providerRef string,
) error {
	txCtx, err := r.uow.Begin(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = r.uow.Rollback(txCtx)
		}
	}()

	if _, err := r.uow.Recipients(txCtx).DebitReceived(txCtx, recipient.ID, net); err != nil {
		return err
	}

	wallet, err := r.uow.Wallets(txCtx).GetOrCreate(txCtx, recipient.ID)
	if err != nil {
		return err
	}
	line := entity.NewLedgerLine(
		wallet.ID,
		entity.LineAutoPayout,
		-net,
		entity.LineCompleted,
		"auto-payout of settled contribution",
		providerRef,
		r.tp,
	)
	if err := r.uow.Wallets(txCtx).AppendLine(txCtx, line); err != nil {
		return err
	}

	if err := r.uow.Commit(txCtx); err != nil {
		return err
	}
	committed = true
	return nil
}
