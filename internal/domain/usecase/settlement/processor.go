package settlement

import (
	"context"
	"errors"
	"fmt"

	"github.com/wishloop/payout-engine/internal/domain/entity"
	errs "github.com/wishloop/payout-engine/internal/domain/error"
	coreport "github.com/wishloop/payout-engine/internal/domain/port/core"
	"github.com/wishloop/payout-engine/internal/domain/port/persistence"
)

// Processor applies a provider's settlement decision to the ledger. Settle
// and Fail are idempotent: webhook delivery is at-least-once and replays must
// be silent no-ops.
type Processor struct {
	uow    persistence.UnitOfWork
	hooks  *Hooks
	logger coreport.Logger
	tp     coreport.TimeProvider
}

// NewProcessor creates a settlement processor. hooks may be nil when no
// post-settlement side effects are wanted (tests).
func NewProcessor(
	uow persistence.UnitOfWork,
	hooks *Hooks,
	logger coreport.Logger,
	tp coreport.TimeProvider,
) *Processor {
	return &Processor{uow: uow, hooks: hooks, logger: logger, tp: tp}
}

// Settle marks the pending contribution for (provider, externalTxID) as
// COMPLETED and applies the ledger effects in one transaction:
//
//   - the contribution is stamped with the fee rate and fee amount,
//   - the fundable gains the gross amount,
//   - the recipient gains the net amount and one contribution count.
//
// When no pending contribution matches the reference (already settled,
// already failed, or unknown), Settle returns nil without side effects.
func (p *Processor) Settle(ctx context.Context, provider, externalTxID string) error {
	if err := validateRef(provider, externalTxID); err != nil {
		return err
	}
	ref := entity.ProviderRef{
		Provider:              entity.CaptureProvider(provider),
		ExternalTransactionID: externalTxID,
	}

	txCtx, err := p.uow.Begin(ctx)
	if err != nil {
		return errs.NewSettlementError(provider, externalTxID, "begin transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = p.uow.Rollback(txCtx)
		}
	}()

	contribution, err := p.uow.Contributions(txCtx).GetPendingByRef(txCtx, ref)
	if err != nil {
		if errors.Is(err, errs.ErrContributionNotFound) {
			p.logger.Debug("Settlement replay or unknown reference, skipping", map[string]any{
				"provider":                provider,
				"external_transaction_id": externalTxID,
			})
			return nil
		}
		return errs.NewSettlementError(provider, externalTxID, "lookup contribution", err)
	}

	fundable, err := p.uow.Fundables(txCtx).GetForUpdate(txCtx, contribution.FundableID)
	if err != nil {
		return errs.NewSettlementError(provider, externalTxID, "resolve fundable", err)
	}

	recipient, err := p.uow.Recipients(txCtx).GetForUpdate(txCtx, fundable.OwnerID)
	if err != nil {
		return errs.NewSettlementError(provider, externalTxID, "resolve recipient", err)
	}

	fee, err := entity.CalculateFee(contribution.AmountCents, recipient.ContributionsReceivedCount)
	if err != nil {
		return errs.NewSettlementError(provider, externalTxID, "calculate fee", err)
	}

	if err := contribution.MarkCompleted(fee, p.tp); err != nil {
		return errs.NewSettlementError(provider, externalTxID, "mark completed", err)
	}
	if err := p.uow.Contributions(txCtx).Update(txCtx, contribution); err != nil {
		return errs.NewSettlementError(provider, externalTxID, "persist contribution", err)
	}

	// Funding progress shows the gross amount; the fee only reduces what the
	// recipient can withdraw.
	fundable.AddFunded(contribution.AmountCents, p.tp)
	if err := p.uow.Fundables(txCtx).Update(txCtx, fundable); err != nil {
		return errs.NewSettlementError(provider, externalTxID, "persist fundable", err)
	}

	updated, err := p.uow.Recipients(txCtx).CreditReceived(txCtx, recipient.ID, fee.NetCents)
	if err != nil {
		return errs.NewSettlementError(provider, externalTxID, "credit recipient", err)
	}

	if err := p.uow.Commit(txCtx); err != nil {
		return errs.NewSettlementError(provider, externalTxID, "commit", err)
	}
	committed = true

	p.logger.Info("Contribution settled", map[string]any{
		"contribution_id":         contribution.ID,
		"provider":                provider,
		"external_transaction_id": externalTxID,
		"amount":                  entity.FormatCents(contribution.AmountCents),
		"fee":                     entity.FormatCents(fee.FeeCents),
		"net":                     entity.FormatCents(fee.NetCents),
		"recipient_id":            updated.ID,
		"recipient_balance":       updated.ReceivedBalance(),
	})

	// Best-effort side effects: notifications, activity feed, auto-payout.
	// Dispatched off the request path; nothing past the commit may fail
	// settlement or delay the webhook ACK.
	if p.hooks != nil {
		p.hooks.Dispatch(ctx, contribution, fundable, updated)
	}
	return nil
}

// Fail marks the pending contribution for the reference as FAILED. No
// balance is touched. Replays and unknown references are silent no-ops.
func (p *Processor) Fail(ctx context.Context, provider, externalTxID, cause string) error {
	if err := validateRef(provider, externalTxID); err != nil {
		return err
	}
	ref := entity.ProviderRef{
		Provider:              entity.CaptureProvider(provider),
		ExternalTransactionID: externalTxID,
	}

	txCtx, err := p.uow.Begin(ctx)
	if err != nil {
		return errs.NewSettlementError(provider, externalTxID, "begin transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = p.uow.Rollback(txCtx)
		}
	}()

	contribution, err := p.uow.Contributions(txCtx).GetPendingByRef(txCtx, ref)
	if err != nil {
		if errors.Is(err, errs.ErrContributionNotFound) {
			return nil
		}
		return errs.NewSettlementError(provider, externalTxID, "lookup contribution", err)
	}

	if err := contribution.MarkFailed(cause, p.tp); err != nil {
		return errs.NewSettlementError(provider, externalTxID, "mark failed", err)
	}
	if err := p.uow.Contributions(txCtx).Update(txCtx, contribution); err != nil {
		return errs.NewSettlementError(provider, externalTxID, "persist contribution", err)
	}

	if err := p.uow.Commit(txCtx); err != nil {
		return errs.NewSettlementError(provider, externalTxID, "commit", err)
	}
	committed = true

	p.logger.Warn("Contribution failed at provider", map[string]any{
		"contribution_id":         contribution.ID,
		"provider":                provider,
		"external_transaction_id": externalTxID,
		"cause":                   cause,
	})
	return nil
}

func validateRef(provider, externalTxID string) error {
	if !entity.IsValidProvider(provider) {
		return fmt.Errorf("%w: %s", errs.ErrInvalidProvider, provider)
	}
	if externalTxID == "" {
		return fmt.Errorf("%w: empty external transaction id", errs.ErrInvalidRequest)
	}
	return nil
}
