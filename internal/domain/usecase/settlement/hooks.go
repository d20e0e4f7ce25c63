package settlement

import (
	"context"
	"sync"

	"github.com/wishloop/payout-engine/internal/domain/entity"
	coreport "github.com/wishloop/payout-engine/internal/domain/port/core"
	"github.com/wishloop/payout-engine/internal/domain/port/payment"
	"github.com/wishloop/payout-engine/internal/domain/port/persistence"
)

// AutoPayoutRouter forwards a just-settled contribution straight to the
// recipient when rails match. Implemented by the payout package.
type AutoPayoutRouter interface {
	Attempt(ctx context.Context, contribution *entity.Contribution, recipient *entity.Recipient) bool
}

// Hooks runs the post-commit side effects of a settlement: receipts, the
// activity feed and the auto-payout attempt. Every step is best-effort; an
// error or panic here is logged and swallowed so that a notification-provider
// outage can never affect settlement correctness. Dispatch runs the steps off
// the webhook request path so a slow rail call never delays the provider ACK.
type Hooks struct {
	notifier   payment.Notifier
	activities persistence.ActivityRepository
	router     AutoPayoutRouter
	logger     coreport.Logger
	tp         coreport.TimeProvider

	wg sync.WaitGroup
}

// NewHooks creates the post-settlement hook runner. Any dependency may be
// nil; the corresponding step is skipped.
func NewHooks(
	notifier payment.Notifier,
	activities persistence.ActivityRepository,
	router AutoPayoutRouter,
	logger coreport.Logger,
	tp coreport.TimeProvider,
) *Hooks {
	return &Hooks{
		notifier:   notifier,
		activities: activities,
		router:     router,
		logger:     logger,
		tp:         tp,
	}
}

// Dispatch runs the side effects on their own goroutine. The context is
// detached from the request so the provider's ACK does not cancel in-flight
// receipts or the auto-payout call.
func (h *Hooks) Dispatch(
	ctx context.Context,
	contribution *entity.Contribution,
	fundable *entity.Fundable,
	recipient *entity.Recipient,
) {
	hookCtx := context.WithoutCancel(ctx)
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.AfterSettlement(hookCtx, contribution, fundable, recipient)
	}()
}

// Wait blocks until all dispatched hook runs finish. Called on shutdown.
func (h *Hooks) Wait() {
	h.wg.Wait()
}

// AfterSettlement fires the side effects for one settled contribution.
func (h *Hooks) AfterSettlement(
	ctx context.Context,
	contribution *entity.Contribution,
	fundable *entity.Fundable,
	recipient *entity.Recipient,
) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("Panic in post-settlement hooks", map[string]any{
				"contribution_id": contribution.ID,
				"panic":           r,
			})
		}
	}()

	if h.notifier != nil {
		notice := payment.ContributionNotice{
			RecipientID:   recipient.ID,
			ContributorID: contribution.ContributorID,
			FundableID:    fundable.ID,
			Amount:        entity.FormatCents(contribution.AmountCents),
			Net:           entity.FormatCents(contribution.NetCents()),
		}
		if err := h.notifier.ContributionSettled(ctx, notice); err != nil {
			h.logger.Warn("Contribution receipt failed", map[string]any{
				"contribution_id": contribution.ID,
				"error":           err.Error(),
			})
		}
	}

	if h.activities != nil {
		entry := &persistence.ActivityEntry{
			RecipientID:   recipient.ID,
			FundableID:    fundable.ID,
			ContributorID: contribution.ContributorID,
			Kind:          "contribution_settled",
			Amount:        entity.FormatCents(contribution.AmountCents),
			CreatedAt:     h.tp.Now(),
		}
		if err := h.activities.Record(ctx, entry); err != nil {
			h.logger.Warn("Activity entry failed", map[string]any{
				"contribution_id": contribution.ID,
				"error":           err.Error(),
			})
		}
	}

	if h.router != nil {
		forwarded := h.router.Attempt(ctx, contribution, recipient)
		h.logger.Debug("Auto-payout attempted", map[string]any{
			"contribution_id": contribution.ID,
			"forwarded":       forwarded,
		})
	}
}
