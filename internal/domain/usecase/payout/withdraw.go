package payout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wishloop/payout-engine/internal/domain/entity"
	errs "github.com/wishloop/payout-engine/internal/domain/error"
	coreport "github.com/wishloop/payout-engine/internal/domain/port/core"
	"github.com/wishloop/payout-engine/internal/domain/port/payment"
	"github.com/wishloop/payout-engine/internal/domain/port/persistence"
)

// InstantFeePolicy prices the instant sub-rail: max(Rate x amount, MinCents),
// rounded half up to the cent. Loaded from configuration.
type InstantFeePolicy struct {
	Rate     decimal.Decimal
	MinCents int64
}

// DefaultInstantFeePolicy returns the standard 1% / 50 cent floor pricing.
func DefaultInstantFeePolicy() InstantFeePolicy {
	return InstantFeePolicy{Rate: decimal.NewFromFloat(0.01), MinCents: 50}
}

// FeeCents computes the instant sub-rail fee for an amount.
func (p InstantFeePolicy) FeeCents(amountCents int64) int64 {
	fee := decimal.NewFromInt(amountCents).Mul(p.Rate).Round(0).IntPart()
	if fee < p.MinCents {
		fee = p.MinCents
	}
	return fee
}

// WithdrawOptions modifies a withdrawal.
type WithdrawOptions struct {
	// Instant selects the instant sub-rail; a fee of max(1%, 50 cents) is
	// subtracted from the transferred amount. The full amount still leaves
	// the balance.
	Instant bool
}

// WithdrawResult is the outcome of a successful withdrawal.
type WithdrawResult struct {
	NewBalanceCents   int64
	NewBalance        string
	ExternalReference string
}

// WithdrawService moves accumulated received balance to a payout rail the
// recipient chose.
//
// The sequence is validate -> reserve (conditional decrement) -> external
// call -> record. The decrement commits before the external call; if the
// call then fails, the amount is credited back through a compensating ledger
// line. At-least-once with compensation, not exactly-once: a repeated
// identical request is a second real transfer.
type WithdrawService struct {
	uow         persistence.UnitOfWork
	gateways    payment.GatewayRegistry
	platform    payment.PlatformBalanceProvider
	notifier    payment.Notifier
	logger      coreport.Logger
	tp          coreport.TimeProvider
	callTimeout time.Duration
	instantFee  InstantFeePolicy
}

// NewWithdrawService creates a withdrawal processor. notifier may be nil.
func NewWithdrawService(
	uow persistence.UnitOfWork,
	gateways payment.GatewayRegistry,
	platform payment.PlatformBalanceProvider,
	notifier payment.Notifier,
	logger coreport.Logger,
	tp coreport.TimeProvider,
	callTimeout time.Duration,
	instantFee InstantFeePolicy,
) *WithdrawService {
	return &WithdrawService{
		uow:         uow,
		gateways:    gateways,
		platform:    platform,
		notifier:    notifier,
		logger:      logger,
		tp:          tp,
		callTimeout: callTimeout,
		instantFee:  instantFee,
	}
}

// Withdraw transfers amountCents of the recipient's received balance out
// over the given rail.
func (s *WithdrawService) Withdraw(
	ctx context.Context,
	recipientID uint64,
	amountCents int64,
	rail entity.PayoutRail,
	opts WithdrawOptions,
) (*WithdrawResult, error) {
	if recipientID == 0 {
		return nil, errs.ErrInvalidRecipientID
	}
	if amountCents <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", errs.ErrInvalidAmount)
	}
	if !entity.IsValidRail(string(rail)) {
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidRail, rail)
	}

	gateway, err := s.gateways.Gateway(rail)
	if err != nil {
		return nil, err
	}

	// Bank transfers cannot outrun the platform's own settlement with its
	// processor. The read happens before any mutation; a short platform
	// balance rejects with no ledger effect.
	if rail == entity.RailBank {
		available, err := s.platform.AvailableCents(ctx)
		if err != nil {
			s.logger.Warn("Platform balance read failed, rejecting withdrawal", map[string]any{
				"recipient_id": recipientID,
				"error":        err.Error(),
			})
			return nil, errs.ErrFundsPending
		}
		if available < amountCents {
			s.logger.Info("Withdrawal exceeds platform available balance", map[string]any{
				"recipient_id": recipientID,
				"requested":    entity.FormatCents(amountCents),
				"available":    entity.FormatCents(available),
			})
			return nil, errs.ErrFundsPending
		}
	}

	reference := uuid.NewString()
	recipient, line, err := s.reserve(ctx, recipientID, amountCents, rail, reference)
	if err != nil {
		return nil, err
	}

	transferCents := amountCents
	if opts.Instant {
		transferCents = amountCents - s.instantFee.FeeCents(amountCents)
	}

	callCtx, cancel := s.tp.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	providerRef, err := gateway.Payout(callCtx, payment.PayoutRequest{
		Reference:   reference,
		Destination: recipient.RailDestination(rail),
		AmountCents: transferCents,
		Description: "balance withdrawal",
	})
	if err != nil {
		// The reserve already committed; compensate by crediting the amount
		// back so the recipient is never left short.
		if compErr := s.compensate(ctx, recipientID, amountCents, line); compErr != nil {
			s.logger.Error("Compensating credit failed after payout failure", map[string]any{
				"recipient_id": recipientID,
				"amount":       entity.FormatCents(amountCents),
				"reference":    reference,
				"payout_error": err.Error(),
				"error":        compErr.Error(),
			})
		}
		return nil, errs.NewPayoutError(recipientID, string(rail), entity.FormatCents(amountCents), reference, err)
	}

	if err := s.finish(ctx, line, providerRef); err != nil {
		// The transfer succeeded; only the audit stamp failed. Our generated
		// reference still links the line to the provider record.
		s.logger.Error("Withdrawal sent but ledger finalization failed", map[string]any{
			"recipient_id": recipientID,
			"reference":    reference,
			"provider_ref": providerRef,
			"error":        err.Error(),
		})
	}

	s.logger.Info("Withdrawal completed", map[string]any{
		"recipient_id": recipientID,
		"rail":         string(rail),
		"amount":       entity.FormatCents(amountCents),
		"transferred":  entity.FormatCents(transferCents),
		"provider_ref": providerRef,
		"new_balance":  recipient.ReceivedBalance(),
	})

	if s.notifier != nil {
		notice := payment.WithdrawalNotice{
			RecipientID: recipientID,
			Amount:      entity.FormatCents(amountCents),
			Rail:        string(rail),
			Reference:   providerRef,
		}
		if err := s.notifier.WithdrawalCompleted(ctx, notice); err != nil {
			s.logger.Warn("Withdrawal receipt failed", map[string]any{
				"recipient_id": recipientID,
				"error":        err.Error(),
			})
		}
	}

	return &WithdrawResult{
		NewBalanceCents:   recipient.ReceivedCents(),
		NewBalance:        recipient.ReceivedBalance(),
		ExternalReference: providerRef,
	}, nil
}

// reserve checks onboarding and conditionally decrements the balance, and
// appends the pending PAYOUT line, all in one transaction. This closes the
// check-then-act race: the balance check and the decrement are a single
// guarded UPDATE.
func (s *WithdrawService) reserve(
	ctx context.Context,
	recipientID uint64,
	amountCents int64,
	rail entity.PayoutRail,
	reference string,
) (*entity.Recipient, *entity.LedgerLine, error) {
	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = s.uow.Rollback(txCtx)
		}
	}()

	recipient, err := s.uow.Recipients(txCtx).GetForUpdate(txCtx, recipientID)
	if err != nil {
		return nil, nil, err
	}
	if !recipient.RailConfigured(rail) {
		return nil, nil, fmt.Errorf("%w: %s", errs.ErrNotOnboarded, rail)
	}

	updated, err := s.uow.Recipients(txCtx).DebitReceived(txCtx, recipientID, amountCents)
	if err != nil {
		if errs.IsInsufficientBalanceError(err) {
			return nil, nil, errs.NewInsufficientBalanceError(
				recipientID,
				entity.FormatCents(amountCents),
				recipient.ReceivedBalance(),
			)
		}
		return nil, nil, err
	}

	wallet, err := s.uow.Wallets(txCtx).GetOrCreate(txCtx, recipientID)
	if err != nil {
		return nil, nil, err
	}
	line := entity.NewLedgerLine(
		wallet.ID,
		entity.LinePayout,
		-amountCents,
		entity.LinePending,
		fmt.Sprintf("withdrawal via %s", rail),
		reference,
		s.tp,
	)
	if err := s.uow.Wallets(txCtx).AppendLine(txCtx, line); err != nil {
		return nil, nil, err
	}

	if err := s.uow.Commit(txCtx); err != nil {
		return nil, nil, err
	}
	committed = true
	return updated, line, nil
}

// finish stamps the provider reference on the reserved line.
func (s *WithdrawService) finish(ctx context.Context, line *entity.LedgerLine, providerRef string) error {
	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = s.uow.Rollback(txCtx)
		}
	}()

	if err := s.uow.Wallets(txCtx).UpdateLineStatus(txCtx, line.ID, entity.LineCompleted, providerRef); err != nil {
		return err
	}
	if err := s.uow.Commit(txCtx); err != nil {
		return err
	}
	committed = true
	return nil
}

// compensate credits the reserved amount back and records the reversal.
func (s *WithdrawService) compensate(ctx context.Context, recipientID uint64, amountCents int64, line *entity.LedgerLine) error {
	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = s.uow.Rollback(txCtx)
		}
	}()

	if _, err := s.uow.Recipients(txCtx).RefundReceived(txCtx, recipientID, amountCents); err != nil {
		return err
	}
	if err := s.uow.Wallets(txCtx).UpdateLineStatus(txCtx, line.ID, entity.LineFailed, ""); err != nil {
		return err
	}
	reversal := entity.NewLedgerLine(
		line.WalletID,
		entity.LinePayoutReversal,
		amountCents,
		entity.LineCompleted,
		"compensating credit for failed payout",
		line.ExternalReference,
		s.tp,
	)
	if err := s.uow.Wallets(txCtx).AppendLine(txCtx, reversal); err != nil {
		return err
	}

	if err := s.uow.Commit(txCtx); err != nil {
		return err
	}
	committed = true
	return nil
}
