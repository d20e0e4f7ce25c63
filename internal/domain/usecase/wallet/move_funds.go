package wallet

import (
	"context"
	"fmt"

	"github.com/wishloop/payout-engine/internal/domain/entity"
	errs "github.com/wishloop/payout-engine/internal/domain/error"
	coreport "github.com/wishloop/payout-engine/internal/domain/port/core"
	"github.com/wishloop/payout-engine/internal/domain/port/persistence"
)

// MoveResult is the outcome of moving received funds into the wallet.
type MoveResult struct {
	WalletBalanceCents     int64
	RemainingReceivedCents int64
}

// Service moves received funds into the recipient's spending wallet.
type Service struct {
	uow    persistence.UnitOfWork
	logger coreport.Logger
	tp     coreport.TimeProvider
}

// NewService creates a wallet service.
func NewService(uow persistence.UnitOfWork, logger coreport.Logger, tp coreport.TimeProvider) *Service {
	return &Service{uow: uow, logger: logger, tp: tp}
}

// MoveToWallet atomically moves amountCents from the recipient's received
// balance into their wallet, creating the wallet lazily on first use. The
// conditional debit guards against overdrawing under concurrency.
func (s *Service) MoveToWallet(ctx context.Context, recipientID uint64, amountCents int64) (*MoveResult, error) {
	if recipientID == 0 {
		return nil, errs.ErrInvalidRecipientID
	}
	if amountCents <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", errs.ErrInvalidAmount)
	}

	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = s.uow.Rollback(txCtx)
		}
	}()

	recipient, err := s.uow.Recipients(txCtx).DebitReceived(txCtx, recipientID, amountCents)
	if err != nil {
		if errs.IsInsufficientBalanceError(err) {
			current, lookupErr := s.uow.Recipients(txCtx).GetByID(txCtx, recipientID)
			if lookupErr == nil {
				return nil, errs.NewInsufficientBalanceError(
					recipientID,
					entity.FormatCents(amountCents),
					current.ReceivedBalance(),
				)
			}
		}
		return nil, err
	}

	w, err := s.uow.Wallets(txCtx).GetOrCreate(txCtx, recipientID)
	if err != nil {
		return nil, err
	}
	w.Credit(amountCents, s.tp)
	if err := s.uow.Wallets(txCtx).Update(txCtx, w); err != nil {
		return nil, err
	}

	line := entity.NewLedgerLine(
		w.ID,
		entity.LineReceivedToWallet,
		amountCents,
		entity.LineCompleted,
		"received funds moved to wallet",
		"",
		s.tp,
	)
	if err := s.uow.Wallets(txCtx).AppendLine(txCtx, line); err != nil {
		return nil, err
	}

	if err := s.uow.Commit(txCtx); err != nil {
		return nil, err
	}
	committed = true

	s.logger.Info("Received funds moved to wallet", map[string]any{
		"recipient_id":   recipientID,
		"amount":         entity.FormatCents(amountCents),
		"wallet_balance": entity.FormatCents(w.BalanceCents),
		"remaining":      recipient.ReceivedBalance(),
	})

	return &MoveResult{
		WalletBalanceCents:     w.BalanceCents,
		RemainingReceivedCents: recipient.ReceivedCents(),
	}, nil
}
