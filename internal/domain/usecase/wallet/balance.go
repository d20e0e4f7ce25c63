package wallet

import (
	"context"

	"github.com/wishloop/payout-engine/internal/domain/entity"
	errs "github.com/wishloop/payout-engine/internal/domain/error"
)

// BalanceResult reports both balances a recipient holds.
type BalanceResult struct {
	ReceivedCents int64
	WalletCents   int64
}

// Balances reads the recipient's received balance and wallet balance. The
// wallet is created lazily, so a recipient who never moved funds reads zero.
func (s *Service) Balances(ctx context.Context, recipientID uint64) (*BalanceResult, error) {
	if recipientID == 0 {
		return nil, errs.ErrInvalidRecipientID
	}

	recipient, err := s.uow.Recipients(ctx).GetByID(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	w, err := s.uow.Wallets(ctx).GetOrCreate(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	// Audit the stored balance against its ledger lines on every read. The
	// invariant (wallet-scoped completed lines sum to the balance) must hold;
	// drift means a bug or manual intervention and is surfaced for
	// reconciliation, never to the caller.
	if sum, sumErr := s.uow.Wallets(ctx).SumWalletLines(ctx, w.ID); sumErr == nil && sum != w.BalanceCents {
		s.logger.Warn("Wallet balance drifted from ledger lines", map[string]any{
			"recipient_id":   recipientID,
			"wallet_id":      w.ID,
			"wallet_balance": entity.FormatCents(w.BalanceCents),
			"line_sum":       entity.FormatCents(sum),
		})
	}

	return &BalanceResult{
		ReceivedCents: recipient.ReceivedCents(),
		WalletCents:   w.BalanceCents,
	}, nil
}
