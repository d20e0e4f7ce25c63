package payment

import (
	"context"
)

// ContributionNotice carries the facts for settlement receipts.
type ContributionNotice struct {
	RecipientID   uint64
	ContributorID *uint64
	FundableID    uint64
	Amount        string
	Net           string
}

// WithdrawalNotice carries the facts for a withdrawal receipt.
type WithdrawalNotice struct {
	RecipientID uint64
	Amount      string
	Rail        string
	Reference   string
}

// Notifier sends fire-and-forget receipts over email/WhatsApp. Failures are
// logged by callers and must never affect settlement or payout correctness.
type Notifier interface {
	ContributionSettled(ctx context.Context, notice ContributionNotice) error
	WithdrawalCompleted(ctx context.Context, notice WithdrawalNotice) error
}
