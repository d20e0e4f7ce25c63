package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	errs "github.com/wishloop/payout-engine/internal/domain/error"
	coreport "github.com/wishloop/payout-engine/internal/domain/port/core"
)

// CaptureProvider identifies the payment processor that captured a
// contribution's charge.
type CaptureProvider string

const (
	ProviderStripe CaptureProvider = "stripe"
	ProviderPayPal CaptureProvider = "paypal"
)

// IsValidProvider reports whether s names a known capture provider.
func IsValidProvider(s string) bool {
	switch CaptureProvider(s) {
	case ProviderStripe, ProviderPayPal:
		return true
	}
	return false
}

// ContributionStatus is the lifecycle state of a contribution.
type ContributionStatus string

const (
	ContributionPending   ContributionStatus = "pending"
	ContributionCompleted ContributionStatus = "completed"
	ContributionFailed    ContributionStatus = "failed"
)

// ProviderRef is the tagged idempotency key for settlement: a provider plus
// that provider's transaction id, as a single unambiguous value.
type ProviderRef struct {
	Provider              CaptureProvider
	ExternalTransactionID string
}

// Contribution is a third party's payment toward a fundable. It is created
// PENDING at checkout and transitions exactly once, to COMPLETED or FAILED,
// when the provider's settlement webhook arrives. Both end states are
// terminal.
type Contribution struct {
	ID            uint64
	FundableID    uint64
	ContributorID *uint64 // nil for anonymous contributions
	AmountCents   int64

	Provider              CaptureProvider
	ExternalTransactionID string // empty until the provider captures the charge

	Status       ContributionStatus
	FeeRate      *decimal.Decimal // nil until settled
	FeeCents     *int64           // nil until settled
	FailureCause string

	CreatedAt time.Time
	SettledAt *time.Time
}

// NewContribution creates a pending contribution.
func NewContribution(
	fundableID uint64,
	contributorID *uint64,
	amount string,
	provider string,
	tp coreport.TimeProvider,
) (*Contribution, error) {
	if fundableID == 0 {
		return nil, errs.ErrFundableNotFound
	}
	if !IsValidProvider(provider) {
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidProvider, provider)
	}
	cents, err := ParsePositiveAmount(amount)
	if err != nil {
		return nil, err
	}
	return &Contribution{
		FundableID:    fundableID,
		ContributorID: contributorID,
		AmountCents:   cents,
		Provider:      CaptureProvider(provider),
		Status:        ContributionPending,
		CreatedAt:     tp.Now(),
	}, nil
}

// Ref returns the settlement idempotency key.
func (c *Contribution) Ref() ProviderRef {
	return ProviderRef{Provider: c.Provider, ExternalTransactionID: c.ExternalTransactionID}
}

// NetCents is the amount credited to the recipient after the platform fee.
// Only meaningful once the contribution is COMPLETED.
func (c *Contribution) NetCents() int64 {
	if c.FeeCents == nil {
		return c.AmountCents
	}
	return c.AmountCents - *c.FeeCents
}

// MarkCompleted stamps the fee and moves the contribution to its terminal
// COMPLETED state. Rejects any transition out of a non-PENDING state.
func (c *Contribution) MarkCompleted(fee FeeResult, tp coreport.TimeProvider) error {
	if c.Status != ContributionPending {
		return fmt.Errorf("%w: contribution %d is %s", errs.ErrContributionSettled, c.ID, c.Status)
	}
	now := tp.Now()
	rate := fee.Rate
	feeCents := fee.FeeCents
	c.FeeRate = &rate
	c.FeeCents = &feeCents
	c.Status = ContributionCompleted
	c.SettledAt = &now
	return nil
}

// MarkFailed moves the contribution to its terminal FAILED state with no
// fee stamped and no balance effect.
func (c *Contribution) MarkFailed(cause string, tp coreport.TimeProvider) error {
	if c.Status != ContributionPending {
		return fmt.Errorf("%w: contribution %d is %s", errs.ErrContributionSettled, c.ID, c.Status)
	}
	now := tp.Now()
	c.Status = ContributionFailed
	c.FailureCause = cause
	c.SettledAt = &now
	return nil
}
