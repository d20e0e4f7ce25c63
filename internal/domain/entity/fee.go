package entity

import (
	"github.com/shopspring/decimal"

	errs "github.com/wishloop/payout-engine/internal/domain/error"
)

// FreeContributionQuota is the number of lifetime completed contributions a
// recipient receives before the platform fee kicks in.
const FreeContributionQuota = 10

// standardFeeRate is the platform fee applied from the 11th contribution on.
var standardFeeRate = decimal.NewFromFloat(0.02)

// FeeResult is the outcome of the platform fee computation for one
// contribution.
type FeeResult struct {
	Rate     decimal.Decimal // applied rate, "0" or "0.02"
	FeeCents int64           // fee in cents, rounded half-up
	NetCents int64           // amount credited to the recipient
}

// CalculateFee computes the platform fee for a contribution of amountCents
// to a recipient who already has priorCount completed contributions.
//
// The tier decision uses the count before the current contribution is added,
// so exactly FreeContributionQuota contributions are fee-free. Pure function:
// it is shared by the settlement path and receipt previews and must stay free
// of I/O and hidden state.
func CalculateFee(amountCents int64, priorCount uint64) (FeeResult, error) {
	if amountCents <= 0 {
		return FeeResult{}, errs.ErrInvalidAmount
	}

	if priorCount < FreeContributionQuota {
		return FeeResult{
			Rate:     decimal.Zero,
			FeeCents: 0,
			NetCents: amountCents,
		}, nil
	}

	fee := decimal.NewFromInt(amountCents).Mul(standardFeeRate).Round(0).IntPart()
	return FeeResult{
		Rate:     standardFeeRate,
		FeeCents: fee,
		NetCents: amountCents - fee,
	}, nil
}
