package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	errs "github.com/wishloop/payout-engine/internal/domain/error"
)

func TestCalculateFee_FreeTier(t *testing.T) {
	// The first ten lifetime contributions carry no fee.
	for priorCount := uint64(0); priorCount < FreeContributionQuota; priorCount++ {
		fee, err := CalculateFee(10000, priorCount)

		assert.NoError(t, err)
		assert.True(t, fee.Rate.IsZero())
		assert.Equal(t, int64(0), fee.FeeCents)
		assert.Equal(t, int64(10000), fee.NetCents)
	}
}

func TestCalculateFee_StandardTier(t *testing.T) {
	testCases := []struct {
		name        string
		amountCents int64
		priorCount  uint64
		expectedFee int64
		expectedNet int64
	}{
		{
			name:        "eleventh contribution pays the fee",
			amountCents: 5000,
			priorCount:  10,
			expectedFee: 100,
			expectedNet: 4900,
		},
		{
			name:        "well past the quota",
			amountCents: 10000,
			priorCount:  250,
			expectedFee: 200,
			expectedNet: 9800,
		},
		{
			name:        "fee rounds half up",
			amountCents: 1025, // 2% = 20.5 cents
			priorCount:  10,
			expectedFee: 21,
			expectedNet: 1004,
		},
		{
			name:        "fee rounds down below half",
			amountCents: 1020, // 2% = 20.4 cents
			priorCount:  10,
			expectedFee: 20,
			expectedNet: 1000,
		},
		{
			name:        "tiny amount can round to zero fee",
			amountCents: 20, // 2% = 0.4 cents
			priorCount:  10,
			expectedFee: 0,
			expectedNet: 20,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fee, err := CalculateFee(tc.amountCents, tc.priorCount)

			assert.NoError(t, err)
			assert.True(t, fee.Rate.Equal(decimal.NewFromFloat(0.02)))
			assert.Equal(t, tc.expectedFee, fee.FeeCents)
			assert.Equal(t, tc.expectedNet, fee.NetCents)
		})
	}
}

func TestCalculateFee_FeePlusNetEqualsGross(t *testing.T) {
	amounts := []int64{1, 33, 99, 1025, 999999}
	for _, amount := range amounts {
		fee, err := CalculateFee(amount, FreeContributionQuota)

		assert.NoError(t, err)
		assert.Equal(t, amount, fee.FeeCents+fee.NetCents)
	}
}

func TestCalculateFee_InvalidAmount(t *testing.T) {
	_, err := CalculateFee(0, 0)
	assert.ErrorIs(t, err, errs.ErrInvalidAmount)

	_, err = CalculateFee(-100, 0)
	assert.ErrorIs(t, err, errs.ErrInvalidAmount)
}
