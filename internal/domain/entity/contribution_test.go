package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	errs "github.com/wishloop/payout-engine/internal/domain/error"
	mockcore "github.com/wishloop/payout-engine/mocks/port/core"
)

func TestNewContribution(t *testing.T) {
	tp := mockcore.NewFixedTimeProvider()
	contributorID := uint64(7)

	testCases := []struct {
		name          string
		fundableID    uint64
		contributorID *uint64
		amount        string
		provider      string
		expectedError error
	}{
		{
			name:          "valid stripe contribution",
			fundableID:    1,
			contributorID: &contributorID,
			amount:        "25.00",
			provider:      "stripe",
		},
		{
			name:       "valid anonymous paypal contribution",
			fundableID: 1,
			amount:     "10",
			provider:   "paypal",
		},
		{
			name:          "missing fundable",
			fundableID:    0,
			amount:        "25.00",
			provider:      "stripe",
			expectedError: errs.ErrFundableNotFound,
		},
		{
			name:          "unknown provider",
			fundableID:    1,
			amount:        "25.00",
			provider:      "square",
			expectedError: errs.ErrInvalidProvider,
		},
		{
			name:          "zero amount",
			fundableID:    1,
			amount:        "0",
			provider:      "stripe",
			expectedError: errs.ErrInvalidAmount,
		},
		{
			name:          "negative amount",
			fundableID:    1,
			amount:        "-5",
			provider:      "stripe",
			expectedError: errs.ErrNegativeAmount,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := NewContribution(tc.fundableID, tc.contributorID, tc.amount, tc.provider, tp)

			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, ContributionPending, c.Status)
			assert.Nil(t, c.FeeRate)
			assert.Nil(t, c.FeeCents)
			assert.Nil(t, c.SettledAt)
			assert.Equal(t, tp.Now(), c.CreatedAt)
		})
	}
}

func TestContribution_MarkCompleted(t *testing.T) {
	tp := mockcore.NewFixedTimeProvider()
	c, err := NewContribution(1, nil, "50.00", "stripe", tp)
	assert.NoError(t, err)

	fee, err := CalculateFee(c.AmountCents, 10)
	assert.NoError(t, err)

	err = c.MarkCompleted(fee, tp)

	assert.NoError(t, err)
	assert.Equal(t, ContributionCompleted, c.Status)
	assert.NotNil(t, c.FeeCents)
	assert.Equal(t, int64(100), *c.FeeCents)
	assert.Equal(t, int64(4900), c.NetCents())
	assert.NotNil(t, c.SettledAt)
}

func TestContribution_TerminalStatesAreFinal(t *testing.T) {
	tp := mockcore.NewFixedTimeProvider()
	fee, err := CalculateFee(1000, 0)
	assert.NoError(t, err)

	t.Run("completed cannot complete again", func(t *testing.T) {
		c, _ := NewContribution(1, nil, "10.00", "stripe", tp)
		assert.NoError(t, c.MarkCompleted(fee, tp))

		err := c.MarkCompleted(fee, tp)
		assert.ErrorIs(t, err, errs.ErrContributionSettled)
	})

	t.Run("completed cannot fail", func(t *testing.T) {
		c, _ := NewContribution(1, nil, "10.00", "stripe", tp)
		assert.NoError(t, c.MarkCompleted(fee, tp))

		err := c.MarkFailed("card_declined", tp)
		assert.ErrorIs(t, err, errs.ErrContributionSettled)
		assert.Equal(t, ContributionCompleted, c.Status)
	})

	t.Run("failed cannot complete", func(t *testing.T) {
		c, _ := NewContribution(1, nil, "10.00", "stripe", tp)
		assert.NoError(t, c.MarkFailed("card_declined", tp))

		err := c.MarkCompleted(fee, tp)
		assert.ErrorIs(t, err, errs.ErrContributionSettled)
		assert.Equal(t, ContributionFailed, c.Status)
	})
}

func TestContribution_MarkFailed(t *testing.T) {
	tp := mockcore.NewFixedTimeProvider()
	c, _ := NewContribution(1, nil, "10.00", "paypal", tp)

	err := c.MarkFailed("insufficient_funds", tp)

	assert.NoError(t, err)
	assert.Equal(t, ContributionFailed, c.Status)
	assert.Equal(t, "insufficient_funds", c.FailureCause)
	assert.Nil(t, c.FeeCents)
	assert.NotNil(t, c.SettledAt)
}

func TestContribution_NetCentsBeforeSettlement(t *testing.T) {
	tp := mockcore.NewFixedTimeProvider()
	c, _ := NewContribution(1, nil, "10.00", "stripe", tp)

	// No fee stamped yet: net equals gross.
	assert.Equal(t, int64(1000), c.NetCents())
}
