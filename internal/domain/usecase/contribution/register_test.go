package contribution

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wishloop/payout-engine/internal/domain/entity"
	errs "github.com/wishloop/payout-engine/internal/domain/error"
	"github.com/wishloop/payout-engine/internal/infrastructure/adapter/logger"
	mockcore "github.com/wishloop/payout-engine/mocks/port/core"
	mockpersistence "github.com/wishloop/payout-engine/mocks/port/persistence"
)

func newRegisterService(t *testing.T) (*Service, *mockpersistence.MemoryUnitOfWork) {
	t.Helper()
	tp := mockcore.NewFixedTimeProvider()
	uow := mockpersistence.NewMemoryUnitOfWork(tp)
	uow.AddFundable(&entity.Fundable{
		ID:      10,
		OwnerID: 1,
		Kind:    entity.FundableItem,
	})
	return NewService(uow, logger.NewNoopLogger(), tp), uow
}

func TestRegister_OpensPendingContribution(t *testing.T) {
	s, uow := newRegisterService(t)

	c, err := s.Register(context.Background(), RegisterInput{
		FundableID: 10,
		Amount:     "25.00",
		Provider:   "stripe",
	})

	assert.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, entity.ContributionPending, c.Status)
	assert.Equal(t, int64(2500), c.AmountCents)
	assert.Empty(t, c.ExternalTransactionID)

	stored, ok := uow.Contribution(c.ID)
	require.True(t, ok)
	assert.Equal(t, entity.ContributionPending, stored.Status)
}

func TestRegister_MultipleUncapturedPerProvider(t *testing.T) {
	s, _ := newRegisterService(t)

	// Checkout opens rows before the provider assigns a transaction id; any
	// number of uncaptured rows for the same provider must coexist.
	first, err := s.Register(context.Background(), RegisterInput{
		FundableID: 10,
		Amount:     "10.00",
		Provider:   "stripe",
	})
	require.NoError(t, err)

	second, err := s.Register(context.Background(), RegisterInput{
		FundableID: 10,
		Amount:     "20.00",
		Provider:   "stripe",
	})

	assert.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestRegister_DuplicateProviderReference(t *testing.T) {
	s, _ := newRegisterService(t)

	_, err := s.Register(context.Background(), RegisterInput{
		FundableID:            10,
		Amount:                "10.00",
		Provider:              "stripe",
		ExternalTransactionID: "pi_001",
	})
	require.NoError(t, err)

	_, err = s.Register(context.Background(), RegisterInput{
		FundableID:            10,
		Amount:                "10.00",
		Provider:              "stripe",
		ExternalTransactionID: "pi_001",
	})

	assert.ErrorIs(t, err, errs.ErrDuplicateContribution)
}

func TestRegister_SameReferenceDifferentProvider(t *testing.T) {
	s, _ := newRegisterService(t)

	_, err := s.Register(context.Background(), RegisterInput{
		FundableID:            10,
		Amount:                "10.00",
		Provider:              "stripe",
		ExternalTransactionID: "tx-1",
	})
	require.NoError(t, err)

	// The reference is scoped per provider.
	_, err = s.Register(context.Background(), RegisterInput{
		FundableID:            10,
		Amount:                "10.00",
		Provider:              "paypal",
		ExternalTransactionID: "tx-1",
	})

	assert.NoError(t, err)
}

func TestRegister_UnknownFundable(t *testing.T) {
	s, _ := newRegisterService(t)

	_, err := s.Register(context.Background(), RegisterInput{
		FundableID: 99,
		Amount:     "10.00",
		Provider:   "stripe",
	})

	assert.ErrorIs(t, err, errs.ErrFundableNotFound)
}

func TestRegister_Validation(t *testing.T) {
	s, _ := newRegisterService(t)

	_, err := s.Register(context.Background(), RegisterInput{
		FundableID: 10,
		Amount:     "10.00",
		Provider:   "square",
	})
	assert.ErrorIs(t, err, errs.ErrInvalidProvider)

	_, err = s.Register(context.Background(), RegisterInput{
		FundableID: 10,
		Amount:     "-5.00",
		Provider:   "stripe",
	})
	assert.ErrorIs(t, err, errs.ErrNegativeAmount)

	_, err = s.Register(context.Background(), RegisterInput{
		FundableID: 0,
		Amount:     "10.00",
		Provider:   "stripe",
	})
	assert.ErrorIs(t, err, errs.ErrFundableNotFound)
}

func TestRegister_RollsBackOnCommitFailure(t *testing.T) {
	s, uow := newRegisterService(t)
	uow.CommitErr = errs.ErrDatabaseConnection

	_, err := s.Register(context.Background(), RegisterInput{
		FundableID: 10,
		Amount:     "10.00",
		Provider:   "stripe",
	})

	assert.Error(t, err)
	_, ok := uow.Contribution(1)
	assert.False(t, ok)
}
