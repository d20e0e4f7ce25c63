package allocation

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

func newTestService(t *testing.T) (*Service, *mockpersistence.MemoryUnitOfWork) {
	t.Helper()
	tp := mockcore.NewFixedTimeProvider()
	uow := mockpersistence.NewMemoryUnitOfWork(tp)
	return NewService(uow, logger.NewNoopLogger(), tp), uow
}

func seedEventAndItem(uow *mockpersistence.MemoryUnitOfWork, eventFunded, itemFunded int64, itemOwner uint64) {
	eventID := uint64(100)
	uow.AddFundable(&entity.Fundable{
		ID:          100,
		OwnerID:     1,
		Kind:        entity.FundableEvent,
		FundedCents: eventFunded,
	})
	uow.AddFundable(&entity.Fundable{
		ID:          200,
		OwnerID:     itemOwner,
		Kind:        entity.FundableItem,
		EventID:     &eventID,
		FundedCents: itemFunded,
	})
}

func TestAllocate_MovesFundsZeroSum(t *testing.T) {
	s, uow := newTestService(t)
	seedEventAndItem(uow, 10000, 500, 1)

	err := s.Allocate(context.Background(), 1, 100, 200, 4000)

	assert.NoError(t, err)

	event, _ := uow.Fundable(100)
	item, _ := uow.Fundable(200)
	assert.Equal(t, int64(6000), event.FundedCents)
	assert.Equal(t, int64(4500), item.FundedCents)
	// Value conserved across the pair.
	assert.Equal(t, int64(10500), event.FundedCents+item.FundedCents)
}

func TestAllocate_ExceedsAvailable(t *testing.T) {
	s, uow := newTestService(t)
	seedEventAndItem(uow, 1000, 0, 1)

	err := s.Allocate(context.Background(), 1, 100, 200, 1001)

	assert.ErrorIs(t, err, errs.ErrAllocationExceedsAvailable)

	event, _ := uow.Fundable(100)
	item, _ := uow.Fundable(200)
	assert.Equal(t, int64(1000), event.FundedCents)
	assert.Equal(t, int64(0), item.FundedCents)
}

func TestAllocate_EventOwnership(t *testing.T) {
	t.Run("event owned by someone else reads as missing", func(t *testing.T) {
		s, uow := newTestService(t)
		seedEventAndItem(uow, 10000, 0, 1)

		err := s.Allocate(context.Background(), 9, 100, 200, 1000)

		assert.ErrorIs(t, err, errs.ErrEventNotFound)
	})

	t.Run("unknown event", func(t *testing.T) {
		s, _ := newTestService(t)

		err := s.Allocate(context.Background(), 1, 100, 200, 1000)

		assert.ErrorIs(t, err, errs.ErrEventNotFound)
	})

	t.Run("source that is an item reads as missing event", func(t *testing.T) {
		s, uow := newTestService(t)
		uow.AddFundable(&entity.Fundable{ID: 100, OwnerID: 1, Kind: entity.FundableItem, FundedCents: 5000})
		uow.AddFundable(&entity.Fundable{ID: 200, OwnerID: 1, Kind: entity.FundableItem})

		err := s.Allocate(context.Background(), 1, 100, 200, 1000)

		assert.ErrorIs(t, err, errs.ErrEventNotFound)
	})
}

func TestAllocate_ItemChecks(t *testing.T) {
	t.Run("item owned by someone else", func(t *testing.T) {
		s, uow := newTestService(t)
		seedEventAndItem(uow, 10000, 0, 9)

		err := s.Allocate(context.Background(), 1, 100, 200, 1000)

		assert.ErrorIs(t, err, errs.ErrItemNotOwned)
		event, _ := uow.Fundable(100)
		assert.Equal(t, int64(10000), event.FundedCents)
	})

	t.Run("target that is an event", func(t *testing.T) {
		s, uow := newTestService(t)
		uow.AddFundable(&entity.Fundable{ID: 100, OwnerID: 1, Kind: entity.FundableEvent, FundedCents: 5000})
		uow.AddFundable(&entity.Fundable{ID: 200, OwnerID: 1, Kind: entity.FundableEvent})

		err := s.Allocate(context.Background(), 1, 100, 200, 1000)

		assert.ErrorIs(t, err, errs.ErrFundableNotFound)
	})

	t.Run("unknown item", func(t *testing.T) {
		s, uow := newTestService(t)
		uow.AddFundable(&entity.Fundable{ID: 100, OwnerID: 1, Kind: entity.FundableEvent, FundedCents: 5000})

		err := s.Allocate(context.Background(), 1, 100, 200, 1000)

		assert.ErrorIs(t, err, errs.ErrFundableNotFound)
	})
}

func TestAllocate_Validation(t *testing.T) {
	s, _ := newTestService(t)

	err := s.Allocate(context.Background(), 0, 100, 200, 1000)
	assert.ErrorIs(t, err, errs.ErrInvalidRecipientID)

	err = s.Allocate(context.Background(), 1, 100, 200, 0)
	assert.ErrorIs(t, err, errs.ErrInvalidAmount)

	err = s.Allocate(context.Background(), 1, 100, 200, -500)
	assert.ErrorIs(t, err, errs.ErrInvalidAmount)

	// Self-allocation is rejected before touching the store.
	err = s.Allocate(context.Background(), 1, 100, 100, 1000)
	assert.ErrorIs(t, err, errs.ErrInvalidRequest)
}

func TestAllocate_RollsBackOnCommitFailure(t *testing.T) {
	s, uow := newTestService(t)
	seedEventAndItem(uow, 10000, 0, 1)
	uow.CommitErr = errs.ErrDatabaseConnection

	err := s.Allocate(context.Background(), 1, 100, 200, 4000)

	require.Error(t, err)
	event, _ := uow.Fundable(100)
	item, _ := uow.Fundable(200)
	assert.Equal(t, int64(10000), event.FundedCents)
	assert.Equal(t, int64(0), item.FundedCents)
}
