package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wishloop/payout-engine/internal/domain/entity"
	errs "github.com/wishloop/payout-engine/internal/domain/error"
	"github.com/wishloop/payout-engine/internal/infrastructure/adapter/logger"
	mockcore "github.com/wishloop/payout-engine/mocks/port/core"
	mockpersistence "github.com/wishloop/payout-engine/mocks/port/persistence"
)

func newTestService(t *testing.T) (*Service, *mockpersistence.MemoryUnitOfWork, *mockcore.FixedTimeProvider) {
	t.Helper()
	tp := mockcore.NewFixedTimeProvider()
	uow := mockpersistence.NewMemoryUnitOfWork(tp)
	return NewService(uow, logger.NewNoopLogger(), tp), uow, tp
}

func seedRecipient(t *testing.T, uow *mockpersistence.MemoryUnitOfWork, tp *mockcore.FixedTimeProvider, balanceCents int64) {
	t.Helper()
	r, err := entity.NewRecipient(1, tp)
	require.NoError(t, err)
	r.SetReceivedCents(balanceCents)
	uow.AddRecipient(r)
}

func TestMoveToWallet(t *testing.T) {
	s, uow, tp := newTestService(t)
	seedRecipient(t, uow, tp, 10000)

	result, err := s.MoveToWallet(context.Background(), 1, 4000)

	assert.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, int64(4000), result.WalletBalanceCents)
	assert.Equal(t, int64(6000), result.RemainingReceivedCents)

	r, _ := uow.Recipient(1)
	assert.Equal(t, int64(6000), r.ReceivedCents())

	// Wallet created lazily on first move.
	w, ok := uow.WalletFor(1)
	require.True(t, ok)
	assert.Equal(t, int64(4000), w.BalanceCents)

	lines := uow.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, entity.LineReceivedToWallet, lines[0].Type)
	assert.Equal(t, int64(4000), lines[0].AmountCents)
	assert.Equal(t, entity.LineCompleted, lines[0].Status)
}

func TestMoveToWallet_AccumulatesAcrossMoves(t *testing.T) {
	s, uow, tp := newTestService(t)
	seedRecipient(t, uow, tp, 10000)

	_, err := s.MoveToWallet(context.Background(), 1, 3000)
	require.NoError(t, err)
	result, err := s.MoveToWallet(context.Background(), 1, 2000)
	require.NoError(t, err)

	assert.Equal(t, int64(5000), result.WalletBalanceCents)
	assert.Equal(t, int64(5000), result.RemainingReceivedCents)

	// Wallet balance equals the sum of its wallet-scoped completed lines.
	w, _ := uow.WalletFor(1)
	var sum int64
	for _, line := range uow.Lines() {
		if line.WalletID == w.ID && line.Type.AffectsWalletBalance() && line.Status == entity.LineCompleted {
			sum += line.AmountCents
		}
	}
	assert.Equal(t, w.BalanceCents, sum)
}

func TestMoveToWallet_InsufficientBalance(t *testing.T) {
	s, uow, tp := newTestService(t)
	seedRecipient(t, uow, tp, 1000)

	_, err := s.MoveToWallet(context.Background(), 1, 2000)

	assert.ErrorIs(t, err, errs.ErrInsufficientBalance)

	var detailed *errs.InsufficientBalanceError
	require.True(t, errors.As(err, &detailed))
	assert.Equal(t, "20.00", detailed.Requested)
	assert.Equal(t, "10.00", detailed.Available)

	r, _ := uow.Recipient(1)
	assert.Equal(t, int64(1000), r.ReceivedCents())
	assert.Empty(t, uow.Lines())
}

func TestMoveToWallet_Validation(t *testing.T) {
	s, _, _ := newTestService(t)

	_, err := s.MoveToWallet(context.Background(), 0, 1000)
	assert.ErrorIs(t, err, errs.ErrInvalidRecipientID)

	_, err = s.MoveToWallet(context.Background(), 1, 0)
	assert.ErrorIs(t, err, errs.ErrInvalidAmount)
}

func TestMoveToWallet_UnknownRecipient(t *testing.T) {
	s, _, _ := newTestService(t)

	_, err := s.MoveToWallet(context.Background(), 42, 1000)

	assert.ErrorIs(t, err, errs.ErrRecipientNotFound)
}

func TestBalances(t *testing.T) {
	s, uow, tp := newTestService(t)
	seedRecipient(t, uow, tp, 10000)

	t.Run("before any wallet activity", func(t *testing.T) {
		result, err := s.Balances(context.Background(), 1)

		assert.NoError(t, err)
		assert.Equal(t, int64(10000), result.ReceivedCents)
		assert.Equal(t, int64(0), result.WalletCents)
	})

	t.Run("after moving funds", func(t *testing.T) {
		_, err := s.MoveToWallet(context.Background(), 1, 2500)
		require.NoError(t, err)

		result, err := s.Balances(context.Background(), 1)

		assert.NoError(t, err)
		assert.Equal(t, int64(7500), result.ReceivedCents)
		assert.Equal(t, int64(2500), result.WalletCents)
	})
}

func TestBalances_AuditsBalanceAgainstLedger(t *testing.T) {
	tp := mockcore.NewFixedTimeProvider()
	uow := mockpersistence.NewMemoryUnitOfWork(tp)
	recLogger := mockcore.NewRecordingLogger()
	s := NewService(uow, recLogger, tp)
	seedRecipient(t, uow, tp, 10000)

	_, err := s.MoveToWallet(context.Background(), 1, 2500)
	require.NoError(t, err)

	// Balance matches its lines: the read stays quiet.
	_, err = s.Balances(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, recLogger.Messages("warn"))

	// A line written without the matching balance update is drift.
	w, ok := uow.WalletFor(1)
	require.True(t, ok)
	rogue := entity.NewLedgerLine(
		w.ID,
		entity.LineReceivedToWallet,
		500,
		entity.LineCompleted,
		"manual adjustment",
		"",
		tp,
	)
	require.NoError(t, uow.Wallets(context.Background()).AppendLine(context.Background(), rogue))

	result, err := s.Balances(context.Background(), 1)

	// The caller still gets the stored balance; drift only goes to the log.
	assert.NoError(t, err)
	assert.Equal(t, int64(2500), result.WalletCents)
	assert.Contains(t, recLogger.Messages("warn"), "Wallet balance drifted from ledger lines")
}

func TestBalances_UnknownRecipient(t *testing.T) {
	s, _, _ := newTestService(t)

	_, err := s.Balances(context.Background(), 42)

	assert.ErrorIs(t, err, errs.ErrRecipientNotFound)
}
