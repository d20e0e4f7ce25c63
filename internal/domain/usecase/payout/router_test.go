package payout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wishloop/payout-engine/internal/domain/entity"
	"github.com/wishloop/payout-engine/internal/infrastructure/adapter/logger"
	mockcore "github.com/wishloop/payout-engine/mocks/port/core"
	mockpayment "github.com/wishloop/payout-engine/mocks/port/payment"
	mockpersistence "github.com/wishloop/payout-engine/mocks/port/persistence"
)

type routerFixture struct {
	router *Router
	uow    *mockpersistence.MemoryUnitOfWork
	tp     *mockcore.FixedTimeProvider
	bank   *mockpayment.StubGateway
	paypal *mockpayment.StubGateway
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	tp := mockcore.NewFixedTimeProvider()
	uow := mockpersistence.NewMemoryUnitOfWork(tp)
	bank := &mockpayment.StubGateway{GatewayRail: entity.RailBank, Ref: "bank-ref"}
	paypal := &mockpayment.StubGateway{GatewayRail: entity.RailPayPal, Ref: "pp-ref"}

	router := NewRouter(uow, mockpayment.NewStubRegistry(bank, paypal), logger.NewNoopLogger(), tp, 30*time.Second)
	return &routerFixture{router: router, uow: uow, tp: tp, bank: bank, paypal: paypal}
}

func settledContribution(provider entity.CaptureProvider, amountCents, feeCents int64) *entity.Contribution {
	fee := feeCents
	return &entity.Contribution{
		ID:                    1,
		FundableID:            10,
		AmountCents:           amountCents,
		Provider:              provider,
		ExternalTransactionID: "tx-1",
		Status:                entity.ContributionCompleted,
		FeeCents:              &fee,
	}
}

func (f *routerFixture) seedRecipient(t *testing.T, balanceCents int64, configure func(*entity.Recipient)) *entity.Recipient {
	t.Helper()
	r, err := entity.NewRecipient(1, f.tp)
	require.NoError(t, err)
	r.SetReceivedCents(balanceCents)
	if configure != nil {
		configure(r)
	}
	f.uow.AddRecipient(r)
	return r
}

func TestRouter_Attempt_PayPalForwarded(t *testing.T) {
	f := newRouterFixture(t)
	recipient := f.seedRecipient(t, 4900, func(r *entity.Recipient) {
		r.PayPalEmail = "r@example.com"
	})
	c := settledContribution(entity.ProviderPayPal, 5000, 100)

	forwarded := f.router.Attempt(context.Background(), c, recipient)

	assert.True(t, forwarded)
	require.Len(t, f.paypal.Calls, 1)
	assert.Equal(t, int64(4900), f.paypal.Calls[0].AmountCents)
	assert.Equal(t, "r@example.com", f.paypal.Calls[0].Destination)

	r, _ := f.uow.Recipient(1)
	assert.Equal(t, int64(0), r.ReceivedCents())

	lines := f.uow.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, entity.LineAutoPayout, lines[0].Type)
	assert.Equal(t, int64(-4900), lines[0].AmountCents)
	assert.Equal(t, entity.LineCompleted, lines[0].Status)
	assert.Equal(t, "pp-ref", lines[0].ExternalReference)
}

func TestRouter_Attempt_StripeUsesBankRail(t *testing.T) {
	f := newRouterFixture(t)
	recipient := f.seedRecipient(t, 10000, func(r *entity.Recipient) {
		r.BankOnboarded = true
		r.BankAccountID = "acct_1"
	})
	c := settledContribution(entity.ProviderStripe, 10000, 0)

	forwarded := f.router.Attempt(context.Background(), c, recipient)

	assert.True(t, forwarded)
	require.Len(t, f.bank.Calls, 1)
	assert.Equal(t, "acct_1", f.bank.Calls[0].Destination)
	assert.Empty(t, f.paypal.Calls)
}

func TestRouter_Attempt_RailNotConfigured(t *testing.T) {
	f := newRouterFixture(t)
	// Money arrived over PayPal but the recipient only has Venmo set up.
	recipient := f.seedRecipient(t, 4900, func(r *entity.Recipient) {
		r.VenmoHandle = "@recipient"
	})
	c := settledContribution(entity.ProviderPayPal, 5000, 100)

	forwarded := f.router.Attempt(context.Background(), c, recipient)

	assert.False(t, forwarded)
	assert.Empty(t, f.paypal.Calls)
	r, _ := f.uow.Recipient(1)
	assert.Equal(t, int64(4900), r.ReceivedCents())
}

func TestRouter_Attempt_GatewayFailureLeavesBalance(t *testing.T) {
	f := newRouterFixture(t)
	recipient := f.seedRecipient(t, 4900, func(r *entity.Recipient) {
		r.PayPalEmail = "r@example.com"
	})
	f.paypal.Err = errors.New("provider unavailable")
	c := settledContribution(entity.ProviderPayPal, 5000, 100)

	forwarded := f.router.Attempt(context.Background(), c, recipient)

	// Best-effort: the failure is swallowed and the money stays put for
	// manual withdrawal.
	assert.False(t, forwarded)
	r, _ := f.uow.Recipient(1)
	assert.Equal(t, int64(4900), r.ReceivedCents())
	assert.Empty(t, f.uow.Lines())
}

func TestRouter_Attempt_RecordFailureAfterSendStillReportsForwarded(t *testing.T) {
	f := newRouterFixture(t)
	recipient := f.seedRecipient(t, 4900, func(r *entity.Recipient) {
		r.PayPalEmail = "r@example.com"
	})
	f.uow.BeginErr = errors.New("connection lost")
	c := settledContribution(entity.ProviderPayPal, 5000, 100)

	forwarded := f.router.Attempt(context.Background(), c, recipient)

	// The transfer already went out; the caller must not treat it as kept.
	assert.True(t, forwarded)
	require.Len(t, f.paypal.Calls, 1)
}
