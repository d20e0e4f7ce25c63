package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	errs "github.com/wishloop/payout-engine/internal/domain/error"
	mockcore "github.com/wishloop/payout-engine/mocks/port/core"
)

func TestWallet_CreditAndDebit(t *testing.T) {
	tp := mockcore.NewFixedTimeProvider()
	w := &Wallet{ID: 1, RecipientID: 1}

	w.Credit(5000, tp)
	assert.Equal(t, int64(5000), w.BalanceCents)

	err := w.Debit(3000, tp)
	assert.NoError(t, err)
	assert.Equal(t, int64(2000), w.BalanceCents)
}

func TestWallet_DebitGuardsNegativeBalance(t *testing.T) {
	tp := mockcore.NewFixedTimeProvider()
	w := &Wallet{ID: 1, RecipientID: 1, BalanceCents: 100}

	err := w.Debit(101, tp)

	assert.ErrorIs(t, err, errs.ErrInsufficientBalance)
	assert.Equal(t, int64(100), w.BalanceCents)
}

func TestLedgerLineType_AffectsWalletBalance(t *testing.T) {
	walletScoped := []LedgerLineType{LineDeposit, LineReceivedToWallet, LineFundItem}
	for _, lt := range walletScoped {
		assert.True(t, lt.AffectsWalletBalance(), string(lt))
	}

	payoutScoped := []LedgerLineType{LinePayout, LineAutoPayout, LinePayoutReversal}
	for _, lt := range payoutScoped {
		assert.False(t, lt.AffectsWalletBalance(), string(lt))
	}
}

func TestNewLedgerLine(t *testing.T) {
	tp := mockcore.NewFixedTimeProvider()

	line := NewLedgerLine(3, LinePayout, -2500, LinePending, "withdrawal via bank", "ref-123", tp)

	assert.Equal(t, uint64(3), line.WalletID)
	assert.Equal(t, LinePayout, line.Type)
	assert.Equal(t, int64(-2500), line.AmountCents)
	assert.Equal(t, LinePending, line.Status)
	assert.Equal(t, "ref-123", line.ExternalReference)
	assert.Equal(t, tp.Now(), line.CreatedAt)
}

func TestRecipient_RailConfiguration(t *testing.T) {
	testCases := []struct {
		name      string
		recipient Recipient
		rail      PayoutRail
		expected  bool
	}{
		{
			name:      "bank fully onboarded",
			recipient: Recipient{BankOnboarded: true, BankAccountID: "acct_1"},
			rail:      RailBank,
			expected:  true,
		},
		{
			name:      "bank flag without account id",
			recipient: Recipient{BankOnboarded: true},
			rail:      RailBank,
			expected:  false,
		},
		{
			name:      "paypal email set",
			recipient: Recipient{PayPalEmail: "r@example.com"},
			rail:      RailPayPal,
			expected:  true,
		},
		{
			name:      "venmo handle set",
			recipient: Recipient{VenmoHandle: "@recipient"},
			rail:      RailVenmo,
			expected:  true,
		},
		{
			name:      "nothing configured",
			recipient: Recipient{},
			rail:      RailPayPal,
			expected:  false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.recipient.RailConfigured(tc.rail))
		})
	}
}

func TestRecipient_DebitReceived(t *testing.T) {
	tp := mockcore.NewFixedTimeProvider()
	r, err := NewRecipient(1, tp)
	assert.NoError(t, err)

	r.CreditReceived(5000, tp)
	assert.Equal(t, int64(5000), r.ReceivedCents())
	assert.Equal(t, uint64(1), r.ContributionsReceivedCount)

	err = r.DebitReceived(6000, tp)
	assert.ErrorIs(t, err, errs.ErrInsufficientBalance)
	assert.Equal(t, int64(5000), r.ReceivedCents())

	err = r.DebitReceived(5000, tp)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), r.ReceivedCents())
}
