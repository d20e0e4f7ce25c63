package entity

import (
	"time"

	errs "github.com/wishloop/payout-engine/internal/domain/error"
	coreport "github.com/wishloop/payout-engine/internal/domain/port/core"
)

// PayoutRail identifies a channel over which settled funds can leave the
// platform.
type PayoutRail string

const (
	RailBank   PayoutRail = "bank"
	RailPayPal PayoutRail = "paypal"
	RailVenmo  PayoutRail = "venmo"
)

// IsValidRail reports whether s names a known payout rail.
func IsValidRail(s string) bool {
	switch PayoutRail(s) {
	case RailBank, RailPayPal, RailVenmo:
		return true
	}
	return false
}

// Recipient is a user who can receive contributions. ReceivedCents is the
// withdrawable balance: net of platform fees and net of anything already
// paid out. ContributionsReceivedCount increases monotonically and is used
// only to pick the fee tier.
type Recipient struct {
	ID                         uint64
	receivedCents              int64
	ContributionsReceivedCount uint64

	// Payout method preferences.
	BankAccountID  string // bank-connect identifier with the card processor
	BankOnboarded  bool
	VenmoHandle    string
	PayPalEmail    string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRecipient creates a recipient with a zero received balance.
func NewRecipient(id uint64, tp coreport.TimeProvider) (*Recipient, error) {
	if id == 0 {
		return nil, errs.ErrInvalidRecipientID
	}
	now := tp.Now()
	return &Recipient{ID: id, CreatedAt: now, UpdatedAt: now}, nil
}

// ReceivedCents returns the withdrawable balance in cents.
func (r *Recipient) ReceivedCents() int64 {
	return r.receivedCents
}

// ReceivedBalance returns the withdrawable balance as a decimal string.
func (r *Recipient) ReceivedBalance() string {
	return FormatCents(r.receivedCents)
}

// SetReceivedCents overwrites the balance. Repository use only; business
// paths go through CreditReceived / DebitReceived.
func (r *Recipient) SetReceivedCents(cents int64) {
	r.receivedCents = cents
}

// CreditReceived adds a settled contribution's net amount and bumps the
// lifetime contribution count.
func (r *Recipient) CreditReceived(netCents int64, tp coreport.TimeProvider) {
	r.receivedCents += netCents
	r.ContributionsReceivedCount++
	r.UpdatedAt = tp.Now()
}

// DebitReceived removes cents from the withdrawable balance, failing when
// the balance would go negative.
func (r *Recipient) DebitReceived(cents int64, tp coreport.TimeProvider) error {
	if r.receivedCents < cents {
		return errs.ErrInsufficientBalance
	}
	r.receivedCents -= cents
	r.UpdatedAt = tp.Now()
	return nil
}

// RailConfigured reports whether the recipient can receive payouts on the
// given rail.
func (r *Recipient) RailConfigured(rail PayoutRail) bool {
	switch rail {
	case RailBank:
		return r.BankOnboarded && r.BankAccountID != ""
	case RailPayPal:
		return r.PayPalEmail != ""
	case RailVenmo:
		return r.VenmoHandle != ""
	}
	return false
}

// RailDestination returns the external account identifier for the rail.
func (r *Recipient) RailDestination(rail PayoutRail) string {
	switch rail {
	case RailBank:
		return r.BankAccountID
	case RailPayPal:
		return r.PayPalEmail
	case RailVenmo:
		return r.VenmoHandle
	}
	return ""
}
