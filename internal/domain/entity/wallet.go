package entity

import (
	"time"

	errs "github.com/wishloop/payout-engine/internal/domain/error"
	coreport "github.com/wishloop/payout-engine/internal/domain/port/core"
)

// LedgerLineType classifies wallet transactions. Wallet-scoped types move
// Wallet.BalanceCents; payout-scoped types audit movements of the received
// balance and never enter the wallet sum.
type LedgerLineType string

const (
	// Wallet-scoped lines.
	LineDeposit          LedgerLineType = "deposit"
	LineReceivedToWallet LedgerLineType = "received_to_wallet"
	LineFundItem         LedgerLineType = "fund_item"

	// Payout-scoped lines against the received balance.
	LinePayout         LedgerLineType = "payout"
	LineAutoPayout     LedgerLineType = "auto_payout"
	LinePayoutReversal LedgerLineType = "payout_reversal"
)

// AffectsWalletBalance reports whether lines of this type are part of the
// wallet balance invariant (sum of wallet-scoped line amounts == balance).
func (t LedgerLineType) AffectsWalletBalance() bool {
	switch t {
	case LineDeposit, LineReceivedToWallet, LineFundItem:
		return true
	}
	return false
}

// LedgerLineStatus is the lifecycle of a ledger line. Lines are append-only;
// status is the only field ever updated after creation.
type LedgerLineStatus string

const (
	LinePending   LedgerLineStatus = "pending"
	LineCompleted LedgerLineStatus = "completed"
	LineFailed    LedgerLineStatus = "failed"
)

// Wallet is a recipient's pre-funded spending balance, distinct from the
// received balance. Created lazily on first use.
type Wallet struct {
	ID           uint64
	RecipientID  uint64
	BalanceCents int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Credit adds cents to the wallet balance.
func (w *Wallet) Credit(cents int64, tp coreport.TimeProvider) {
	w.BalanceCents += cents
	w.UpdatedAt = tp.Now()
}

// Debit removes cents, failing if the wallet would go negative.
func (w *Wallet) Debit(cents int64, tp coreport.TimeProvider) error {
	if w.BalanceCents < cents {
		return errs.ErrInsufficientBalance
	}
	w.BalanceCents -= cents
	w.UpdatedAt = tp.Now()
	return nil
}

// LedgerLine is one immutable, signed record of a balance change, kept for
// audit and display.
type LedgerLine struct {
	ID          uint64
	WalletID    uint64
	Type        LedgerLineType
	AmountCents int64 // signed: negative for money leaving
	Status      LedgerLineStatus
	Description string
	// ExternalReference carries the payout provider's id for reconciliation,
	// or our own generated reference while the external call is in flight.
	ExternalReference string
	CreatedAt         time.Time
}

// NewLedgerLine creates a line in the given status.
func NewLedgerLine(
	walletID uint64,
	lineType LedgerLineType,
	amountCents int64,
	status LedgerLineStatus,
	description string,
	externalRef string,
	tp coreport.TimeProvider,
) *LedgerLine {
	return &LedgerLine{
		WalletID:          walletID,
		Type:              lineType,
		AmountCents:       amountCents,
		Status:            status,
		Description:       description,
		ExternalReference: externalRef,
		CreatedAt:         tp.Now(),
	}
}
