package entity

import (
	"time"

	errs "github.com/wishloop/payout-engine/internal/domain/error"
	coreport "github.com/wishloop/payout-engine/internal/domain/port/core"
)

// FundableKind distinguishes the two funding targets.
type FundableKind string

const (
	FundableItem  FundableKind = "item"
	FundableEvent FundableKind = "event"
)

// Fundable is a funding target (a wishlist item or an event) owned by a
// recipient. FundedCents only moves inside ledger transactions: it grows
// when contributions settle and shifts between an event and its items
// through zero-sum allocation.
type Fundable struct {
	ID          uint64
	OwnerID     uint64
	Kind        FundableKind
	EventID     *uint64 // for items that belong to an event
	GoalCents   *int64  // advisory target, nil when the owner set none
	FundedCents int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AddFunded credits settled contribution money. The gross amount lands here;
// the platform fee only reduces what the recipient can withdraw, not the
// displayed funding progress.
func (f *Fundable) AddFunded(cents int64, tp coreport.TimeProvider) {
	f.FundedCents += cents
	f.UpdatedAt = tp.Now()
}

// TransferFunded moves cents from an event to one of the owner's items.
// Value is conserved: the event loses exactly what the item gains.
func (f *Fundable) TransferFunded(to *Fundable, cents int64, tp coreport.TimeProvider) error {
	if f.Kind != FundableEvent {
		return errs.ErrEventNotFound
	}
	if to.OwnerID != f.OwnerID {
		return errs.ErrItemNotOwned
	}
	if cents > f.FundedCents {
		return errs.ErrAllocationExceedsAvailable
	}
	now := tp.Now()
	f.FundedCents -= cents
	to.FundedCents += cents
	f.UpdatedAt = now
	to.UpdatedAt = now
	return nil
}

// GoalReached reports whether funding has met the advisory goal. Over-funding
// is allowed; this only feeds UI warnings.
func (f *Fundable) GoalReached() bool {
	return f.GoalCents != nil && f.FundedCents >= *f.GoalCents
}
