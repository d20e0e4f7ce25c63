package allocation

import (
	"context"
	"fmt"

	"github.com/wishloop/payout-engine/internal/domain/entity"
	errs "github.com/wishloop/payout-engine/internal/domain/error"
	coreport "github.com/wishloop/payout-engine/internal/domain/port/core"
	"github.com/wishloop/payout-engine/internal/domain/port/persistence"
)

// Service moves confirmed event-level funds into a specific item. The move
// is zero-sum: across the two rows the total funded value is conserved.
type Service struct {
	uow    persistence.UnitOfWork
	logger coreport.Logger
	tp     coreport.TimeProvider
}

// NewService creates a fund allocator.
func NewService(uow persistence.UnitOfWork, logger coreport.Logger, tp coreport.TimeProvider) *Service {
	return &Service{uow: uow, logger: logger, tp: tp}
}

// Allocate moves amountCents from the recipient's event to one of their
// items. All preconditions are checked inside the same transaction that
// performs the move.
//
// Errors: ErrEventNotFound (missing, not an event, or not owned by the
// caller), ErrItemNotOwned, ErrAllocationExceedsAvailable,
// ErrFundableNotFound. None are retried.
func (s *Service) Allocate(ctx context.Context, recipientID, eventID, itemID uint64, amountCents int64) error {
	if recipientID == 0 {
		return errs.ErrInvalidRecipientID
	}
	if amountCents <= 0 {
		return fmt.Errorf("%w: amount must be positive", errs.ErrInvalidAmount)
	}
	if eventID == itemID {
		return fmt.Errorf("%w: event and item must differ", errs.ErrInvalidRequest)
	}

	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = s.uow.Rollback(txCtx)
		}
	}()

	event, err := s.uow.Fundables(txCtx).GetForUpdate(txCtx, eventID)
	if err != nil {
		return errs.ErrEventNotFound
	}
	// An event owned by someone else is reported the same as a missing one.
	if event.Kind != entity.FundableEvent || event.OwnerID != recipientID {
		return errs.ErrEventNotFound
	}

	item, err := s.uow.Fundables(txCtx).GetForUpdate(txCtx, itemID)
	if err != nil {
		return err
	}
	if item.Kind != entity.FundableItem {
		return errs.ErrFundableNotFound
	}

	if err := event.TransferFunded(item, amountCents, s.tp); err != nil {
		return err
	}

	if err := s.uow.Fundables(txCtx).Update(txCtx, event); err != nil {
		return err
	}
	if err := s.uow.Fundables(txCtx).Update(txCtx, item); err != nil {
		return err
	}

	if err := s.uow.Commit(txCtx); err != nil {
		return err
	}
	committed = true

	s.logger.Info("Event funds allocated to item", map[string]any{
		"recipient_id": recipientID,
		"event_id":     eventID,
		"item_id":      itemID,
		"amount":       entity.FormatCents(amountCents),
		"event_funded": entity.FormatCents(event.FundedCents),
		"item_funded":  entity.FormatCents(item.FundedCents),
	})
	return nil
}
