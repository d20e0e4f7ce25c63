package contribution

import (
	"context"

	"github.com/wishloop/payout-engine/internal/domain/entity"
	coreport "github.com/wishloop/payout-engine/internal/domain/port/core"
	"github.com/wishloop/payout-engine/internal/domain/port/persistence"
)

// RegisterInput describes a contribution being opened at checkout.
type RegisterInput struct {
	FundableID    uint64
	ContributorID *uint64 // nil for anonymous contributions
	Amount        string
	Provider      string
	// ExternalTransactionID is the provider's transaction id when the
	// checkout flow already captured one; empty until capture otherwise.
	ExternalTransactionID string
}

// Service opens PENDING contributions at checkout. Settlement happens later,
// when the provider's webhook arrives.
type Service struct {
	uow    persistence.UnitOfWork
	logger coreport.Logger
	tp     coreport.TimeProvider
}

// NewService creates a contribution registrar.
func NewService(uow persistence.UnitOfWork, logger coreport.Logger, tp coreport.TimeProvider) *Service {
	return &Service{uow: uow, logger: logger, tp: tp}
}

// Register validates the target and inserts the PENDING row. A provider
// reference already taken by another contribution is rejected with
// ErrDuplicateContribution; registrations without a reference never collide.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*entity.Contribution, error) {
	c, err := entity.NewContribution(input.FundableID, input.ContributorID, input.Amount, input.Provider, s.tp)
	if err != nil {
		return nil, err
	}
	c.ExternalTransactionID = input.ExternalTransactionID

	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = s.uow.Rollback(txCtx)
		}
	}()

	if _, err := s.uow.Fundables(txCtx).GetByID(txCtx, input.FundableID); err != nil {
		return nil, err
	}

	if err := s.uow.Contributions(txCtx).Create(txCtx, c); err != nil {
		return nil, err
	}

	if err := s.uow.Commit(txCtx); err != nil {
		return nil, err
	}
	committed = true

	s.logger.Info("Contribution registered", map[string]any{
		"contribution_id": c.ID,
		"fundable_id":     c.FundableID,
		"provider":        string(c.Provider),
		"amount":          entity.FormatCents(c.AmountCents),
	})
	return c, nil
}
