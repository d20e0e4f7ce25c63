package persistence

import (
	"context"

	"github.com/wishloop/payout-engine/internal/domain/entity"
)

// ContributionRepository accesses contribution rows.
type ContributionRepository interface {
	// Create inserts a new pending contribution.
	//
	// Possible errors: ErrDuplicateContribution (provider reference already
	// taken), ErrDatabaseConnection.
	Create(ctx context.Context, contribution *entity.Contribution) error

	// GetByID retrieves a contribution by internal id.
	GetByID(ctx context.Context, id uint64) (*entity.Contribution, error)

	// GetPendingByRef retrieves the PENDING contribution matching the
	// provider reference, locked for update. This lookup is the settlement
	// idempotency guard: terminal and unknown references both miss.
	//
	// Possible errors: ErrContributionNotFound, ErrDatabaseConnection.
	GetPendingByRef(ctx context.Context, ref entity.ProviderRef) (*entity.Contribution, error)

	// Update persists status, fee stamp and failure cause.
	Update(ctx context.Context, contribution *entity.Contribution) error
}
