package persistence

import (
	"context"

	"github.com/wishloop/payout-engine/internal/domain/entity"
)

// FundableRepository accesses item and event rows.
type FundableRepository interface {
	// GetByID retrieves a fundable without locking.
	//
	// Possible errors: ErrFundableNotFound, ErrDatabaseConnection.
	GetByID(ctx context.Context, id uint64) (*entity.Fundable, error)

	// GetForUpdate retrieves a fundable with an exclusive row lock.
	GetForUpdate(ctx context.Context, id uint64) (*entity.Fundable, error)

	// Create inserts a fundable row.
	Create(ctx context.Context, fundable *entity.Fundable) error

	// Update persists funded amount changes made inside the transaction.
	Update(ctx context.Context, fundable *entity.Fundable) error
}
