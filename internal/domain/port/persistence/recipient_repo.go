package persistence

import (
	"context"

	"github.com/wishloop/payout-engine/internal/domain/entity"
)

// RecipientRepository accesses recipient balance rows. All mutating methods
// must be called inside a UnitOfWork transaction.
type RecipientRepository interface {
	// GetByID retrieves a recipient without locking.
	//
	// Possible errors: ErrRecipientNotFound, ErrDatabaseConnection.
	GetByID(ctx context.Context, id uint64) (*entity.Recipient, error)

	// GetForUpdate retrieves a recipient with an exclusive row lock for the
	// duration of the enclosing transaction.
	GetForUpdate(ctx context.Context, id uint64) (*entity.Recipient, error)

	// Create inserts a new recipient row.
	Create(ctx context.Context, recipient *entity.Recipient) error

	// CreditReceived adds netCents to the received balance and increments
	// the lifetime contribution count, as one guarded UPDATE.
	//
	// Possible errors: ErrRecipientNotFound, ErrDatabaseConnection.
	CreditReceived(ctx context.Context, id uint64, netCents int64) (*entity.Recipient, error)

	// DebitReceived subtracts cents from the received balance only if the
	// balance covers it, in a single conditional UPDATE so the check and the
	// mutation cannot race.
	//
	// Possible errors: ErrInsufficientBalance, ErrRecipientNotFound,
	// ErrDatabaseConnection.
	DebitReceived(ctx context.Context, id uint64, cents int64) (*entity.Recipient, error)

	// RefundReceived credits cents back after a failed external payout. The
	// lifetime contribution count is untouched: a compensating credit is not
	// a new contribution.
	RefundReceived(ctx context.Context, id uint64, cents int64) (*entity.Recipient, error)
}
