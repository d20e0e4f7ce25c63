package persistence

import (
	"context"

	"github.com/wishloop/payout-engine/internal/domain/entity"
)

// WalletRepository accesses wallet and ledger line rows.
type WalletRepository interface {
	// GetOrCreate returns the recipient's wallet, creating it lazily on
	// first use. Locks the row when it exists.
	GetOrCreate(ctx context.Context, recipientID uint64) (*entity.Wallet, error)

	// Update persists wallet balance changes.
	Update(ctx context.Context, wallet *entity.Wallet) error

	// AppendLine inserts a ledger line. Lines are append-only; only status
	// may change afterwards.
	AppendLine(ctx context.Context, line *entity.LedgerLine) error

	// UpdateLineStatus transitions a ledger line's status and stores the
	// provider's external reference when one arrives.
	UpdateLineStatus(ctx context.Context, lineID uint64, status entity.LedgerLineStatus, externalRef string) error

	// SumWalletLines sums the wallet-scoped line amounts for a wallet; used
	// to audit the wallet balance invariant.
	SumWalletLines(ctx context.Context, walletID uint64) (int64, error)
}
