package persistence

import (
	"context"
)

// UnitOfWork coordinates repository operations inside one database
// transaction. Every balance mutation in the engine runs between Begin and
// Commit; any error rolls the whole transaction back, so partial ledger
// mutation is never observable.
type UnitOfWork interface {
	// Begin starts a transaction and returns a context carrying it.
	Begin(ctx context.Context) (context.Context, error)

	// Commit commits the transaction in the given context.
	Commit(ctx context.Context) error

	// Rollback rolls back the transaction in the given context. Rolling back
	// an already-finished transaction is a no-op.
	Rollback(ctx context.Context) error

	// Recipients returns a recipient repository bound to the transaction in ctx.
	Recipients(ctx context.Context) RecipientRepository

	// Contributions returns a contribution repository bound to the transaction in ctx.
	Contributions(ctx context.Context) ContributionRepository

	// Fundables returns a fundable repository bound to the transaction in ctx.
	Fundables(ctx context.Context) FundableRepository

	// Wallets returns a wallet repository bound to the transaction in ctx.
	Wallets(ctx context.Context) WalletRepository
}
