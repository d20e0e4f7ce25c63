package payment

import (
	"context"

	"github.com/wishloop/payout-engine/internal/domain/entity"
)

// PayoutRequest is an instruction to move money to an external account.
type PayoutRequest struct {
	// Reference is our generated id for the transfer, sent to the provider
	// for reconciliation.
	Reference string
	// Destination is the rail-specific account identifier: bank-connect id,
	// PayPal email or Venmo handle.
	Destination string
	AmountCents int64
	Description string
}

// PayoutGateway moves money out over one payout rail. Implementations must
// honor the context deadline; a timed-out call is a failure, never a
// success.
type PayoutGateway interface {
	// Rail names the payout rail this gateway serves.
	Rail() entity.PayoutRail

	// Payout executes the external transfer and returns the provider's
	// reference id.
	Payout(ctx context.Context, req PayoutRequest) (string, error)
}

// GatewayRegistry resolves the gateway for a rail.
type GatewayRegistry interface {
	// Gateway returns the gateway for the rail, or ErrInvalidRail.
	Gateway(rail entity.PayoutRail) (PayoutGateway, error)
}

// PlatformBalanceProvider reads the platform's own aggregate available
// balance with its card processor. Bank withdrawals cannot forward money to
// a recipient faster than the processor has settled it to the platform.
type PlatformBalanceProvider interface {
	AvailableCents(ctx context.Context) (int64, error)
}
