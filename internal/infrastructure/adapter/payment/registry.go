package payment

import (
	"fmt"

	"github.com/wishloop/payout-engine/internal/domain/entity"
	errs "github.com/wishloop/payout-engine/internal/domain/error"
	paymentport "github.com/wishloop/payout-engine/internal/domain/port/payment"
)

// Registry resolves payout gateways by rail.
type Registry struct {
	gateways map[entity.PayoutRail]paymentport.PayoutGateway
}

// NewRegistry builds a registry from the given gateways.
func NewRegistry(gateways ...paymentport.PayoutGateway) *Registry {
	m := make(map[entity.PayoutRail]paymentport.PayoutGateway, len(gateways))
	for _, g := range gateways {
		m[g.Rail()] = g
	}
	return &Registry{gateways: m}
}

// Gateway returns the gateway for the rail, or ErrInvalidRail.
func (r *Registry) Gateway(rail entity.PayoutRail) (paymentport.PayoutGateway, error) {
	g, ok := r.gateways[rail]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidRail, rail)
	}
	return g, nil
}
