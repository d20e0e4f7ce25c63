package payment

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/wishloop/payout-engine/internal/domain/entity"
	coreport "github.com/wishloop/payout-engine/internal/domain/port/core"
	paymentport "github.com/wishloop/payout-engine/internal/domain/port/payment"
)

// VenmoGateway sends money to a recipient's Venmo handle. Venmo is a
// manual-withdrawal rail only; settlement never routes here automatically.
type VenmoGateway struct {
	client *apiClient
	logger coreport.Logger
}

// NewVenmoGateway creates a Venmo payout gateway.
func NewVenmoGateway(baseURL, apiKey string, timeout time.Duration, logger coreport.Logger) *VenmoGateway {
	return &VenmoGateway{
		client: &apiClient{
			baseURL:    baseURL,
			apiKey:     apiKey,
			httpClient: &http.Client{Timeout: timeout},
		},
		logger: logger,
	}
}

// Rail names the payout rail this gateway serves.
func (g *VenmoGateway) Rail() entity.PayoutRail {
	return entity.RailVenmo
}

type venmoPaymentRequest struct {
	IdempotencyKey string `json:"idempotency_key"`
	TargetHandle   string `json:"target_handle"`
	AmountCents    int64  `json:"amount_cents"`
	Note           string `json:"note"`
}

type venmoPaymentResponse struct {
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
}

// Payout executes the Venmo payment and returns the payment id.
func (g *VenmoGateway) Payout(ctx context.Context, req paymentport.PayoutRequest) (string, error) {
	body := venmoPaymentRequest{
		IdempotencyKey: req.Reference,
		TargetHandle:   req.Destination,
		AmountCents:    req.AmountCents,
		Note:           req.Description,
	}

	var resp venmoPaymentResponse
	if err := g.client.postJSON(ctx, "/v1/payments", body, &resp); err != nil {
		return "", err
	}

	if resp.Status == "failed" {
		return "", fmt.Errorf("venmo payment %s rejected", resp.PaymentID)
	}

	g.logger.Info("Venmo payment accepted", map[string]any{
		"reference":  req.Reference,
		"payment_id": resp.PaymentID,
		"status":     resp.Status,
	})
	return resp.PaymentID, nil
}
