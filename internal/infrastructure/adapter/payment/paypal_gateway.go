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

// PayPalGateway sends money to a recipient's PayPal account via the Payouts
// API.
type PayPalGateway struct {
	client *apiClient
	logger coreport.Logger
}

// NewPayPalGateway creates a PayPal payout gateway.
func NewPayPalGateway(baseURL, apiKey string, timeout time.Duration, logger coreport.Logger) *PayPalGateway {
	return &PayPalGateway{
		client: &apiClient{
			baseURL:    baseURL,
			apiKey:     apiKey,
			httpClient: &http.Client{Timeout: timeout},
		},
		logger: logger,
	}
}

// Rail names the payout rail this gateway serves.
func (g *PayPalGateway) Rail() entity.PayoutRail {
	return entity.RailPayPal
}

type paypalPayoutRequest struct {
	SenderBatchID string `json:"sender_batch_id"`
	ReceiverEmail string `json:"receiver_email"`
	Value         string `json:"value"`
	Currency      string `json:"currency"`
	Note          string `json:"note"`
}

type paypalPayoutResponse struct {
	BatchID string `json:"payout_batch_id"`
	Status  string `json:"batch_status"`
}

// Payout executes the PayPal payout and returns the payout batch id.
func (g *PayPalGateway) Payout(ctx context.Context, req paymentport.PayoutRequest) (string, error) {
	body := paypalPayoutRequest{
		SenderBatchID: req.Reference,
		ReceiverEmail: req.Destination,
		Value:         entity.FormatCents(req.AmountCents),
		Currency:      "USD",
		Note:          req.Description,
	}

	var resp paypalPayoutResponse
	if err := g.client.postJSON(ctx, "/v1/payments/payouts", body, &resp); err != nil {
		return "", err
	}

	if resp.Status == "DENIED" || resp.Status == "CANCELED" {
		return "", fmt.Errorf("paypal payout %s rejected with status %s", resp.BatchID, resp.Status)
	}

	g.logger.Info("PayPal payout accepted", map[string]any{
		"reference": req.Reference,
		"batch_id":  resp.BatchID,
		"status":    resp.Status,
	})
	return resp.BatchID, nil
}
