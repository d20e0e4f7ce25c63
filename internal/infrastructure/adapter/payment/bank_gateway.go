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

// BankGateway forwards money to a recipient's connected bank account through
// the card processor's transfer API.
type BankGateway struct {
	client *apiClient
	logger coreport.Logger
}

// NewBankGateway creates a bank transfer gateway.
func NewBankGateway(baseURL, apiKey string, timeout time.Duration, logger coreport.Logger) *BankGateway {
	return &BankGateway{
		client: &apiClient{
			baseURL:    baseURL,
			apiKey:     apiKey,
			httpClient: &http.Client{Timeout: timeout},
		},
		logger: logger,
	}
}

// Rail names the payout rail this gateway serves.
func (g *BankGateway) Rail() entity.PayoutRail {
	return entity.RailBank
}

type bankTransferRequest struct {
	Reference          string `json:"reference"`
	DestinationAccount string `json:"destination_account"`
	AmountCents        int64  `json:"amount_cents"`
	Currency           string `json:"currency"`
	Description        string `json:"description"`
}

type bankTransferResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Payout executes the bank transfer and returns the processor's transfer id.
func (g *BankGateway) Payout(ctx context.Context, req paymentport.PayoutRequest) (string, error) {
	body := bankTransferRequest{
		Reference:          req.Reference,
		DestinationAccount: req.Destination,
		AmountCents:        req.AmountCents,
		Currency:           "usd",
		Description:        req.Description,
	}

	var resp bankTransferResponse
	if err := g.client.postJSON(ctx, "/v1/transfers", body, &resp); err != nil {
		return "", err
	}

	if resp.Status == "failed" || resp.Status == "canceled" {
		return "", fmt.Errorf("bank transfer %s rejected with status %s", resp.ID, resp.Status)
	}

	g.logger.Info("Bank transfer accepted", map[string]any{
		"reference":   req.Reference,
		"transfer_id": resp.ID,
		"status":      resp.Status,
	})
	return resp.ID, nil
}
