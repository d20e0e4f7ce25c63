package payment

import (
	"context"
	"net/http"
	"time"

	coreport "github.com/wishloop/payout-engine/internal/domain/port/core"
)

// PlatformBalanceClient reads the platform's available balance from the card
// processor. Bank withdrawals are gated on this so the platform never
// forwards money the processor has not settled yet.
type PlatformBalanceClient struct {
	client *apiClient
	logger coreport.Logger
}

// NewPlatformBalanceClient creates a platform balance client.
func NewPlatformBalanceClient(baseURL, apiKey string, timeout time.Duration, logger coreport.Logger) *PlatformBalanceClient {
	return &PlatformBalanceClient{
		client: &apiClient{
			baseURL:    baseURL,
			apiKey:     apiKey,
			httpClient: &http.Client{Timeout: timeout},
		},
		logger: logger,
	}
}

type balanceResponse struct {
	AvailableCents int64  `json:"available_cents"`
	Currency       string `json:"currency"`
}

// AvailableCents returns the platform's settled available balance.
func (c *PlatformBalanceClient) AvailableCents(ctx context.Context) (int64, error) {
	var resp balanceResponse
	if err := c.client.getJSON(ctx, "/v1/balance", &resp); err != nil {
		c.logger.Warn("Platform balance read failed", map[string]any{"error": err.Error()})
		return 0, err
	}
	return resp.AvailableCents, nil
}
