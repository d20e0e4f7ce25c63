package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	coreport "github.com/wishloop/payout-engine/internal/domain/port/core"
	paymentport "github.com/wishloop/payout-engine/internal/domain/port/payment"
)

// HTTPNotifier delivers receipts through the platform's notification
// service, which fans out to email and WhatsApp. Delivery is best-effort;
// callers log failures and move on.
type HTTPNotifier struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     coreport.Logger
}

// NewHTTPNotifier creates a notifier backed by the notification service.
func NewHTTPNotifier(baseURL, apiKey string, timeout time.Duration, logger coreport.Logger) *HTTPNotifier {
	return &HTTPNotifier{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type contributionReceipt struct {
	RecipientID   uint64  `json:"recipient_id"`
	ContributorID *uint64 `json:"contributor_id,omitempty"`
	FundableID    uint64  `json:"fundable_id"`
	Amount        string  `json:"amount"`
	Net           string  `json:"net"`
}

type withdrawalReceipt struct {
	RecipientID uint64 `json:"recipient_id"`
	Amount      string `json:"amount"`
	Rail        string `json:"rail"`
	Reference   string `json:"reference"`
}

// ContributionSettled sends a settlement receipt to the recipient.
func (n *HTTPNotifier) ContributionSettled(ctx context.Context, notice paymentport.ContributionNotice) error {
	return n.post(ctx, "/v1/notifications/contribution", contributionReceipt{
		RecipientID:   notice.RecipientID,
		ContributorID: notice.ContributorID,
		FundableID:    notice.FundableID,
		Amount:        notice.Amount,
		Net:           notice.Net,
	})
}

// WithdrawalCompleted sends a withdrawal receipt to the recipient.
func (n *HTTPNotifier) WithdrawalCompleted(ctx context.Context, notice paymentport.WithdrawalNotice) error {
	return n.post(ctx, "/v1/notifications/withdrawal", withdrawalReceipt{
		RecipientID: notice.RecipientID,
		Amount:      notice.Amount,
		Rail:        notice.Rail,
		Reference:   notice.Reference,
	})
}

func (n *HTTPNotifier) post(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.apiKey)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notification call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("notification service returned status %d: %s", resp.StatusCode, string(msg))
	}
	return nil
}

// NoopNotifier discards all receipts. Used when the notification service is
// not configured.
type NoopNotifier struct{}

// NewNoopNotifier creates a notifier that does nothing.
func NewNoopNotifier() *NoopNotifier {
	return &NoopNotifier{}
}

// ContributionSettled does nothing.
func (n *NoopNotifier) ContributionSettled(ctx context.Context, notice paymentport.ContributionNotice) error {
	return nil
}

// WithdrawalCompleted does nothing.
func (n *NoopNotifier) WithdrawalCompleted(ctx context.Context, notice paymentport.WithdrawalNotice) error {
	return nil
}
