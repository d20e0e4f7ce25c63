package dto

// WebhookRequest is the settlement event a capture provider delivers.
type WebhookRequest struct {
	EventKind     string `json:"eventKind" binding:"required"`
	TransactionID string `json:"transactionId" binding:"required"`
	FailureCause  string `json:"failureCause,omitempty"`
}

// WebhookResponse acknowledges a processed delivery.
type WebhookResponse struct {
	Received bool `json:"received"`
}
