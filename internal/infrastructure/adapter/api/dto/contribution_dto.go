package dto

// ContributionRequest opens a pending contribution at checkout.
type ContributionRequest struct {
	FundableID    uint64  `json:"fundableId" binding:"required"`
	ContributorID *uint64 `json:"contributorId,omitempty"`
	Amount        string  `json:"amount" binding:"required"`
	Provider      string  `json:"provider" binding:"required,oneof=stripe paypal"`
	TransactionID string  `json:"transactionId,omitempty"`
}

// ContributionResponse acknowledges the opened contribution.
type ContributionResponse struct {
	ID     uint64 `json:"id"`
	Status string `json:"status"`
}
