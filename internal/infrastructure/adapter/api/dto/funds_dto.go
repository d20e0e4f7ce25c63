package dto

// WithdrawRequest asks for a manual withdrawal over one payout rail.
type WithdrawRequest struct {
	Amount  string `json:"amount" binding:"required"`
	Rail    string `json:"rail" binding:"required,oneof=bank paypal venmo"`
	Instant bool   `json:"instant"`
}

// WithdrawResponse reports the remaining balance after a withdrawal.
type WithdrawResponse struct {
	Balance           string `json:"balance"`
	ExternalReference string `json:"externalReference"`
}

// AllocateRequest moves event funds into an item.
type AllocateRequest struct {
	EventID uint64 `json:"eventId" binding:"required"`
	ItemID  uint64 `json:"itemId" binding:"required"`
	Amount  string `json:"amount" binding:"required"`
}

// AllocateResponse acknowledges a completed allocation.
type AllocateResponse struct {
	Success bool `json:"success"`
}

// MoveToWalletRequest moves received funds into the spending wallet.
type MoveToWalletRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// MoveToWalletResponse reports both balances after the move.
type MoveToWalletResponse struct {
	WalletBalance     string `json:"walletBalance"`
	RemainingReceived string `json:"remainingReceived"`
}

// BalanceResponse reports a recipient's received and wallet balances.
type BalanceResponse struct {
	Balance       string `json:"balance"`
	WalletBalance string `json:"walletBalance"`
}
