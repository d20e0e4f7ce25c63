package error

import (
	"errors"
	"fmt"
)

// Error codes for standardized API responses.
const (
	// 4xxx - client errors
	CodeInsufficientBalance        = 4001
	CodeFundsPending               = 4002
	CodeNotOnboarded               = 4003
	CodeInvalidAmount              = 4004
	CodeAllocationExceedsAvailable = 4005
	CodeItemNotOwned               = 4006
	CodeInvalidRequest             = 4007
	CodeDuplicateContribution      = 4008
	CodeRecipientNotFound          = 4040
	CodeEventNotFound              = 4041
	CodeFundableNotFound           = 4042

	// 5xxx - server errors
	CodeInternalServer = 5000
	CodePayoutFailed   = 5001
)

// Base error types.
var (
	// ErrInsufficientBalance is returned when a debit would push a balance
	// below zero.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrFundsPending is returned when the platform's own available balance
	// with its processor cannot cover a bank withdrawal yet.
	ErrFundsPending = errors.New("funds not yet settled with processor")

	// ErrNotOnboarded is returned when the recipient has not completed
	// onboarding for the requested payout rail.
	ErrNotOnboarded = errors.New("payout rail not configured")

	// ErrAllocationExceedsAvailable is returned when an allocation asks for
	// more than the event has accumulated.
	ErrAllocationExceedsAvailable = errors.New("allocation exceeds available event funds")

	// ErrItemNotOwned is returned when the target item belongs to a
	// different recipient than the event.
	ErrItemNotOwned = errors.New("item not owned by event recipient")

	// ErrEventNotFound is returned when the referenced event does not exist
	// or is not an event.
	ErrEventNotFound = errors.New("event not found")

	// ErrFundableNotFound is returned when a funding target does not exist.
	ErrFundableNotFound = errors.New("fundable not found")

	// ErrRecipientNotFound is returned when the recipient does not exist.
	ErrRecipientNotFound = errors.New("recipient not found")

	// ErrContributionNotFound is returned when no pending contribution
	// matches a provider reference. Settlement treats this as a silent
	// idempotent no-op, not a failure.
	ErrContributionNotFound = errors.New("no pending contribution for reference")

	// ErrContributionSettled guards illegal transitions out of a terminal
	// contribution state.
	ErrContributionSettled = errors.New("contribution already settled")

	// ErrDuplicateContribution is returned when a provider reference is
	// already taken by another contribution.
	ErrDuplicateContribution = errors.New("contribution with this provider reference already exists")

	// ErrInvalidAmount is returned for malformed or non-positive amounts.
	ErrInvalidAmount = errors.New("invalid amount format")

	// ErrNegativeAmount is returned for negative amount strings.
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// ErrInvalidRecipientID is returned when the recipient id is zero.
	ErrInvalidRecipientID = errors.New("recipient ID must be positive")

	// ErrInvalidProvider is returned for unknown capture providers.
	ErrInvalidProvider = errors.New("unknown payment provider")

	// ErrInvalidRail is returned for unknown payout rails.
	ErrInvalidRail = errors.New("unknown payout rail")

	// ErrPayoutFailed is returned when the external payout call failed after
	// the balance was reserved; the amount has been credited back and the
	// caller may retry.
	ErrPayoutFailed = errors.New("external payout failed, funds returned to balance")

	// ErrInvalidRequest is returned when the request format is invalid.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrWalletNotFound is returned when a wallet lookup misses.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrDatabaseConnection is returned for store connectivity problems.
	ErrDatabaseConnection = errors.New("database connection error")

	// ErrConstraintViolation is returned when a database constraint fires.
	ErrConstraintViolation = errors.New("database constraint violation")

	// ErrInternalServer is returned for unexpected server-side errors.
	ErrInternalServer = errors.New("internal server error")
)

// ErrorCode maps known errors to standardized numeric codes.
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrInsufficientBalance):
		return CodeInsufficientBalance
	case errors.Is(err, ErrFundsPending):
		return CodeFundsPending
	case errors.Is(err, ErrNotOnboarded):
		return CodeNotOnboarded
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrNegativeAmount):
		return CodeInvalidAmount
	case errors.Is(err, ErrAllocationExceedsAvailable):
		return CodeAllocationExceedsAvailable
	case errors.Is(err, ErrItemNotOwned):
		return CodeItemNotOwned
	case errors.Is(err, ErrDuplicateContribution):
		return CodeDuplicateContribution
	case errors.Is(err, ErrRecipientNotFound):
		return CodeRecipientNotFound
	case errors.Is(err, ErrEventNotFound):
		return CodeEventNotFound
	case errors.Is(err, ErrFundableNotFound):
		return CodeFundableNotFound
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrInvalidProvider), errors.Is(err, ErrInvalidRail), errors.Is(err, ErrInvalidRecipientID):
		return CodeInvalidRequest
	case errors.Is(err, ErrPayoutFailed):
		return CodePayoutFailed
	default:
		return CodeInternalServer
	}
}

// InsufficientBalanceError carries balance details for an insufficient
// balance rejection.
type InsufficientBalanceError struct {
	RecipientID uint64
	Requested   string
	Available   string
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for recipient %d: requested %s, available %s",
		e.RecipientID, e.Requested, e.Available)
}

// Is makes the wrapper match ErrInsufficientBalance.
func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// LogFields returns structured logging fields.
func (e *InsufficientBalanceError) LogFields() map[string]any {
	return map[string]any{
		"error_type":   "insufficient_balance",
		"recipient_id": e.RecipientID,
		"requested":    e.Requested,
		"available":    e.Available,
		"error_code":   CodeInsufficientBalance,
	}
}

// NewInsufficientBalanceError creates a detailed insufficient balance error.
func NewInsufficientBalanceError(recipientID uint64, requested, available string) error {
	return &InsufficientBalanceError{
		RecipientID: recipientID,
		Requested:   requested,
		Available:   available,
	}
}

// PayoutError describes a failed external payout call after funds had been
// reserved. It always wraps ErrPayoutFailed.
type PayoutError struct {
	RecipientID uint64
	Rail        string
	Amount      string
	Reference   string
	Err         error
}

func (e *PayoutError) Error() string {
	return fmt.Sprintf("payout of %s over %s failed for recipient %d (ref %s): %v",
		e.Amount, e.Rail, e.RecipientID, e.Reference, e.Err)
}

func (e *PayoutError) Unwrap() error { return e.Err }

// Is makes the wrapper match ErrPayoutFailed.
func (e *PayoutError) Is(target error) bool {
	return target == ErrPayoutFailed
}

// LogFields returns structured logging fields.
func (e *PayoutError) LogFields() map[string]any {
	return map[string]any{
		"error_type":   "payout_failed",
		"recipient_id": e.RecipientID,
		"rail":         e.Rail,
		"amount":       e.Amount,
		"reference":    e.Reference,
		"error":        e.Err.Error(),
		"error_code":   CodePayoutFailed,
	}
}

// NewPayoutError creates a PayoutError.
func NewPayoutError(recipientID uint64, rail, amount, reference string, err error) error {
	return &PayoutError{
		RecipientID: recipientID,
		Rail:        rail,
		Amount:      amount,
		Reference:   reference,
		Err:         err,
	}
}

// SettlementError describes a settlement processing failure for one provider
// reference.
type SettlementError struct {
	Provider              string
	ExternalTransactionID string
	Reason                string
	Err                   error
}

func (e *SettlementError) Error() string {
	return fmt.Sprintf("settlement failed for %s/%s: %s - %v",
		e.Provider, e.ExternalTransactionID, e.Reason, e.Err)
}

func (e *SettlementError) Unwrap() error { return e.Err }

// LogFields returns structured logging fields.
func (e *SettlementError) LogFields() map[string]any {
	return map[string]any{
		"error_type":              "settlement_error",
		"provider":                e.Provider,
		"external_transaction_id": e.ExternalTransactionID,
		"reason":                  e.Reason,
		"error":                   e.Err.Error(),
	}
}

// NewSettlementError creates a SettlementError.
func NewSettlementError(provider, externalTransactionID, reason string, err error) error {
	return &SettlementError{
		Provider:              provider,
		ExternalTransactionID: externalTransactionID,
		Reason:                reason,
		Err:                   err,
	}
}

// Classification helpers.

// IsInsufficientBalanceError reports whether err is an insufficient balance
// condition.
func IsInsufficientBalanceError(err error) bool {
	return errors.Is(err, ErrInsufficientBalance)
}

// IsFundsPendingError reports whether err is a platform-funds-pending
// rejection.
func IsFundsPendingError(err error) bool {
	return errors.Is(err, ErrFundsPending)
}

// IsNotOnboardedError reports whether err is a missing-rail rejection.
func IsNotOnboardedError(err error) bool {
	return errors.Is(err, ErrNotOnboarded)
}

// IsNotFoundError reports whether err is any "not found" condition.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrRecipientNotFound) ||
		errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrFundableNotFound) ||
		errors.Is(err, ErrContributionNotFound) ||
		errors.Is(err, ErrWalletNotFound)
}

// IsValidationError reports whether err is a synchronous validation
// rejection that must never be retried.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrNegativeAmount) ||
		errors.Is(err, ErrInvalidRecipientID) ||
		errors.Is(err, ErrInvalidProvider) ||
		errors.Is(err, ErrInvalidRail) ||
		errors.Is(err, ErrInvalidRequest)
}
