package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wishloop/payout-engine/internal/domain/entity"
	domainerr "github.com/wishloop/payout-engine/internal/domain/error"
	coreport "github.com/wishloop/payout-engine/internal/domain/port/core"
	"github.com/wishloop/payout-engine/internal/domain/usecase/allocation"
	"github.com/wishloop/payout-engine/internal/domain/usecase/payout"
	walletUseCase "github.com/wishloop/payout-engine/internal/domain/usecase/wallet"
	"github.com/wishloop/payout-engine/internal/infrastructure/adapter/api/dto"
	"github.com/wishloop/payout-engine/internal/infrastructure/adapter/api/middleware"
)

// FundsHandler handles the authenticated recipient fund operations.
type FundsHandler struct {
	withdrawService   *payout.WithdrawService
	allocationService *allocation.Service
	walletService     *walletUseCase.Service
	logger            coreport.Logger
}

// NewFundsHandler creates a funds handler instance.
func NewFundsHandler(
	withdrawService *payout.WithdrawService,
	allocationService *allocation.Service,
	walletService *walletUseCase.Service,
	logger coreport.Logger,
) *FundsHandler {
	return &FundsHandler{
		withdrawService:   withdrawService,
		allocationService: allocationService,
		walletService:     walletService,
		logger:            logger,
	}
}

// Withdraw handles the POST /funds/withdraw endpoint.
func (h *FundsHandler) Withdraw(c *gin.Context) {
	recipientID := middleware.RecipientID(c)

	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	amountCents, err := entity.ParsePositiveAmount(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(err),
			Message: "Invalid amount: " + req.Amount,
		})
		return
	}

	result, err := h.withdrawService.Withdraw(
		c.Request.Context(),
		recipientID,
		amountCents,
		entity.PayoutRail(req.Rail),
		payout.WithdrawOptions{Instant: req.Instant},
	)
	if err != nil {
		h.respondError(c, recipientID, err)
		return
	}

	c.JSON(http.StatusOK, dto.WithdrawResponse{
		Balance:           result.NewBalance,
		ExternalReference: result.ExternalReference,
	})
}

// Allocate handles the POST /funds/allocate endpoint.
func (h *FundsHandler) Allocate(c *gin.Context) {
	recipientID := middleware.RecipientID(c)

	var req dto.AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	amountCents, err := entity.ParsePositiveAmount(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(err),
			Message: "Invalid amount: " + req.Amount,
		})
		return
	}

	if err := h.allocationService.Allocate(c.Request.Context(), recipientID, req.EventID, req.ItemID, amountCents); err != nil {
		h.respondError(c, recipientID, err)
		return
	}

	c.JSON(http.StatusOK, dto.AllocateResponse{Success: true})
}

// MoveToWallet handles the POST /funds/to-wallet endpoint.
func (h *FundsHandler) MoveToWallet(c *gin.Context) {
	recipientID := middleware.RecipientID(c)

	var req dto.MoveToWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	amountCents, err := entity.ParsePositiveAmount(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(err),
			Message: "Invalid amount: " + req.Amount,
		})
		return
	}

	result, err := h.walletService.MoveToWallet(c.Request.Context(), recipientID, amountCents)
	if err != nil {
		h.respondError(c, recipientID, err)
		return
	}

	c.JSON(http.StatusOK, dto.MoveToWalletResponse{
		WalletBalance:     entity.FormatCents(result.WalletBalanceCents),
		RemainingReceived: entity.FormatCents(result.RemainingReceivedCents),
	})
}

// GetBalance handles the GET /funds/balance endpoint.
func (h *FundsHandler) GetBalance(c *gin.Context) {
	recipientID := middleware.RecipientID(c)

	result, err := h.walletService.Balances(c.Request.Context(), recipientID)
	if err != nil {
		h.respondError(c, recipientID, err)
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{
		Balance:       entity.FormatCents(result.ReceivedCents),
		WalletBalance: entity.FormatCents(result.WalletCents),
	})
}

// respondError maps domain errors to HTTP responses.
func (h *FundsHandler) respondError(c *gin.Context, recipientID uint64, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case domainerr.IsInsufficientBalanceError(err),
		domainerr.IsNotOnboardedError(err),
		errors.Is(err, domainerr.ErrAllocationExceedsAvailable),
		errors.Is(err, domainerr.ErrItemNotOwned),
		domainerr.IsValidationError(err):
		status = http.StatusBadRequest
		message = err.Error()
	case domainerr.IsFundsPendingError(err):
		status = http.StatusConflict
		message = err.Error()
	case domainerr.IsNotFoundError(err):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, domainerr.ErrPayoutFailed):
		status = http.StatusBadGateway
		message = err.Error()
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Fund operation failed", map[string]any{
			"recipient_id": recipientID,
			"path":         c.Request.URL.Path,
			"error":        err.Error(),
		})
	}

	c.JSON(status, dto.ErrorResponse{
		Code:    domainerr.ErrorCode(err),
		Message: message,
	})
}
