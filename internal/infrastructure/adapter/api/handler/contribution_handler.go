package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainerr "github.com/wishloop/payout-engine/internal/domain/error"
	coreport "github.com/wishloop/payout-engine/internal/domain/port/core"
	contributionUseCase "github.com/wishloop/payout-engine/internal/domain/usecase/contribution"
	"github.com/wishloop/payout-engine/internal/infrastructure/adapter/api/dto"
)

// ContributionHandler opens pending contributions for the checkout flow.
type ContributionHandler struct {
	service *contributionUseCase.Service
	logger  coreport.Logger
}

// NewContributionHandler creates a contribution handler instance.
func NewContributionHandler(service *contributionUseCase.Service, logger coreport.Logger) *ContributionHandler {
	return &ContributionHandler{service: service, logger: logger}
}

// Create handles the POST /contributions endpoint.
func (h *ContributionHandler) Create(c *gin.Context) {
	var req dto.ContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	contribution, err := h.service.Register(c.Request.Context(), contributionUseCase.RegisterInput{
		FundableID:            req.FundableID,
		ContributorID:         req.ContributorID,
		Amount:                req.Amount,
		Provider:              req.Provider,
		ExternalTransactionID: req.TransactionID,
	})
	if err != nil {
		status := http.StatusInternalServerError
		message := "Internal server error"
		switch {
		case errors.Is(err, domainerr.ErrDuplicateContribution):
			status = http.StatusConflict
			message = err.Error()
		case domainerr.IsValidationError(err):
			status = http.StatusBadRequest
			message = err.Error()
		case domainerr.IsNotFoundError(err):
			status = http.StatusNotFound
			message = err.Error()
		}
		if status == http.StatusInternalServerError {
			h.logger.Error("Contribution registration failed", map[string]any{
				"fundable_id": req.FundableID,
				"provider":    req.Provider,
				"error":       err.Error(),
			})
		}
		c.JSON(status, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(err),
			Message: message,
		})
		return
	}

	c.JSON(http.StatusCreated, dto.ContributionResponse{
		ID:     contribution.ID,
		Status: string(contribution.Status),
	})
}
