package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wishloop/payout-engine/internal/domain/entity"
	domainerr "github.com/wishloop/payout-engine/internal/domain/error"
	coreport "github.com/wishloop/payout-engine/internal/domain/port/core"
	"github.com/wishloop/payout-engine/internal/domain/usecase/settlement"
	"github.com/wishloop/payout-engine/internal/infrastructure/adapter/api/dto"
)

// signatureHeader carries the hex HMAC-SHA256 of the raw body.
const signatureHeader = "X-Webhook-Signature"

// WebhookHandler receives settlement events from capture providers.
type WebhookHandler struct {
	processor *settlement.Processor
	secrets   map[string]string
	logger    coreport.Logger
}

// NewWebhookHandler creates a webhook handler. secrets maps provider name to
// its shared HMAC secret.
func NewWebhookHandler(processor *settlement.Processor, secrets map[string]string, logger coreport.Logger) *WebhookHandler {
	return &WebhookHandler{
		processor: processor,
		secrets:   secrets,
		logger:    logger,
	}
}

// Handle handles the POST /webhooks/{provider} endpoint.
//
// Deliveries are at-least-once: the processor treats replays as no-ops, so a
// 502 here is safe to answer with a redelivery.
func (h *WebhookHandler) Handle(c *gin.Context) {
	provider := c.Param("provider")

	secret, ok := h.secrets[provider]
	if !ok || !entity.IsValidProvider(provider) {
		h.logger.Warn("Webhook for unknown provider", map[string]any{
			"provider":  provider,
			"client_ip": c.ClientIP(),
		})
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidProvider),
			Message: "Unknown provider",
		})
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Unreadable request body",
		})
		return
	}

	if !verifySignature(body, secret, c.GetHeader(signatureHeader)) {
		h.logger.Warn("Webhook signature mismatch", map[string]any{
			"provider":  provider,
			"client_ip": c.ClientIP(),
		})
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid signature",
		})
		return
	}

	var req dto.WebhookRequest
	if err := json.Unmarshal(body, &req); err != nil || req.EventKind == "" || req.TransactionID == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid webhook payload",
		})
		return
	}

	ctx := c.Request.Context()
	switch req.EventKind {
	case "captured", "settled":
		err = h.processor.Settle(ctx, provider, req.TransactionID)
	case "failed", "declined":
		cause := req.FailureCause
		if cause == "" {
			cause = req.EventKind
		}
		err = h.processor.Fail(ctx, provider, req.TransactionID, cause)
	case "disputed":
		// Disputes are handled out of band; acknowledge so the provider
		// stops redelivering.
		h.logger.Warn("Dispute webhook received", map[string]any{
			"provider":                provider,
			"external_transaction_id": req.TransactionID,
		})
	default:
		h.logger.Debug("Ignoring unhandled webhook kind", map[string]any{
			"provider":   provider,
			"event_kind": req.EventKind,
		})
	}

	if err != nil {
		if domainerr.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Code:    domainerr.ErrorCode(err),
				Message: err.Error(),
			})
			return
		}
		h.logger.Error("Webhook processing failed", map[string]any{
			"provider":                provider,
			"event_kind":              req.EventKind,
			"external_transaction_id": req.TransactionID,
			"error":                   err.Error(),
		})
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(err),
			Message: "Settlement processing failed",
		})
		return
	}

	c.JSON(http.StatusOK, dto.WebhookResponse{Received: true})
}

// verifySignature compares the hex HMAC-SHA256 of body in constant time.
func verifySignature(body []byte, secret, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
