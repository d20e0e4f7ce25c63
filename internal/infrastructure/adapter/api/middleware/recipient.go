package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainerr "github.com/wishloop/payout-engine/internal/domain/error"
	"github.com/wishloop/payout-engine/internal/infrastructure/adapter/api/dto"
)

// recipientIDKey is the gin context key the authenticated recipient id is
// stored under.
const recipientIDKey = "recipientID"

// RequireRecipient extracts the authenticated recipient from the
// X-Recipient-ID header the API gateway stamps after token verification.
// Requests without it are rejected.
func RequireRecipient() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-Recipient-ID")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Code:    domainerr.ErrorCode(domainerr.ErrInvalidRecipientID),
				Message: "Missing required header: X-Recipient-ID",
			})
			return
		}

		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{
				Code:    domainerr.ErrorCode(domainerr.ErrInvalidRecipientID),
				Message: "Invalid recipient ID format",
			})
			return
		}

		c.Set(recipientIDKey, id)
		c.Next()
	}
}

// RecipientID returns the recipient id RequireRecipient stored on the
// context. Zero means the middleware did not run.
func RecipientID(c *gin.Context) uint64 {
	id, ok := c.Get(recipientIDKey)
	if !ok {
		return 0
	}
	return id.(uint64)
}
