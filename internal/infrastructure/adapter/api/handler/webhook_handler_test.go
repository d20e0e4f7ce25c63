package handler

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wishloop/payout-engine/internal/domain/entity"
	"github.com/wishloop/payout-engine/internal/domain/usecase/settlement"
	"github.com/wishloop/payout-engine/internal/infrastructure/adapter/logger"
	mockcore "github.com/wishloop/payout-engine/mocks/port/core"
	mockpersistence "github.com/wishloop/payout-engine/mocks/port/persistence"
)

const testSecret = "test-webhook-secret"

func newWebhookTestServer(t *testing.T) (*gin.Engine, *mockpersistence.MemoryUnitOfWork) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tp := mockcore.NewFixedTimeProvider()
	uow := mockpersistence.NewMemoryUnitOfWork(tp)
	processor := settlement.NewProcessor(uow, nil, logger.NewNoopLogger(), tp)
	h := NewWebhookHandler(processor, map[string]string{"stripe": testSecret, "paypal": testSecret}, logger.NewNoopLogger())

	router := gin.New()
	router.POST("/webhooks/:provider", h.Handle)
	return router, uow
}

func seedPendingContribution(t *testing.T, uow *mockpersistence.MemoryUnitOfWork, externalTxID string) {
	t.Helper()
	tp := mockcore.NewFixedTimeProvider()
	r, err := entity.NewRecipient(1, tp)
	require.NoError(t, err)
	uow.AddRecipient(r)
	uow.AddFundable(&entity.Fundable{ID: 10, OwnerID: 1, Kind: entity.FundableItem})
	uow.AddContribution(&entity.Contribution{
		FundableID:            10,
		AmountCents:           10000,
		Provider:              entity.ProviderStripe,
		ExternalTransactionID: externalTxID,
		Status:                entity.ContributionPending,
		CreatedAt:             tp.Now(),
	})
}

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(router *gin.Engine, provider string, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/"+provider, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Webhook-Signature", signature)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhookHandler_SettlesOnCaptured(t *testing.T) {
	router, uow := newWebhookTestServer(t)
	seedPendingContribution(t, uow, "pi_001")

	body, _ := json.Marshal(map[string]string{
		"eventKind":     "captured",
		"transactionId": "pi_001",
	})

	w := postWebhook(router, "stripe", body, sign(body, testSecret))

	assert.Equal(t, http.StatusOK, w.Code)
	c, ok := uow.Contribution(1)
	require.True(t, ok)
	assert.Equal(t, entity.ContributionCompleted, c.Status)
}

func TestWebhookHandler_FailsOnDeclined(t *testing.T) {
	router, uow := newWebhookTestServer(t)
	seedPendingContribution(t, uow, "pi_001")

	body, _ := json.Marshal(map[string]string{
		"eventKind":     "declined",
		"transactionId": "pi_001",
		"failureCause":  "card_declined",
	})

	w := postWebhook(router, "stripe", body, sign(body, testSecret))

	assert.Equal(t, http.StatusOK, w.Code)
	c, _ := uow.Contribution(1)
	assert.Equal(t, entity.ContributionFailed, c.Status)
	assert.Equal(t, "card_declined", c.FailureCause)
}

func TestWebhookHandler_ReplayReturnsOK(t *testing.T) {
	router, uow := newWebhookTestServer(t)
	seedPendingContribution(t, uow, "pi_001")

	body, _ := json.Marshal(map[string]string{
		"eventKind":     "captured",
		"transactionId": "pi_001",
	})

	first := postWebhook(router, "stripe", body, sign(body, testSecret))
	second := postWebhook(router, "stripe", body, sign(body, testSecret))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)

	r, _ := uow.Recipient(1)
	assert.Equal(t, int64(10000), r.ReceivedCents())
	assert.Equal(t, uint64(1), r.ContributionsReceivedCount)
}

func TestWebhookHandler_RejectsBadSignature(t *testing.T) {
	router, uow := newWebhookTestServer(t)
	seedPendingContribution(t, uow, "pi_001")

	body, _ := json.Marshal(map[string]string{
		"eventKind":     "captured",
		"transactionId": "pi_001",
	})

	testCases := []struct {
		name      string
		signature string
	}{
		{name: "missing signature", signature: ""},
		{name: "wrong secret", signature: sign(body, "wrong-secret")},
		{name: "garbage signature", signature: "deadbeef"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := postWebhook(router, "stripe", body, tc.signature)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	// Nothing settled.
	c, _ := uow.Contribution(1)
	assert.Equal(t, entity.ContributionPending, c.Status)
}

func TestWebhookHandler_RejectsUnknownProvider(t *testing.T) {
	router, _ := newWebhookTestServer(t)

	body, _ := json.Marshal(map[string]string{
		"eventKind":     "captured",
		"transactionId": "pi_001",
	})

	w := postWebhook(router, "square", body, sign(body, testSecret))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookHandler_RejectsBadPayload(t *testing.T) {
	router, _ := newWebhookTestServer(t)

	testCases := []struct {
		name string
		body []byte
	}{
		{name: "not json", body: []byte("not-json")},
		{name: "missing event kind", body: []byte(`{"transactionId":"pi_001"}`)},
		{name: "missing transaction id", body: []byte(`{"eventKind":"captured"}`)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := postWebhook(router, "stripe", tc.body, sign(tc.body, testSecret))

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestWebhookHandler_AcknowledgesDisputesAndUnknownKinds(t *testing.T) {
	router, uow := newWebhookTestServer(t)
	seedPendingContribution(t, uow, "pi_001")

	for _, kind := range []string{"disputed", "refund.created"} {
		body, _ := json.Marshal(map[string]string{
			"eventKind":     kind,
			"transactionId": "pi_001",
		})

		w := postWebhook(router, "stripe", body, sign(body, testSecret))

		assert.Equal(t, http.StatusOK, w.Code, kind)
	}

	// Neither touched the contribution.
	c, _ := uow.Contribution(1)
	assert.Equal(t, entity.ContributionPending, c.Status)
}
