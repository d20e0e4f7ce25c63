package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wishloop/payout-engine/internal/domain/entity"
	contributionUseCase "github.com/wishloop/payout-engine/internal/domain/usecase/contribution"
	"github.com/wishloop/payout-engine/internal/infrastructure/adapter/api/dto"
	"github.com/wishloop/payout-engine/internal/infrastructure/adapter/logger"
	mockcore "github.com/wishloop/payout-engine/mocks/port/core"
	mockpersistence "github.com/wishloop/payout-engine/mocks/port/persistence"
)

func newContributionTestServer(t *testing.T) (*gin.Engine, *mockpersistence.MemoryUnitOfWork) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tp := mockcore.NewFixedTimeProvider()
	uow := mockpersistence.NewMemoryUnitOfWork(tp)
	uow.AddFundable(&entity.Fundable{ID: 10, OwnerID: 1, Kind: entity.FundableItem})

	service := contributionUseCase.NewService(uow, logger.NewNoopLogger(), tp)
	h := NewContributionHandler(service, logger.NewNoopLogger())

	router := gin.New()
	router.POST("/contributions", h.Create)
	return router, uow
}

func postContribution(router *gin.Engine, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/contributions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestContributionHandler_Create(t *testing.T) {
	router, uow := newContributionTestServer(t)

	body, _ := json.Marshal(map[string]any{
		"fundableId": 10,
		"amount":     "25.00",
		"provider":   "stripe",
	})

	w := postContribution(router, body)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp dto.ContributionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(entity.ContributionPending), resp.Status)

	c, ok := uow.Contribution(resp.ID)
	require.True(t, ok)
	assert.Equal(t, int64(2500), c.AmountCents)
	assert.Empty(t, c.ExternalTransactionID)
}

func TestContributionHandler_DuplicateReference(t *testing.T) {
	router, _ := newContributionTestServer(t)

	body, _ := json.Marshal(map[string]any{
		"fundableId":    10,
		"amount":        "25.00",
		"provider":      "stripe",
		"transactionId": "pi_001",
	})

	first := postContribution(router, body)
	second := postContribution(router, body)

	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusConflict, second.Code)
}

func TestContributionHandler_RepeatedCheckoutWithoutReference(t *testing.T) {
	router, _ := newContributionTestServer(t)

	body, _ := json.Marshal(map[string]any{
		"fundableId": 10,
		"amount":     "25.00",
		"provider":   "stripe",
	})

	// No provider reference yet, so repeated checkouts never conflict.
	first := postContribution(router, body)
	second := postContribution(router, body)

	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
}

func TestContributionHandler_UnknownFundable(t *testing.T) {
	router, _ := newContributionTestServer(t)

	body, _ := json.Marshal(map[string]any{
		"fundableId": 99,
		"amount":     "25.00",
		"provider":   "stripe",
	})

	w := postContribution(router, body)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestContributionHandler_RejectsBadRequests(t *testing.T) {
	router, _ := newContributionTestServer(t)

	testCases := []struct {
		name string
		body []byte
	}{
		{name: "not json", body: []byte("not-json")},
		{name: "missing fundable id", body: []byte(`{"amount":"10.00","provider":"stripe"}`)},
		{name: "missing amount", body: []byte(`{"fundableId":10,"provider":"stripe"}`)},
		{name: "unknown provider", body: []byte(`{"fundableId":10,"amount":"10.00","provider":"square"}`)},
		{name: "negative amount", body: []byte(`{"fundableId":10,"amount":"-5.00","provider":"stripe"}`)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := postContribution(router, tc.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
