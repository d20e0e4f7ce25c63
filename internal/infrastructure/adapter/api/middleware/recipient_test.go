package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRecipientTestServer() (*gin.Engine, *uint64) {
	gin.SetMode(gin.TestMode)
	var seen uint64

	router := gin.New()
	router.GET("/protected", RequireRecipient(), func(c *gin.Context) {
		seen = RecipientID(c)
		c.Status(http.StatusOK)
	})
	return router, &seen
}

func TestRequireRecipient(t *testing.T) {
	testCases := []struct {
		name           string
		header         string
		expectedStatus int
		expectedID     uint64
	}{
		{name: "valid id", header: "42", expectedStatus: http.StatusOK, expectedID: 42},
		{name: "missing header", header: "", expectedStatus: http.StatusUnauthorized},
		{name: "non-numeric", header: "abc", expectedStatus: http.StatusBadRequest},
		{name: "zero", header: "0", expectedStatus: http.StatusBadRequest},
		{name: "negative", header: "-1", expectedStatus: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router, seen := newRecipientTestServer()

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("X-Recipient-ID", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.expectedStatus, w.Code)
			if tc.expectedStatus == http.StatusOK {
				assert.Equal(t, tc.expectedID, *seen)
			}
		})
	}
}

func TestRecipientID_WithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Equal(t, uint64(0), RecipientID(c))
}
