package wallet

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkly/internal/database/dbtest"
	"parkly/internal/middleware"
)

func setupTestRouter(t *testing.T) (*gin.Engine, int64) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, svc := setupTestService(t)
	user, _ := dbtest.SeedUser(t, db, "handler@example.com", "0")

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User-ID"); id != "" {
			userID, _ := strconv.ParseInt(id, 10, 64)
			middleware.SetCaller(c, middleware.Caller{UserID: userID})
		}
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r, user.ID
}

func doJSONRequest(r http.Handler, method, path string, body any, userID int64) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("X-Test-User-ID", strconv.FormatInt(userID, 10))
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code string `json:"code"`
	} `json:"error"`
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return env
}

func TestWalletEndpoints_Unauthorized(t *testing.T) {
	r, _ := setupTestRouter(t)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/wallet"},
		{http.MethodPost, "/api/v1/wallet/deposit"},
		{http.MethodPost, "/api/v1/wallet/withdraw"},
		{http.MethodGet, "/api/v1/wallet/transactions"},
		{http.MethodGet, "/api/v1/wallet/transactions/1"},
	}

	for _, tc := range cases {
		rr := doJSONRequest(r, tc.method, tc.path, map[string]any{"amount": 10}, 0)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, "%s %s", tc.method, tc.path)
	}
}

func TestWalletEndpoints_FullFlow(t *testing.T) {
	r, userID := setupTestRouter(t)

	rr := doJSONRequest(r, http.MethodPost, "/api/v1/wallet/deposit", map[string]any{"amount": -5}, userID)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "INVALID_AMOUNT", decode(t, rr).Error.Code)

	rr = doJSONRequest(r, http.MethodPost, "/api/v1/wallet/deposit", map[string]any{"amount": "150.00"}, userID)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = doJSONRequest(r, http.MethodPost, "/api/v1/wallet/withdraw", map[string]any{"amount": 500}, userID)
	assert.Equal(t, http.StatusPaymentRequired, rr.Code)
	assert.Equal(t, "INSUFFICIENT_FUNDS", decode(t, rr).Error.Code)

	rr = doJSONRequest(r, http.MethodPost, "/api/v1/wallet/withdraw", map[string]any{"amount": 40}, userID)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = doJSONRequest(r, http.MethodGet, "/api/v1/wallet/transactions", nil, userID)
	require.Equal(t, http.StatusOK, rr.Code)
	var page TransactionPage
	require.NoError(t, json.Unmarshal(decode(t, rr).Data, &page))
	require.Len(t, page.Transactions, 2)

	rr = doJSONRequest(r, http.MethodGet, "/api/v1/wallet/transactions/"+strconv.FormatInt(page.Transactions[0].ID, 10), nil, userID)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = doJSONRequest(r, http.MethodGet, "/api/v1/wallet/transactions/abc", nil, userID)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSONRequest(r, http.MethodGet, "/api/v1/wallet", nil, userID)
	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Wallet WalletResponse `json:"wallet"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rr).Data, &body))
	assert.Equal(t, "110.00", body.Wallet.Balance)
}
