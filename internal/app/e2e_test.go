package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"parkly/internal/database/dbtest"
	"parkly/internal/pkg/clock"
)

const gateToken = "gate-secret"

var e2eBase = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type E2ETestSuite struct {
	router *gin.Engine
	db     *gorm.DB
	clock  *clock.MockClock
	spotID int64
	lotID  int64
}

type TestResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *ErrorDetail           `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func setupTestSuite(t *testing.T) *E2ETestSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	cfg.Auth.GateToken = gateToken

	db := dbtest.Open(t)
	clk := clock.NewMockClock(e2eBase)
	a := New(cfg, db, clk, zap.NewNop())

	lot := dbtest.SeedLot(t, db, "10.00")
	sp := dbtest.SeedSpot(t, db, lot.ID, 1)

	return &E2ETestSuite{
		router: a.Router(nil),
		db:     db,
		clock:  clk,
		spotID: sp.ID,
		lotID:  lot.ID,
	}
}

func (s *E2ETestSuite) makeRequest(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) *TestResponse {
	t.Helper()
	var resp TestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "status %d body %s", w.Code, w.Body.String())
	return &resp
}

func field(t *testing.T, data map[string]interface{}, path ...string) interface{} {
	t.Helper()
	var cur interface{} = data
	for _, p := range path {
		m, ok := cur.(map[string]interface{})
		require.True(t, ok, "missing %v", path)
		cur = m[p]
	}
	return cur
}

// registerDriver signs up, logs in and returns the access token.
func (s *E2ETestSuite) registerDriver(t *testing.T, email string) string {
	t.Helper()

	w := s.makeRequest(http.MethodPost, "/api/v1/auth/register", map[string]interface{}{
		"name":     "Driver",
		"email":    email,
		"password": "Password123",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.makeRequest(http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
		"email":    email,
		"password": "Password123",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	token, _ := parseResponse(t, w).Data["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func (s *E2ETestSuite) addVehicle(t *testing.T, token, plate string) int64 {
	t.Helper()

	w := s.makeRequest(http.MethodPost, "/api/v1/vehicles", map[string]interface{}{"plate_number": plate}, bearer(token))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return int64(field(t, parseResponse(t, w).Data, "vehicle", "id").(float64))
}

func (s *E2ETestSuite) balance(t *testing.T, token string) string {
	t.Helper()

	w := s.makeRequest(http.MethodGet, "/api/v1/wallet", nil, bearer(token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return field(t, parseResponse(t, w).Data, "wallet", "balance").(string)
}

func TestFlow1_RegistrationAndAuth(t *testing.T) {
	suite := setupTestSuite(t)
	token := suite.registerDriver(t, "client@test.com")

	t.Run("GET /users/me", func(t *testing.T) {
		w := suite.makeRequest(http.MethodGet, "/api/v1/users/me", nil, bearer(token))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "client@test.com", field(t, parseResponse(t, w).Data, "user", "email"))
	})

	t.Run("wallet opened at zero", func(t *testing.T) {
		assert.Equal(t, "0.00", suite.balance(t, token))
	})

	t.Run("protected route without token", func(t *testing.T) {
		w := suite.makeRequest(http.MethodGet, "/api/v1/wallet", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("duplicate email", func(t *testing.T) {
		w := suite.makeRequest(http.MethodPost, "/api/v1/auth/register", map[string]interface{}{
			"name":     "Other",
			"email":    "client@test.com",
			"password": "Password123",
		}, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "EMAIL_EXISTS", parseResponse(t, w).Error.Code)
	})

	t.Run("change password", func(t *testing.T) {
		w := suite.makeRequest(http.MethodPatch, "/api/v1/auth/me/password", map[string]interface{}{
			"current_password": "Password123",
			"new_password":     "Password456",
		}, bearer(token))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = suite.makeRequest(http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
			"email":    "client@test.com",
			"password": "Password456",
		}, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("save and list lots", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/lots/saved/%d", suite.lotID)
		w := suite.makeRequest(http.MethodPost, path, nil, bearer(token))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = suite.makeRequest(http.MethodGet, "/api/v1/lots/saved", nil, bearer(token))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.EqualValues(t, 1, parseResponse(t, w).Data["total"])

		w = suite.makeRequest(http.MethodGet, fmt.Sprintf("/api/v1/lots/%d", suite.lotID), nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = suite.makeRequest(http.MethodGet, "/api/v1/lots/saved", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := suite.makeRequest(http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
			"email":    "client@test.com",
			"password": "nope-nope",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestFlow2_BookParkAndLeave(t *testing.T) {
	suite := setupTestSuite(t)
	token := suite.registerDriver(t, "driver@test.com")
	vehicleID := suite.addVehicle(t, token, "5-123456")

	w := suite.makeRequest(http.MethodPost, "/api/v1/wallet/deposit", map[string]interface{}{"amount": "50"}, bearer(token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "50.00", suite.balance(t, token))

	w = suite.makeRequest(http.MethodGet, "/api/v1/lots/nearby?lat=32.8872&lng=13.1913&radius=5", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	start := e2eBase.Add(time.Hour)
	w = suite.makeRequest(http.MethodPost, "/api/v1/bookings", map[string]interface{}{
		"spot_id":    suite.spotID,
		"vehicle_id": vehicleID,
		"start_time": start,
		"end_time":   start.Add(time.Hour),
	}, bearer(token))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := parseResponse(t, w)
	assert.Equal(t, "pending", field(t, created.Data, "booking", "status"))
	assert.Equal(t, "10.00", field(t, created.Data, "booking", "total_price"))
	qr := field(t, created.Data, "booking", "qr_code_token").(string)
	require.NotEmpty(t, qr)
	assert.Equal(t, "40.00", suite.balance(t, token))

	scan := map[string]interface{}{"qr_code": qr}

	t.Run("gate rejects missing token", func(t *testing.T) {
		w := suite.makeRequest(http.MethodPost, "/api/v1/gate/entrance", scan, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("gate rejects a user JWT", func(t *testing.T) {
		w := suite.makeRequest(http.MethodPost, "/api/v1/gate/entrance", scan, bearer(token))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	gate := map[string]string{"X-Gate-Token": gateToken}

	suite.clock.Set(start)
	w = suite.makeRequest(http.MethodPost, "/api/v1/gate/entrance", scan, gate)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "active", field(t, parseResponse(t, w).Data, "booking", "status"))

	suite.clock.Set(start.Add(75 * time.Minute))
	w = suite.makeRequest(http.MethodPost, "/api/v1/gate/exit", scan, gate)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	exit := parseResponse(t, w)
	assert.Equal(t, "2.50", exit.Data["charged"])
	assert.EqualValues(t, 75, exit.Data["duration_minutes"])
	assert.Equal(t, "completed", field(t, exit.Data, "booking", "status"))
	assert.Equal(t, "37.50", suite.balance(t, token))

	t.Run("second exit scan is rejected", func(t *testing.T) {
		w := suite.makeRequest(http.MethodPost, "/api/v1/gate/exit", scan, gate)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "INVALID_STATE", parseResponse(t, w).Error.Code)
	})

	t.Run("transactions list payment and overtime", func(t *testing.T) {
		w := suite.makeRequest(http.MethodGet, "/api/v1/wallet/transactions?type=payment", nil, bearer(token))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		txns, _ := parseResponse(t, w).Data["transactions"].([]interface{})
		assert.Len(t, txns, 2)
	})
}

func TestFlow3_CancelRefunds(t *testing.T) {
	suite := setupTestSuite(t)
	token := suite.registerDriver(t, "cancel@test.com")
	vehicleID := suite.addVehicle(t, token, "10-111222")

	w := suite.makeRequest(http.MethodPost, "/api/v1/wallet/deposit", map[string]interface{}{"amount": "20.00"}, bearer(token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	start := e2eBase.Add(2 * time.Hour)
	w = suite.makeRequest(http.MethodPost, "/api/v1/bookings", map[string]interface{}{
		"spot_id":    suite.spotID,
		"vehicle_id": vehicleID,
		"start_time": start,
		"end_time":   start.Add(90 * time.Minute),
	}, bearer(token))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := int64(field(t, parseResponse(t, w).Data, "booking", "id").(float64))
	assert.Equal(t, "5.00", suite.balance(t, token))

	w = suite.makeRequest(http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/cancel", id), nil, bearer(token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "canceled", field(t, parseResponse(t, w).Data, "booking", "status"))
	assert.Equal(t, "20.00", suite.balance(t, token))

	w = suite.makeRequest(http.MethodGet, "/api/v1/bookings?status=cancelled_tab", nil, bearer(token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	list, _ := parseResponse(t, w).Data["bookings"].([]interface{})
	assert.Len(t, list, 1)
}
