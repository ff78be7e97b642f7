package vehicle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkly/internal/database/dbtest"
	"parkly/internal/middleware"
	"parkly/internal/repository"
)

func TestCreateNormalizesAndRejectsDuplicates(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(repository.NewVehicleRepository(db))
	user, _ := dbtest.SeedUser(t, db, "cars@example.com", "0")
	other, _ := dbtest.SeedUser(t, db, "other@example.com", "0")
	ctx := context.Background()

	v, err := svc.Create(ctx, user.ID, CreateRequest{PlateNumber: " 5-123 ab ", Make: "Kia"})
	require.NoError(t, err)
	assert.Equal(t, "5-123AB", v.PlateNumber)

	_, err = svc.Create(ctx, user.ID, CreateRequest{PlateNumber: "5-123ab"})
	assert.ErrorIs(t, err, ErrPlateExists)

	_, err = svc.Create(ctx, other.ID, CreateRequest{PlateNumber: "5-123ab"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, user.ID, CreateRequest{PlateNumber: "   "})
	assert.Error(t, err)

	list, err := svc.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Kia", list[0].Make)
}

func TestHandlers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := dbtest.Open(t)
	user, _ := dbtest.SeedUser(t, db, "http-cars@example.com", "0")

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if c.GetHeader("X-Test-User") == "1" {
			middleware.SetCaller(c, middleware.Caller{UserID: user.ID})
		}
		c.Next()
	})
	NewHandler(NewService(repository.NewVehicleRepository(db))).RegisterRoutes(r.Group("/api/v1"))

	do := func(method, body string, authed bool) int {
		req := httptest.NewRequest(method, "/api/v1/vehicles", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if authed {
			req.Header.Set("X-Test-User", "1")
		}
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusUnauthorized, do(http.MethodGet, "", false))
	assert.Equal(t, http.StatusCreated, do(http.MethodPost, `{"plate_number":"ABC 123"}`, true))
	assert.Equal(t, http.StatusConflict, do(http.MethodPost, `{"plate_number":"abc123"}`, true))
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, `{}`, true))
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "", true))
}
