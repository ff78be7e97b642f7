package app

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"parkly/internal/config"
	"parkly/internal/database/dbtest"
	"parkly/internal/domain"
	"parkly/internal/modules/auth"
	"parkly/internal/modules/booking"
	"parkly/internal/modules/expiry"
	"parkly/internal/pkg/clock"
)

func testConfig() *config.Config {
	cfg := &config.Config{DefaultCurrency: "LYD"}
	cfg.DB.LockTimeout = time.Second
	cfg.DB.MaxRetries = 1
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.JWTTTL = time.Hour
	cfg.Sweep.Interval = time.Minute
	cfg.Sweep.Grace = 15 * time.Minute
	cfg.Sweep.Status = "expired"
	cfg.Sweep.LockTTL = time.Minute
	return cfg
}

func TestNew_WiresRegistrationWalletAndPasswordCheck(t *testing.T) {
	ctx := context.Background()
	a := New(testConfig(), dbtest.Open(t), clock.NewMockClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)), zap.NewNop())

	u, err := a.AuthService.Register(ctx, auth.RegisterRequest{
		Name:     "Driver",
		Email:    "driver@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)

	w, err := a.WalletService.GetWallet(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, w.Balance.IsZero())
	assert.Equal(t, "LYD", w.Currency)

	_, _, err = a.WalletService.Deposit(ctx, u.ID, decimal.NewFromInt(20), "top up")
	require.NoError(t, err)

	b, err := a.BookingService.Get(ctx, domain.Caller{UserID: u.ID, Role: string(domain.RoleUser)}, 999)
	assert.Nil(t, b)
	assert.ErrorIs(t, err, booking.ErrBookingNotFound)

	valid, err := a.AuthService.VerifyPassword(ctx, u.ID, "secret1")
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestSweeper_RunsUnlockedWithoutRedis(t *testing.T) {
	a := New(testConfig(), dbtest.Open(t), nil, zap.NewNop())

	res, err := a.Sweeper(nil).SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, expiry.Result{}, res)
}

func TestRedisClient_NilWithoutAddress(t *testing.T) {
	assert.Nil(t, RedisClient(config.RedisConfig{}))

	rdb := RedisClient(config.RedisConfig{Addr: "localhost:6379"})
	require.NotNil(t, rdb)
	assert.NoError(t, rdb.Close())
}
