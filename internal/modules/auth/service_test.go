package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"parkly/internal/database"
	"parkly/internal/database/dbtest"
	"parkly/internal/domain"
	"parkly/internal/modules/wallet"
	"parkly/internal/pkg/errs"
	"parkly/internal/repository"
)

type mockIssuer struct {
	mock.Mock
}

func (m *mockIssuer) GenerateToken(userID int64, role string) (string, error) {
	args := m.Called(userID, role)
	return args.String(0), args.Error(1)
}

func setupTestService(t *testing.T) (*gorm.DB, *Service, *mockIssuer) {
	t.Helper()
	db := dbtest.Open(t)
	runner := database.NewTxRunner(db, time.Second, 2, zap.NewNop())
	wallets := repository.NewWalletRepository(db)
	walletSvc := wallet.NewService(runner, wallets, wallet.NewLedger(wallets), "LYD", zap.NewNop())

	issuer := &mockIssuer{}
	svc := NewService(runner, repository.NewUserRepository(db), walletSvc, issuer, zap.NewNop())
	svc.cost = bcrypt.MinCost
	return db, svc, issuer
}

func TestRegisterCreatesUserAndWallet(t *testing.T) {
	db, svc, _ := setupTestService(t)

	user, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Salem",
		Email:    "  Salem@Example.com ",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.Equal(t, "salem@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)
	assert.Equal(t, domain.RoleUser, user.Role)

	var w domain.Wallet
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&w).Error)
	assert.True(t, w.Balance.IsZero())
	assert.Equal(t, "LYD", w.Currency)

	_, err = svc.Register(context.Background(), RegisterRequest{
		Name:     "Again",
		Email:    "salem@example.com",
		Password: "hunter22",
	})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	assert.ErrorIs(t, err, errs.ErrConflict)
}

func TestRegisterRollsBackUserWhenWalletFails(t *testing.T) {
	db, svc, _ := setupTestService(t)
	svc.wallets = failingWallets{}

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Nope",
		Email:    "nope@example.com",
		Password: "hunter22",
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&domain.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

type failingWallets struct{}

func (failingWallets) CreateWallet(context.Context, *gorm.DB, int64) (*domain.Wallet, error) {
	return nil, wallet.ErrWalletExists
}

func TestLogin(t *testing.T) {
	_, svc, issuer := setupTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Name: "Huda", Email: "huda@example.com", Password: "s3cret!"})
	require.NoError(t, err)

	issuer.On("GenerateToken", user.ID, "user").Return("signed.jwt", nil).Once()

	res, err := svc.Login(ctx, LoginRequest{Email: "HUDA@example.com", Password: "s3cret!"})
	require.NoError(t, err)
	assert.Equal(t, "signed.jwt", res.AccessToken)
	assert.Equal(t, user.ID, res.User.ID)
	assert.Empty(t, res.User.PasswordHash)

	_, err = svc.Login(ctx, LoginRequest{Email: "huda@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "s3cret!"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	issuer.AssertExpectations(t)
}

func TestVerifyPassword(t *testing.T) {
	_, svc, _ := setupTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Name: "Omar", Email: "omar@example.com", Password: "letmein"})
	require.NoError(t, err)

	ok, err := svc.VerifyPassword(ctx, user.ID, "letmein")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.VerifyPassword(ctx, user.ID, "letmeout")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.VerifyPassword(ctx, 404, "letmein")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetMe(t *testing.T) {
	_, svc, _ := setupTestService(t)

	_, err := svc.GetMe(context.Background(), 12345)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestChangePassword(t *testing.T) {
	_, svc, issuer := setupTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Name: "Nour", Email: "nour@example.com", Password: "old-pass"})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.ID, ChangePasswordRequest{CurrentPassword: "guess", NewPassword: "new-pass"})
	assert.ErrorIs(t, err, ErrWrongPassword)
	assert.ErrorIs(t, err, errs.ErrForbidden)

	err = svc.ChangePassword(ctx, user.ID, ChangePasswordRequest{CurrentPassword: "old-pass", NewPassword: "old-pass"})
	assert.ErrorIs(t, err, ErrPasswordUnchanged)

	err = svc.ChangePassword(ctx, 404, ChangePasswordRequest{CurrentPassword: "old-pass", NewPassword: "new-pass"})
	assert.ErrorIs(t, err, ErrWrongPassword)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, ChangePasswordRequest{CurrentPassword: "old-pass", NewPassword: "new-pass"}))

	ok, err := svc.VerifyPassword(ctx, user.ID, "new-pass")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.Login(ctx, LoginRequest{Email: "nour@example.com", Password: "old-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	issuer.On("GenerateToken", user.ID, "user").Return("fresh.jwt", nil).Once()
	res, err := svc.Login(ctx, LoginRequest{Email: "nour@example.com", Password: "new-pass"})
	require.NoError(t, err)
	assert.Equal(t, "fresh.jwt", res.AccessToken)
	issuer.AssertExpectations(t)
}
