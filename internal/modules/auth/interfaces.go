package auth

import (
	"context"

	"gorm.io/gorm"

	"parkly/internal/domain"
)

// TokenIssuer signs access tokens for a logged in user.
type TokenIssuer interface {
	GenerateToken(userID int64, role string) (string, error)
}

// WalletOpener creates the user's wallet inside the registration transaction.
type WalletOpener interface {
	CreateWallet(ctx context.Context, tx *gorm.DB, userID int64) (*domain.Wallet, error)
}
