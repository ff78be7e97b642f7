package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type WalletStatus string

const (
	WalletActive   WalletStatus = "active"
	WalletInactive WalletStatus = "inactive"
)

type TransactionType string

const (
	TransactionDeposit    TransactionType = "deposit"
	TransactionPayment    TransactionType = "payment"
	TransactionRefund     TransactionType = "refund"
	TransactionWithdrawal TransactionType = "withdrawal"
)

// IsDebit reports whether entries of this type carry a negative amount.
func (t TransactionType) IsDebit() bool {
	return t == TransactionPayment || t == TransactionWithdrawal
}

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionDeposit, TransactionPayment, TransactionRefund, TransactionWithdrawal:
		return true
	}
	return false
}

// Wallet balance only changes together with an appended Transaction.
type Wallet struct {
	ID        int64           `json:"id" gorm:"primaryKey"`
	UserID    int64           `json:"user_id" gorm:"not null;uniqueIndex"`
	Balance   decimal.Decimal `json:"balance" gorm:"type:numeric(12,2);not null;default:0"`
	Currency  string          `json:"currency" gorm:"size:3;not null"`
	Status    WalletStatus    `json:"status" gorm:"size:16;not null;default:active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// Transaction is an append-only ledger entry. Invariant:
// BalanceAfter = BalanceBefore + Amount.
type Transaction struct {
	ID            int64           `json:"id" gorm:"primaryKey"`
	WalletID      int64           `json:"wallet_id" gorm:"not null;index"`
	BookingID     *int64          `json:"booking_id,omitempty" gorm:"index"`
	Type          TransactionType `json:"type" gorm:"size:16;not null;index"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	BalanceBefore decimal.Decimal `json:"balance_before" gorm:"type:numeric(12,2);not null"`
	BalanceAfter  decimal.Decimal `json:"balance_after" gorm:"type:numeric(12,2);not null"`
	Description   string          `json:"description" gorm:"size:500"`
	CreatedAt     time.Time       `json:"created_at" gorm:"index"`
	DeletedAt     gorm.DeletedAt  `json:"-" gorm:"index"`

	Wallet *Wallet `json:"-" gorm:"foreignKey:WalletID;constraint:OnDelete:CASCADE"`
}
