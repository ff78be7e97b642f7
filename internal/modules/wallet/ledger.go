package wallet

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"parkly/internal/domain"
	"parkly/internal/pkg/errs"
	"parkly/internal/repository"
)

// Entry describes one balance mutation. Amount is always positive; the
// ledger applies the sign implied by Type.
type Entry struct {
	UserID      int64
	Amount      decimal.Decimal
	BookingID   *int64
	Type        domain.TransactionType
	Description string
}

// Ledger is the only writer of wallet balances. Every call locks the wallet
// row, mutates the balance and appends exactly one Transaction, all inside
// the caller's database transaction.
type Ledger struct {
	wallets *repository.WalletRepository
}

func NewLedger(wallets *repository.WalletRepository) *Ledger {
	return &Ledger{wallets: wallets}
}

// Debit removes funds from an active wallet. Fails with ErrInsufficientFunds
// when the balance would go negative.
func (l *Ledger) Debit(ctx context.Context, tx *gorm.DB, e Entry) (*domain.Transaction, error) {
	if !e.Type.IsDebit() {
		return nil, ErrInvalidEntryType
	}
	return l.apply(ctx, tx, e, true)
}

// Credit adds funds to any existing wallet, active or not. Only the amount
// is checked.
func (l *Ledger) Credit(ctx context.Context, tx *gorm.DB, e Entry) (*domain.Transaction, error) {
	if !e.Type.Valid() || e.Type.IsDebit() {
		return nil, ErrInvalidEntryType
	}
	return l.apply(ctx, tx, e, false)
}

// LockWallet row-locks the user's wallet without mutating it.
func (l *Ledger) LockWallet(ctx context.Context, tx *gorm.DB, userID int64) (*domain.Wallet, error) {
	w, err := l.wallets.WithTx(tx).LockByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, errs.Internal(err, "lock wallet")
	}
	return w, nil
}

func (l *Ledger) apply(ctx context.Context, tx *gorm.DB, e Entry, debit bool) (*domain.Transaction, error) {
	if err := validateAmount(e.Amount); err != nil {
		return nil, err
	}

	w, err := l.LockWallet(ctx, tx, e.UserID)
	if err != nil {
		return nil, err
	}
	signed := e.Amount
	if debit {
		if w.Status != domain.WalletActive {
			return nil, ErrWalletInactive
		}
		if w.Balance.LessThan(e.Amount) {
			return nil, ErrInsufficientFunds
		}
		signed = e.Amount.Neg()
	}

	before := w.Balance
	w.Balance = before.Add(signed)

	repo := l.wallets.WithTx(tx)
	if err := repo.UpdateBalance(ctx, w); err != nil {
		return nil, errs.Internal(err, "update wallet balance")
	}

	txn := &domain.Transaction{
		WalletID:      w.ID,
		BookingID:     e.BookingID,
		Type:          e.Type,
		Amount:        signed,
		BalanceBefore: before,
		BalanceAfter:  w.Balance,
		Description:   e.Description,
	}
	if err := repo.AppendTransaction(ctx, txn); err != nil {
		return nil, errs.Internal(err, "append ledger entry")
	}
	return txn, nil
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || !amount.Equal(amount.Round(2)) {
		return ErrInvalidAmount
	}
	return nil
}
