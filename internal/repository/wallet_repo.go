package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"parkly/internal/domain"
)

type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// WithTx binds the repository to an open transaction.
func (r *WalletRepository) WithTx(tx *gorm.DB) *WalletRepository {
	return &WalletRepository{db: tx}
}

func (r *WalletRepository) Create(ctx context.Context, w *domain.Wallet) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *WalletRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Wallet, error) {
	var w domain.Wallet
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// LockByUserID loads the wallet with a row lock held until the transaction ends.
func (r *WalletRepository) LockByUserID(ctx context.Context, userID int64) (*domain.Wallet, error) {
	var w domain.Wallet
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WalletRepository) UpdateBalance(ctx context.Context, w *domain.Wallet) error {
	return r.db.WithContext(ctx).
		Model(&domain.Wallet{}).
		Where("id = ?", w.ID).
		Update("balance", w.Balance).Error
}

func (r *WalletRepository) AppendTransaction(ctx context.Context, t *domain.Transaction) error {
	return r.db.WithContext(ctx).Create(t).Error
}

type TransactionFilter struct {
	Type   domain.TransactionType
	Limit  int
	Offset int
}

func (r *WalletRepository) ListTransactions(ctx context.Context, walletID int64, f TransactionFilter) ([]domain.Transaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Transaction{}).Where("wallet_id = ?", walletID)
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []domain.Transaction
	err := q.Order("created_at DESC").Order("id DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *WalletRepository) GetTransaction(ctx context.Context, walletID, id int64) (*domain.Transaction, error) {
	var t domain.Transaction
	if err := r.db.WithContext(ctx).Where("wallet_id = ? AND id = ?", walletID, id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *WalletRepository) TransactionsForBooking(ctx context.Context, bookingID int64) ([]domain.Transaction, error) {
	var out []domain.Transaction
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("id ASC").
		Find(&out).Error
	return out, err
}
