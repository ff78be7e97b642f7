package wallet

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"parkly/internal/database"
	"parkly/internal/domain"
	"parkly/internal/pkg/errs"
	"parkly/internal/pkg/metrics"
	"parkly/internal/repository"
)

const (
	defaultPerPage = 15
	maxPerPage     = 100
)

var maxOperationAmount = decimal.NewFromInt(10000)

type Service struct {
	tx       *database.TxRunner
	wallets  *repository.WalletRepository
	ledger   *Ledger
	currency string
	log      *zap.Logger
}

func NewService(tx *database.TxRunner, wallets *repository.WalletRepository, ledger *Ledger, currency string, log *zap.Logger) *Service {
	return &Service{
		tx:       tx,
		wallets:  wallets,
		ledger:   ledger,
		currency: strings.ToUpper(currency),
		log:      log,
	}
}

// CreateWallet opens an empty wallet inside the caller's transaction.
func (s *Service) CreateWallet(ctx context.Context, tx *gorm.DB, userID int64) (*domain.Wallet, error) {
	w := &domain.Wallet{
		UserID:   userID,
		Balance:  decimal.Zero,
		Currency: s.currency,
		Status:   domain.WalletActive,
	}
	if err := s.wallets.WithTx(tx).Create(ctx, w); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrWalletExists
		}
		return nil, errs.Internal(err, "create wallet")
	}
	return w, nil
}

func (s *Service) GetWallet(ctx context.Context, userID int64) (*domain.Wallet, error) {
	w, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, errs.Internal(err, "get wallet")
	}
	return w, nil
}

func (s *Service) Deposit(ctx context.Context, userID int64, amount decimal.Decimal, description string) (*domain.Wallet, *domain.Transaction, error) {
	if description == "" {
		description = "wallet top-up"
	}
	return s.move(ctx, Entry{UserID: userID, Amount: amount, Type: domain.TransactionDeposit, Description: description})
}

func (s *Service) Withdraw(ctx context.Context, userID int64, amount decimal.Decimal, description string) (*domain.Wallet, *domain.Transaction, error) {
	if description == "" {
		description = "wallet withdrawal"
	}
	return s.move(ctx, Entry{UserID: userID, Amount: amount, Type: domain.TransactionWithdrawal, Description: description})
}

func (s *Service) move(ctx context.Context, e Entry) (*domain.Wallet, *domain.Transaction, error) {
	if e.Amount.GreaterThan(maxOperationAmount) {
		return nil, nil, ErrAmountTooLarge
	}

	var txn *domain.Transaction
	err := s.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		var err error
		if e.Type.IsDebit() {
			txn, err = s.ledger.Debit(ctx, tx, e)
		} else {
			txn, err = s.ledger.Credit(ctx, tx, e)
		}
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	metrics.RecordLedgerEntry(string(txn.Type))

	w, err := s.GetWallet(ctx, e.UserID)
	if err != nil {
		return nil, nil, err
	}
	s.log.Info("wallet updated",
		zap.Int64("user_id", e.UserID),
		zap.String("type", string(txn.Type)),
		zap.String("amount", txn.Amount.StringFixed(2)),
		zap.String("balance", txn.BalanceAfter.StringFixed(2)))
	return w, txn, nil
}

func (s *Service) ListTransactions(ctx context.Context, userID int64, q ListTransactionsQuery) (*TransactionPage, error) {
	w, err := s.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	perPage := q.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}

	entryType := domain.TransactionType(q.Type)
	if entryType != "" && !entryType.Valid() {
		return nil, errs.Validation("unknown transaction type %q", q.Type)
	}

	rows, total, err := s.wallets.ListTransactions(ctx, w.ID, repository.TransactionFilter{
		Type:   entryType,
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	})
	if err != nil {
		return nil, errs.Internal(err, "list transactions")
	}

	out := &TransactionPage{
		Transactions: make([]TransactionResponse, 0, len(rows)),
		Pagination: Pagination{
			Total:       total,
			PerPage:     perPage,
			CurrentPage: page,
			LastPage:    lastPage(total, perPage),
		},
	}
	for i := range rows {
		out.Transactions = append(out.Transactions, ToTransactionResponse(&rows[i]))
	}
	return out, nil
}

func (s *Service) GetTransaction(ctx context.Context, userID, id int64) (*domain.Transaction, error) {
	w, err := s.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	t, err := s.wallets.GetTransaction(ctx, w.ID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTxnNotFound
		}
		return nil, errs.Internal(err, "get transaction")
	}
	return t, nil
}

func lastPage(total int64, perPage int) int {
	if total == 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
