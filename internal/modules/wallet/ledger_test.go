package wallet

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"parkly/internal/database"
	"parkly/internal/database/dbtest"
	"parkly/internal/domain"
	"parkly/internal/pkg/errs"
	"parkly/internal/repository"
)

func setupLedger(t *testing.T) (*gorm.DB, *database.TxRunner, *Ledger) {
	t.Helper()
	db := dbtest.Open(t)
	return db, database.NewTxRunner(db, time.Second, 2, zap.NewNop()), NewLedger(repository.NewWalletRepository(db))
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestDebitRecordsBeforeAndAfter(t *testing.T) {
	db, runner, ledger := setupLedger(t)
	user, _ := dbtest.SeedUser(t, db, "a@example.com", "100.00")
	ctx := context.Background()

	var txn *domain.Transaction
	err := runner.WithinTx(ctx, func(tx *gorm.DB) error {
		var err error
		txn, err = ledger.Debit(ctx, tx, Entry{UserID: user.ID, Amount: d("10.00"), Type: domain.TransactionPayment, Description: "booking"})
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, "-10.00", txn.Amount.StringFixed(2))
	assert.Equal(t, "100.00", txn.BalanceBefore.StringFixed(2))
	assert.Equal(t, "90.00", txn.BalanceAfter.StringFixed(2))
	assert.True(t, txn.BalanceAfter.Equal(txn.BalanceBefore.Add(txn.Amount)))
	assert.Equal(t, "90.00", dbtest.Balance(t, db, user.ID).StringFixed(2))
}

func TestDebitInsufficientFundsLeavesNoTrace(t *testing.T) {
	db, runner, ledger := setupLedger(t)
	user, _ := dbtest.SeedUser(t, db, "b@example.com", "5.00")
	ctx := context.Background()

	err := runner.WithinTx(ctx, func(tx *gorm.DB) error {
		_, err := ledger.Debit(ctx, tx, Entry{UserID: user.ID, Amount: d("5.01"), Type: domain.TransactionPayment})
		return err
	})
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.ErrorIs(t, err, errs.ErrInsufficientFunds)
	assert.Equal(t, "5.00", dbtest.Balance(t, db, user.ID).StringFixed(2))
	assert.True(t, dbtest.LedgerSum(t, db, user.ID).IsZero())
}

func TestLedgerRejectsBadInput(t *testing.T) {
	db, runner, ledger := setupLedger(t)
	user, _ := dbtest.SeedUser(t, db, "c@example.com", "50.00")
	ctx := context.Background()

	cases := []struct {
		name string
		run  func(tx *gorm.DB) error
		want error
	}{
		{
			name: "zero credit",
			run: func(tx *gorm.DB) error {
				_, err := ledger.Credit(ctx, tx, Entry{UserID: user.ID, Amount: decimal.Zero, Type: domain.TransactionRefund})
				return err
			},
			want: ErrInvalidAmount,
		},
		{
			name: "negative debit",
			run: func(tx *gorm.DB) error {
				_, err := ledger.Debit(ctx, tx, Entry{UserID: user.ID, Amount: d("-1"), Type: domain.TransactionPayment})
				return err
			},
			want: ErrInvalidAmount,
		},
		{
			name: "sub-cent amount",
			run: func(tx *gorm.DB) error {
				_, err := ledger.Credit(ctx, tx, Entry{UserID: user.ID, Amount: d("1.005"), Type: domain.TransactionDeposit})
				return err
			},
			want: ErrInvalidAmount,
		},
		{
			name: "credit with debit type",
			run: func(tx *gorm.DB) error {
				_, err := ledger.Credit(ctx, tx, Entry{UserID: user.ID, Amount: d("1"), Type: domain.TransactionPayment})
				return err
			},
			want: ErrInvalidEntryType,
		},
		{
			name: "unknown wallet",
			run: func(tx *gorm.DB) error {
				_, err := ledger.Credit(ctx, tx, Entry{UserID: 9999, Amount: d("1"), Type: domain.TransactionDeposit})
				return err
			},
			want: ErrWalletNotFound,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := runner.WithinTx(ctx, tc.run)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Equal(t, "50.00", dbtest.Balance(t, db, user.ID).StringFixed(2))
}

func TestInactiveWalletRejectsDebitButAcceptsCredit(t *testing.T) {
	db, runner, ledger := setupLedger(t)
	user, w := dbtest.SeedUser(t, db, "e@example.com", "10.00")
	require.NoError(t, db.Model(w).Update("status", domain.WalletInactive).Error)
	ctx := context.Background()

	err := runner.WithinTx(ctx, func(tx *gorm.DB) error {
		_, err := ledger.Debit(ctx, tx, Entry{UserID: user.ID, Amount: d("1"), Type: domain.TransactionPayment})
		return err
	})
	assert.ErrorIs(t, err, ErrWalletInactive)
	assert.ErrorIs(t, err, errs.ErrConflict)

	err = runner.WithinTx(ctx, func(tx *gorm.DB) error {
		_, err := ledger.Credit(ctx, tx, Entry{UserID: user.ID, Amount: d("2.50"), Type: domain.TransactionRefund})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "12.50", dbtest.Balance(t, db, user.ID).StringFixed(2))
	assert.Equal(t, "2.50", dbtest.LedgerSum(t, db, user.ID).StringFixed(2))
}

func TestBalanceMatchesLedgerAfterMixedSequence(t *testing.T) {
	db, runner, ledger := setupLedger(t)
	user, _ := dbtest.SeedUser(t, db, "f@example.com", "0")
	ctx := context.Background()

	steps := []struct {
		debit  bool
		kind   domain.TransactionType
		amount string
	}{
		{false, domain.TransactionDeposit, "100.00"},
		{true, domain.TransactionPayment, "12.34"},
		{false, domain.TransactionRefund, "2.34"},
		{true, domain.TransactionWithdrawal, "40.00"},
		{true, domain.TransactionPayment, "60.00"},
		{false, domain.TransactionDeposit, "0.01"},
	}

	for _, st := range steps {
		_ = runner.WithinTx(ctx, func(tx *gorm.DB) error {
			e := Entry{UserID: user.ID, Amount: d(st.amount), Type: st.kind}
			if st.debit {
				_, err := ledger.Debit(ctx, tx, e)
				return err
			}
			_, err := ledger.Credit(ctx, tx, e)
			return err
		})
	}

	balance := dbtest.Balance(t, db, user.ID)
	assert.Equal(t, "50.01", balance.StringFixed(2))
	assert.True(t, balance.Equal(dbtest.LedgerSum(t, db, user.ID)))
	assert.False(t, balance.IsNegative())
}

func TestConcurrentDebitsSerialize(t *testing.T) {
	db, runner, ledger := setupLedger(t)
	user, _ := dbtest.SeedUser(t, db, "g@example.com", "30.00")
	ctx := context.Background()

	const workers = 5
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- runner.WithinTx(ctx, func(tx *gorm.DB) error {
				_, err := ledger.Debit(ctx, tx, Entry{UserID: user.ID, Amount: d("10.00"), Type: domain.TransactionPayment})
				return err
			})
		}()
	}
	wg.Wait()
	close(results)

	var ok, insufficient int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errs.KindOf(err) == errs.ErrInsufficientFunds:
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 3, ok)
	assert.Equal(t, 2, insufficient)
	assert.True(t, dbtest.Balance(t, db, user.ID).IsZero())
	assert.Equal(t, "-30.00", dbtest.LedgerSum(t, db, user.ID).StringFixed(2))
}
