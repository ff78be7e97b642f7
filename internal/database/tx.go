package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"parkly/internal/pkg/errs"
)

// PostgreSQL codes worth retrying: serialization_failure, deadlock_detected,
// lock_not_available (lock_timeout expired).
var retryableCodes = map[string]struct{}{
	"40001": {},
	"40P01": {},
	"55P03": {},
}

// TxRunner runs units of work in a database transaction, retrying on
// transient lock failures.
type TxRunner struct {
	db          *gorm.DB
	lockTimeout time.Duration
	maxRetries  int
	log         *zap.Logger
}

func NewTxRunner(db *gorm.DB, lockTimeout time.Duration, maxRetries int, log *zap.Logger) *TxRunner {
	if log == nil {
		log = zap.NewNop()
	}
	return &TxRunner{db: db, lockTimeout: lockTimeout, maxRetries: maxRetries, log: log}
}

func (r *TxRunner) DB() *gorm.DB {
	return r.db
}

// WithinTx runs fn in a transaction. Domain errors returned by fn roll back
// and pass through unchanged; retry exhaustion is marked errs.ErrRetryable.
func (r *TxRunner) WithinTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	for attempt := 0; ; attempt++ {
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if IsPostgres(tx) && r.lockTimeout > 0 {
				stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())
				if err := tx.Exec(stmt).Error; err != nil {
					return err
				}
			}
			return fn(tx)
		})
		if err == nil {
			return nil
		}

		if !IsRetryable(err) {
			return err
		}

		if attempt >= r.maxRetries {
			r.log.Error("transaction failed after max retries",
				zap.Int("attempts", attempt+1),
				zap.Error(err))
			return errs.Mark(errs.Wrap(err, "transaction failed after max retries"), errs.ErrRetryable)
		}

		wait := time.Duration(attempt+1) * 50 * time.Millisecond
		r.log.Warn("retrying transaction due to retryable error",
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		_, ok := retryableCodes[pgErr.Code]
		return ok
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "sqlite_busy")
}

// IsConstraintViolation reports whether err violates the named constraint
// (unique 23505 or exclusion 23P01).
func IsConstraintViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != "23505" && pgErr.Code != "23P01" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed")
}
