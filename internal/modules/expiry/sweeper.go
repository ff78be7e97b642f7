// Package expiry reconciles pending bookings whose start passed without an
// entrance scan.
package expiry

import (
	"context"
	"time"

	"go.uber.org/zap"

	"parkly/internal/domain"
	"parkly/internal/pkg/clock"
	"parkly/internal/pkg/errs"
	"parkly/internal/pkg/metrics"
)

const defaultBatchSize = 200

// StaleLister finds pending bookings that started before cutoff.
type StaleLister interface {
	StalePendingIDs(ctx context.Context, cutoff time.Time, limit int) ([]int64, error)
}

// Expirer moves one booking to a terminal status in its own transaction.
type Expirer interface {
	ExpireStale(ctx context.Context, id int64, target domain.BookingStatus, cutoff time.Time) (bool, error)
}

type Config struct {
	Interval  time.Duration
	Grace     time.Duration
	Status    domain.BookingStatus
	BatchSize int
}

type Result struct {
	Processed int
	Skipped   int
	Failed    int
}

type Sweeper struct {
	bookings StaleLister
	expirer  Expirer
	locker   Locker
	clock    clock.Clock
	cfg      Config
	log      *zap.Logger
}

// NewSweeper builds a sweeper. locker may be nil when a single instance runs.
func NewSweeper(bookings StaleLister, expirer Expirer, locker Locker, clk clock.Clock, cfg Config, log *zap.Logger) *Sweeper {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Status == "" {
		cfg.Status = domain.BookingCanceled
	}
	return &Sweeper{
		bookings: bookings,
		expirer:  expirer,
		locker:   locker,
		clock:    clk,
		cfg:      cfg,
		log:      log,
	}
}

// SweepOnce handles one batch. A booking that fails is logged and left for
// the next tick; it never stops the rest of the batch.
func (s *Sweeper) SweepOnce(ctx context.Context) (Result, error) {
	var res Result

	if s.locker != nil {
		release, ok, err := s.locker.Acquire(ctx)
		if err != nil {
			return res, err
		}
		if !ok {
			s.log.Debug("expiry sweep skipped, another instance holds the lock")
			return res, nil
		}
		defer release(context.WithoutCancel(ctx))
	}

	cutoff := s.clock.Now().Add(-s.cfg.Grace)
	ids, err := s.bookings.StalePendingIDs(ctx, cutoff, s.cfg.BatchSize)
	if err != nil {
		return res, errs.Internal(err, "list stale bookings")
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		expired, err := s.expirer.ExpireStale(ctx, id, s.cfg.Status, cutoff)
		switch {
		case err != nil:
			res.Failed++
			s.log.Error("expire booking failed",
				zap.Int64("booking_id", id),
				zap.String("code", errs.CodeOf(err)),
				zap.Error(err))
		case expired:
			res.Processed++
		default:
			res.Skipped++
		}
	}

	metrics.RecordSweep(res.Processed, res.Skipped, res.Failed)
	if len(ids) > 0 {
		s.log.Info("expiry sweep finished",
			zap.Time("cutoff", cutoff),
			zap.String("status", string(s.cfg.Status)),
			zap.Int("processed", res.Processed),
			zap.Int("skipped", res.Skipped),
			zap.Int("failed", res.Failed))
	}
	return res, nil
}

// Run sweeps immediately and then on every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		if _, err := s.SweepOnce(ctx); err != nil {
			s.log.Error("expiry sweep failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
