package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"parkly/internal/database"
	"parkly/internal/domain"
	"parkly/internal/modules/pricing"
	"parkly/internal/modules/spot"
	"parkly/internal/modules/wallet"
	"parkly/internal/pkg/clock"
	"parkly/internal/pkg/errs"
	"parkly/internal/pkg/metrics"
	"parkly/internal/pkg/validator"
	"parkly/internal/repository"
)

const (
	maxWindow       = 7 * 24 * time.Hour
	maxExtendMinute = 24 * 60
	defaultPerPage  = 20
)

type Deps struct {
	Tx        *database.TxRunner
	Bookings  *repository.BookingRepository
	Vehicles  *repository.VehicleRepository
	Tracker   *spot.Tracker
	Ledger    *wallet.Ledger
	Passwords PasswordVerifier
	Notifier  Notifier
	Clock     clock.Clock
	Log       *zap.Logger
}

// Service is the booking state machine. Each operation is one database
// transaction that locks the booking, then the spot, then the wallet.
type Service struct {
	tx        *database.TxRunner
	bookings  *repository.BookingRepository
	vehicles  *repository.VehicleRepository
	tracker   *spot.Tracker
	ledger    *wallet.Ledger
	passwords PasswordVerifier
	notifier  Notifier
	clock     clock.Clock
	log       *zap.Logger
}

func NewService(d Deps) *Service {
	if d.Clock == nil {
		d.Clock = clock.NewRealClock()
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &Service{
		tx:        d.Tx,
		bookings:  d.Bookings,
		vehicles:  d.Vehicles,
		tracker:   d.Tracker,
		ledger:    d.Ledger,
		passwords: d.Passwords,
		notifier:  d.Notifier,
		clock:     d.Clock,
		log:       d.Log,
	}
}

// Create reserves a spot for [StartTime, EndTime), charging the full price
// up front.
func (s *Service) Create(ctx context.Context, caller domain.Caller, in CreateInput) (*domain.Booking, error) {
	if err := validator.Struct(in); err != nil {
		return nil, s.fail("create", err)
	}
	start, end := in.StartTime.UTC(), in.EndTime.UTC()
	if err := s.checkWindow(start, end, true); err != nil {
		return nil, s.fail("create", err)
	}

	var (
		b      *domain.Booking
		charge *domain.Transaction
	)
	err := s.run(ctx, "create", func(tx *gorm.DB) error {
		vehicle, err := s.ownedVehicle(ctx, tx, caller.UserID, in.VehicleID)
		if err != nil {
			return err
		}

		sp, err := s.tracker.LockSpot(ctx, tx, in.SpotID)
		if err != nil {
			return err
		}
		if !spot.Bookable(sp) {
			return spot.ErrSpotUnavailable
		}
		overlap, err := s.tracker.HasOverlapTx(ctx, tx, sp.ID, start, end, 0)
		if err != nil {
			return err
		}
		if overlap {
			return ErrOverlap
		}

		// Holding the wallet lock makes the per-user check below race free.
		if _, err := s.ledger.LockWallet(ctx, tx, caller.UserID); err != nil {
			return err
		}
		dup, err := s.bookings.WithTx(tx).HasLiveForUser(ctx, caller.UserID, 0)
		if err != nil {
			return errs.Internal(err, "check live bookings")
		}
		if dup {
			return ErrDuplicateActive
		}

		rate, err := pricing.LotRate(sp.Lot)
		if err != nil {
			return err
		}
		price := rate.PriceWindow(start, end)

		b = &domain.Booking{
			UserID:      caller.UserID,
			SpotID:      sp.ID,
			VehicleID:   vehicle.ID,
			StartTime:   start,
			EndTime:     end,
			Status:      domain.BookingPending,
			TotalPrice:  price,
			QRCodeToken: uuid.NewString(),
		}
		if err := s.bookings.WithTx(tx).Create(ctx, b); err != nil {
			return err
		}

		if price.IsPositive() {
			charge, err = s.ledger.Debit(ctx, tx, wallet.Entry{
				UserID:      caller.UserID,
				Amount:      price,
				BookingID:   &b.ID,
				Type:        domain.TransactionPayment,
				Description: fmt.Sprintf("Parking booking #%d", b.ID),
			})
			if err != nil {
				return err
			}
		}

		if err := s.tracker.Reserve(ctx, tx, sp); err != nil {
			return err
		}
		b.Spot, b.Vehicle = sp, vehicle
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.committed(ctx, "create", EventCreated, b, charge)
	return b, nil
}

// ScanEntrance starts a pending booking when its QR code is read at the gate.
func (s *Service) ScanEntrance(ctx context.Context, token string) (*domain.Booking, error) {
	var b *domain.Booking
	err := s.run(ctx, "scan_entrance", func(tx *gorm.DB) error {
		var err error
		b, err = s.lockByToken(ctx, tx, token)
		if err != nil {
			return err
		}
		if b.Status != domain.BookingPending {
			return ErrInvalidState
		}

		sp, err := s.tracker.LockSpot(ctx, tx, b.SpotID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		b.ActualStartTime = &now
		b.Status = domain.BookingActive
		if err := s.bookings.WithTx(tx).Save(ctx, b); err != nil {
			return errs.Internal(err, "save booking")
		}
		return s.tracker.Occupy(ctx, tx, sp)
	})
	if err != nil {
		return nil, err
	}

	s.committed(ctx, "scan_entrance", EventStarted, b)
	return b, nil
}

// ScanExit completes an active booking. The billable window runs from the
// earlier of the scheduled and actual start to the later of the scheduled
// end and now. Only the amount above the prepaid price is charged.
func (s *Service) ScanExit(ctx context.Context, token string) (*ExitResult, error) {
	var (
		b       *domain.Booking
		charge  *domain.Transaction
		charged = decimal.Zero
		minutes int64
	)
	err := s.run(ctx, "scan_exit", func(tx *gorm.DB) error {
		var err error
		b, err = s.lockByToken(ctx, tx, token)
		if err != nil {
			return err
		}
		if b.Status != domain.BookingActive {
			return ErrInvalidState
		}

		sp, err := s.tracker.LockSpot(ctx, tx, b.SpotID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		from := b.StartTime
		if b.ActualStartTime != nil && b.ActualStartTime.Before(from) {
			from = *b.ActualStartTime
		}
		to := b.EndTime
		if now.After(to) {
			to = now
		}
		minutes = pricing.BillableMinutes(from, to)

		rate, err := pricing.LotRate(sp.Lot)
		if err != nil {
			return err
		}
		final := rate.Price(minutes)
		if final.LessThan(b.TotalPrice) {
			final = b.TotalPrice
		}

		if extra := final.Sub(b.TotalPrice); extra.IsPositive() {
			charge, err = s.ledger.Debit(ctx, tx, wallet.Entry{
				UserID:      b.UserID,
				Amount:      extra,
				BookingID:   &b.ID,
				Type:        domain.TransactionPayment,
				Description: fmt.Sprintf("Parking overtime for booking #%d", b.ID),
			})
			if err != nil {
				return err
			}
			charged = extra
		}

		b.Status = domain.BookingCompleted
		b.ActualEndTime = &now
		b.DurationMinutes = &minutes
		b.TotalPrice = final
		if err := s.bookings.WithTx(tx).Save(ctx, b); err != nil {
			return errs.Internal(err, "save booking")
		}
		return s.tracker.Release(ctx, tx, sp)
	})
	if err != nil {
		return nil, err
	}

	s.committed(ctx, "scan_exit", EventCompleted, b, charge)
	return &ExitResult{
		Booking:         ToResponse(b),
		Charged:         charged.StringFixed(2),
		DurationMinutes: minutes,
	}, nil
}

// Cancel refunds a pending booking in full and frees its spot. Bookings
// cannot be canceled once their scheduled start has passed.
func (s *Service) Cancel(ctx context.Context, caller domain.Caller, id int64) (*domain.Booking, error) {
	var (
		b      *domain.Booking
		refund *domain.Transaction
	)
	err := s.run(ctx, "cancel", func(tx *gorm.DB) error {
		var err error
		b, err = s.lockOwned(ctx, tx, caller, id)
		if err != nil {
			return err
		}
		if s.clock.Now().After(b.StartTime) {
			return ErrAlreadyStarted
		}
		if b.Status != domain.BookingPending {
			return ErrInvalidState
		}

		sp, err := s.tracker.LockSpot(ctx, tx, b.SpotID)
		if err != nil {
			return err
		}
		refund, err = s.refund(ctx, tx, b, "Refund for canceled booking #%d")
		if err != nil {
			return err
		}

		b.Status = domain.BookingCanceled
		if err := s.bookings.WithTx(tx).Save(ctx, b); err != nil {
			return errs.Internal(err, "save booking")
		}
		return s.tracker.Release(ctx, tx, sp)
	})
	if err != nil {
		return nil, err
	}

	s.committed(ctx, "cancel", EventCanceled, b, refund)
	return b, nil
}

// Extend pushes the end of a pending or active booking out by extraMinutes,
// charging only the added time.
func (s *Service) Extend(ctx context.Context, caller domain.Caller, id int64, extraMinutes int64) (*domain.Booking, error) {
	if extraMinutes < 1 || extraMinutes > maxExtendMinute {
		return nil, s.fail("extend", ErrInvalidExtension)
	}

	var (
		b      *domain.Booking
		charge *domain.Transaction
	)
	err := s.run(ctx, "extend", func(tx *gorm.DB) error {
		var err error
		b, err = s.lockOwned(ctx, tx, caller, id)
		if err != nil {
			return err
		}
		if b.Status != domain.BookingPending && b.Status != domain.BookingActive {
			return ErrInvalidState
		}

		newEnd := b.EndTime.Add(time.Duration(extraMinutes) * time.Minute)
		if newEnd.Sub(b.StartTime) > maxWindow {
			return ErrMaxWindowExceeded
		}

		sp, err := s.tracker.LockSpot(ctx, tx, b.SpotID)
		if err != nil {
			return err
		}
		overlap, err := s.tracker.HasOverlapTx(ctx, tx, sp.ID, b.EndTime, newEnd, b.ID)
		if err != nil {
			return err
		}
		if overlap {
			return ErrOverlap
		}

		rate, err := pricing.LotRate(sp.Lot)
		if err != nil {
			return err
		}
		cost := rate.Price(extraMinutes)
		if cost.IsPositive() {
			charge, err = s.ledger.Debit(ctx, tx, wallet.Entry{
				UserID:      b.UserID,
				Amount:      cost,
				BookingID:   &b.ID,
				Type:        domain.TransactionPayment,
				Description: fmt.Sprintf("Extension of booking #%d by %d minutes", b.ID, extraMinutes),
			})
			if err != nil {
				return err
			}
		}

		b.EndTime = newEnd
		b.TotalPrice = b.TotalPrice.Add(cost)
		if err := s.bookings.WithTx(tx).Save(ctx, b); err != nil {
			return errs.Internal(err, "save booking")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.committed(ctx, "extend", EventExtended, b, charge)
	return b, nil
}

// Edit reschedules a pending booking or swaps its vehicle, settling the
// price difference against the wallet.
func (s *Service) Edit(ctx context.Context, caller domain.Caller, id int64, in EditInput) (*domain.Booking, error) {
	if in.StartTime == nil && in.EndTime == nil && in.VehicleID == nil {
		return nil, s.fail("edit", errs.Validation("nothing to update"))
	}

	var (
		b     *domain.Booking
		entry *domain.Transaction
	)
	err := s.run(ctx, "edit", func(tx *gorm.DB) error {
		var err error
		b, err = s.lockOwned(ctx, tx, caller, id)
		if err != nil {
			return err
		}
		if b.Status != domain.BookingPending {
			return ErrInvalidState
		}

		start, end := b.StartTime, b.EndTime
		if in.StartTime != nil {
			start = in.StartTime.UTC()
		}
		if in.EndTime != nil {
			end = in.EndTime.UTC()
		}
		if err := s.checkWindow(start, end, in.StartTime != nil); err != nil {
			return err
		}

		if in.VehicleID != nil {
			if _, err := s.ownedVehicle(ctx, tx, caller.UserID, *in.VehicleID); err != nil {
				return err
			}
			b.VehicleID = *in.VehicleID
		}

		sp, err := s.tracker.LockSpot(ctx, tx, b.SpotID)
		if err != nil {
			return err
		}
		if !start.Equal(b.StartTime) || !end.Equal(b.EndTime) {
			overlap, err := s.tracker.HasOverlapTx(ctx, tx, sp.ID, start, end, b.ID)
			if err != nil {
				return err
			}
			if overlap {
				return ErrOverlap
			}
		}

		rate, err := pricing.LotRate(sp.Lot)
		if err != nil {
			return err
		}
		newPrice := rate.PriceWindow(start, end)

		diff := newPrice.Sub(b.TotalPrice)
		switch {
		case diff.IsPositive():
			entry, err = s.ledger.Debit(ctx, tx, wallet.Entry{
				UserID:      b.UserID,
				Amount:      diff,
				BookingID:   &b.ID,
				Type:        domain.TransactionPayment,
				Description: fmt.Sprintf("Price difference for booking #%d", b.ID),
			})
		case diff.IsNegative():
			entry, err = s.ledger.Credit(ctx, tx, wallet.Entry{
				UserID:      b.UserID,
				Amount:      diff.Neg(),
				BookingID:   &b.ID,
				Type:        domain.TransactionRefund,
				Description: fmt.Sprintf("Price difference refund for booking #%d", b.ID),
			})
		}
		if err != nil {
			return err
		}

		b.StartTime, b.EndTime, b.TotalPrice = start, end, newPrice
		if err := s.bookings.WithTx(tx).Save(ctx, b); err != nil {
			return errs.Internal(err, "save booking")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.committed(ctx, "edit", EventUpdated, b, entry)
	return b, nil
}

// Delete removes a booking that has not started, after re-checking the
// caller's password. Pending bookings are refunded and release their spot.
func (s *Service) Delete(ctx context.Context, caller domain.Caller, id int64, password string) error {
	ok, err := s.passwords.VerifyPassword(ctx, caller.UserID, password)
	if err != nil {
		return s.fail("delete", errs.Internal(err, "verify password"))
	}
	if !ok {
		return s.fail("delete", ErrPasswordMismatch)
	}

	var (
		b      *domain.Booking
		refund *domain.Transaction
	)
	err = s.run(ctx, "delete", func(tx *gorm.DB) error {
		var err error
		b, err = s.lockOwned(ctx, tx, caller, id)
		if err != nil {
			return err
		}
		if b.Status == domain.BookingActive {
			return ErrInvalidState
		}
		if s.clock.Now().After(b.StartTime) {
			return ErrAlreadyStarted
		}

		// Only a live booking holds the spot; terminal ones must not free it.
		if b.Status == domain.BookingPending {
			sp, err := s.tracker.LockSpot(ctx, tx, b.SpotID)
			if err != nil {
				return err
			}
			refund, err = s.refund(ctx, tx, b, "Refund for deleted booking #%d")
			if err != nil {
				return err
			}
			if err := s.tracker.Release(ctx, tx, sp); err != nil {
				return err
			}
		}

		if err := s.bookings.WithTx(tx).Delete(ctx, b.ID); err != nil {
			return errs.Internal(err, "delete booking")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.committed(ctx, "delete", EventDeleted, b, refund)
	return nil
}

// ExpireStale moves one pending booking that started before cutoff into
// the terminal status, refunding it when the owner still has a wallet.
// It reports false when the booking no longer qualifies.
func (s *Service) ExpireStale(ctx context.Context, id int64, target domain.BookingStatus, cutoff time.Time) (bool, error) {
	if target != domain.BookingCanceled && target != domain.BookingExpired {
		return false, errs.Validation("sweep status must be canceled or expired, got %q", target)
	}

	var (
		b       *domain.Booking
		refund  *domain.Transaction
		expired bool
	)
	err := s.run(ctx, "expire", func(tx *gorm.DB) error {
		var err error
		b, err = s.bookings.WithTx(tx).LockByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return errs.Internal(err, "lock booking")
		}
		if b.Status != domain.BookingPending || !b.StartTime.Before(cutoff) {
			return nil
		}

		sp, err := s.tracker.LockSpot(ctx, tx, b.SpotID)
		if err != nil {
			return err
		}

		refund, err = s.refund(ctx, tx, b, "Refund for expired booking #%d")
		if errors.Is(err, wallet.ErrWalletNotFound) {
			s.log.Warn("stale booking has no wallet, skipping refund",
				zap.Int64("booking_id", b.ID),
				zap.Int64("user_id", b.UserID))
			err = nil
		}
		if err != nil {
			return err
		}

		b.Status = target
		if err := s.bookings.WithTx(tx).Save(ctx, b); err != nil {
			return errs.Internal(err, "save booking")
		}
		if err := s.tracker.Release(ctx, tx, sp); err != nil {
			return err
		}
		expired = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if expired {
		s.committed(ctx, "expire", EventExpired, b, refund)
	}
	return expired, nil
}

func (s *Service) Get(ctx context.Context, caller domain.Caller, id int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, errs.Internal(err, "get booking")
	}
	if b.UserID != caller.UserID {
		return nil, ErrBookingNotFound
	}
	return b, nil
}

func (s *Service) List(ctx context.Context, caller domain.Caller, q ListQuery) (*BookingPage, error) {
	statuses, err := statusesFor(q.Status)
	if err != nil {
		return nil, err
	}

	perPage := q.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}

	rows, total, err := s.bookings.ListByUser(ctx, caller.UserID, repository.BookingFilter{
		Statuses: statuses,
		Limit:    perPage,
		Offset:   (page - 1) * perPage,
	})
	if err != nil {
		return nil, errs.Internal(err, "list bookings")
	}

	out := &BookingPage{
		Bookings: make([]BookingResponse, 0, len(rows)),
		Total:    total,
		Page:     page,
		PerPage:  perPage,
	}
	for i := range rows {
		out.Bookings = append(out.Bookings, ToResponse(&rows[i]))
	}
	return out, nil
}

func statusesFor(filter string) ([]domain.BookingStatus, error) {
	switch strings.ToLower(strings.TrimSpace(filter)) {
	case "":
		return nil, nil
	case "active_tab":
		return []domain.BookingStatus{domain.BookingPending, domain.BookingActive}, nil
	case "completed_tab":
		return []domain.BookingStatus{domain.BookingCompleted}, nil
	case "cancelled_tab", "canceled_tab":
		return []domain.BookingStatus{domain.BookingCanceled, domain.BookingExpired}, nil
	}

	st := domain.BookingStatus(strings.ToLower(strings.TrimSpace(filter)))
	switch st {
	case domain.BookingPending, domain.BookingActive, domain.BookingCompleted, domain.BookingCanceled, domain.BookingExpired:
		return []domain.BookingStatus{st}, nil
	}
	return nil, errs.Validation("unknown booking status filter %q", filter)
}

func (s *Service) checkWindow(start, end time.Time, checkPast bool) error {
	if !start.Before(end) {
		return ErrInvalidWindow
	}
	if end.Sub(start) > maxWindow {
		return ErrMaxWindowExceeded
	}
	if checkPast && start.Before(s.clock.Now().Truncate(time.Minute)) {
		return ErrPastStartTime
	}
	return nil
}

func (s *Service) ownedVehicle(ctx context.Context, tx *gorm.DB, userID, vehicleID int64) (*domain.Vehicle, error) {
	v, err := s.vehicles.WithTx(tx).GetOwned(ctx, userID, vehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, errs.Internal(err, "get vehicle")
	}
	return v, nil
}

// lockOwned hides bookings of other users behind ErrBookingNotFound.
func (s *Service) lockOwned(ctx context.Context, tx *gorm.DB, caller domain.Caller, id int64) (*domain.Booking, error) {
	b, err := s.bookings.WithTx(tx).LockByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, errs.Internal(err, "lock booking")
	}
	if b.UserID != caller.UserID {
		return nil, ErrBookingNotFound
	}
	return b, nil
}

func (s *Service) lockByToken(ctx context.Context, tx *gorm.DB, token string) (*domain.Booking, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenNotFound
	}
	b, err := s.bookings.WithTx(tx).LockByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, errs.Internal(err, "lock booking by token")
	}
	return b, nil
}

func (s *Service) refund(ctx context.Context, tx *gorm.DB, b *domain.Booking, format string) (*domain.Transaction, error) {
	if !b.TotalPrice.IsPositive() {
		return nil, nil
	}
	return s.ledger.Credit(ctx, tx, wallet.Entry{
		UserID:      b.UserID,
		Amount:      b.TotalPrice,
		BookingID:   &b.ID,
		Type:        domain.TransactionRefund,
		Description: fmt.Sprintf(format, b.ID),
	})
}

// run executes fn in a retrying transaction and normalizes its failure.
func (s *Service) run(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	err := s.tx.WithinTx(ctx, fn)
	if err == nil {
		return nil
	}
	if database.IsConstraintViolation(err, database.BookingOverlapConstraint) {
		err = ErrOverlap
	}
	return s.fail(op, errs.Internal(err, op))
}

func (s *Service) fail(op string, err error) error {
	metrics.RecordBookingFailure(op, errs.CodeOf(err))
	if errs.KindOf(err) == errs.ErrInternal {
		s.log.Error("booking operation failed", zap.String("op", op), zap.Error(err))
	}
	return err
}

func (s *Service) committed(ctx context.Context, op, event string, b *domain.Booking, entries ...*domain.Transaction) {
	status := string(b.Status)
	if event == EventDeleted {
		status = "deleted"
	}
	metrics.RecordBookingTransition(op, status)
	for _, e := range entries {
		if e != nil {
			metrics.RecordLedgerEntry(string(e.Type))
		}
	}
	s.log.Info("booking transition",
		zap.String("op", op),
		zap.Int64("booking_id", b.ID),
		zap.Int64("user_id", b.UserID),
		zap.String("status", status),
		zap.String("total_price", b.TotalPrice.StringFixed(2)))

	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, b.UserID, event, map[string]any{"booking": ToResponse(b)}); err != nil {
		s.log.Warn("booking notification failed",
			zap.String("event", event),
			zap.Int64("booking_id", b.ID),
			zap.Error(err))
	}
}
