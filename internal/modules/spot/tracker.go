package spot

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"parkly/internal/domain"
	"parkly/internal/pkg/errs"
	"parkly/internal/repository"
)

var (
	ErrSpotNotFound      = errs.Define(errs.ErrNotFound, "SPOT_NOT_FOUND", "parking spot not found")
	ErrSpotUnavailable   = errs.Define(errs.ErrConflict, "SPOT_UNAVAILABLE", "parking spot is not available")
	ErrInvalidTransition = errs.Define(errs.ErrConflict, "INVALID_SPOT_TRANSITION", "parking spot cannot change to the requested status")
)

// allowed lists the legal spot status moves driven by bookings.
var allowed = map[domain.SpotStatus][]domain.SpotStatus{
	domain.SpotAvailable: {domain.SpotReserved},
	domain.SpotReserved:  {domain.SpotOccupied, domain.SpotAvailable},
	domain.SpotOccupied:  {domain.SpotAvailable},
}

func canMove(from, to domain.SpotStatus) bool {
	for _, s := range allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Tracker keeps the cached spot status in step with bookings. Every
// transition runs on the caller's transaction after LockSpot.
type Tracker struct {
	spots    *repository.SpotRepository
	bookings *repository.BookingRepository
}

func NewTracker(spots *repository.SpotRepository, bookings *repository.BookingRepository) *Tracker {
	return &Tracker{spots: spots, bookings: bookings}
}

// IsAvailable reports whether the spot can take a new booking right now.
func (t *Tracker) IsAvailable(ctx context.Context, spotID int64) (bool, error) {
	s, err := t.spots.GetByID(ctx, spotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrSpotNotFound
		}
		return false, errs.Internal(err, "get spot")
	}
	return Bookable(s), nil
}

// Bookable requires an available spot in an active lot.
func Bookable(s *domain.Spot) bool {
	if s.Status != domain.SpotAvailable {
		return false
	}
	return s.Lot == nil || s.Lot.Status == domain.LotActive
}

func (t *Tracker) HasOverlap(ctx context.Context, spotID int64, start, end time.Time, excluding int64) (bool, error) {
	ok, err := t.bookings.HasOverlap(ctx, spotID, start, end, excluding)
	if err != nil {
		return false, errs.Internal(err, "check overlap")
	}
	return ok, nil
}

// HasOverlapTx evaluates the overlap predicate inside tx, after the spot lock.
func (t *Tracker) HasOverlapTx(ctx context.Context, tx *gorm.DB, spotID int64, start, end time.Time, excluding int64) (bool, error) {
	ok, err := t.bookings.WithTx(tx).HasOverlap(ctx, spotID, start, end, excluding)
	if err != nil {
		return false, errs.Internal(err, "check overlap")
	}
	return ok, nil
}

// LockSpot row-locks the spot (with its lot loaded) for the rest of tx.
func (t *Tracker) LockSpot(ctx context.Context, tx *gorm.DB, spotID int64) (*domain.Spot, error) {
	s, err := t.spots.WithTx(tx).LockByID(ctx, spotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSpotNotFound
		}
		return nil, errs.Internal(err, "lock spot")
	}
	return s, nil
}

// Reserve marks an available spot as held by a pending booking.
func (t *Tracker) Reserve(ctx context.Context, tx *gorm.DB, s *domain.Spot) error {
	return t.move(ctx, tx, s, domain.SpotReserved)
}

// Occupy marks a reserved spot as physically taken.
func (t *Tracker) Occupy(ctx context.Context, tx *gorm.DB, s *domain.Spot) error {
	return t.move(ctx, tx, s, domain.SpotOccupied)
}

// Release frees a reserved or occupied spot. A spot that is already
// available or under maintenance is left as is.
func (t *Tracker) Release(ctx context.Context, tx *gorm.DB, s *domain.Spot) error {
	if s.Status == domain.SpotAvailable || s.Status == domain.SpotMaintenance {
		return nil
	}
	return t.move(ctx, tx, s, domain.SpotAvailable)
}

func (t *Tracker) move(ctx context.Context, tx *gorm.DB, s *domain.Spot, to domain.SpotStatus) error {
	if !canMove(s.Status, to) {
		return ErrInvalidTransition
	}
	if err := t.spots.WithTx(tx).UpdateStatus(ctx, s.ID, to); err != nil {
		return errs.Internal(err, "update spot status")
	}
	s.Status = to
	return nil
}
