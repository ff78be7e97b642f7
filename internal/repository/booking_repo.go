package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"parkly/internal/domain"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) WithTx(tx *gorm.DB) *BookingRepository {
	return &BookingRepository{db: tx}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BookingRepository) Save(ctx context.Context, b *domain.Booking) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(b).Error
}

func (r *BookingRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&domain.Booking{}, id).Error
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.db.WithContext(ctx).Preload("Spot").Preload("Vehicle").First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) LockByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) LockByToken(ctx context.Context, token string) (*domain.Booking, error) {
	var b domain.Booking
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("qr_code_token = ?", token).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// HasOverlap reports whether a live booking on spotID intersects
// [start, end]. A booking that ends exactly when the candidate starts,
// or starts exactly when it ends, counts as an overlap.
func (r *BookingRepository) HasOverlap(ctx context.Context, spotID int64, start, end time.Time, excludeID int64) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("spot_id = ?", spotID).
		Where("status IN ?", domain.LiveBookingStatuses).
		Where("start_time <= ? AND end_time >= ?", end.UTC(), start.UTC())
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *BookingRepository) HasLiveForUser(ctx context.Context, userID, excludeID int64) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("user_id = ?", userID).
		Where("status IN ?", domain.LiveBookingStatuses)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// StalePendingIDs returns pending bookings whose start is before cutoff,
// oldest first.
func (r *BookingRepository) StalePendingIDs(ctx context.Context, cutoff time.Time, limit int) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("status = ?", domain.BookingPending).
		Where("start_time < ?", cutoff.UTC()).
		Order("start_time ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

type BookingFilter struct {
	Statuses []domain.BookingStatus
	Limit    int
	Offset   int
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID int64, f BookingFilter) ([]domain.Booking, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Booking{}).Where("user_id = ?", userID)
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []domain.Booking
	err := q.Preload("Spot").Preload("Vehicle").
		Order("start_time DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
