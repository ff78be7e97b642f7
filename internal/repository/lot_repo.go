package repository

import (
	"context"

	"gorm.io/gorm"

	"parkly/internal/domain"
)

type LotRepository struct {
	db *gorm.DB
}

func NewLotRepository(db *gorm.DB) *LotRepository {
	return &LotRepository{db: db}
}

func (r *LotRepository) GetByID(ctx context.Context, id int64) (*domain.ParkingLot, error) {
	var lot domain.ParkingLot
	if err := r.db.WithContext(ctx).First(&lot, id).Error; err != nil {
		return nil, err
	}
	return &lot, nil
}

// Bounds is a latitude/longitude box used to prefilter distance searches.
type Bounds struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

func (r *LotRepository) ListActiveWithin(ctx context.Context, b Bounds) ([]domain.ParkingLot, error) {
	var out []domain.ParkingLot
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.LotActive).
		Where("latitude BETWEEN ? AND ?", b.MinLat, b.MaxLat).
		Where("longitude BETWEEN ? AND ?", b.MinLng, b.MaxLng).
		Find(&out).Error
	return out, err
}
