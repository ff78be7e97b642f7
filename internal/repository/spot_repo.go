package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"parkly/internal/domain"
)

type SpotRepository struct {
	db *gorm.DB
}

func NewSpotRepository(db *gorm.DB) *SpotRepository {
	return &SpotRepository{db: db}
}

func (r *SpotRepository) WithTx(tx *gorm.DB) *SpotRepository {
	return &SpotRepository{db: tx}
}

func (r *SpotRepository) GetByID(ctx context.Context, id int64) (*domain.Spot, error) {
	var s domain.Spot
	if err := r.db.WithContext(ctx).Preload("Lot").First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// LockByID row-locks the spot and loads its lot. The spot lock serializes
// every booking mutation on that spot.
func (r *SpotRepository) LockByID(ctx context.Context, id int64) (*domain.Spot, error) {
	var s domain.Spot
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&s, id).Error
	if err != nil {
		return nil, err
	}

	var lot domain.ParkingLot
	if err := r.db.WithContext(ctx).First(&lot, s.ParkingLotID).Error; err != nil {
		return nil, err
	}
	s.Lot = &lot
	return &s, nil
}

func (r *SpotRepository) UpdateStatus(ctx context.Context, id int64, status domain.SpotStatus) error {
	return r.db.WithContext(ctx).
		Model(&domain.Spot{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *SpotRepository) ListByLot(ctx context.Context, lotID int64) ([]domain.Spot, error) {
	var out []domain.Spot
	err := r.db.WithContext(ctx).
		Where("parking_lot_id = ?", lotID).
		Order("spot_number ASC").
		Find(&out).Error
	return out, err
}

type SpotCounts struct {
	LotID     int64
	Total     int64
	Available int64
}

func (r *SpotRepository) CountByLots(ctx context.Context, lotIDs []int64) (map[int64]SpotCounts, error) {
	out := make(map[int64]SpotCounts, len(lotIDs))
	if len(lotIDs) == 0 {
		return out, nil
	}

	var rows []SpotCounts
	err := r.db.WithContext(ctx).
		Model(&domain.Spot{}).
		Select("parking_lot_id AS lot_id, COUNT(*) AS total, SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS available", domain.SpotAvailable).
		Where("parking_lot_id IN ?", lotIDs).
		Group("parking_lot_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.LotID] = row
	}
	return out, nil
}
