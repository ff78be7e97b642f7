package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"parkly/internal/domain"
)

type SavedLotRepository struct {
	db *gorm.DB
}

func NewSavedLotRepository(db *gorm.DB) *SavedLotRepository {
	return &SavedLotRepository{db: db}
}

// Add bookmarks the lot. Saving an already saved lot is a no-op.
func (r *SavedLotRepository) Add(ctx context.Context, userID, lotID int64) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "parking_lot_id"}},
			DoNothing: true,
		}).
		Create(&domain.SavedParkingLot{UserID: userID, ParkingLotID: lotID}).Error
}

// Remove reports whether a bookmark was deleted.
func (r *SavedLotRepository) Remove(ctx context.Context, userID, lotID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND parking_lot_id = ?", userID, lotID).
		Delete(&domain.SavedParkingLot{})
	return res.RowsAffected > 0, res.Error
}

// ListActiveByUser returns the user's bookmarks whose lot is still active,
// newest first, with the lot preloaded.
func (r *SavedLotRepository) ListActiveByUser(ctx context.Context, userID int64) ([]domain.SavedParkingLot, error) {
	var out []domain.SavedParkingLot
	err := r.db.WithContext(ctx).
		InnerJoins("Lot", r.db.Where(&domain.ParkingLot{Status: domain.LotActive})).
		Where("saved_parking_lots.user_id = ?", userID).
		Order("saved_parking_lots.created_at DESC").
		Order("saved_parking_lots.id DESC").
		Find(&out).Error
	return out, err
}
