package database

import (
	"fmt"

	"gorm.io/gorm"

	"parkly/internal/domain"
)

// BookingOverlapConstraint rejects two live bookings on one spot with
// intersecting [start, end) windows.
const BookingOverlapConstraint = "bookings_no_overlap"

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(domain.Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if !IsPostgres(db) {
		return nil
	}

	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS btree_gist`,
		fmt.Sprintf(`DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN
		ALTER TABLE bookings ADD CONSTRAINT %s
			EXCLUDE USING gist (spot_id WITH =, tstzrange(start_time, end_time, '[]') WITH &&)
			WHERE (status IN ('pending', 'active'));
	END IF;
END $$`, BookingOverlapConstraint, BookingOverlapConstraint),
		`DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'bookings_window_check') THEN
		ALTER TABLE bookings ADD CONSTRAINT bookings_window_check CHECK (start_time < end_time);
	END IF;
END $$`,
		`DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'wallets_balance_check') THEN
		ALTER TABLE wallets ADD CONSTRAINT wallets_balance_check CHECK (balance >= 0);
	END IF;
END $$`,
	}

	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("apply constraint: %w", err)
		}
	}
	return nil
}
