package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingActive    BookingStatus = "active"
	BookingCompleted BookingStatus = "completed"
	BookingCanceled  BookingStatus = "canceled"
	BookingExpired   BookingStatus = "expired"
)

// LiveBookingStatuses hold a spot and take part in overlap checks.
var LiveBookingStatuses = []BookingStatus{BookingPending, BookingActive}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingCompleted || s == BookingCanceled || s == BookingExpired
}

type Booking struct {
	ID              int64           `json:"id" gorm:"primaryKey"`
	UserID          int64           `json:"user_id" gorm:"not null;index"`
	SpotID          int64           `json:"spot_id" gorm:"not null;index:idx_bookings_spot_window"`
	VehicleID       int64           `json:"vehicle_id" gorm:"not null"`
	StartTime       time.Time       `json:"start_time" gorm:"not null;index:idx_bookings_spot_window"`
	EndTime         time.Time       `json:"end_time" gorm:"not null;index:idx_bookings_spot_window"`
	ActualStartTime *time.Time      `json:"actual_start_time,omitempty"`
	ActualEndTime   *time.Time      `json:"actual_end_time,omitempty"`
	Status          BookingStatus   `json:"status" gorm:"size:16;not null;default:pending;index"`
	TotalPrice      decimal.Decimal `json:"total_price" gorm:"type:numeric(12,2);not null;default:0"`
	QRCodeToken     string          `json:"qr_code_token" gorm:"size:64;not null;uniqueIndex"`
	DurationMinutes *int64          `json:"duration_minutes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	Spot    *Spot    `json:"spot,omitempty" gorm:"foreignKey:SpotID"`
	Vehicle *Vehicle `json:"vehicle,omitempty" gorm:"foreignKey:VehicleID"`
}

// Models lists every persisted type in migration order.
func Models() []any {
	return []any{
		&User{},
		&Wallet{},
		&Transaction{},
		&ParkingLot{},
		&Spot{},
		&SavedParkingLot{},
		&Vehicle{},
		&Booking{},
	}
}
