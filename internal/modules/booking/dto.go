package booking

import (
	"time"

	"parkly/internal/domain"
)

type CreateInput struct {
	SpotID    int64     `json:"spot_id" binding:"required,gt=0" validate:"required,gt=0"`
	VehicleID int64     `json:"vehicle_id" binding:"required,gt=0" validate:"required,gt=0"`
	StartTime time.Time `json:"start_time" binding:"required" validate:"required"`
	EndTime   time.Time `json:"end_time" binding:"required" validate:"required"`
}

type EditInput struct {
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	VehicleID *int64     `json:"vehicle_id" binding:"omitempty,gt=0"`
}

type ExtendRequest struct {
	ExtraMinutes int64 `json:"extra_minutes" binding:"required,gt=0"`
}

type DeleteRequest struct {
	Password string `json:"password" binding:"required"`
}

type ScanRequest struct {
	QRCode string `json:"qr_code" binding:"required,max=64"`
}

// ListQuery accepts either a tab (active_tab, completed_tab, cancelled_tab)
// or a literal status.
type ListQuery struct {
	Status  string `form:"status"`
	Page    int    `form:"page" binding:"omitempty,min=1"`
	PerPage int    `form:"per_page" binding:"omitempty,min=1,max=100"`
}

type BookingResponse struct {
	ID              int64                `json:"id"`
	SpotID          int64                `json:"spot_id"`
	SpotNumber      string               `json:"spot_number,omitempty"`
	ParkingLotID    int64                `json:"parking_lot_id,omitempty"`
	VehicleID       int64                `json:"vehicle_id"`
	PlateNumber     string               `json:"plate_number,omitempty"`
	StartTime       time.Time            `json:"start_time"`
	EndTime         time.Time            `json:"end_time"`
	ActualStartTime *time.Time           `json:"actual_start_time,omitempty"`
	ActualEndTime   *time.Time           `json:"actual_end_time,omitempty"`
	Status          domain.BookingStatus `json:"status"`
	TotalPrice      string               `json:"total_price"`
	QRCodeToken     string               `json:"qr_code_token"`
	DurationMinutes *int64               `json:"duration_minutes,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
}

type ExitResult struct {
	Booking         BookingResponse `json:"booking"`
	Charged         string          `json:"charged"`
	DurationMinutes int64           `json:"duration_minutes"`
}

type BookingPage struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PerPage  int               `json:"per_page"`
}

func ToResponse(b *domain.Booking) BookingResponse {
	out := BookingResponse{
		ID:              b.ID,
		SpotID:          b.SpotID,
		VehicleID:       b.VehicleID,
		StartTime:       b.StartTime,
		EndTime:         b.EndTime,
		ActualStartTime: b.ActualStartTime,
		ActualEndTime:   b.ActualEndTime,
		Status:          b.Status,
		TotalPrice:      b.TotalPrice.StringFixed(2),
		QRCodeToken:     b.QRCodeToken,
		DurationMinutes: b.DurationMinutes,
		CreatedAt:       b.CreatedAt,
	}
	if b.Spot != nil {
		out.SpotNumber = b.Spot.SpotNumber
		out.ParkingLotID = b.Spot.ParkingLotID
	}
	if b.Vehicle != nil {
		out.PlateNumber = b.Vehicle.PlateNumber
	}
	return out
}
