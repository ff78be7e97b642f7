package lot

import (
	"parkly/internal/domain"
	"parkly/internal/modules/pricing"
)

type NearbyQuery struct {
	Lat    *float64 `form:"lat" binding:"required,min=-90,max=90"`
	Lng    *float64 `form:"lng" binding:"required,min=-180,max=180"`
	Radius float64  `form:"radius" binding:"omitempty,gt=0,max=50"`
}

type LotResponse struct {
	ID             int64            `json:"id"`
	Name           string           `json:"name"`
	Address        string           `json:"address"`
	Latitude       float64          `json:"latitude"`
	Longitude      float64          `json:"longitude"`
	PricePerHour   string           `json:"price_per_hour,omitempty"`
	Status         domain.LotStatus `json:"status"`
	TotalSpots     int64            `json:"total_spots"`
	AvailableSpots int64            `json:"available_spots"`
	DistanceKm     *float64         `json:"distance_km,omitempty"`
	IsSaved        *bool            `json:"is_saved,omitempty"`
}

type SpotResponse struct {
	ID         int64             `json:"id"`
	SpotNumber string            `json:"spot_number"`
	Type       domain.SpotType   `json:"type"`
	Status     domain.SpotStatus `json:"status"`
}

func toLotResponse(l *domain.ParkingLot) LotResponse {
	out := LotResponse{
		ID:        l.ID,
		Name:      l.Name,
		Address:   l.Address,
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
		Status:    l.Status,
	}
	if rate, err := pricing.LotRate(l); err == nil {
		out.PricePerHour = rate.PerHour().StringFixed(2)
	}
	return out
}

func toSpotResponse(s domain.Spot) SpotResponse {
	return SpotResponse{ID: s.ID, SpotNumber: s.SpotNumber, Type: s.Type, Status: s.Status}
}
