package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type LotStatus string

const (
	LotActive      LotStatus = "active"
	LotInactive    LotStatus = "inactive"
	LotMaintenance LotStatus = "maintenance"
)

type SpotStatus string

const (
	SpotAvailable   SpotStatus = "available"
	SpotReserved    SpotStatus = "reserved"
	SpotOccupied    SpotStatus = "occupied"
	SpotMaintenance SpotStatus = "maintenance"
)

type SpotType string

const (
	SpotRegular  SpotType = "regular"
	SpotDisabled SpotType = "disabled"
	SpotEV       SpotType = "ev"
)

// ParkingLot keeps both rate columns; PricePerMinute only exists on legacy rows.
type ParkingLot struct {
	ID             int64               `json:"id" gorm:"primaryKey"`
	Name           string              `json:"name" gorm:"size:255;not null"`
	Address        string              `json:"address" gorm:"size:500"`
	Latitude       float64             `json:"latitude" gorm:"not null;index:idx_lots_location"`
	Longitude      float64             `json:"longitude" gorm:"not null;index:idx_lots_location"`
	PricePerHour   decimal.NullDecimal `json:"price_per_hour" gorm:"type:numeric(10,2)"`
	PricePerMinute decimal.NullDecimal `json:"-" gorm:"type:numeric(8,2)"`
	Status         LotStatus           `json:"status" gorm:"size:16;not null;default:active;index"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`

	Spots []Spot `json:"spots,omitempty" gorm:"foreignKey:ParkingLotID"`
}

func (ParkingLot) TableName() string { return "parking_lots" }

type Spot struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	ParkingLotID int64      `json:"parking_lot_id" gorm:"not null;uniqueIndex:idx_spots_lot_number"`
	SpotNumber   string     `json:"spot_number" gorm:"size:32;not null;uniqueIndex:idx_spots_lot_number"`
	Type         SpotType   `json:"type" gorm:"size:16;not null;default:regular"`
	Status       SpotStatus `json:"status" gorm:"size:16;not null;default:available;index"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Lot *ParkingLot `json:"lot,omitempty" gorm:"foreignKey:ParkingLotID;constraint:OnDelete:CASCADE"`
}

func (Spot) TableName() string { return "parking_spots" }

// SavedParkingLot bookmarks a lot for a user. The pair is unique.
type SavedParkingLot struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	UserID       int64     `json:"user_id" gorm:"not null;index;uniqueIndex:idx_saved_user_lot"`
	ParkingLotID int64     `json:"parking_lot_id" gorm:"not null;uniqueIndex:idx_saved_user_lot"`
	CreatedAt    time.Time `json:"created_at"`

	User *User       `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Lot  *ParkingLot `json:"lot,omitempty" gorm:"foreignKey:ParkingLotID;constraint:OnDelete:CASCADE"`
}

func (SavedParkingLot) TableName() string { return "saved_parking_lots" }
