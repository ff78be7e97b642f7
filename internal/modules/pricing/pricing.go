// Package pricing turns a lot rate and a duration into a charge.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"parkly/internal/domain"
	"parkly/internal/pkg/errs"
)

var (
	ErrRateMissing  = errs.Define(errs.ErrValidation, "RATE_MISSING", "parking lot has no price configured")
	ErrRateNegative = errs.Define(errs.ErrValidation, "RATE_NEGATIVE", "parking lot price must not be negative")
)

var minutesPerHour = decimal.NewFromInt(60)

// Rate is the hourly price of a lot. The zero value is not usable.
type Rate struct {
	perHour decimal.Decimal
}

// NewRate normalizes the hourly and legacy per-minute columns into one rate.
// The hourly price wins when both are present.
func NewRate(perHour, perMinute *decimal.Decimal) (Rate, error) {
	var hourly decimal.Decimal
	switch {
	case perHour != nil:
		hourly = *perHour
	case perMinute != nil:
		hourly = perMinute.Mul(minutesPerHour)
	default:
		return Rate{}, ErrRateMissing
	}

	if hourly.IsNegative() {
		return Rate{}, ErrRateNegative
	}
	return Rate{perHour: hourly}, nil
}

// LotRate reads the rate columns of a lot.
func LotRate(lot *domain.ParkingLot) (Rate, error) {
	var perHour, perMinute *decimal.Decimal
	if lot.PricePerHour.Valid {
		perHour = &lot.PricePerHour.Decimal
	}
	if lot.PricePerMinute.Valid {
		perMinute = &lot.PricePerMinute.Decimal
	}
	return NewRate(perHour, perMinute)
}

func (r Rate) PerHour() decimal.Decimal {
	return r.perHour
}

// Price charges perHour/60 per minute, at least one minute, rounded half-up
// to two decimals.
func (r Rate) Price(minutes int64) decimal.Decimal {
	if minutes < 1 {
		minutes = 1
	}
	return r.perHour.Mul(decimal.NewFromInt(minutes)).Div(minutesPerHour).Round(2)
}

// PriceWindow prices the whole minutes between from and to.
func (r Rate) PriceWindow(from, to time.Time) decimal.Decimal {
	return r.Price(BillableMinutes(from, to))
}

// BillableMinutes counts whole minutes in [from, to), floored at one.
func BillableMinutes(from, to time.Time) int64 {
	minutes := int64(to.Sub(from) / time.Minute)
	if minutes < 1 {
		return 1
	}
	return minutes
}
