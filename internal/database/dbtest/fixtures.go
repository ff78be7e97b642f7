package dbtest

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"parkly/internal/domain"
)

// SeedUser inserts a user and an active wallet holding balance.
func SeedUser(t *testing.T, db *gorm.DB, email, balance string) (*domain.User, *domain.Wallet) {
	t.Helper()

	u := &domain.User{Name: email, Email: email, PasswordHash: "x", Role: domain.RoleUser}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	w := &domain.Wallet{
		UserID:   u.ID,
		Balance:  decimal.RequireFromString(balance),
		Currency: "LYD",
		Status:   domain.WalletActive,
	}
	if err := db.Create(w).Error; err != nil {
		t.Fatalf("seed wallet: %v", err)
	}
	return u, w
}

func SeedLot(t *testing.T, db *gorm.DB, perHour string) *domain.ParkingLot {
	t.Helper()

	lot := &domain.ParkingLot{
		Name:         "Central",
		Address:      "1 Main St",
		Latitude:     32.8872,
		Longitude:    13.1913,
		PricePerHour: decimal.NewNullDecimal(decimal.RequireFromString(perHour)),
		Status:       domain.LotActive,
	}
	if err := db.Create(lot).Error; err != nil {
		t.Fatalf("seed lot: %v", err)
	}
	return lot
}

func SeedSpot(t *testing.T, db *gorm.DB, lotID int64, number int) *domain.Spot {
	t.Helper()

	spot := &domain.Spot{
		ParkingLotID: lotID,
		SpotNumber:   fmt.Sprintf("A-%02d", number),
		Type:         domain.SpotRegular,
		Status:       domain.SpotAvailable,
	}
	if err := db.Create(spot).Error; err != nil {
		t.Fatalf("seed spot: %v", err)
	}
	return spot
}

func SeedVehicle(t *testing.T, db *gorm.DB, userID int64, plate string) *domain.Vehicle {
	t.Helper()

	v := &domain.Vehicle{UserID: userID, PlateNumber: plate, Make: "Toyota", Model: "Corolla"}
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("seed vehicle: %v", err)
	}
	return v
}

// Balance reloads the wallet balance for userID.
func Balance(t *testing.T, db *gorm.DB, userID int64) decimal.Decimal {
	t.Helper()

	var w domain.Wallet
	if err := db.Where("user_id = ?", userID).First(&w).Error; err != nil {
		t.Fatalf("load wallet: %v", err)
	}
	return w.Balance
}

// LedgerSum adds up every entry amount for the user's wallet.
func LedgerSum(t *testing.T, db *gorm.DB, userID int64) decimal.Decimal {
	t.Helper()

	var w domain.Wallet
	if err := db.Where("user_id = ?", userID).First(&w).Error; err != nil {
		t.Fatalf("load wallet: %v", err)
	}
	var entries []domain.Transaction
	if err := db.Where("wallet_id = ?", w.ID).Find(&entries).Error; err != nil {
		t.Fatalf("load ledger: %v", err)
	}
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Amount)
	}
	return sum
}
