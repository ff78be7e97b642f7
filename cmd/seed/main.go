package main

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"parkly/internal/app"
	"parkly/internal/config"
	"parkly/internal/database"
	"parkly/internal/domain"
	"parkly/internal/modules/auth"
	"parkly/internal/modules/vehicle"
	"parkly/internal/pkg/logger"
)

type seedLot struct {
	name     string
	address  string
	lat, lng float64
	perHour  string
	regular  int
	disabled int
	ev       int
	status   domain.LotStatus
}

var lots = []seedLot{
	{name: "Martyrs Square Garage", address: "Martyrs Square, Tripoli", lat: 32.8953, lng: 13.1802, perHour: "10.00", regular: 12, disabled: 2, ev: 2, status: domain.LotActive},
	{name: "Old City Lot", address: "Souq al-Mushir, Tripoli", lat: 32.8969, lng: 13.1745, perHour: "7.50", regular: 8, disabled: 1, status: domain.LotActive},
	{name: "Airport Road P2", address: "Airport Road, Tripoli", lat: 32.8421, lng: 13.1610, perHour: "5.00", regular: 20, ev: 4, status: domain.LotActive},
	{name: "Gargaresh Mall", address: "Gargaresh Street, Tripoli", lat: 32.8603, lng: 13.1198, perHour: "0", regular: 6, status: domain.LotActive},
	{name: "Harbour Deck", address: "Port Road, Tripoli", lat: 32.9030, lng: 13.1890, perHour: "8.00", regular: 10, status: domain.LotMaintenance},
}

type seedUser struct {
	name, email, phone, password string
	deposit                      int64
	plates                       []string
}

var users = []seedUser{
	{name: "Jehad", email: "jehad@parkly.test", phone: "0910406699", password: "jehad123", deposit: 1000, plates: []string{"5-123456"}},
	{name: "Salma", email: "salma@parkly.test", phone: "0920000001", password: "salma123", deposit: 50, plates: []string{"5-654321", "10-111222"}},
	{name: "Omar", email: "omar@parkly.test", phone: "0930000002", password: "omar1234"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if cfg.IsProdLike() {
		zlog.Fatal("refusing to seed a production database")
	}

	db, err := database.Connect(cfg.DB.URL, zlog)
	if err != nil {
		zlog.Fatal("db connect failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zlog.Fatal("db migrate failed", zap.Error(err))
	}

	zlog.Info("cleaning old data")
	if err := clean(db); err != nil {
		zlog.Fatal("cleanup failed", zap.Error(err))
	}

	zlog.Info("creating lots")
	spots := 0
	for _, l := range lots {
		n, err := createLot(db, l)
		if err != nil {
			zlog.Fatal("create lot failed", zap.String("lot", l.name), zap.Error(err))
		}
		spots += n
	}

	ctx := context.Background()
	a := app.New(cfg, db, nil, zlog)

	zlog.Info("creating users")
	for _, su := range users {
		u, err := a.AuthService.Register(ctx, auth.RegisterRequest{
			Name:     su.name,
			Email:    su.email,
			Phone:    su.phone,
			Password: su.password,
		})
		if err != nil {
			zlog.Fatal("register failed", zap.String("email", su.email), zap.Error(err))
		}
		if su.deposit > 0 {
			if _, _, err := a.WalletService.Deposit(ctx, u.ID, decimal.NewFromInt(su.deposit), "seed deposit"); err != nil {
				zlog.Fatal("deposit failed", zap.String("email", su.email), zap.Error(err))
			}
		}
		for _, plate := range su.plates {
			if _, err := a.VehicleService.Create(ctx, u.ID, vehicle.CreateRequest{PlateNumber: plate}); err != nil {
				zlog.Fatal("vehicle failed", zap.String("plate", plate), zap.Error(err))
			}
		}
		zlog.Info("user created", zap.String("email", su.email), zap.String("password", su.password))
	}

	zlog.Info("seed completed",
		zap.Int("lots", len(lots)),
		zap.Int("spots", spots),
		zap.Int("users", len(users)))
}

func clean(db *gorm.DB) error {
	for _, table := range []string{"bookings", "transactions", "saved_parking_lots", "vehicles", "wallets", "parking_spots", "parking_lots", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	return nil
}

func createLot(db *gorm.DB, l seedLot) (int, error) {
	lot := domain.ParkingLot{
		Name:         l.name,
		Address:      l.address,
		Latitude:     l.lat,
		Longitude:    l.lng,
		PricePerHour: decimal.NewNullDecimal(decimal.RequireFromString(l.perHour)),
		Status:       l.status,
	}
	if err := db.Create(&lot).Error; err != nil {
		return 0, err
	}

	var spots []domain.Spot
	add := func(prefix string, n int, typ domain.SpotType) {
		for i := 1; i <= n; i++ {
			spots = append(spots, domain.Spot{
				ParkingLotID: lot.ID,
				SpotNumber:   fmt.Sprintf("%s-%02d", prefix, i),
				Type:         typ,
				Status:       domain.SpotAvailable,
			})
		}
	}
	add("A", l.regular, domain.SpotRegular)
	add("D", l.disabled, domain.SpotDisabled)
	add("E", l.ev, domain.SpotEV)

	if len(spots) == 0 {
		return 0, nil
	}
	return len(spots), db.Create(&spots).Error
}
