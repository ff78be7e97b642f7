// Package app wires repositories and services shared by the API server and
// the one-shot commands.
package app

import (
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"parkly/internal/config"
	"parkly/internal/database"
	"parkly/internal/domain"
	"parkly/internal/modules/auth"
	"parkly/internal/modules/booking"
	"parkly/internal/modules/expiry"
	"parkly/internal/modules/lot"
	"parkly/internal/modules/notification"
	"parkly/internal/modules/spot"
	"parkly/internal/modules/vehicle"
	"parkly/internal/modules/wallet"
	"parkly/internal/pkg/clock"
	"parkly/internal/pkg/jwt"
	"parkly/internal/repository"
)

type App struct {
	Cfg *config.Config
	DB  *gorm.DB
	Tx  *database.TxRunner
	JWT *jwt.Service
	Hub *notification.Hub

	Bookings *repository.BookingRepository

	WalletService  *wallet.Service
	AuthService    *auth.Service
	BookingService *booking.Service
	LotService     *lot.Service
	VehicleService *vehicle.Service

	clock clock.Clock
	log   *zap.Logger
}

// New builds every service on top of db. clk may be nil.
func New(cfg *config.Config, db *gorm.DB, clk clock.Clock, log *zap.Logger) *App {
	if clk == nil {
		clk = clock.NewRealClock()
	}

	runner := database.NewTxRunner(db, cfg.DB.LockTimeout, cfg.DB.MaxRetries, log)

	userRepo := repository.NewUserRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	spotRepo := repository.NewSpotRepository(db)
	lotRepo := repository.NewLotRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)

	j := jwt.New(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)
	hub := notification.NewHub(log.Named("ws"))

	ledger := wallet.NewLedger(walletRepo)
	walletService := wallet.NewService(runner, walletRepo, ledger, cfg.DefaultCurrency, log.Named("wallet"))
	authService := auth.NewService(runner, userRepo, walletService, j, log.Named("auth"))

	bookingService := booking.NewService(booking.Deps{
		Tx:        runner,
		Bookings:  bookingRepo,
		Vehicles:  vehicleRepo,
		Tracker:   spot.NewTracker(spotRepo, bookingRepo),
		Ledger:    ledger,
		Passwords: authService,
		Notifier:  hub,
		Clock:     clk,
		Log:       log.Named("booking"),
	})

	return &App{
		Cfg:            cfg,
		DB:             db,
		Tx:             runner,
		JWT:            j,
		Hub:            hub,
		Bookings:       bookingRepo,
		WalletService:  walletService,
		AuthService:    authService,
		BookingService: bookingService,
		LotService:     lot.NewService(lotRepo, spotRepo, repository.NewSavedLotRepository(db)),
		VehicleService: vehicle.NewService(vehicleRepo),
		clock:          clk,
		log:            log,
	}
}

// Sweeper returns the stale booking sweeper. With a nil redis client the
// sweep runs unlocked, which is only safe for a single instance.
func (a *App) Sweeper(rdb *redis.Client) *expiry.Sweeper {
	var locker expiry.Locker
	if rdb != nil {
		locker = expiry.NewRedisLocker(rdb, a.Cfg.Sweep.LockTTL, a.log.Named("sweep-lock"))
	}
	return expiry.NewSweeper(a.Bookings, a.BookingService, locker, a.clock, expiry.Config{
		Interval: a.Cfg.Sweep.Interval,
		Grace:    a.Cfg.Sweep.Grace,
		Status:   domain.BookingStatus(a.Cfg.Sweep.Status),
	}, a.log.Named("sweep"))
}

// RedisClient returns nil when no address is configured.
func RedisClient(cfg config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}
