package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"parkly/internal/middleware"
	"parkly/internal/modules/auth"
	"parkly/internal/modules/booking"
	"parkly/internal/modules/lot"
	"parkly/internal/modules/notification"
	"parkly/internal/modules/vehicle"
	"parkly/internal/modules/wallet"
)

// Router mounts every HTTP route. limiter may be nil to disable rate limiting.
func (a *App) Router(limiter *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RequestLogger(a.log))
	r.Use(middleware.ErrorLogger(a.log))
	r.Use(middleware.CORS(a.Cfg.CORSOrigins))
	if a.Cfg.Metrics.Enabled {
		r.Use(middleware.Metrics())
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	r.GET("/health", a.health)

	authHandler := auth.NewHandler(a.AuthService)
	walletHandler := wallet.NewHandler(a.WalletService)
	bookingHandler := booking.NewHandler(a.BookingService)
	lotHandler := lot.NewHandler(a.LotService)
	vehicleHandler := vehicle.NewHandler(a.VehicleService)
	wsHandler := notification.NewHandler(a.Hub, a.Cfg.CORSOrigins, a.log.Named("ws"))

	v1 := r.Group("/api/v1")
	if limiter != nil {
		v1.Use(middleware.RateLimit(limiter))
	}
	{
		// public
		authHandler.RegisterPublicRoutes(v1)
		lotHandler.RegisterRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(a.JWT))
		{
			authHandler.RegisterProtectedRoutes(protected)
			lotHandler.RegisterProtectedRoutes(protected)
			walletHandler.RegisterRoutes(protected)
			vehicleHandler.RegisterRoutes(protected)
			bookingHandler.RegisterRoutes(protected)
			wsHandler.RegisterRoutes(protected)
		}

		// scanners authenticate with the shared gate token, not a user JWT
		gate := v1.Group("")
		gate.Use(middleware.GateToken(a.Cfg.Auth.GateToken, a.log))
		{
			bookingHandler.RegisterGateRoutes(gate)
		}
	}

	return r
}

func (a *App) health(c *gin.Context) {
	sqlDB, err := a.DB.DB()
	if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
