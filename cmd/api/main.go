package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"parkly/internal/app"
	"parkly/internal/config"
	"parkly/internal/database"
	"parkly/internal/middleware"
	"parkly/internal/pkg/logger"
)

const rateLimitTTL = 10 * time.Minute

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
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DB.URL, zlog)
	if err != nil {
		zlog.Fatal("db connect failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zlog.Fatal("db migrate failed", zap.Error(err))
	}

	a := app.New(cfg, db, nil, zlog)
	defer a.Hub.Close()

	limiter := middleware.NewRateLimiter(cfg.Limits.RPS, cfg.Limits.Burst, rateLimitTTL)

	r := a.Router(limiter)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pruneStop := make(chan struct{})
	go limiter.RunPruner(pruneStop)
	defer close(pruneStop)

	if cfg.Sweep.Enabled {
		rdb := app.RedisClient(cfg.Redis)
		if rdb != nil {
			defer func() { _ = rdb.Close() }()
		} else {
			zlog.Warn("REDIS_ADDR not set, expiry sweep runs without a distributed lock")
		}
		go a.Sweeper(rdb).Run(ctx)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}
