package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"parkly/internal/app"
	"parkly/internal/config"
	"parkly/internal/database"
	"parkly/internal/pkg/logger"
)

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

	db, err := database.Connect(cfg.DB.URL, zlog)
	if err != nil {
		zlog.Fatal("db connect failed", zap.Error(err))
	}

	rdb := app.RedisClient(cfg.Redis)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Sweep.LockTTL)
	defer cancel()

	start := time.Now()
	res, err := app.New(cfg, db, nil, zlog).Sweeper(rdb).SweepOnce(ctx)
	if err != nil {
		zlog.Fatal("expire bookings failed", zap.Error(err))
	}

	zlog.Info("expire bookings completed",
		zap.Int("processed", res.Processed),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed),
		zap.Duration("took", time.Since(start)))
}
