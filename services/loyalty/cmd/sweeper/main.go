package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pointstack/pkg/cache"
	"pointstack/pkg/config"
	"pointstack/pkg/database"
	"pointstack/pkg/logger"
	"pointstack/pkg/queue"
	"pointstack/services/loyalty/internal/repo/persistent"
	"pointstack/services/loyalty/internal/usecase"
)

// The sweeper flips pending vouchers to expired once their window passes and
// emits near-expiry notices. It runs as its own process so a slow sweep never
// competes with request handling.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New()

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v", err)
		panic(err)
	}

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Error("Failed to connect to RabbitMQ: %v", err)
		panic(err)
	}

	store := persistent.NewStore(db)
	signer := usecase.NewQRSigner(cfg.VoucherSigningSecret)
	voucherUseCase := usecase.NewVoucherUseCase(store, signer, queueClient, redisClient, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	log.Info("Voucher sweeper starting, interval %s, notice window %s", cfg.SweepInterval, cfg.ExpiryNoticeWindow)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sweep := func() {
		expired, err := voucherUseCase.ExpireDue(ctx)
		if err != nil {
			log.Error("Expiry sweep failed: %v", err)
		} else if expired > 0 {
			log.Info("Expired %d vouchers", expired)
		}

		notified, err := voucherUseCase.NotifyExpiring(ctx, cfg.ExpiryNoticeWindow)
		if err != nil {
			log.Error("Near-expiry notification failed: %v", err)
		} else if notified > 0 {
			log.Info("Sent %d near-expiry notices", notified)
		}
	}

	sweep()

	for {
		select {
		case <-ticker.C:
			sweep()
		case <-quit:
			log.Info("Shutting down voucher sweeper...")
			cancel()

			sqlDB, err := db.DB()
			if err == nil {
				if err := sqlDB.Close(); err != nil {
					log.Error("Error closing database: %v", err)
				}
			}
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis: %v", err)
			}
			if err := queueClient.Close(); err != nil {
				log.Error("Error closing RabbitMQ: %v", err)
			}

			log.Info("Voucher sweeper exited")
			return
		}
	}
}
