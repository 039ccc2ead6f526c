package main

import (
	"pointstack/pkg/cache"
	"pointstack/pkg/config"
	"pointstack/pkg/database"
	"pointstack/pkg/logger"
	"pointstack/pkg/queue"
	internal "pointstack/services/loyalty/internal/app"
)

// @title           Loyalty Service API
// @version         1.0
// @description     Points ledger, reward vouchers and tier management for PointStack merchants

// @contact.name   API Support
// @contact.email  support@pointstack.dev

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Validate secrets before serving anything
	if cfg.JWTSecret == "your-secret-key-change-in-production" || cfg.JWTSecret == "" {
		panic("JWT_SECRET must be set in environment variables")
	}
	if cfg.VoucherSigningSecret == "voucher-secret-change-in-production" || cfg.VoucherSigningSecret == "" {
		panic("VOUCHER_SIGNING_SECRET must be set in environment variables")
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

	internal.Run(cfg, log, db, redisClient, queueClient)
}
