package internal

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pointstack/pkg/config"
	"pointstack/pkg/jwt"
	"pointstack/pkg/logger"
	"pointstack/pkg/middleware"
	"pointstack/pkg/queue"
	loyaltyHTTP "pointstack/services/loyalty/internal/controller/http"
	"pointstack/services/loyalty/internal/repo/persistent"
	"pointstack/services/loyalty/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "pointstack/services/loyalty/docs" // Swagger docs
)

func Run(cfg *config.Config, log *logger.Logger, db *gorm.DB, redisClient *redis.Client, queueClient *queue.Client) {
	jwtService := jwt.NewService(cfg.JWTSecret)
	qrSigner := usecase.NewQRSigner(cfg.VoucherSigningSecret)

	// Initialize store
	store := persistent.NewStore(db)

	// Initialize use cases
	issuer := usecase.NewVoucherIssuer(qrSigner)
	ledgerUseCase := usecase.NewLedgerUseCase(store, issuer, queueClient, redisClient, log)
	voucherUseCase := usecase.NewVoucherUseCase(store, qrSigner, queueClient, redisClient, log)
	configUseCase := usecase.NewConfigUseCase(store, redisClient, log)

	// Initialize HTTP handlers
	ledgerHandler := loyaltyHTTP.NewLedgerHandler(ledgerUseCase, log)
	voucherHandler := loyaltyHTTP.NewVoucherHandler(voucherUseCase, log)
	adminHandler := loyaltyHTTP.NewAdminHandler(configUseCase, log)

	// Setup router
	r := gin.Default()

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000", "*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(jwtService))
	api.Use(middleware.RateLimitMiddleware(redisClient, 100, time.Minute))

	{
		api.POST("/loyalty/accrue", ledgerHandler.Accrue)
		api.POST("/loyalty/redeem", ledgerHandler.Redeem)
		api.POST("/transactions/:id/revoke", middleware.RequireRole("merchant", "admin"), ledgerHandler.Revoke)
		api.GET("/wallets/:business_id", ledgerHandler.GetWallet)
		api.GET("/wallets/:business_id/transactions", ledgerHandler.ListTransactions)
		api.POST("/vouchers/redeem", middleware.RequireRole("operator", "merchant", "admin"), voucherHandler.RedeemVoucher)

		admin := api.Group("/admin")
		admin.Use(middleware.RequireRole("merchant", "admin"))
		{
			admin.POST("/config", adminHandler.PutConfig)
			admin.POST("/config/deactivate", adminHandler.DeactivateProgram)
			admin.GET("/config/:business_id", adminHandler.GetConfig)
			admin.POST("/rewards", adminHandler.CreateReward)
			admin.PATCH("/rewards/:id", adminHandler.UpdateReward)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Loyalty service starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down loyalty service...")

	// The context is used to inform the server it has 5 seconds to finish
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Close database connection
	sqlDB, err := db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error("Error closing database: %v", err)
		}
	}

	// Close Redis connection
	if err := redisClient.Close(); err != nil {
		log.Error("Error closing Redis: %v", err)
	}

	// Close RabbitMQ connection
	if err := queueClient.Close(); err != nil {
		log.Error("Error closing RabbitMQ: %v", err)
	}

	// Shutdown server
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
		panic(err)
	}

	log.Info("Loyalty service exited")
}
