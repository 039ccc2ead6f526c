package main

import (
	"context"
	"flag"
	"fmt"

	"pointstack/pkg/config"
	"pointstack/pkg/database"
	"pointstack/pkg/logger"
	"pointstack/services/loyalty/internal/entity"
	"pointstack/services/loyalty/internal/repo/persistent"

	"github.com/google/uuid"
)

// Seeds a demo business with a loyalty config and a small reward catalog.
// Intended for local development against a freshly migrated database.
func main() {
	var businessID string
	flag.StringVar(&businessID, "business", "", "Business ID to seed (random if empty)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New()
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	if businessID == "" {
		businessID = uuid.New().String()
	}

	store := persistent.NewStore(db)
	ctx := context.Background()

	loyaltyCfg := &entity.LoyaltyConfig{
		BusinessID:            businessID,
		PointsPerCurrencyUnit: 1,
		TierThresholds: []entity.TierThreshold{
			{Tier: "bronze", MinPoints: 0, Multiplier: 1},
			{Tier: "silver", MinPoints: 500, Multiplier: 1.2},
			{Tier: "gold", MinPoints: 2000, Multiplier: 1.5},
		},
		VoucherValidityWindowSecs: 7 * 24 * 3600,
	}
	if err := loyaltyCfg.Validate(); err != nil {
		log.Error("Seed config invalid: %v", err)
		panic(err)
	}
	if err := store.CreateConfigVersion(ctx, loyaltyCfg); err != nil {
		log.Error("Failed to seed config: %v", err)
		panic(err)
	}
	log.Info("Seeded config version %d for business %s", loyaltyCfg.Version, businessID)

	limitedStock := int64(10)
	rewards := []*entity.Reward{
		{BusinessID: businessID, Name: "Free coffee", PointsRequired: 100, Active: true},
		{BusinessID: businessID, Name: "Lunch set", PointsRequired: 450, Active: true},
		{BusinessID: businessID, Name: "Branded mug", PointsRequired: 800, Stock: &limitedStock, Active: true},
	}
	for _, reward := range rewards {
		if err := store.CreateReward(ctx, reward); err != nil {
			log.Error("Failed to seed reward %q: %v", reward.Name, err)
			panic(err)
		}
		log.Info("Seeded reward %q (%d points)", reward.Name, reward.PointsRequired)
	}

	log.Info("Database seeded successfully!")
}
