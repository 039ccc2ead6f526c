package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pointstack/pkg/logger"
	"pointstack/services/loyalty/internal/entity"
	"pointstack/services/loyalty/internal/repo/persistent"

	"github.com/redis/go-redis/v9"
)

// RewardUpdate is a partial update to a catalog entry. Nil fields are left
// unchanged.
type RewardUpdate struct {
	Name           *string
	PointsRequired *int64
	Stock          *int64
	ClearStock     bool
	Active         *bool
}

// ConfigUseCase is the merchant administration surface: versioned program
// config and the reward catalog. The ledger itself only ever reads.
type ConfigUseCase interface {
	PutConfig(ctx context.Context, cfg *entity.LoyaltyConfig) (*entity.LoyaltyConfig, error)
	GetActiveConfig(ctx context.Context, businessID string) (*entity.LoyaltyConfig, error)
	// DeactivateProgram stops all accrual and redemption for the business by
	// deactivating every config version. Balances are retained, not wiped.
	DeactivateProgram(ctx context.Context, businessID string) error
	CreateReward(ctx context.Context, reward *entity.Reward) (*entity.Reward, error)
	UpdateReward(ctx context.Context, rewardID string, update RewardUpdate) (*entity.Reward, error)
	GetReward(ctx context.Context, rewardID string) (*entity.Reward, error)
}

type configUseCase struct {
	store       persistent.Store
	redisClient *redis.Client
	logger      *logger.Logger
}

func NewConfigUseCase(store persistent.Store, redisClient *redis.Client, logger *logger.Logger) ConfigUseCase {
	return &configUseCase{
		store:       store,
		redisClient: redisClient,
		logger:      logger,
	}
}

func (uc *configUseCase) PutConfig(ctx context.Context, cfg *entity.LoyaltyConfig) (*entity.LoyaltyConfig, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.Active = true
	cfg.CreatedAt = time.Now()
	if err := uc.store.CreateConfigVersion(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to create config version: %w", err)
	}

	uc.invalidateConfigCache(ctx, cfg.BusinessID)
	uc.logger.Info("Created loyalty config version %d for business %s", cfg.Version, cfg.BusinessID)
	return cfg, nil
}

func (uc *configUseCase) GetActiveConfig(ctx context.Context, businessID string) (*entity.LoyaltyConfig, error) {
	if cached := uc.cachedConfig(ctx, businessID); cached != nil {
		return cached, nil
	}

	cfg, err := uc.store.ActiveConfig(ctx, businessID)
	if err != nil {
		return nil, err
	}

	uc.cacheConfig(ctx, cfg)
	return cfg, nil
}

func (uc *configUseCase) DeactivateProgram(ctx context.Context, businessID string) error {
	if err := uc.store.DeactivateConfigs(ctx, businessID); err != nil {
		return fmt.Errorf("failed to deactivate program: %w", err)
	}
	uc.invalidateConfigCache(ctx, businessID)
	uc.logger.Info("Deactivated loyalty program for business %s", businessID)
	return nil
}

func (uc *configUseCase) CreateReward(ctx context.Context, reward *entity.Reward) (*entity.Reward, error) {
	if reward.BusinessID == "" || reward.Name == "" {
		return nil, fmt.Errorf("%w: business id and name required", entity.ErrInvalidConfig)
	}
	if reward.PointsRequired <= 0 {
		return nil, fmt.Errorf("%w: points required must be positive", entity.ErrInvalidConfig)
	}
	if reward.Stock != nil && *reward.Stock < 0 {
		return nil, fmt.Errorf("%w: stock cannot be negative", entity.ErrInvalidConfig)
	}

	reward.Active = true
	reward.CreatedAt = time.Now()
	reward.UpdatedAt = reward.CreatedAt
	if err := uc.store.CreateReward(ctx, reward); err != nil {
		return nil, fmt.Errorf("failed to create reward: %w", err)
	}
	return reward, nil
}

func (uc *configUseCase) UpdateReward(ctx context.Context, rewardID string, update RewardUpdate) (*entity.Reward, error) {
	reward, err := uc.store.GetReward(ctx, rewardID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		reward.Name = *update.Name
	}
	if update.PointsRequired != nil {
		if *update.PointsRequired <= 0 {
			return nil, fmt.Errorf("%w: points required must be positive", entity.ErrInvalidConfig)
		}
		reward.PointsRequired = *update.PointsRequired
	}
	if update.ClearStock {
		reward.Stock = nil
	} else if update.Stock != nil {
		if *update.Stock < 0 {
			return nil, fmt.Errorf("%w: stock cannot be negative", entity.ErrInvalidConfig)
		}
		reward.Stock = update.Stock
	}
	if update.Active != nil {
		reward.Active = *update.Active
	}
	reward.UpdatedAt = time.Now()

	if err := uc.store.SaveReward(ctx, reward); err != nil {
		return nil, fmt.Errorf("failed to update reward: %w", err)
	}
	return reward, nil
}

func (uc *configUseCase) GetReward(ctx context.Context, rewardID string) (*entity.Reward, error) {
	return uc.store.GetReward(ctx, rewardID)
}

const configCacheTTL = 5 * time.Minute

func configCacheKey(businessID string) string {
	return fmt.Sprintf("loyalty:config:%s", businessID)
}

func (uc *configUseCase) cachedConfig(ctx context.Context, businessID string) *entity.LoyaltyConfig {
	if uc.redisClient == nil {
		return nil
	}
	data, err := uc.redisClient.Get(ctx, configCacheKey(businessID)).Bytes()
	if err != nil {
		return nil
	}
	var cfg entity.LoyaltyConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil
	}
	return &cfg
}

func (uc *configUseCase) cacheConfig(ctx context.Context, cfg *entity.LoyaltyConfig) {
	if uc.redisClient == nil {
		return
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return
	}
	if err := uc.redisClient.Set(ctx, configCacheKey(cfg.BusinessID), data, configCacheTTL).Err(); err != nil {
		uc.logger.Error("Failed to cache config for business %s: %v", cfg.BusinessID, err)
	}
}

func (uc *configUseCase) invalidateConfigCache(ctx context.Context, businessID string) {
	if uc.redisClient == nil {
		return
	}
	if err := uc.redisClient.Del(ctx, configCacheKey(businessID)).Err(); err != nil {
		uc.logger.Error("Failed to invalidate config cache: %v", err)
	}
}
