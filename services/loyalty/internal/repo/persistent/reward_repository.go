package persistent

import (
	"context"
	"errors"

	"pointstack/services/loyalty/internal/entity"
	"pointstack/services/loyalty/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (s *store) GetReward(ctx context.Context, id string) (*entity.Reward, error) {
	var rewardModel model.RewardModel
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rewardModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrRewardNotFound
		}
		return nil, err
	}
	return ToRewardEntity(&rewardModel), nil
}

func (s *store) CreateReward(ctx context.Context, reward *entity.Reward) error {
	rewardModel := ToRewardModel(reward)
	if rewardModel.ID == "" {
		rewardModel.ID = uuid.New().String()
	}
	if err := s.db.WithContext(ctx).Create(rewardModel).Error; err != nil {
		return err
	}
	*reward = *ToRewardEntity(rewardModel)
	return nil
}

func (s *store) SaveReward(ctx context.Context, reward *entity.Reward) error {
	return s.db.WithContext(ctx).Save(ToRewardModel(reward)).Error
}

// DecrementRewardStock takes one unit with a conditional update so that two
// concurrent redemptions cannot both take the last unit. Unlimited rewards
// (NULL stock) always succeed.
func (s *store) DecrementRewardStock(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&model.RewardModel{}).
		Where("id = ? AND (stock IS NULL OR stock > 0)", id).
		Update("stock", gorm.Expr("CASE WHEN stock IS NULL THEN NULL ELSE stock - 1 END"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *store) RestoreRewardStock(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).
		Model(&model.RewardModel{}).
		Where("id = ? AND stock IS NOT NULL", id).
		Update("stock", gorm.Expr("stock + 1")).Error
}
