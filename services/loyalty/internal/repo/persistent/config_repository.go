package persistent

import (
	"context"
	"errors"

	"pointstack/services/loyalty/internal/entity"
	"pointstack/services/loyalty/internal/model"

	"gorm.io/gorm"
)

func (s *store) ActiveConfig(ctx context.Context, businessID string) (*entity.LoyaltyConfig, error) {
	var configModel model.LoyaltyConfigModel
	err := s.db.WithContext(ctx).
		Where("business_id = ? AND active = true", businessID).
		Order("version DESC").
		First(&configModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrConfigNotFound
		}
		return nil, err
	}
	return ToConfigEntity(&configModel)
}

func (s *store) GetConfigVersion(ctx context.Context, businessID string, version int) (*entity.LoyaltyConfig, error) {
	var configModel model.LoyaltyConfigModel
	err := s.db.WithContext(ctx).
		Where("business_id = ? AND version = ?", businessID, version).
		First(&configModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrConfigNotFound
		}
		return nil, err
	}
	return ToConfigEntity(&configModel)
}

func (s *store) CreateConfigVersion(ctx context.Context, cfg *entity.LoyaltyConfig) error {
	var maxVersion int
	err := s.db.WithContext(ctx).
		Model(&model.LoyaltyConfigModel{}).
		Where("business_id = ?", cfg.BusinessID).
		Select("COALESCE(MAX(version), 0)").
		Scan(&maxVersion).Error
	if err != nil {
		return err
	}

	cfg.Version = maxVersion + 1
	configModel, err := ToConfigModel(cfg)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(configModel).Error
}

func (s *store) DeactivateConfigs(ctx context.Context, businessID string) error {
	return s.db.WithContext(ctx).
		Model(&model.LoyaltyConfigModel{}).
		Where("business_id = ?", businessID).
		Update("active", false).Error
}
