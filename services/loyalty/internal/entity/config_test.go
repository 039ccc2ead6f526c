package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *LoyaltyConfig {
	return &LoyaltyConfig{
		BusinessID:            "a4f5c9d2-4f5e-4a6b-8c7d-9e0f1a2b3c4d",
		PointsPerCurrencyUnit: 1,
		TierThresholds: []TierThreshold{
			{Tier: "bronze", MinPoints: 0, Multiplier: 1},
			{Tier: "silver", MinPoints: 500, Multiplier: 1.2},
		},
		VoucherValidityWindowSecs: 7 * 24 * 3600,
	}
}

func TestLoyaltyConfig_Validate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestLoyaltyConfig_Validate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*LoyaltyConfig)
	}{
		{"missing business id", func(c *LoyaltyConfig) { c.BusinessID = "" }},
		{"zero rate", func(c *LoyaltyConfig) { c.PointsPerCurrencyUnit = 0 }},
		{"negative rate", func(c *LoyaltyConfig) { c.PointsPerCurrencyUnit = -1 }},
		{"zero validity window", func(c *LoyaltyConfig) { c.VoucherValidityWindowSecs = 0 }},
		{"no thresholds", func(c *LoyaltyConfig) { c.TierThresholds = nil }},
		{"base tier not at zero", func(c *LoyaltyConfig) { c.TierThresholds[0].MinPoints = 100 }},
		{"unnamed tier", func(c *LoyaltyConfig) { c.TierThresholds[1].Tier = "" }},
		{"multiplier below one", func(c *LoyaltyConfig) { c.TierThresholds[1].Multiplier = 0.9 }},
		{"non-increasing thresholds", func(c *LoyaltyConfig) { c.TierThresholds[1].MinPoints = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoyaltyConfig_VoucherValidityWindow(t *testing.T) {
	cfg := &LoyaltyConfig{VoucherValidityWindowSecs: 3600}
	assert.Equal(t, time.Hour, cfg.VoucherValidityWindow())
}
