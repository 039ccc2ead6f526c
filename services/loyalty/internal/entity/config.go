package entity

import (
	"fmt"
	"time"
)

// LoyaltyConfig is a versioned, read-only snapshot of a business's program
// rules. The ledger never mutates configs; merchant administration appends a
// new version and transactions pin the version active when they were created,
// so historical point math stays reproducible after a rate change.
type LoyaltyConfig struct {
	BusinessID                string          `json:"business_id"`
	Version                   int             `json:"version"`
	PointsPerCurrencyUnit     float64         `json:"points_per_currency_unit"`
	TierThresholds            []TierThreshold `json:"tier_thresholds"`
	VoucherValidityWindowSecs int64           `json:"voucher_validity_window_seconds"`
	Active                    bool            `json:"active"`
	CreatedAt                 time.Time       `json:"created_at"`
}

// VoucherValidityWindow returns the validity window as a duration.
func (c *LoyaltyConfig) VoucherValidityWindow() time.Duration {
	return time.Duration(c.VoucherValidityWindowSecs) * time.Second
}

// Validate enforces the config-write-time rules: a positive accrual rate, a
// base tier starting at zero points, strictly increasing thresholds, and
// multipliers of at least 1.
func (c *LoyaltyConfig) Validate() error {
	if c.BusinessID == "" {
		return fmt.Errorf("%w: business id required", ErrInvalidConfig)
	}
	if c.PointsPerCurrencyUnit <= 0 {
		return fmt.Errorf("%w: points per currency unit must be positive", ErrInvalidConfig)
	}
	if c.VoucherValidityWindowSecs <= 0 {
		return fmt.Errorf("%w: voucher validity window must be positive", ErrInvalidConfig)
	}
	if len(c.TierThresholds) == 0 {
		return fmt.Errorf("%w: at least one tier threshold required", ErrInvalidConfig)
	}
	if c.TierThresholds[0].MinPoints != 0 {
		return fmt.Errorf("%w: base tier must start at 0 points", ErrInvalidConfig)
	}
	for i, th := range c.TierThresholds {
		if th.Tier == "" {
			return fmt.Errorf("%w: tier name required", ErrInvalidConfig)
		}
		if th.Multiplier < 1 {
			return fmt.Errorf("%w: tier %q multiplier must be at least 1", ErrInvalidConfig, th.Tier)
		}
		if i > 0 && th.MinPoints <= c.TierThresholds[i-1].MinPoints {
			return fmt.Errorf("%w: thresholds must be strictly increasing", ErrInvalidConfig)
		}
	}
	return nil
}
