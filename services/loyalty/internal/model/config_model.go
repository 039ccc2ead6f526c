package model

import (
	"time"
)

type LoyaltyConfigModel struct {
	BusinessID                string    `gorm:"type:uuid;primary_key" json:"business_id"`
	Version                   int       `gorm:"primary_key;autoIncrement:false" json:"version"`
	PointsPerCurrencyUnit     float64   `gorm:"not null" json:"points_per_currency_unit"`
	TierThresholds            string    `gorm:"type:jsonb;not null" json:"tier_thresholds"`
	VoucherValidityWindowSecs int64     `gorm:"not null" json:"voucher_validity_window_seconds"`
	Active                    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt                 time.Time `json:"created_at"`
}

func (LoyaltyConfigModel) TableName() string {
	return "loyalty_configs"
}
