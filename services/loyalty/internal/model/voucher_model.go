package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VoucherModel struct {
	ID               string     `gorm:"type:uuid;primary_key" json:"id"`
	TransactionID    string     `gorm:"type:uuid;not null;uniqueIndex" json:"transaction_id"`
	RewardID         string     `gorm:"type:uuid;not null;index" json:"reward_id"`
	CustomerID       string     `gorm:"type:uuid;not null;index" json:"customer_id"`
	BusinessID       string     `gorm:"type:uuid;not null;index:idx_vouchers_business_code" json:"business_id"`
	Code             string     `gorm:"type:varchar(16);not null;index:idx_vouchers_business_code" json:"code"`
	QRPayload        string     `gorm:"type:text;not null" json:"qr_payload"`
	Status           string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	IssuedAt         time.Time  `gorm:"not null" json:"issued_at"`
	ExpiresAt        time.Time  `gorm:"not null;index" json:"expires_at"`
	UsedAt           *time.Time `json:"used_at,omitempty"`
	UsedByOperatorID *string    `gorm:"type:uuid" json:"used_by_operator_id,omitempty"`
	UsedAtBranchID   *string    `gorm:"type:uuid" json:"used_at_branch_id,omitempty"`
}

func (VoucherModel) TableName() string {
	return "vouchers"
}

func (v *VoucherModel) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return nil
}
