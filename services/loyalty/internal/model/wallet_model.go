package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WalletModel struct {
	ID                  string    `gorm:"type:uuid;primary_key" json:"id"`
	CustomerID          string    `gorm:"type:uuid;not null;uniqueIndex:idx_wallets_customer_business" json:"customer_id"`
	BusinessID          string    `gorm:"type:uuid;not null;uniqueIndex:idx_wallets_customer_business;index" json:"business_id"`
	PointsAvailable     int64     `gorm:"not null;default:0" json:"points_available"`
	PointsAccruedTotal  int64     `gorm:"not null;default:0" json:"points_accrued_total"`
	PointsRedeemedTotal int64     `gorm:"not null;default:0" json:"points_redeemed_total"`
	PointsRevokedTotal  int64     `gorm:"not null;default:0" json:"points_revoked_total"`
	CurrentTier         string    `gorm:"type:varchar(40);not null" json:"current_tier"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (WalletModel) TableName() string {
	return "wallets"
}

func (w *WalletModel) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	return nil
}

type TransactionModel struct {
	ID                      string    `gorm:"type:uuid;primary_key" json:"id"`
	WalletID                string    `gorm:"type:uuid;not null;index" json:"wallet_id"`
	BusinessID              string    `gorm:"type:uuid;not null;uniqueIndex:idx_transactions_business_idem" json:"business_id"`
	Type                    string    `gorm:"type:varchar(20);not null" json:"type"`
	PointsDelta             int64     `gorm:"not null" json:"points_delta"`
	PurchaseAmountCents     *int64    `json:"purchase_amount_cents,omitempty"`
	MultiplierApplied       float64   `gorm:"not null;default:1" json:"multiplier_applied"`
	ConfigVersion           int       `gorm:"not null" json:"config_version"`
	OperatorID              string    `gorm:"type:uuid;not null" json:"operator_id"`
	BranchID                string    `gorm:"type:uuid" json:"branch_id"`
	IdempotencyKey          *string   `gorm:"type:varchar(120);uniqueIndex:idx_transactions_business_idem" json:"idempotency_key,omitempty"`
	RewardID                *string   `gorm:"type:uuid;index" json:"reward_id,omitempty"`
	Status                  string    `gorm:"type:varchar(20);not null;default:'confirmed'" json:"status"`
	ReversalOfTransactionID *string   `gorm:"type:uuid;uniqueIndex" json:"reversal_of_transaction_id,omitempty"`
	RevocationReason        string    `gorm:"type:varchar(255)" json:"revocation_reason,omitempty"`
	CreatedAt               time.Time `gorm:"index" json:"created_at"`
}

func (TransactionModel) TableName() string {
	return "transactions"
}

func (t *TransactionModel) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}
