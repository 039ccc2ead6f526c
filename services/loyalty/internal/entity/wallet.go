package entity

import "time"

type TransactionType string

const (
	TransactionTypeAccrual    TransactionType = "accrual"
	TransactionTypeRedemption TransactionType = "redemption"
	TransactionTypeRevocation TransactionType = "revocation"
)

type TransactionStatus string

const (
	// TransactionStatusConfirmed is the status every transaction is created
	// with. Rows are never deleted or edited after creation.
	TransactionStatusConfirmed TransactionStatus = "confirmed"
	// TransactionStatusCancelled flags an original that has been compensated
	// by a revocation row. Display-only: the row's PointsDelta is untouched
	// and the balance effect is carried by the revocation row alone.
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// Wallet is a customer's point balance and tier state for one business.
// Created lazily on first accrual, never deleted.
//
// PointsAvailable = PointsAccruedTotal - PointsRedeemedTotal - PointsRevokedTotal.
// PointsAccruedTotal never decreases, so tier (derived from it) survives
// redemption and revocation. PointsAvailable can go negative only as a direct
// consequence of revoking an accrual whose points were already spent.
type Wallet struct {
	ID                  string    `json:"id"`
	CustomerID          string    `json:"customer_id"`
	BusinessID          string    `json:"business_id"`
	PointsAvailable     int64     `json:"points_available"`
	PointsAccruedTotal  int64     `json:"points_accrued_total"`
	PointsRedeemedTotal int64     `json:"points_redeemed_total"`
	PointsRevokedTotal  int64     `json:"points_revoked_total"`
	CurrentTier         string    `json:"current_tier"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Transaction is an immutable ledger entry. A revocation is a new row
// referencing the original via ReversalOfTransactionID.
type Transaction struct {
	ID                      string            `json:"id"`
	WalletID                string            `json:"wallet_id"`
	BusinessID              string            `json:"business_id"`
	Type                    TransactionType   `json:"type"`
	PointsDelta             int64             `json:"points_delta"`
	PurchaseAmountCents     *int64            `json:"purchase_amount_cents,omitempty"`
	MultiplierApplied       float64           `json:"multiplier_applied"`
	ConfigVersion           int               `json:"config_version"`
	OperatorID              string            `json:"operator_id"`
	BranchID                string            `json:"branch_id"`
	IdempotencyKey          string            `json:"idempotency_key,omitempty"`
	RewardID                string            `json:"reward_id,omitempty"`
	Status                  TransactionStatus `json:"status"`
	ReversalOfTransactionID string            `json:"reversal_of_transaction_id,omitempty"`
	RevocationReason        string            `json:"revocation_reason,omitempty"`
	CreatedAt               time.Time         `json:"created_at"`
}

// Revocable reports whether the transaction can still be reversed.
func (t *Transaction) Revocable() bool {
	if t.Status != TransactionStatusConfirmed {
		return false
	}
	return t.Type == TransactionTypeAccrual || t.Type == TransactionTypeRedemption
}
