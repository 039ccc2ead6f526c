package entity

import "time"

// Event routing keys on the loyalty events exchange.
const (
	EventPointsAccrued      = "points.accrued"
	EventTierChanged        = "tier.changed"
	EventVoucherIssued      = "voucher.issued"
	EventVoucherRedeemed    = "voucher.redeemed"
	EventVoucherExpired     = "voucher.expired"
	EventVoucherExpiring    = "voucher.expiring_soon"
	EventTransactionRevoked = "transaction.revoked"
)

type PointsAccruedEvent struct {
	WalletID   string `json:"wallet_id"`
	Delta      int64  `json:"delta"`
	NewBalance int64  `json:"new_balance"`
}

type TierChangedEvent struct {
	WalletID string `json:"wallet_id"`
	OldTier  string `json:"old_tier"`
	NewTier  string `json:"new_tier"`
}

type VoucherIssuedEvent struct {
	VoucherID string    `json:"voucher_id"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

type VoucherRedeemedEvent struct {
	VoucherID string `json:"voucher_id"`
}

type VoucherExpiredEvent struct {
	VoucherID string `json:"voucher_id"`
}

type VoucherExpiringSoonEvent struct {
	VoucherID string    `json:"voucher_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type TransactionRevokedEvent struct {
	TransactionID   string `json:"transaction_id"`
	ReversalID      string `json:"reversal_id"`
	NewBalance      int64  `json:"new_balance"`
	BalanceNegative bool   `json:"balance_negative"`
}
