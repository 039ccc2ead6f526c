package entity

import "time"

type VoucherStatus string

const (
	VoucherStatusPending   VoucherStatus = "pending"
	VoucherStatusUsed      VoucherStatus = "used"
	VoucherStatusExpired   VoucherStatus = "expired"
	VoucherStatusCancelled VoucherStatus = "cancelled"
)

// voucherTransitions is the allowed-transition table for POS-driven state
// changes. Used and expired are terminal. Cancellation via revocation is a
// privileged path that bypasses this table so an erroneous redemption can be
// voided whatever state the voucher reached.
var voucherTransitions = map[VoucherStatus][]VoucherStatus{
	VoucherStatusPending: {VoucherStatusUsed, VoucherStatusExpired, VoucherStatusCancelled},
}

// CanTransition reports whether moving from one status to another is allowed
// on the normal (non-revocation) path.
func CanTransition(from, to VoucherStatus) bool {
	for _, allowed := range voucherTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Voucher is a single-use, time-boxed proof of a completed redemption,
// redeemable in person via code or signed QR payload.
type Voucher struct {
	ID               string        `json:"id"`
	TransactionID    string        `json:"transaction_id"`
	RewardID         string        `json:"reward_id"`
	CustomerID       string        `json:"customer_id"`
	BusinessID       string        `json:"business_id"`
	Code             string        `json:"code"`
	QRPayload        string        `json:"qr_payload"`
	Status           VoucherStatus `json:"status"`
	IssuedAt         time.Time     `json:"issued_at"`
	ExpiresAt        time.Time     `json:"expires_at"`
	UsedAt           *time.Time    `json:"used_at,omitempty"`
	UsedByOperatorID string        `json:"used_by_operator_id,omitempty"`
	UsedAtBranchID   string        `json:"used_at_branch_id,omitempty"`
}

// Expired reports whether the voucher's validity window has passed at t.
func (v *Voucher) Expired(t time.Time) bool {
	return t.After(v.ExpiresAt)
}
