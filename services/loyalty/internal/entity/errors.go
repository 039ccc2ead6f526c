package entity

import "errors"

var (
	// Validation: caller's fault, never retried.
	ErrInvalidAmount         = errors.New("loyalty: purchase amount must be positive")
	ErrMissingIdempotencyKey = errors.New("loyalty: idempotency key required")
	ErrInvalidConfig         = errors.New("loyalty: invalid config")

	// Not found.
	ErrConfigNotFound      = errors.New("loyalty: no active loyalty program")
	ErrWalletNotFound      = errors.New("loyalty: wallet not found")
	ErrRewardNotFound      = errors.New("loyalty: reward not found")
	ErrVoucherNotFound     = errors.New("loyalty: voucher not found")
	ErrTransactionNotFound = errors.New("loyalty: transaction not found")

	// Business-rule conflicts: definitive, not transient.
	ErrInsufficientPoints = errors.New("loyalty: insufficient points")
	ErrRewardInactive     = errors.New("loyalty: reward not active")
	ErrRewardOutOfStock   = errors.New("loyalty: reward out of stock")
	ErrVoucherExpired     = errors.New("loyalty: voucher expired")
	ErrVoucherAlreadyUsed = errors.New("loyalty: voucher already used")
	ErrInvalidQRSignature = errors.New("loyalty: invalid qr signature")
	ErrAlreadyRevoked     = errors.New("loyalty: transaction already revoked")
	ErrNotRevocable       = errors.New("loyalty: transaction cannot be revoked")

	// ErrDuplicateTransaction is raised by the store when an insert loses the
	// idempotency-key race; the ledger resolves it by returning the winner.
	ErrDuplicateTransaction = errors.New("loyalty: duplicate transaction")

	// Storage-level race lost; the only error a caller should retry.
	ErrSerializationConflict = errors.New("loyalty: serialization conflict, retry")
)

func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrMissingIdempotencyKey) ||
		errors.Is(err, ErrInvalidConfig)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrConfigNotFound) ||
		errors.Is(err, ErrWalletNotFound) ||
		errors.Is(err, ErrRewardNotFound) ||
		errors.Is(err, ErrVoucherNotFound) ||
		errors.Is(err, ErrTransactionNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrInsufficientPoints) ||
		errors.Is(err, ErrRewardInactive) ||
		errors.Is(err, ErrRewardOutOfStock) ||
		errors.Is(err, ErrVoucherExpired) ||
		errors.Is(err, ErrVoucherAlreadyUsed) ||
		errors.Is(err, ErrInvalidQRSignature) ||
		errors.Is(err, ErrAlreadyRevoked) ||
		errors.Is(err, ErrNotRevocable)
}

func IsRetryable(err error) bool {
	return errors.Is(err, ErrSerializationConflict)
}
