package persistent

import (
	"testing"

	"pointstack/services/loyalty/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionMapping_OptionalFields(t *testing.T) {
	e := &entity.Transaction{
		ID:          "txn-1",
		WalletID:    "wallet-1",
		BusinessID:  "biz-1",
		Type:        entity.TransactionTypeAccrual,
		PointsDelta: 10,
		Status:      entity.TransactionStatusConfirmed,
	}

	m := ToTransactionModel(e)
	// Empty optionals must map to NULL, not empty strings, or the unique
	// indexes on idempotency_key and reversal_of_transaction_id would collide.
	assert.Nil(t, m.IdempotencyKey)
	assert.Nil(t, m.RewardID)
	assert.Nil(t, m.ReversalOfTransactionID)

	e.IdempotencyKey = "sale-1"
	e.ReversalOfTransactionID = "txn-0"
	m = ToTransactionModel(e)
	require.NotNil(t, m.IdempotencyKey)
	assert.Equal(t, "sale-1", *m.IdempotencyKey)

	back := ToTransactionEntity(m)
	assert.Equal(t, e.IdempotencyKey, back.IdempotencyKey)
	assert.Equal(t, e.ReversalOfTransactionID, back.ReversalOfTransactionID)
}

func TestConfigMapping_Thresholds(t *testing.T) {
	e := &entity.LoyaltyConfig{
		BusinessID:            "biz-1",
		Version:               2,
		PointsPerCurrencyUnit: 1.5,
		TierThresholds: []entity.TierThreshold{
			{Tier: "bronze", MinPoints: 0, Multiplier: 1},
			{Tier: "gold", MinPoints: 2000, Multiplier: 1.5},
		},
		VoucherValidityWindowSecs: 3600,
		Active:                    true,
	}

	m, err := ToConfigModel(e)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"tier":"bronze","min_points":0,"multiplier":1},
		{"tier":"gold","min_points":2000,"multiplier":1.5}
	]`, m.TierThresholds)

	back, err := ToConfigEntity(m)
	require.NoError(t, err)
	assert.Equal(t, e.TierThresholds, back.TierThresholds)
	assert.Equal(t, e.Version, back.Version)
}

func TestConfigMapping_BadJSON(t *testing.T) {
	m, err := ToConfigModel(&entity.LoyaltyConfig{BusinessID: "biz-1"})
	require.NoError(t, err)
	m.TierThresholds = "{not json"

	_, err = ToConfigEntity(m)
	assert.Error(t, err)
}
