package persistent

import (
	"encoding/json"

	"pointstack/services/loyalty/internal/entity"
	"pointstack/services/loyalty/internal/model"
)

func ToWalletEntity(m *model.WalletModel) *entity.Wallet {
	return &entity.Wallet{
		ID:                  m.ID,
		CustomerID:          m.CustomerID,
		BusinessID:          m.BusinessID,
		PointsAvailable:     m.PointsAvailable,
		PointsAccruedTotal:  m.PointsAccruedTotal,
		PointsRedeemedTotal: m.PointsRedeemedTotal,
		PointsRevokedTotal:  m.PointsRevokedTotal,
		CurrentTier:         m.CurrentTier,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func ToWalletModel(e *entity.Wallet) *model.WalletModel {
	return &model.WalletModel{
		ID:                  e.ID,
		CustomerID:          e.CustomerID,
		BusinessID:          e.BusinessID,
		PointsAvailable:     e.PointsAvailable,
		PointsAccruedTotal:  e.PointsAccruedTotal,
		PointsRedeemedTotal: e.PointsRedeemedTotal,
		PointsRevokedTotal:  e.PointsRevokedTotal,
		CurrentTier:         e.CurrentTier,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}
}

func ToTransactionEntity(m *model.TransactionModel) *entity.Transaction {
	e := &entity.Transaction{
		ID:                  m.ID,
		WalletID:            m.WalletID,
		BusinessID:          m.BusinessID,
		Type:                entity.TransactionType(m.Type),
		PointsDelta:         m.PointsDelta,
		PurchaseAmountCents: m.PurchaseAmountCents,
		MultiplierApplied:   m.MultiplierApplied,
		ConfigVersion:       m.ConfigVersion,
		OperatorID:          m.OperatorID,
		BranchID:            m.BranchID,
		Status:              entity.TransactionStatus(m.Status),
		RevocationReason:    m.RevocationReason,
		CreatedAt:           m.CreatedAt,
	}
	if m.IdempotencyKey != nil {
		e.IdempotencyKey = *m.IdempotencyKey
	}
	if m.RewardID != nil {
		e.RewardID = *m.RewardID
	}
	if m.ReversalOfTransactionID != nil {
		e.ReversalOfTransactionID = *m.ReversalOfTransactionID
	}
	return e
}

func ToTransactionModel(e *entity.Transaction) *model.TransactionModel {
	m := &model.TransactionModel{
		ID:                  e.ID,
		WalletID:            e.WalletID,
		BusinessID:          e.BusinessID,
		Type:                string(e.Type),
		PointsDelta:         e.PointsDelta,
		PurchaseAmountCents: e.PurchaseAmountCents,
		MultiplierApplied:   e.MultiplierApplied,
		ConfigVersion:       e.ConfigVersion,
		OperatorID:          e.OperatorID,
		BranchID:            e.BranchID,
		Status:              string(e.Status),
		RevocationReason:    e.RevocationReason,
		CreatedAt:           e.CreatedAt,
	}
	if e.IdempotencyKey != "" {
		m.IdempotencyKey = &e.IdempotencyKey
	}
	if e.RewardID != "" {
		m.RewardID = &e.RewardID
	}
	if e.ReversalOfTransactionID != "" {
		m.ReversalOfTransactionID = &e.ReversalOfTransactionID
	}
	return m
}

func ToRewardEntity(m *model.RewardModel) *entity.Reward {
	return &entity.Reward{
		ID:             m.ID,
		BusinessID:     m.BusinessID,
		Name:           m.Name,
		PointsRequired: m.PointsRequired,
		Stock:          m.Stock,
		Active:         m.Active,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func ToRewardModel(e *entity.Reward) *model.RewardModel {
	return &model.RewardModel{
		ID:             e.ID,
		BusinessID:     e.BusinessID,
		Name:           e.Name,
		PointsRequired: e.PointsRequired,
		Stock:          e.Stock,
		Active:         e.Active,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func ToVoucherEntity(m *model.VoucherModel) *entity.Voucher {
	e := &entity.Voucher{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		RewardID:      m.RewardID,
		CustomerID:    m.CustomerID,
		BusinessID:    m.BusinessID,
		Code:          m.Code,
		QRPayload:     m.QRPayload,
		Status:        entity.VoucherStatus(m.Status),
		IssuedAt:      m.IssuedAt,
		ExpiresAt:     m.ExpiresAt,
		UsedAt:        m.UsedAt,
	}
	if m.UsedByOperatorID != nil {
		e.UsedByOperatorID = *m.UsedByOperatorID
	}
	if m.UsedAtBranchID != nil {
		e.UsedAtBranchID = *m.UsedAtBranchID
	}
	return e
}

func ToVoucherModel(e *entity.Voucher) *model.VoucherModel {
	m := &model.VoucherModel{
		ID:            e.ID,
		TransactionID: e.TransactionID,
		RewardID:      e.RewardID,
		CustomerID:    e.CustomerID,
		BusinessID:    e.BusinessID,
		Code:          e.Code,
		QRPayload:     e.QRPayload,
		Status:        string(e.Status),
		IssuedAt:      e.IssuedAt,
		ExpiresAt:     e.ExpiresAt,
		UsedAt:        e.UsedAt,
	}
	if e.UsedByOperatorID != "" {
		m.UsedByOperatorID = &e.UsedByOperatorID
	}
	if e.UsedAtBranchID != "" {
		m.UsedAtBranchID = &e.UsedAtBranchID
	}
	return m
}

func ToConfigEntity(m *model.LoyaltyConfigModel) (*entity.LoyaltyConfig, error) {
	var thresholds []entity.TierThreshold
	if err := json.Unmarshal([]byte(m.TierThresholds), &thresholds); err != nil {
		return nil, err
	}
	return &entity.LoyaltyConfig{
		BusinessID:                m.BusinessID,
		Version:                   m.Version,
		PointsPerCurrencyUnit:     m.PointsPerCurrencyUnit,
		TierThresholds:            thresholds,
		VoucherValidityWindowSecs: m.VoucherValidityWindowSecs,
		Active:                    m.Active,
		CreatedAt:                 m.CreatedAt,
	}, nil
}

func ToConfigModel(e *entity.LoyaltyConfig) (*model.LoyaltyConfigModel, error) {
	thresholds, err := json.Marshal(e.TierThresholds)
	if err != nil {
		return nil, err
	}
	return &model.LoyaltyConfigModel{
		BusinessID:                e.BusinessID,
		Version:                   e.Version,
		PointsPerCurrencyUnit:     e.PointsPerCurrencyUnit,
		TierThresholds:            string(thresholds),
		VoucherValidityWindowSecs: e.VoucherValidityWindowSecs,
		Active:                    e.Active,
		CreatedAt:                 e.CreatedAt,
	}, nil
}
