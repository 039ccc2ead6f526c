package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pointstack/pkg/logger"
	"pointstack/services/loyalty/internal/entity"
	"pointstack/services/loyalty/internal/repo/persistent"

	"github.com/redis/go-redis/v9"
)

// AwardPointsRequest is the validated POS accrual input. The idempotency key
// is supplied by the caller, one per physical sale, so a retry after a
// timeout cannot award the same purchase twice.
type AwardPointsRequest struct {
	CustomerID          string
	BusinessID          string
	PurchaseAmountCents int64
	OperatorID          string
	BranchID            string
	IdempotencyKey      string
}

type RedeemRequest struct {
	CustomerID string
	BusinessID string
	RewardID   string
	OperatorID string
	BranchID   string
}

type RevokeRequest struct {
	TransactionID string
	OperatorID    string
	Reason        string
}

// RevokeResult carries the compensating transaction plus the wallet after the
// reversal. BalanceNegative is set when revoking an accrual pushed the
// balance below zero; the operator must see it, it is never clamped away.
type RevokeResult struct {
	Reversal        *entity.Transaction
	Wallet          *entity.Wallet
	BalanceNegative bool
}

type LedgerUseCase interface {
	Accrue(ctx context.Context, req AwardPointsRequest) (*entity.Transaction, *entity.Wallet, error)
	Redeem(ctx context.Context, req RedeemRequest) (*entity.Transaction, *entity.Voucher, error)
	Revoke(ctx context.Context, req RevokeRequest) (*RevokeResult, error)
	GetWallet(ctx context.Context, customerID, businessID string) (*entity.Wallet, error)
	ListTransactions(ctx context.Context, customerID, businessID string, limit, offset int) ([]*entity.Transaction, error)
}

type ledgerUseCase struct {
	store       persistent.Store
	issuer      *VoucherIssuer
	publisher   EventPublisher
	redisClient *redis.Client
	logger      *logger.Logger
}

func NewLedgerUseCase(store persistent.Store, issuer *VoucherIssuer, publisher EventPublisher, redisClient *redis.Client, logger *logger.Logger) LedgerUseCase {
	return &ledgerUseCase{
		store:       store,
		issuer:      issuer,
		publisher:   publisher,
		redisClient: redisClient,
		logger:      logger,
	}
}

func (uc *ledgerUseCase) Accrue(ctx context.Context, req AwardPointsRequest) (*entity.Transaction, *entity.Wallet, error) {
	if req.PurchaseAmountCents <= 0 {
		return nil, nil, entity.ErrInvalidAmount
	}
	if req.IdempotencyKey == "" {
		return nil, nil, entity.ErrMissingIdempotencyKey
	}

	// Fast path: a POS retry for an already-recorded sale returns the
	// existing row without touching the balance.
	if existing, err := uc.store.FindTransactionByIdempotencyKey(ctx, req.BusinessID, req.IdempotencyKey); err != nil {
		return nil, nil, fmt.Errorf("failed to check idempotency key: %w", err)
	} else if existing != nil {
		wallet, err := uc.store.GetWalletByID(ctx, existing.WalletID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load wallet: %w", err)
		}
		return existing, wallet, nil
	}

	cfg, err := uc.store.ActiveConfig(ctx, req.BusinessID)
	if err != nil {
		return nil, nil, err
	}

	var (
		txn    *entity.Transaction
		wallet *entity.Wallet
		events []pendingEvent
	)
	err = uc.store.Atomic(ctx, func(s persistent.Store) error {
		baseTier := cfg.TierThresholds[0].Tier
		w, err := s.GetOrCreateWalletForUpdate(ctx, req.CustomerID, req.BusinessID, baseTier)
		if err != nil {
			return fmt.Errorf("failed to load wallet: %w", err)
		}

		// The multiplier comes from the tier held before this transaction:
		// a purchase that itself crosses a threshold earns at the old rate.
		preTier := entity.TierFor(w.PointsAccruedTotal, cfg.TierThresholds)
		delta := entity.ComputePoints(req.PurchaseAmountCents, cfg.PointsPerCurrencyUnit, preTier.Multiplier)

		amount := req.PurchaseAmountCents
		txn = &entity.Transaction{
			WalletID:            w.ID,
			BusinessID:          req.BusinessID,
			Type:                entity.TransactionTypeAccrual,
			PointsDelta:         delta,
			PurchaseAmountCents: &amount,
			MultiplierApplied:   preTier.Multiplier,
			ConfigVersion:       cfg.Version,
			OperatorID:          req.OperatorID,
			BranchID:            req.BranchID,
			IdempotencyKey:      req.IdempotencyKey,
			Status:              entity.TransactionStatusConfirmed,
			CreatedAt:           time.Now(),
		}
		if err := s.CreateTransaction(ctx, txn); err != nil {
			return err
		}

		w.PointsAvailable += delta
		w.PointsAccruedTotal += delta
		postTier := entity.TierFor(w.PointsAccruedTotal, cfg.TierThresholds)
		oldTier := w.CurrentTier
		w.CurrentTier = postTier.Tier
		w.UpdatedAt = time.Now()
		if err := s.SaveWallet(ctx, w); err != nil {
			return fmt.Errorf("failed to update wallet: %w", err)
		}

		wallet = w
		events = append(events, pendingEvent{entity.EventPointsAccrued, entity.PointsAccruedEvent{
			WalletID:   w.ID,
			Delta:      delta,
			NewBalance: w.PointsAvailable,
		}})
		if postTier.Tier != oldTier {
			events = append(events, pendingEvent{entity.EventTierChanged, entity.TierChangedEvent{
				WalletID: w.ID,
				OldTier:  oldTier,
				NewTier:  postTier.Tier,
			}})
		}
		return nil
	})
	if err != nil {
		// Lost the insert race against a concurrent retry carrying the same
		// key: the other request's row is the answer.
		if errors.Is(err, entity.ErrDuplicateTransaction) {
			existing, ferr := uc.store.FindTransactionByIdempotencyKey(ctx, req.BusinessID, req.IdempotencyKey)
			if ferr != nil || existing == nil {
				return nil, nil, entity.ErrSerializationConflict
			}
			w, ferr := uc.store.GetWalletByID(ctx, existing.WalletID)
			if ferr != nil {
				return nil, nil, ferr
			}
			return existing, w, nil
		}
		return nil, nil, err
	}

	uc.invalidateWalletCache(ctx, req.CustomerID, req.BusinessID)
	uc.publishAll(events)
	return txn, wallet, nil
}

func (uc *ledgerUseCase) Redeem(ctx context.Context, req RedeemRequest) (*entity.Transaction, *entity.Voucher, error) {
	cfg, err := uc.store.ActiveConfig(ctx, req.BusinessID)
	if err != nil {
		return nil, nil, err
	}

	var (
		txn     *entity.Transaction
		voucher *entity.Voucher
		events  []pendingEvent
	)
	err = uc.store.Atomic(ctx, func(s persistent.Store) error {
		reward, err := s.GetReward(ctx, req.RewardID)
		if err != nil {
			return err
		}
		if reward.BusinessID != req.BusinessID {
			return entity.ErrRewardNotFound
		}
		if !reward.Active {
			return entity.ErrRewardInactive
		}

		w, err := s.GetWalletForUpdate(ctx, req.CustomerID, req.BusinessID)
		if err != nil {
			return err
		}
		if w.PointsAvailable < reward.PointsRequired {
			return entity.ErrInsufficientPoints
		}

		ok, err := s.DecrementRewardStock(ctx, reward.ID)
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}
		if !ok {
			return entity.ErrRewardOutOfStock
		}

		txn = &entity.Transaction{
			WalletID:      w.ID,
			BusinessID:    req.BusinessID,
			Type:          entity.TransactionTypeRedemption,
			PointsDelta:   -reward.PointsRequired,
			ConfigVersion: cfg.Version,
			OperatorID:    req.OperatorID,
			BranchID:      req.BranchID,
			RewardID:      reward.ID,
			Status:        entity.TransactionStatusConfirmed,
			CreatedAt:     time.Now(),
		}
		if err := s.CreateTransaction(ctx, txn); err != nil {
			return err
		}

		voucher, err = uc.issuer.Issue(ctx, s, txn, req.CustomerID, reward, cfg)
		if err != nil {
			return err
		}

		// Redemption shrinks the balance but never the lifetime accrual,
		// so tier stays where it is.
		w.PointsAvailable -= reward.PointsRequired
		w.PointsRedeemedTotal += reward.PointsRequired
		w.UpdatedAt = time.Now()
		if err := s.SaveWallet(ctx, w); err != nil {
			return fmt.Errorf("failed to update wallet: %w", err)
		}

		events = append(events, pendingEvent{entity.EventVoucherIssued, entity.VoucherIssuedEvent{
			VoucherID: voucher.ID,
			Code:      voucher.Code,
			ExpiresAt: voucher.ExpiresAt,
		}})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	uc.invalidateWalletCache(ctx, req.CustomerID, req.BusinessID)
	uc.publishAll(events)
	return txn, voucher, nil
}

func (uc *ledgerUseCase) Revoke(ctx context.Context, req RevokeRequest) (*RevokeResult, error) {
	var (
		result *RevokeResult
		events []pendingEvent
	)
	err := uc.store.Atomic(ctx, func(s persistent.Store) error {
		orig, err := s.GetTransactionForUpdate(ctx, req.TransactionID)
		if err != nil {
			return err
		}
		if orig.Status == entity.TransactionStatusCancelled {
			return entity.ErrAlreadyRevoked
		}
		if !orig.Revocable() {
			return entity.ErrNotRevocable
		}

		w, err := s.GetWalletForUpdateByID(ctx, orig.WalletID)
		if err != nil {
			return err
		}

		reversal := &entity.Transaction{
			WalletID:                orig.WalletID,
			BusinessID:              orig.BusinessID,
			Type:                    entity.TransactionTypeRevocation,
			PointsDelta:             -orig.PointsDelta,
			MultiplierApplied:       orig.MultiplierApplied,
			ConfigVersion:           orig.ConfigVersion,
			OperatorID:              req.OperatorID,
			BranchID:                orig.BranchID,
			Status:                  entity.TransactionStatusConfirmed,
			ReversalOfTransactionID: orig.ID,
			RevocationReason:        req.Reason,
			CreatedAt:               time.Now(),
		}
		// The unique index on reversal_of_transaction_id makes a concurrent
		// double-revoke lose here rather than after the balance update.
		if err := s.CreateTransaction(ctx, reversal); err != nil {
			if errors.Is(err, entity.ErrDuplicateTransaction) {
				return entity.ErrAlreadyRevoked
			}
			return err
		}
		if err := s.UpdateTransactionStatus(ctx, orig.ID, entity.TransactionStatusCancelled); err != nil {
			return fmt.Errorf("failed to cancel original transaction: %w", err)
		}

		switch orig.Type {
		case entity.TransactionTypeAccrual:
			// Lifetime accrual stays monotonic; the clawback is tracked in
			// PointsRevokedTotal, so tier history is untouched.
			w.PointsAvailable -= orig.PointsDelta
			w.PointsRevokedTotal += orig.PointsDelta
		case entity.TransactionTypeRedemption:
			refund := -orig.PointsDelta
			w.PointsAvailable += refund
			w.PointsRedeemedTotal -= refund

			voucher, err := s.GetVoucherByTransactionID(ctx, orig.ID)
			if err != nil && !errors.Is(err, entity.ErrVoucherNotFound) {
				return err
			}
			if voucher != nil {
				if err := s.CancelVoucher(ctx, voucher.ID); err != nil {
					return fmt.Errorf("failed to cancel voucher: %w", err)
				}
				if err := s.RestoreRewardStock(ctx, voucher.RewardID); err != nil {
					return fmt.Errorf("failed to restore stock: %w", err)
				}
			}
		}
		w.UpdatedAt = time.Now()
		if err := s.SaveWallet(ctx, w); err != nil {
			return fmt.Errorf("failed to update wallet: %w", err)
		}

		result = &RevokeResult{
			Reversal:        reversal,
			Wallet:          w,
			BalanceNegative: w.PointsAvailable < 0,
		}
		events = append(events, pendingEvent{entity.EventTransactionRevoked, entity.TransactionRevokedEvent{
			TransactionID:   orig.ID,
			ReversalID:      reversal.ID,
			NewBalance:      w.PointsAvailable,
			BalanceNegative: w.PointsAvailable < 0,
		}})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.BalanceNegative {
		uc.logger.Warn("Revocation drove wallet %s negative: balance=%d", result.Wallet.ID, result.Wallet.PointsAvailable)
	}
	uc.invalidateWalletCache(ctx, result.Wallet.CustomerID, result.Wallet.BusinessID)
	uc.publishAll(events)
	return result, nil
}

func (uc *ledgerUseCase) GetWallet(ctx context.Context, customerID, businessID string) (*entity.Wallet, error) {
	if cached := uc.cachedWallet(ctx, customerID, businessID); cached != nil {
		return cached, nil
	}

	wallet, err := uc.store.GetWallet(ctx, customerID, businessID)
	if err != nil {
		return nil, err
	}

	uc.cacheWallet(ctx, wallet)
	return wallet, nil
}

func (uc *ledgerUseCase) ListTransactions(ctx context.Context, customerID, businessID string, limit, offset int) ([]*entity.Transaction, error) {
	wallet, err := uc.store.GetWallet(ctx, customerID, businessID)
	if err != nil {
		return nil, err
	}
	return uc.store.ListTransactions(ctx, wallet.ID, limit, offset)
}

type pendingEvent struct {
	eventType string
	payload   interface{}
}

func (uc *ledgerUseCase) publishAll(events []pendingEvent) {
	if uc.publisher == nil {
		return
	}
	for _, ev := range events {
		if err := uc.publisher.PublishEvent(ev.eventType, ev.payload); err != nil {
			uc.logger.Error("Failed to publish %s event: %v", ev.eventType, err)
		}
	}
}

const walletCacheTTL = time.Minute

func walletCacheKey(customerID, businessID string) string {
	return fmt.Sprintf("loyalty:wallet:%s:%s", businessID, customerID)
}

func (uc *ledgerUseCase) cachedWallet(ctx context.Context, customerID, businessID string) *entity.Wallet {
	if uc.redisClient == nil {
		return nil
	}
	data, err := uc.redisClient.Get(ctx, walletCacheKey(customerID, businessID)).Bytes()
	if err != nil {
		return nil
	}
	var wallet entity.Wallet
	if err := json.Unmarshal(data, &wallet); err != nil {
		return nil
	}
	return &wallet
}

func (uc *ledgerUseCase) cacheWallet(ctx context.Context, wallet *entity.Wallet) {
	if uc.redisClient == nil {
		return
	}
	data, err := json.Marshal(wallet)
	if err != nil {
		return
	}
	if err := uc.redisClient.Set(ctx, walletCacheKey(wallet.CustomerID, wallet.BusinessID), data, walletCacheTTL).Err(); err != nil {
		uc.logger.Error("Failed to cache wallet %s: %v", wallet.ID, err)
	}
}

func (uc *ledgerUseCase) invalidateWalletCache(ctx context.Context, customerID, businessID string) {
	if uc.redisClient == nil {
		return
	}
	if err := uc.redisClient.Del(ctx, walletCacheKey(customerID, businessID)).Err(); err != nil {
		uc.logger.Error("Failed to invalidate wallet cache: %v", err)
	}
}
