package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pointstack/pkg/logger"
	"pointstack/services/loyalty/internal/entity"
	"pointstack/services/loyalty/internal/repo/persistent"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// VoucherRedemptionRequest carries either the human-typed code or the scanned
// QR payload. BusinessID scopes the code lookup to the operator's business;
// codes are only collision-checked within one business.
type VoucherRedemptionRequest struct {
	CodeOrQRPayload string
	BusinessID      string
	OperatorID      string
	BranchID        string
}

type VoucherUseCase interface {
	RedeemVoucher(ctx context.Context, req VoucherRedemptionRequest) (*entity.Voucher, error)
	// ExpireDue sweeps pending vouchers past their expiry. Expiry never
	// refunds points; they were spent at redemption time.
	ExpireDue(ctx context.Context) (int, error)
	// NotifyExpiring emits a one-shot near-expiry event for pending vouchers
	// inside the window.
	NotifyExpiring(ctx context.Context, window time.Duration) (int, error)
}

const (
	issueMaxAttempts = 5
	sweepBatchSize   = 500
)

// VoucherIssuer mints vouchers for redemption transactions. Issue runs inside
// the redemption's database transaction so a voucher can never exist without
// its transaction, nor the reverse.
type VoucherIssuer struct {
	signer *QRSigner
}

func NewVoucherIssuer(signer *QRSigner) *VoucherIssuer {
	return &VoucherIssuer{signer: signer}
}

func (i *VoucherIssuer) Issue(ctx context.Context, s persistent.Store, txn *entity.Transaction, customerID string, reward *entity.Reward, cfg *entity.LoyaltyConfig) (*entity.Voucher, error) {
	var code string
	for attempt := 0; ; attempt++ {
		candidate, err := generateVoucherCode()
		if err != nil {
			return nil, err
		}
		exists, err := s.PendingCodeExists(ctx, txn.BusinessID, candidate)
		if err != nil {
			return nil, fmt.Errorf("failed to check code collision: %w", err)
		}
		if !exists {
			code = candidate
			break
		}
		if attempt+1 >= issueMaxAttempts {
			return nil, fmt.Errorf("failed to generate unique voucher code after %d attempts", issueMaxAttempts)
		}
	}

	now := time.Now()
	voucher := &entity.Voucher{
		ID:            uuid.New().String(),
		TransactionID: txn.ID,
		RewardID:      reward.ID,
		CustomerID:    customerID,
		BusinessID:    txn.BusinessID,
		Code:          code,
		Status:        entity.VoucherStatusPending,
		IssuedAt:      now,
		ExpiresAt:     now.Add(cfg.VoucherValidityWindow()),
	}

	qrPayload, err := i.signer.Sign(voucher.ID, voucher.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to sign qr payload: %w", err)
	}
	voucher.QRPayload = qrPayload

	if err := s.CreateVoucher(ctx, voucher); err != nil {
		return nil, fmt.Errorf("failed to create voucher: %w", err)
	}
	return voucher, nil
}

type voucherUseCase struct {
	store       persistent.Store
	signer      *QRSigner
	publisher   EventPublisher
	redisClient *redis.Client
	logger      *logger.Logger
}

func NewVoucherUseCase(store persistent.Store, signer *QRSigner, publisher EventPublisher, redisClient *redis.Client, logger *logger.Logger) VoucherUseCase {
	return &voucherUseCase{
		store:       store,
		signer:      signer,
		publisher:   publisher,
		redisClient: redisClient,
		logger:      logger,
	}
}

func (uc *voucherUseCase) RedeemVoucher(ctx context.Context, req VoucherRedemptionRequest) (*entity.Voucher, error) {
	var result *entity.Voucher
	err := uc.store.Atomic(ctx, func(s persistent.Store) error {
		voucher, err := uc.resolveVoucher(ctx, s, req)
		if err != nil {
			return err
		}

		now := time.Now()
		if voucher.Status == entity.VoucherStatusPending && voucher.Expired(now) {
			// Opportunistic flip; the sweep would catch it eventually.
			if _, err := s.MarkVoucherExpired(ctx, voucher.ID); err != nil {
				return fmt.Errorf("failed to expire voucher: %w", err)
			}
			return entity.ErrVoucherExpired
		}

		ok, err := s.MarkVoucherUsed(ctx, voucher.ID, req.OperatorID, req.BranchID, now)
		if err != nil {
			return fmt.Errorf("failed to mark voucher used: %w", err)
		}
		if !ok {
			// Lost the compare-and-swap: somebody else's scan, the sweep, or
			// a revocation got there first. Report what actually happened.
			current, err := s.GetVoucherByID(ctx, voucher.ID)
			if err != nil {
				return err
			}
			if current.Status == entity.VoucherStatusExpired {
				return entity.ErrVoucherExpired
			}
			return entity.ErrVoucherAlreadyUsed
		}

		voucher.Status = entity.VoucherStatusUsed
		voucher.UsedAt = &now
		voucher.UsedByOperatorID = req.OperatorID
		voucher.UsedAtBranchID = req.BranchID
		result = voucher
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.publish(entity.EventVoucherRedeemed, entity.VoucherRedeemedEvent{VoucherID: result.ID})
	return result, nil
}

// resolveVoucher maps the scanned input to a voucher row: a signed QR payload
// resolves by voucher id, anything else is treated as a typed code.
func (uc *voucherUseCase) resolveVoucher(ctx context.Context, s persistent.Store, req VoucherRedemptionRequest) (*entity.Voucher, error) {
	input := strings.TrimSpace(req.CodeOrQRPayload)
	if input == "" {
		return nil, entity.ErrVoucherNotFound
	}

	if looksLikeQRPayload(input) {
		voucherID, err := uc.signer.Verify(input)
		if err != nil {
			return nil, err
		}
		voucher, err := s.GetVoucherByID(ctx, voucherID)
		if err != nil {
			return nil, err
		}
		if voucher.BusinessID != req.BusinessID {
			return nil, entity.ErrVoucherNotFound
		}
		return voucher, nil
	}

	return s.GetPendingVoucherByCode(ctx, req.BusinessID, strings.ToUpper(input))
}

func (uc *voucherUseCase) ExpireDue(ctx context.Context) (int, error) {
	now := time.Now()
	due, err := uc.store.ListDueVouchers(ctx, now, sweepBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list due vouchers: %w", err)
	}

	expired := 0
	for _, voucher := range due {
		// Same compare-and-swap as a manual redemption, so a scan racing the
		// sweep at the expiry boundary has exactly one winner.
		ok, err := uc.store.MarkVoucherExpired(ctx, voucher.ID)
		if err != nil {
			return expired, fmt.Errorf("failed to expire voucher %s: %w", voucher.ID, err)
		}
		if !ok {
			continue
		}
		expired++
		uc.publish(entity.EventVoucherExpired, entity.VoucherExpiredEvent{VoucherID: voucher.ID})
	}

	if expired > 0 {
		uc.logger.Info("Expired %d vouchers", expired)
	}
	return expired, nil
}

func (uc *voucherUseCase) NotifyExpiring(ctx context.Context, window time.Duration) (int, error) {
	now := time.Now()
	expiring, err := uc.store.ListExpiringVouchers(ctx, now, now.Add(window), sweepBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list expiring vouchers: %w", err)
	}

	notified := 0
	for _, voucher := range expiring {
		if !uc.claimExpiryNotice(ctx, voucher.ID, window) {
			continue
		}
		notified++
		uc.publish(entity.EventVoucherExpiring, entity.VoucherExpiringSoonEvent{
			VoucherID: voucher.ID,
			ExpiresAt: voucher.ExpiresAt,
		})
	}
	return notified, nil
}

// claimExpiryNotice dedupes the near-expiry notice across sweep runs.
func (uc *voucherUseCase) claimExpiryNotice(ctx context.Context, voucherID string, window time.Duration) bool {
	if uc.redisClient == nil {
		return true
	}
	key := fmt.Sprintf("loyalty:voucher_expiry_notice:%s", voucherID)
	ok, err := uc.redisClient.SetNX(ctx, key, 1, window+time.Hour).Result()
	if err != nil {
		uc.logger.Error("Failed to claim expiry notice for voucher %s: %v", voucherID, err)
		return true
	}
	return ok
}

func (uc *voucherUseCase) publish(eventType string, payload interface{}) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.PublishEvent(eventType, payload); err != nil {
		uc.logger.Error("Failed to publish %s event: %v", eventType, err)
	}
}
