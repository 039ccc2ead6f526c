package persistent

import (
	"context"
	"errors"
	"time"

	"pointstack/services/loyalty/internal/entity"
	"pointstack/services/loyalty/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (s *store) CreateVoucher(ctx context.Context, voucher *entity.Voucher) error {
	voucherModel := ToVoucherModel(voucher)
	if voucherModel.ID == "" {
		voucherModel.ID = uuid.New().String()
	}
	if err := s.db.WithContext(ctx).Create(voucherModel).Error; err != nil {
		return err
	}
	*voucher = *ToVoucherEntity(voucherModel)
	return nil
}

func (s *store) GetVoucherByID(ctx context.Context, id string) (*entity.Voucher, error) {
	var voucherModel model.VoucherModel
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&voucherModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrVoucherNotFound
		}
		return nil, err
	}
	return ToVoucherEntity(&voucherModel), nil
}

func (s *store) GetPendingVoucherByCode(ctx context.Context, businessID, code string) (*entity.Voucher, error) {
	var voucherModel model.VoucherModel
	err := s.db.WithContext(ctx).
		Where("business_id = ? AND code = ? AND status = ?", businessID, code, string(entity.VoucherStatusPending)).
		First(&voucherModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrVoucherNotFound
		}
		return nil, err
	}
	return ToVoucherEntity(&voucherModel), nil
}

func (s *store) GetVoucherByTransactionID(ctx context.Context, transactionID string) (*entity.Voucher, error) {
	var voucherModel model.VoucherModel
	err := s.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		First(&voucherModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrVoucherNotFound
		}
		return nil, err
	}
	return ToVoucherEntity(&voucherModel), nil
}

func (s *store) PendingCodeExists(ctx context.Context, businessID, code string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.VoucherModel{}).
		Where("business_id = ? AND code = ? AND status = ?", businessID, code, string(entity.VoucherStatusPending)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkVoucherUsed is the compare-and-swap for the pending->used transition.
// The WHERE clause on status makes the second of two concurrent scans a no-op.
func (s *store) MarkVoucherUsed(ctx context.Context, id, operatorID, branchID string, at time.Time) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&model.VoucherModel{}).
		Where("id = ? AND status = ?", id, string(entity.VoucherStatusPending)).
		Updates(map[string]interface{}{
			"status":              string(entity.VoucherStatusUsed),
			"used_at":             at,
			"used_by_operator_id": operatorID,
			"used_at_branch_id":   branchID,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *store) MarkVoucherExpired(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&model.VoucherModel{}).
		Where("id = ? AND status = ?", id, string(entity.VoucherStatusPending)).
		Update("status", string(entity.VoucherStatusExpired))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *store) CancelVoucher(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).
		Model(&model.VoucherModel{}).
		Where("id = ?", id).
		Update("status", string(entity.VoucherStatusCancelled)).Error
}

func (s *store) ListDueVouchers(ctx context.Context, now time.Time, limit int) ([]*entity.Voucher, error) {
	var voucherModels []model.VoucherModel
	query := s.db.WithContext(ctx).
		Where("status = ? AND expires_at < ?", string(entity.VoucherStatusPending), now).
		Order("expires_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&voucherModels).Error; err != nil {
		return nil, err
	}
	return toVoucherEntities(voucherModels), nil
}

func (s *store) ListExpiringVouchers(ctx context.Context, from, to time.Time, limit int) ([]*entity.Voucher, error) {
	var voucherModels []model.VoucherModel
	query := s.db.WithContext(ctx).
		Where("status = ? AND expires_at >= ? AND expires_at < ?", string(entity.VoucherStatusPending), from, to).
		Order("expires_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&voucherModels).Error; err != nil {
		return nil, err
	}
	return toVoucherEntities(voucherModels), nil
}

func toVoucherEntities(models []model.VoucherModel) []*entity.Voucher {
	vouchers := make([]*entity.Voucher, len(models))
	for i := range models {
		vouchers[i] = ToVoucherEntity(&models[i])
	}
	return vouchers
}
