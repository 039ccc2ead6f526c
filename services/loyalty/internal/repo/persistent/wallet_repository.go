package persistent

import (
	"context"
	"errors"

	"pointstack/services/loyalty/internal/entity"
	"pointstack/services/loyalty/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *store) GetWallet(ctx context.Context, customerID, businessID string) (*entity.Wallet, error) {
	var walletModel model.WalletModel
	err := s.db.WithContext(ctx).
		Where("customer_id = ? AND business_id = ?", customerID, businessID).
		First(&walletModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrWalletNotFound
		}
		return nil, err
	}
	return ToWalletEntity(&walletModel), nil
}

func (s *store) GetWalletByID(ctx context.Context, id string) (*entity.Wallet, error) {
	var walletModel model.WalletModel
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&walletModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrWalletNotFound
		}
		return nil, err
	}
	return ToWalletEntity(&walletModel), nil
}

func (s *store) GetOrCreateWalletForUpdate(ctx context.Context, customerID, businessID, baseTier string) (*entity.Wallet, error) {
	var walletModel model.WalletModel
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("customer_id = ? AND business_id = ?", customerID, businessID).
		First(&walletModel).Error
	if err == nil {
		return ToWalletEntity(&walletModel), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	walletModel = model.WalletModel{
		ID:          uuid.New().String(),
		CustomerID:  customerID,
		BusinessID:  businessID,
		CurrentTier: baseTier,
	}
	if err := s.db.WithContext(ctx).Create(&walletModel).Error; err != nil {
		// Lost the creation race: another accrual inserted the wallet first.
		// Re-read it locked.
		if isDuplicateKey(err) {
			err = s.db.WithContext(ctx).
				Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("customer_id = ? AND business_id = ?", customerID, businessID).
				First(&walletModel).Error
			if err != nil {
				return nil, err
			}
			return ToWalletEntity(&walletModel), nil
		}
		return nil, err
	}
	return ToWalletEntity(&walletModel), nil
}

func (s *store) GetWalletForUpdate(ctx context.Context, customerID, businessID string) (*entity.Wallet, error) {
	var walletModel model.WalletModel
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("customer_id = ? AND business_id = ?", customerID, businessID).
		First(&walletModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrWalletNotFound
		}
		return nil, err
	}
	return ToWalletEntity(&walletModel), nil
}

func (s *store) GetWalletForUpdateByID(ctx context.Context, id string) (*entity.Wallet, error) {
	var walletModel model.WalletModel
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&walletModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrWalletNotFound
		}
		return nil, err
	}
	return ToWalletEntity(&walletModel), nil
}

func (s *store) SaveWallet(ctx context.Context, wallet *entity.Wallet) error {
	return s.db.WithContext(ctx).Save(ToWalletModel(wallet)).Error
}

func (s *store) CreateTransaction(ctx context.Context, txn *entity.Transaction) error {
	transactionModel := ToTransactionModel(txn)
	if transactionModel.ID == "" {
		transactionModel.ID = uuid.New().String()
	}
	if err := s.db.WithContext(ctx).Create(transactionModel).Error; err != nil {
		if isDuplicateKey(err) {
			return entity.ErrDuplicateTransaction
		}
		return err
	}
	*txn = *ToTransactionEntity(transactionModel)
	return nil
}

func (s *store) GetTransaction(ctx context.Context, id string) (*entity.Transaction, error) {
	var transactionModel model.TransactionModel
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&transactionModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrTransactionNotFound
		}
		return nil, err
	}
	return ToTransactionEntity(&transactionModel), nil
}

func (s *store) GetTransactionForUpdate(ctx context.Context, id string) (*entity.Transaction, error) {
	var transactionModel model.TransactionModel
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&transactionModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrTransactionNotFound
		}
		return nil, err
	}
	return ToTransactionEntity(&transactionModel), nil
}

func (s *store) FindTransactionByIdempotencyKey(ctx context.Context, businessID, key string) (*entity.Transaction, error) {
	var transactionModel model.TransactionModel
	err := s.db.WithContext(ctx).
		Where("business_id = ? AND idempotency_key = ?", businessID, key).
		First(&transactionModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ToTransactionEntity(&transactionModel), nil
}

func (s *store) UpdateTransactionStatus(ctx context.Context, id string, status entity.TransactionStatus) error {
	return s.db.WithContext(ctx).
		Model(&model.TransactionModel{}).
		Where("id = ?", id).
		Update("status", string(status)).Error
}

func (s *store) ListTransactions(ctx context.Context, walletID string, limit, offset int) ([]*entity.Transaction, error) {
	var transactionModels []model.TransactionModel
	query := s.db.WithContext(ctx).
		Where("wallet_id = ?", walletID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	if err := query.Find(&transactionModels).Error; err != nil {
		return nil, err
	}

	transactions := make([]*entity.Transaction, len(transactionModels))
	for i := range transactionModels {
		transactions[i] = ToTransactionEntity(&transactionModels[i])
	}
	return transactions, nil
}
