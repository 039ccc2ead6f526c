package persistent

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pointstack/services/loyalty/internal/entity"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Store is the durable side of the ledger. Every mutating ledger operation
// runs its check-then-act sequence inside Atomic so balance reads, stock
// decrements and voucher transitions are serialized by the database, not by
// application code.
type Store interface {
	// Atomic runs fn against a transaction-scoped Store at serializable
	// isolation. Nested calls reuse the enclosing transaction.
	Atomic(ctx context.Context, fn func(Store) error) error

	Wallets
	Transactions
	Rewards
	Vouchers
	Configs
}

type Wallets interface {
	GetWallet(ctx context.Context, customerID, businessID string) (*entity.Wallet, error)
	GetWalletByID(ctx context.Context, id string) (*entity.Wallet, error)
	// GetOrCreateWalletForUpdate returns the wallet row locked for update,
	// creating it lazily with the given base tier on first accrual.
	GetOrCreateWalletForUpdate(ctx context.Context, customerID, businessID, baseTier string) (*entity.Wallet, error)
	// GetWalletForUpdate locks an existing wallet; redemption never creates one.
	GetWalletForUpdate(ctx context.Context, customerID, businessID string) (*entity.Wallet, error)
	GetWalletForUpdateByID(ctx context.Context, id string) (*entity.Wallet, error)
	SaveWallet(ctx context.Context, wallet *entity.Wallet) error
}

type Transactions interface {
	CreateTransaction(ctx context.Context, txn *entity.Transaction) error
	GetTransaction(ctx context.Context, id string) (*entity.Transaction, error)
	GetTransactionForUpdate(ctx context.Context, id string) (*entity.Transaction, error)
	// FindTransactionByIdempotencyKey returns (nil, nil) when no transaction
	// carries the key for the business.
	FindTransactionByIdempotencyKey(ctx context.Context, businessID, key string) (*entity.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, id string, status entity.TransactionStatus) error
	ListTransactions(ctx context.Context, walletID string, limit, offset int) ([]*entity.Transaction, error)
}

type Rewards interface {
	GetReward(ctx context.Context, id string) (*entity.Reward, error)
	CreateReward(ctx context.Context, reward *entity.Reward) error
	SaveReward(ctx context.Context, reward *entity.Reward) error
	// DecrementRewardStock conditionally takes one unit of finite stock.
	// Returns false when the reward is finite and exhausted.
	DecrementRewardStock(ctx context.Context, id string) (bool, error)
	RestoreRewardStock(ctx context.Context, id string) error
}

type Vouchers interface {
	CreateVoucher(ctx context.Context, voucher *entity.Voucher) error
	GetVoucherByID(ctx context.Context, id string) (*entity.Voucher, error)
	GetPendingVoucherByCode(ctx context.Context, businessID, code string) (*entity.Voucher, error)
	GetVoucherByTransactionID(ctx context.Context, transactionID string) (*entity.Voucher, error)
	PendingCodeExists(ctx context.Context, businessID, code string) (bool, error)
	// MarkVoucherUsed flips pending to used via conditional update. Returns
	// false when the voucher was no longer pending, so exactly one of any
	// number of concurrent scans wins.
	MarkVoucherUsed(ctx context.Context, id, operatorID, branchID string, at time.Time) (bool, error)
	// MarkVoucherExpired flips pending to expired with the same discipline.
	MarkVoucherExpired(ctx context.Context, id string) (bool, error)
	// CancelVoucher forces status to cancelled whatever the current state.
	// Reserved for the revocation path.
	CancelVoucher(ctx context.Context, id string) error
	ListDueVouchers(ctx context.Context, now time.Time, limit int) ([]*entity.Voucher, error)
	ListExpiringVouchers(ctx context.Context, from, to time.Time, limit int) ([]*entity.Voucher, error)
}

type Configs interface {
	ActiveConfig(ctx context.Context, businessID string) (*entity.LoyaltyConfig, error)
	GetConfigVersion(ctx context.Context, businessID string, version int) (*entity.LoyaltyConfig, error)
	// CreateConfigVersion appends the next version for the business and fills
	// in cfg.Version.
	CreateConfigVersion(ctx context.Context, cfg *entity.LoyaltyConfig) error
	DeactivateConfigs(ctx context.Context, businessID string) error
}

type store struct {
	db   *gorm.DB
	inTx bool
}

func NewStore(db *gorm.DB) Store {
	return &store{db: db}
}

func (s *store) Atomic(ctx context.Context, fn func(Store) error) error {
	if s.inTx {
		return fn(s)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&store{db: tx, inTx: true})
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	return translateError(err)
}

// translateError maps Postgres serialization failures onto the retryable
// sentinel; everything else passes through unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "40001" {
		return entity.ErrSerializationConflict
	}
	return err
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
