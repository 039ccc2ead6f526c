package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"pointstack/services/loyalty/internal/entity"
	"pointstack/services/loyalty/internal/repo/persistent"

	"github.com/google/uuid"
)

// fakeStore is an in-memory persistent.Store. Atomic runs the callback under
// a single mutex, which gives tests the same all-or-nothing visibility the
// real store gets from the database, minus rollback.
type fakeStore struct {
	mu           sync.Mutex
	wallets      map[string]*entity.Wallet
	transactions map[string]*entity.Transaction
	rewards      map[string]*entity.Reward
	vouchers     map[string]*entity.Voucher
	configs      map[string][]*entity.LoyaltyConfig
	txnOrder     []string
}

var _ persistent.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		wallets:      make(map[string]*entity.Wallet),
		transactions: make(map[string]*entity.Transaction),
		rewards:      make(map[string]*entity.Reward),
		vouchers:     make(map[string]*entity.Voucher),
		configs:      make(map[string][]*entity.LoyaltyConfig),
	}
}

func (f *fakeStore) Atomic(ctx context.Context, fn func(persistent.Store) error) error {
	return fn(f)
}

func copyWallet(w *entity.Wallet) *entity.Wallet {
	c := *w
	return &c
}

func copyTransaction(t *entity.Transaction) *entity.Transaction {
	c := *t
	return &c
}

func copyVoucher(v *entity.Voucher) *entity.Voucher {
	c := *v
	return &c
}

func copyReward(r *entity.Reward) *entity.Reward {
	c := *r
	if r.Stock != nil {
		s := *r.Stock
		c.Stock = &s
	}
	return &c
}

func (f *fakeStore) GetWallet(ctx context.Context, customerID, businessID string) (*entity.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.wallets {
		if w.CustomerID == customerID && w.BusinessID == businessID {
			return copyWallet(w), nil
		}
	}
	return nil, entity.ErrWalletNotFound
}

func (f *fakeStore) GetWalletByID(ctx context.Context, id string) (*entity.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wallets[id]
	if !ok {
		return nil, entity.ErrWalletNotFound
	}
	return copyWallet(w), nil
}

func (f *fakeStore) GetOrCreateWalletForUpdate(ctx context.Context, customerID, businessID, baseTier string) (*entity.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.wallets {
		if w.CustomerID == customerID && w.BusinessID == businessID {
			return copyWallet(w), nil
		}
	}
	w := &entity.Wallet{
		ID:          uuid.New().String(),
		CustomerID:  customerID,
		BusinessID:  businessID,
		CurrentTier: baseTier,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	f.wallets[w.ID] = w
	return copyWallet(w), nil
}

func (f *fakeStore) GetWalletForUpdate(ctx context.Context, customerID, businessID string) (*entity.Wallet, error) {
	return f.GetWallet(ctx, customerID, businessID)
}

func (f *fakeStore) GetWalletForUpdateByID(ctx context.Context, id string) (*entity.Wallet, error) {
	return f.GetWalletByID(ctx, id)
}

func (f *fakeStore) SaveWallet(ctx context.Context, wallet *entity.Wallet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wallets[wallet.ID] = copyWallet(wallet)
	return nil
}

func (f *fakeStore) CreateTransaction(ctx context.Context, txn *entity.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	for _, existing := range f.transactions {
		if txn.IdempotencyKey != "" &&
			existing.BusinessID == txn.BusinessID &&
			existing.IdempotencyKey == txn.IdempotencyKey {
			return entity.ErrDuplicateTransaction
		}
		if txn.ReversalOfTransactionID != "" &&
			existing.ReversalOfTransactionID == txn.ReversalOfTransactionID {
			return entity.ErrDuplicateTransaction
		}
	}
	f.transactions[txn.ID] = copyTransaction(txn)
	f.txnOrder = append(f.txnOrder, txn.ID)
	return nil
}

func (f *fakeStore) GetTransaction(ctx context.Context, id string) (*entity.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.transactions[id]
	if !ok {
		return nil, entity.ErrTransactionNotFound
	}
	return copyTransaction(t), nil
}

func (f *fakeStore) GetTransactionForUpdate(ctx context.Context, id string) (*entity.Transaction, error) {
	return f.GetTransaction(ctx, id)
}

func (f *fakeStore) FindTransactionByIdempotencyKey(ctx context.Context, businessID, key string) (*entity.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.transactions {
		if t.BusinessID == businessID && t.IdempotencyKey == key {
			return copyTransaction(t), nil
		}
	}
	return nil, nil
}

func (f *fakeStore) UpdateTransactionStatus(ctx context.Context, id string, status entity.TransactionStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.transactions[id]
	if !ok {
		return entity.ErrTransactionNotFound
	}
	t.Status = status
	return nil
}

func (f *fakeStore) ListTransactions(ctx context.Context, walletID string, limit, offset int) ([]*entity.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Transaction
	for _, id := range f.txnOrder {
		t := f.transactions[id]
		if t.WalletID == walletID {
			out = append(out, copyTransaction(t))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) GetReward(ctx context.Context, id string) (*entity.Reward, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rewards[id]
	if !ok {
		return nil, entity.ErrRewardNotFound
	}
	return copyReward(r), nil
}

func (f *fakeStore) CreateReward(ctx context.Context, reward *entity.Reward) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if reward.ID == "" {
		reward.ID = uuid.New().String()
	}
	f.rewards[reward.ID] = copyReward(reward)
	return nil
}

func (f *fakeStore) SaveReward(ctx context.Context, reward *entity.Reward) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rewards[reward.ID] = copyReward(reward)
	return nil
}

func (f *fakeStore) DecrementRewardStock(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rewards[id]
	if !ok {
		return false, nil
	}
	if r.Stock == nil {
		return true, nil
	}
	if *r.Stock <= 0 {
		return false, nil
	}
	*r.Stock--
	return true, nil
}

func (f *fakeStore) RestoreRewardStock(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rewards[id]
	if !ok {
		return entity.ErrRewardNotFound
	}
	if r.Stock != nil {
		*r.Stock++
	}
	return nil
}

func (f *fakeStore) CreateVoucher(ctx context.Context, voucher *entity.Voucher) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if voucher.ID == "" {
		voucher.ID = uuid.New().String()
	}
	f.vouchers[voucher.ID] = copyVoucher(voucher)
	return nil
}

func (f *fakeStore) GetVoucherByID(ctx context.Context, id string) (*entity.Voucher, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vouchers[id]
	if !ok {
		return nil, entity.ErrVoucherNotFound
	}
	return copyVoucher(v), nil
}

func (f *fakeStore) GetPendingVoucherByCode(ctx context.Context, businessID, code string) (*entity.Voucher, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.vouchers {
		if v.BusinessID == businessID && v.Code == code && v.Status == entity.VoucherStatusPending {
			return copyVoucher(v), nil
		}
	}
	return nil, entity.ErrVoucherNotFound
}

func (f *fakeStore) GetVoucherByTransactionID(ctx context.Context, transactionID string) (*entity.Voucher, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.vouchers {
		if v.TransactionID == transactionID {
			return copyVoucher(v), nil
		}
	}
	return nil, entity.ErrVoucherNotFound
}

func (f *fakeStore) PendingCodeExists(ctx context.Context, businessID, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.vouchers {
		if v.BusinessID == businessID && v.Code == code && v.Status == entity.VoucherStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) MarkVoucherUsed(ctx context.Context, id, operatorID, branchID string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vouchers[id]
	if !ok || v.Status != entity.VoucherStatusPending {
		return false, nil
	}
	v.Status = entity.VoucherStatusUsed
	v.UsedAt = &at
	v.UsedByOperatorID = operatorID
	v.UsedAtBranchID = branchID
	return true, nil
}

func (f *fakeStore) MarkVoucherExpired(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vouchers[id]
	if !ok || v.Status != entity.VoucherStatusPending {
		return false, nil
	}
	v.Status = entity.VoucherStatusExpired
	return true, nil
}

func (f *fakeStore) CancelVoucher(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vouchers[id]
	if !ok {
		return entity.ErrVoucherNotFound
	}
	v.Status = entity.VoucherStatusCancelled
	return nil
}

func (f *fakeStore) ListDueVouchers(ctx context.Context, now time.Time, limit int) ([]*entity.Voucher, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Voucher
	for _, v := range f.vouchers {
		if v.Status == entity.VoucherStatusPending && now.After(v.ExpiresAt) {
			out = append(out, copyVoucher(v))
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) ListExpiringVouchers(ctx context.Context, from, to time.Time, limit int) ([]*entity.Voucher, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Voucher
	for _, v := range f.vouchers {
		if v.Status == entity.VoucherStatusPending && v.ExpiresAt.After(from) && v.ExpiresAt.Before(to) {
			out = append(out, copyVoucher(v))
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) ActiveConfig(ctx context.Context, businessID string) (*entity.LoyaltyConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	versions := f.configs[businessID]
	for i := len(versions) - 1; i >= 0; i-- {
		if versions[i].Active {
			c := *versions[i]
			return &c, nil
		}
	}
	return nil, entity.ErrConfigNotFound
}

func (f *fakeStore) GetConfigVersion(ctx context.Context, businessID string, version int) (*entity.LoyaltyConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.configs[businessID] {
		if c.Version == version {
			out := *c
			return &out, nil
		}
	}
	return nil, entity.ErrConfigNotFound
}

func (f *fakeStore) CreateConfigVersion(ctx context.Context, cfg *entity.LoyaltyConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cfg.Version = len(f.configs[cfg.BusinessID]) + 1
	cfg.Active = true
	cfg.CreatedAt = time.Now()
	c := *cfg
	f.configs[cfg.BusinessID] = append(f.configs[cfg.BusinessID], &c)
	return nil
}

func (f *fakeStore) DeactivateConfigs(ctx context.Context, businessID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.configs[businessID] {
		c.Active = false
	}
	return nil
}

// capturingPublisher records published events in order.
type capturingPublisher struct {
	mu     sync.Mutex
	events []pendingEvent
}

func (p *capturingPublisher) PublishEvent(eventType string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, pendingEvent{eventType, payload})
	return nil
}

func (p *capturingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.eventType
	}
	return out
}
