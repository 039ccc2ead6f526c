package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"pointstack/services/loyalty/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBranchID = "c1a2b3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d"

func (fx *ledgerFixture) issueVoucher(t *testing.T) *entity.Voucher {
	t.Helper()
	fx.accrue(t, 60000)
	reward := fx.seedReward(t, 100, nil)
	_, voucher, err := fx.ledger.Redeem(context.Background(), RedeemRequest{
		CustomerID: testCustomerID,
		BusinessID: testBusinessID,
		RewardID:   reward.ID,
		OperatorID: testOperatorID,
	})
	require.NoError(t, err)
	return voucher
}

func (fx *ledgerFixture) forceExpiry(t *testing.T, voucherID string, at time.Time) {
	t.Helper()
	fx.store.mu.Lock()
	defer fx.store.mu.Unlock()
	v, ok := fx.store.vouchers[voucherID]
	require.True(t, ok)
	v.ExpiresAt = at
}

func TestRedeemVoucher_ByCode(t *testing.T) {
	fx := newLedgerFixture(t)
	voucher := fx.issueVoucher(t)

	used, err := fx.vouchers.RedeemVoucher(context.Background(), VoucherRedemptionRequest{
		CodeOrQRPayload: voucher.Code,
		BusinessID:      testBusinessID,
		OperatorID:      testOperatorID,
		BranchID:        testBranchID,
	})
	require.NoError(t, err)

	assert.Equal(t, voucher.ID, used.ID)
	assert.Equal(t, entity.VoucherStatusUsed, used.Status)
	assert.Equal(t, testOperatorID, used.UsedByOperatorID)
	assert.Equal(t, testBranchID, used.UsedAtBranchID)
	assert.NotNil(t, used.UsedAt)
}

func TestRedeemVoucher_CodeIsCaseInsensitive(t *testing.T) {
	fx := newLedgerFixture(t)
	voucher := fx.issueVoucher(t)

	used, err := fx.vouchers.RedeemVoucher(context.Background(), VoucherRedemptionRequest{
		CodeOrQRPayload: "  " + strings.ToLower(voucher.Code) + " ",
		BusinessID:      testBusinessID,
		OperatorID:      testOperatorID,
	})
	require.NoError(t, err)
	assert.Equal(t, voucher.ID, used.ID)
}

func TestRedeemVoucher_ByQRPayload(t *testing.T) {
	fx := newLedgerFixture(t)
	voucher := fx.issueVoucher(t)

	used, err := fx.vouchers.RedeemVoucher(context.Background(), VoucherRedemptionRequest{
		CodeOrQRPayload: voucher.QRPayload,
		BusinessID:      testBusinessID,
		OperatorID:      testOperatorID,
	})
	require.NoError(t, err)
	assert.Equal(t, voucher.ID, used.ID)
	assert.Equal(t, entity.VoucherStatusUsed, used.Status)
}

func TestRedeemVoucher_QRFromOtherBusiness(t *testing.T) {
	fx := newLedgerFixture(t)
	voucher := fx.issueVoucher(t)

	_, err := fx.vouchers.RedeemVoucher(context.Background(), VoucherRedemptionRequest{
		CodeOrQRPayload: voucher.QRPayload,
		BusinessID:      "11111111-2222-3333-4444-555555555555",
		OperatorID:      testOperatorID,
	})
	assert.ErrorIs(t, err, entity.ErrVoucherNotFound)
}

func TestRedeemVoucher_TamperedQR(t *testing.T) {
	fx := newLedgerFixture(t)
	voucher := fx.issueVoucher(t)

	_, err := fx.vouchers.RedeemVoucher(context.Background(), VoucherRedemptionRequest{
		CodeOrQRPayload: voucher.QRPayload + "x",
		BusinessID:      testBusinessID,
		OperatorID:      testOperatorID,
	})
	assert.ErrorIs(t, err, entity.ErrInvalidQRSignature)
}

func TestRedeemVoucher_Expired(t *testing.T) {
	fx := newLedgerFixture(t)
	voucher := fx.issueVoucher(t)
	fx.forceExpiry(t, voucher.ID, time.Now().Add(-time.Hour))

	_, err := fx.vouchers.RedeemVoucher(context.Background(), VoucherRedemptionRequest{
		CodeOrQRPayload: voucher.Code,
		BusinessID:      testBusinessID,
		OperatorID:      testOperatorID,
	})
	assert.ErrorIs(t, err, entity.ErrVoucherExpired)

	flipped, err := fx.store.GetVoucherByID(context.Background(), voucher.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.VoucherStatusExpired, flipped.Status)

	// Expiry does not refund: the points stay spent.
	wallet, err := fx.ledger.GetWallet(context.Background(), testCustomerID, testBusinessID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), wallet.PointsAvailable)
	assert.Equal(t, int64(100), wallet.PointsRedeemedTotal)
}

func TestRedeemVoucher_Twice(t *testing.T) {
	fx := newLedgerFixture(t)
	voucher := fx.issueVoucher(t)

	req := VoucherRedemptionRequest{
		CodeOrQRPayload: voucher.QRPayload,
		BusinessID:      testBusinessID,
		OperatorID:      testOperatorID,
	}
	_, err := fx.vouchers.RedeemVoucher(context.Background(), req)
	require.NoError(t, err)

	_, err = fx.vouchers.RedeemVoucher(context.Background(), req)
	assert.ErrorIs(t, err, entity.ErrVoucherAlreadyUsed)
}

func TestExpireDue(t *testing.T) {
	fx := newLedgerFixture(t)
	due := fx.issueVoucher(t)
	fx.forceExpiry(t, due.ID, time.Now().Add(-time.Minute))

	stillValid := fx.issueVoucher(t)

	expired, err := fx.vouchers.ExpireDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	flipped, err := fx.store.GetVoucherByID(context.Background(), due.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.VoucherStatusExpired, flipped.Status)

	untouched, err := fx.store.GetVoucherByID(context.Background(), stillValid.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.VoucherStatusPending, untouched.Status)

	// A second sweep finds nothing new.
	expired, err = fx.vouchers.ExpireDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, expired)
}

func TestNotifyExpiring(t *testing.T) {
	fx := newLedgerFixture(t)
	soon := fx.issueVoucher(t)
	fx.forceExpiry(t, soon.ID, time.Now().Add(time.Hour))

	notified, err := fx.vouchers.NotifyExpiring(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, notified)
	assert.Contains(t, fx.publisher.types(), entity.EventVoucherExpiring)
}
