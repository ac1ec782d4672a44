package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"highpurchase/models"
)

// creditSale books a 1100 credit purchase (1000 subtotal + 10% flat)
// with no down payment and returns it. Wallet sits at -1100 after.
func creditSale(t *testing.T, env *testEnv) (*PurchaseOutcome, models.Product) {
	t.Helper()
	env.seedPolicy(t, models.InterestFlat, "10", 0, 90)
	prod := env.seedProduct(t, "Standing Fan", "FAN-01", 400, 450, 500, 10)
	out := env.createPurchase(t, env.purchaseInput(models.PurchaseCredit, prod, 2))
	return out, prod
}

func (e *testEnv) record(t *testing.T, purchaseID uint, amount int64, method models.PaymentMethod) (*PaymentOutcome, error) {
	t.Helper()
	var out *PaymentOutcome
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = RecordPayment(tx, RecordPaymentInput{
			BusinessID: e.Business.ID,
			PurchaseID: purchaseID,
			Amount:     amount,
			Method:     method,
			ActorID:    e.Staff.ID,
		})
		return err
	})
	return out, err
}

func (e *testEnv) confirm(t *testing.T, paymentID uint) (*PaymentOutcome, error) {
	t.Helper()
	var out *PaymentOutcome
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = ConfirmPayment(tx, ConfirmPaymentInput{
			BusinessID: e.Business.ID,
			PaymentID:  paymentID,
			ActorID:    e.Staff.ID,
		})
		return err
	})
	return out, err
}

func (e *testEnv) recordAuto(t *testing.T, purchaseID uint, amount int64, method models.PaymentMethod) (*PaymentOutcome, error) {
	t.Helper()
	var out *PaymentOutcome
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = RecordPayment(tx, RecordPaymentInput{
			BusinessID:  e.Business.ID,
			PurchaseID:  purchaseID,
			Amount:      amount,
			Method:      method,
			AutoConfirm: true,
			ActorID:     e.Staff.ID,
		})
		return err
	})
	return out, err
}

func TestPaymentConfirmationLifecycle(t *testing.T) {
	env := newTestEnv(t)
	sale, prod := creditSale(t, env)
	purchaseID := sale.Purchase.ID

	// recording moves no money
	recorded, err := env.record(t, purchaseID, 500, models.PayCash)
	require.NoError(t, err)
	assert.True(t, recorded.Payment.Pending())
	p := env.reloadPurchase(t, purchaseID)
	assert.Equal(t, int64(0), p.AmountPaid)
	assert.Equal(t, int64(1100), p.OutstandingBalance)
	assert.Equal(t, models.PurchasePending, p.Status)
	assert.Equal(t, int64(-1100), env.reloadCustomer(t).WalletBalance)

	// confirmation settles 500 of the 1100
	confirmed, err := env.confirm(t, recorded.Payment.ID)
	require.NoError(t, err)
	assert.False(t, confirmed.CompletedNow)
	p = env.reloadPurchase(t, purchaseID)
	assert.Equal(t, int64(500), p.AmountPaid)
	assert.Equal(t, int64(600), p.OutstandingBalance)
	assert.Equal(t, models.PurchaseActive, p.Status)
	assert.Equal(t, int64(-600), env.reloadCustomer(t).WalletBalance)

	// confirming twice is refused and changes nothing
	_, err = env.confirm(t, recorded.Payment.ID)
	require.Error(t, err)
	var ce *ConflictError
	assert.ErrorAs(t, err, &ce)
	p = env.reloadPurchase(t, purchaseID)
	assert.Equal(t, int64(500), p.AmountPaid)
	assert.Equal(t, int64(600), p.OutstandingBalance)
	assert.Equal(t, int64(-600), env.reloadCustomer(t).WalletBalance)

	// 700 against 600 outstanding is refused before any mutation
	_, err = env.record(t, purchaseID, 700, models.PayCash)
	require.Error(t, err)
	assert.ErrorAs(t, err, &ce)
	assert.Len(t, env.payments(t, purchaseID), 1)

	// the final 600 completes, deducts stock and issues one waybill
	final, err := env.record(t, purchaseID, 600, models.PayMobileMoney)
	require.NoError(t, err)
	settled, err := env.confirm(t, final.Payment.ID)
	require.NoError(t, err)
	assert.True(t, settled.CompletedNow)
	require.NotNil(t, settled.Waybill)

	p = env.reloadPurchase(t, purchaseID)
	assert.Equal(t, models.PurchaseCompleted, p.Status)
	assert.Equal(t, int64(0), p.OutstandingBalance)
	require.NotNil(t, p.CompletedAt)
	assert.Equal(t, models.DeliveryScheduled, p.DeliveryStatus)
	assert.Equal(t, int64(0), env.reloadCustomer(t).WalletBalance)
	assert.Equal(t, int64(8), env.shopQty(t, prod.ID))
	assert.Equal(t, int64(1), env.waybillCount(t, purchaseID))

	// nothing more can be paid into a settled purchase
	_, err = env.record(t, purchaseID, 100, models.PayCash)
	require.Error(t, err)
	assert.ErrorAs(t, err, &ce)
	assert.Equal(t, int64(1), env.waybillCount(t, purchaseID))
}

func TestConfirmRechecksOutstanding(t *testing.T) {
	env := newTestEnv(t)
	sale, _ := creditSale(t, env)

	first, err := env.record(t, sale.Purchase.ID, 600, models.PayCash)
	require.NoError(t, err)
	second, err := env.record(t, sale.Purchase.ID, 600, models.PayCash)
	require.NoError(t, err)

	_, err = env.confirm(t, first.Payment.ID)
	require.NoError(t, err)

	// the second 600 no longer fits into the remaining 500
	_, err = env.confirm(t, second.Payment.ID)
	require.Error(t, err)
	var ce *ConflictError
	assert.ErrorAs(t, err, &ce)

	p := env.reloadPurchase(t, sale.Purchase.ID)
	assert.Equal(t, int64(600), p.AmountPaid)
	assert.Equal(t, int64(-500), env.reloadCustomer(t).WalletBalance)
}

func TestRejectPayment(t *testing.T) {
	env := newTestEnv(t)
	sale, _ := creditSale(t, env)

	recorded, err := env.record(t, sale.Purchase.ID, 500, models.PayCash)
	require.NoError(t, err)

	reject := func(reason string) error {
		return env.DB.Transaction(func(tx *gorm.DB) error {
			_, err := RejectPayment(tx, RejectPaymentInput{
				BusinessID: env.Business.ID,
				PaymentID:  recorded.Payment.ID,
				Reason:     reason,
				ActorID:    env.Staff.ID,
			})
			return err
		})
	}

	err = reject("  ")
	require.Error(t, err)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	require.NoError(t, reject("counterfeit notes"))
	var pay models.Payment
	require.NoError(t, env.DB.First(&pay, recorded.Payment.ID).Error)
	require.NotNil(t, pay.RejectedAt)
	require.NotNil(t, pay.RejectionReason)
	assert.Equal(t, "counterfeit notes", *pay.RejectionReason)

	// books untouched
	p := env.reloadPurchase(t, sale.Purchase.ID)
	assert.Equal(t, int64(0), p.AmountPaid)
	assert.Equal(t, int64(-1100), env.reloadCustomer(t).WalletBalance)

	// a rejected payment is closed for good
	var ce *ConflictError
	err = reject("again")
	require.Error(t, err)
	assert.ErrorAs(t, err, &ce)
	_, err = env.confirm(t, recorded.Payment.ID)
	require.Error(t, err)
	assert.ErrorAs(t, err, &ce)
}

func TestWalletPaymentConfirmsInline(t *testing.T) {
	env := newTestEnv(t)
	sale, _ := creditSale(t, env)

	// top up past the posted debt so there is spendable balance
	env.deposit(t, 1600)
	assert.Equal(t, int64(500), env.reloadCustomer(t).WalletBalance)

	out, err := env.record(t, sale.Purchase.ID, 400, models.PayWallet)
	require.NoError(t, err)
	assert.True(t, out.Payment.IsConfirmed, "wallet funds are already held")

	p := env.reloadPurchase(t, sale.Purchase.ID)
	assert.Equal(t, int64(400), p.AmountPaid)
	assert.Equal(t, int64(700), p.OutstandingBalance)
	assert.Equal(t, models.PurchaseActive, p.Status)

	// spend -400 and instalment credit +400 cancel out
	assert.Equal(t, int64(500), env.reloadCustomer(t).WalletBalance)
	rows := env.walletRows(t)
	require.Len(t, rows, 4)
	assert.Equal(t, int64(-400), rows[2].Amount)
	assert.Equal(t, int64(400), rows[3].Amount)

	// 600 fits the 700 outstanding, but only 500 is spendable
	_, err = env.record(t, sale.Purchase.ID, 600, models.PayWallet)
	require.Error(t, err)
	var ce *ConflictError
	assert.ErrorAs(t, err, &ce)
	assert.Equal(t, int64(400), env.reloadPurchase(t, sale.Purchase.ID).AmountPaid)
	assert.Len(t, env.payments(t, sale.Purchase.ID), 1)
}

func TestAutoConfirmPaymentSettlesInline(t *testing.T) {
	env := newTestEnv(t)
	sale, prod := creditSale(t, env)

	out, err := env.recordAuto(t, sale.Purchase.ID, 500, models.PayCash)
	require.NoError(t, err)
	require.True(t, out.Payment.IsConfirmed)
	require.NotNil(t, out.Payment.ConfirmedAt)
	assert.False(t, out.CompletedNow)

	p := env.reloadPurchase(t, sale.Purchase.ID)
	assert.Equal(t, int64(500), p.AmountPaid)
	assert.Equal(t, int64(600), p.OutstandingBalance)
	assert.Equal(t, models.PurchaseActive, p.Status)

	// instalment credit lands with no wallet spend alongside it
	assert.Equal(t, int64(-600), env.reloadCustomer(t).WalletBalance)
	rows := env.walletRows(t)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(500), rows[1].Amount)
	assert.Equal(t, models.WalletTxDeposit, rows[1].Type)

	// the settling instalment fulfills in the same transaction
	out, err = env.recordAuto(t, sale.Purchase.ID, 600, models.PayMobileMoney)
	require.NoError(t, err)
	require.True(t, out.CompletedNow)
	require.NotNil(t, out.Waybill)
	assert.Equal(t, models.PurchaseCompleted, out.Purchase.Status)
	assert.Equal(t, int64(8), env.shopQty(t, prod.ID))
	assert.Equal(t, int64(0), env.reloadCustomer(t).WalletBalance)
	assert.Equal(t, int64(1), env.waybillCount(t, sale.Purchase.ID))

	// guards hold whether or not confirmation is inline
	_, err = env.recordAuto(t, sale.Purchase.ID, 100, models.PayCash)
	require.Error(t, err)
	var ce *ConflictError
	assert.ErrorAs(t, err, &ce)
}

func TestRecordPaymentGuards(t *testing.T) {
	env := newTestEnv(t)
	sale, _ := creditSale(t, env)

	_, err := env.record(t, sale.Purchase.ID, 0, models.PayCash)
	require.Error(t, err)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = env.record(t, sale.Purchase.ID, 100, "CHEQUE")
	require.Error(t, err)
	assert.ErrorAs(t, err, &ve)

	_, err = env.record(t, sale.Purchase.ID+99, 100, models.PayCash)
	require.Error(t, err)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestFulfillmentShortfallRollsBackConfirmation(t *testing.T) {
	env := newTestEnv(t)
	sale, prod := creditSale(t, env)

	// stock drains between sale and settlement
	require.NoError(t, env.DB.Model(&models.ShopStock{}).
		Where("shop_id = ? AND product_id = ?", env.Shop.ID, prod.ID).
		Update("quantity", 1).Error)

	recorded, err := env.record(t, sale.Purchase.ID, 1100, models.PayCash)
	require.NoError(t, err)
	_, err = env.confirm(t, recorded.Payment.ID)
	require.Error(t, err)
	var ie *IntegrityError
	assert.ErrorAs(t, err, &ie)

	// the whole confirmation rolled back
	var pay models.Payment
	require.NoError(t, env.DB.First(&pay, recorded.Payment.ID).Error)
	assert.True(t, pay.Pending())
	p := env.reloadPurchase(t, sale.Purchase.ID)
	assert.Equal(t, int64(0), p.AmountPaid)
	assert.Equal(t, models.PurchasePending, p.Status)
	assert.Equal(t, int64(-1100), env.reloadCustomer(t).WalletBalance)
	assert.Equal(t, int64(1), env.shopQty(t, prod.ID))
	assert.Equal(t, int64(0), env.waybillCount(t, sale.Purchase.ID))
}
