package ledger

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"highpurchase/models"
)

func TestCreateCashPurchaseSettlesAtCounter(t *testing.T) {
	env := newTestEnv(t)
	prod := env.seedProduct(t, "Standing Fan", "FAN-01", 400, 450, 500, 10)

	out := env.createPurchase(t, env.purchaseInput(models.PurchaseCash, prod, 2))
	p := out.Purchase

	assert.Equal(t, fmt.Sprintf("HP-%d-0001", env.Customer.ID), p.Number)
	assert.Equal(t, models.PurchaseCompleted, p.Status)
	assert.Equal(t, int64(800), p.TotalAmount)
	assert.Equal(t, int64(0), p.InterestAmount)
	assert.Equal(t, int64(800), p.AmountPaid)
	assert.Equal(t, int64(0), p.OutstandingBalance)
	assert.Equal(t, models.DeliveryDelivered, p.DeliveryStatus)
	require.NotNil(t, p.CompletedAt)
	assert.Nil(t, out.Waybill, "cash sales hand over at the counter")

	pays := env.payments(t, p.ID)
	require.Len(t, pays, 1)
	assert.True(t, pays[0].IsConfirmed)
	assert.Equal(t, int64(800), pays[0].Amount)
	assert.Equal(t, models.PayCash, pays[0].Method)

	assert.Equal(t, int64(8), env.shopQty(t, prod.ID))
	var mv models.StockMovement
	require.NoError(t, env.DB.Where("product_id = ?", prod.ID).First(&mv).Error)
	assert.Equal(t, int64(-2), mv.Delta)
	assert.Equal(t, p.Number, mv.Reference)

	assert.Empty(t, env.walletRows(t), "cash sales never touch the wallet")
	assert.Equal(t, int64(0), env.reloadCustomer(t).WalletBalance)
}

func TestCreateCreditPurchasePostsDebt(t *testing.T) {
	env := newTestEnv(t)
	env.seedPolicy(t, models.InterestFlat, "10", 5, 90)
	prod := env.seedProduct(t, "Standing Fan", "FAN-01", 400, 450, 500, 10)

	out := env.createPurchase(t, env.purchaseInput(models.PurchaseCredit, prod, 2))
	p := out.Purchase

	assert.Equal(t, models.PurchasePending, p.Status)
	assert.Equal(t, int64(1000), p.Subtotal)
	assert.Equal(t, int64(100), p.InterestAmount)
	assert.Equal(t, int64(1100), p.TotalAmount)
	assert.Equal(t, int64(1100), p.OutstandingBalance)
	assert.Equal(t, models.DeliveryPending, p.DeliveryStatus)
	assert.Equal(t, 5, p.GraceDays, "policy terms snapshotted onto the purchase")
	assert.Nil(t, out.Waybill)

	rows := env.walletRows(t)
	require.Len(t, rows, 1)
	assert.Equal(t, models.WalletTxPurchase, rows[0].Type)
	assert.Equal(t, int64(-1100), rows[0].Amount)
	assert.Equal(t, int64(0), rows[0].BalanceBefore)
	assert.Equal(t, int64(-1100), rows[0].BalanceAfter)
	assert.Equal(t, p.Number, rows[0].Reference)
	assert.Equal(t, int64(-1100), env.reloadCustomer(t).WalletBalance)

	assert.Equal(t, int64(10), env.shopQty(t, prod.ID), "stock waits for fulfillment")
	assert.Empty(t, env.payments(t, p.ID))
}

func TestCreatePurchaseDownPaymentSplit(t *testing.T) {
	env := newTestEnv(t)
	env.seedPolicy(t, models.InterestFlat, "10", 0, 90)
	prod := env.seedProduct(t, "Standing Fan", "FAN-01", 400, 450, 500, 10)
	env.deposit(t, 300)

	in := env.purchaseInput(models.PurchaseCredit, prod, 2)
	in.CashDown = 100
	in.WalletDown = 200
	out := env.createPurchase(t, in)
	p := out.Purchase

	assert.Equal(t, models.PurchaseActive, p.Status)
	assert.Equal(t, int64(300), p.DownPayment)
	assert.Equal(t, int64(300), p.AmountPaid)
	assert.Equal(t, int64(800), p.OutstandingBalance)

	// deposit +300, wallet-down -200, remainder debt -800
	rows := env.walletRows(t)
	require.Len(t, rows, 3)
	assert.Equal(t, int64(300), rows[0].Amount)
	assert.Equal(t, int64(-200), rows[1].Amount)
	assert.Equal(t, int64(-800), rows[2].Amount)
	assert.Equal(t, int64(-700), env.reloadCustomer(t).WalletBalance)

	pays := env.payments(t, p.ID)
	require.Len(t, pays, 2)
	for _, pay := range pays {
		assert.True(t, pay.IsConfirmed, "down payment rows confirm at birth")
	}
	assert.Equal(t, models.PayWallet, pays[0].Method)
	assert.Equal(t, int64(200), pays[0].Amount)
	assert.Equal(t, models.PayCash, pays[1].Method)
	assert.Equal(t, int64(100), pays[1].Amount)
}

func TestCreatePurchaseWalletDownNeedsFunds(t *testing.T) {
	env := newTestEnv(t)
	env.seedPolicy(t, models.InterestFlat, "10", 0, 90)
	prod := env.seedProduct(t, "Standing Fan", "FAN-01", 400, 450, 500, 10)

	in := env.purchaseInput(models.PurchaseCredit, prod, 2)
	in.WalletDown = 200
	err := env.DB.Transaction(func(tx *gorm.DB) error {
		_, err := CreatePurchase(tx, in)
		return err
	})
	require.Error(t, err)
	var ce *ConflictError
	assert.ErrorAs(t, err, &ce)

	var cnt int64
	env.DB.Model(&models.Purchase{}).Count(&cnt)
	assert.Zero(t, cnt, "refused purchase leaves nothing behind")
	assert.Empty(t, env.walletRows(t))
}

func TestCreatePurchaseCompletedByDownPayment(t *testing.T) {
	env := newTestEnv(t)
	env.seedPolicy(t, models.InterestFlat, "10", 0, 90)
	prod := env.seedProduct(t, "Standing Fan", "FAN-01", 400, 450, 500, 10)
	env.deposit(t, 1100)

	in := env.purchaseInput(models.PurchaseCredit, prod, 2)
	in.WalletDown = 1100
	out := env.createPurchase(t, in)
	p := out.Purchase

	assert.Equal(t, models.PurchaseCompleted, p.Status)
	assert.Equal(t, int64(0), p.OutstandingBalance)
	assert.Equal(t, models.DeliveryScheduled, p.DeliveryStatus)
	require.NotNil(t, out.Waybill)
	assert.Equal(t, int64(1), env.waybillCount(t, p.ID))
	assert.Equal(t, int64(8), env.shopQty(t, prod.ID))

	// no remainder, so no debt row: deposit +1100, wallet-down -1100
	rows := env.walletRows(t)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(0), env.reloadCustomer(t).WalletBalance)
}

func TestCreatePurchaseDrawsFromPoolWithoutShopRow(t *testing.T) {
	env := newTestEnv(t)
	prod := env.seedPoolProduct(t, "Gas Cooker", "GC-01", 2000, 2200, 2400, 5)

	out := env.createPurchase(t, env.purchaseInput(models.PurchaseCash, prod, 2))

	var reloaded models.Product
	require.NoError(t, env.DB.First(&reloaded, prod.ID).Error)
	assert.Equal(t, int64(3), reloaded.StockQuantity)
	assert.Equal(t, models.PurchaseCompleted, out.Purchase.Status)

	// the movement is booked against the pool, not the selling shop
	var mv models.StockMovement
	require.NoError(t, env.DB.Where("product_id = ?", prod.ID).First(&mv).Error)
	assert.Equal(t, uint(0), mv.ShopID)
	assert.Equal(t, int64(5), mv.OldQty)
	assert.Equal(t, int64(3), mv.NewQty)
	assert.Equal(t, int64(-2), mv.Delta)
	assert.Equal(t, out.Purchase.Number, mv.Reference)
}

func TestCreatePurchaseGuards(t *testing.T) {
	env := newTestEnv(t)
	env.seedPolicy(t, models.InterestFlat, "10", 0, 90)
	prod := env.seedProduct(t, "Standing Fan", "FAN-01", 400, 450, 500, 1)

	assertValidation := func(t *testing.T, in CreatePurchaseInput) {
		t.Helper()
		err := env.DB.Transaction(func(tx *gorm.DB) error {
			_, err := CreatePurchase(tx, in)
			return err
		})
		require.Error(t, err)
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
	}

	in := env.purchaseInput("INSTALLMENT", prod, 1)
	assertValidation(t, in)

	in = env.purchaseInput(models.PurchaseCash, prod, 1)
	in.CashDown = 50
	assertValidation(t, in)

	in = env.purchaseInput(models.PurchaseCredit, prod, 1)
	in.Items = append(in.Items, PurchaseItemInput{ProductID: prod.ID, Quantity: 1})
	assertValidation(t, in)

	in = env.purchaseInput(models.PurchaseCredit, prod, 1)
	in.CashDown = 600 // credit price 500 + 10% = 550 total
	assertValidation(t, in)

	// stock shortfall is a conflict, not a validation problem
	in = env.purchaseInput(models.PurchaseCredit, prod, 2)
	err := env.DB.Transaction(func(tx *gorm.DB) error {
		_, err := CreatePurchase(tx, in)
		return err
	})
	require.Error(t, err)
	var ce *ConflictError
	assert.ErrorAs(t, err, &ce)

	require.NoError(t, env.DB.Model(&models.Customer{}).
		Where("id = ?", env.Customer.ID).
		Update("is_active", false).Error)
	assertValidation(t, env.purchaseInput(models.PurchaseCredit, prod, 1))
}

func TestCreateFinancedPurchaseNeedsPolicy(t *testing.T) {
	env := newTestEnv(t)
	prod := env.seedProduct(t, "Standing Fan", "FAN-01", 400, 450, 500, 10)

	err := env.DB.Transaction(func(tx *gorm.DB) error {
		_, err := CreatePurchase(tx, env.purchaseInput(models.PurchaseLayaway, prod, 1))
		return err
	})
	require.Error(t, err)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	// cash still trades without any policy
	env.createPurchase(t, env.purchaseInput(models.PurchaseCash, prod, 1))
}

func TestPurchaseNumbersRunPerCustomer(t *testing.T) {
	env := newTestEnv(t)
	prod := env.seedProduct(t, "Standing Fan", "FAN-01", 400, 450, 500, 10)

	first := env.createPurchase(t, env.purchaseInput(models.PurchaseCash, prod, 1))
	second := env.createPurchase(t, env.purchaseInput(models.PurchaseCash, prod, 1))
	assert.Equal(t, fmt.Sprintf("HP-%d-0001", env.Customer.ID), first.Purchase.Number)
	assert.Equal(t, fmt.Sprintf("HP-%d-0002", env.Customer.ID), second.Purchase.Number)

	other := models.Customer{
		BusinessID: env.Business.ID,
		ShopID:     env.Shop.ID,
		FullName:   "Abena Owusu",
		Phone:      "+233200000002",
		IsActive:   true,
	}
	require.NoError(t, env.DB.Create(&other).Error)
	in := env.purchaseInput(models.PurchaseCash, prod, 1)
	in.CustomerID = other.ID
	out := env.createPurchase(t, in)
	assert.Equal(t, fmt.Sprintf("HP-%d-0001", other.ID), out.Purchase.Number)
}

func TestUpdateItemsGrowsObligation(t *testing.T) {
	env := newTestEnv(t)
	env.seedPolicy(t, models.InterestFlat, "10", 0, 90)
	prod := env.seedProduct(t, "Standing Fan", "FAN-01", 400, 450, 500, 10)

	created := env.createPurchase(t, env.purchaseInput(models.PurchaseCredit, prod, 2))

	var out *PurchaseOutcome
	err := env.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = UpdatePurchaseItems(tx, UpdateItemsInput{
			BusinessID: env.Business.ID,
			PurchaseID: created.Purchase.ID,
			Items:      []PurchaseItemInput{{ProductID: prod.ID, Quantity: 3}},
			ActorID:    env.Staff.ID,
		})
		return err
	})
	require.NoError(t, err)

	p := env.reloadPurchase(t, created.Purchase.ID)
	assert.Equal(t, int64(1500), p.Subtotal)
	assert.Equal(t, int64(1650), p.TotalAmount)
	assert.Equal(t, int64(1650), p.OutstandingBalance)
	assert.Equal(t, models.PurchasePending, p.Status)
	require.Len(t, p.Items, 1)
	assert.Equal(t, int64(3), p.Items[0].Quantity)
	assert.Nil(t, out.Waybill)

	rows := env.walletRows(t)
	require.Len(t, rows, 2)
	last := rows[len(rows)-1]
	assert.Equal(t, models.WalletTxPurchase, last.Type)
	assert.Equal(t, int64(-550), last.Amount)
	assert.Equal(t, int64(-1650), env.reloadCustomer(t).WalletBalance)
}

func TestUpdateItemsShrinkRefundsAndCompletes(t *testing.T) {
	env := newTestEnv(t)
	env.seedPolicy(t, models.InterestFlat, "10", 0, 90)
	prod := env.seedProduct(t, "Standing Fan", "FAN-01", 400, 450, 500, 10)

	created := env.createPurchase(t, env.purchaseInput(models.PurchaseCredit, prod, 2))

	// pay 600 of the 1100 first
	var recorded *PaymentOutcome
	err := env.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		recorded, err = RecordPayment(tx, RecordPaymentInput{
			BusinessID: env.Business.ID,
			PurchaseID: created.Purchase.ID,
			Amount:     600,
			Method:     models.PayCash,
			ActorID:    env.Staff.ID,
		})
		return err
	})
	require.NoError(t, err)
	err = env.DB.Transaction(func(tx *gorm.DB) error {
		_, err := ConfirmPayment(tx, ConfirmPaymentInput{
			BusinessID: env.Business.ID,
			PaymentID:  recorded.Payment.ID,
			ActorID:    env.Staff.ID,
		})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(-500), env.reloadCustomer(t).WalletBalance)

	// shrink to one unit: new total 550, already paid 600
	var out *PurchaseOutcome
	err = env.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = UpdatePurchaseItems(tx, UpdateItemsInput{
			BusinessID: env.Business.ID,
			PurchaseID: created.Purchase.ID,
			Items:      []PurchaseItemInput{{ProductID: prod.ID, Quantity: 1}},
			ActorID:    env.Staff.ID,
		})
		return err
	})
	require.NoError(t, err)

	p := env.reloadPurchase(t, created.Purchase.ID)
	assert.Equal(t, int64(550), p.TotalAmount)
	assert.Equal(t, int64(0), p.OutstandingBalance)
	assert.Equal(t, models.PurchaseCompleted, p.Status)
	require.NotNil(t, out.Waybill)
	assert.Equal(t, int64(9), env.shopQty(t, prod.ID), "fulfillment deducts the new basket")

	// the refund covers the dropped obligation plus the 50 overpaid
	rows := env.walletRows(t)
	last := rows[len(rows)-1]
	assert.Equal(t, models.WalletTxRefund, last.Type)
	assert.Equal(t, int64(550), last.Amount)
	assert.Equal(t, int64(50), env.reloadCustomer(t).WalletBalance)
}

func TestUpdateItemsRefusedOnceCompleted(t *testing.T) {
	env := newTestEnv(t)
	prod := env.seedProduct(t, "Standing Fan", "FAN-01", 400, 450, 500, 10)
	created := env.createPurchase(t, env.purchaseInput(models.PurchaseCash, prod, 1))

	err := env.DB.Transaction(func(tx *gorm.DB) error {
		_, err := UpdatePurchaseItems(tx, UpdateItemsInput{
			BusinessID: env.Business.ID,
			PurchaseID: created.Purchase.ID,
			Items:      []PurchaseItemInput{{ProductID: prod.ID, Quantity: 2}},
			ActorID:    env.Staff.ID,
		})
		return err
	})
	require.Error(t, err)
	var ce *ConflictError
	assert.ErrorAs(t, err, &ce)
}
