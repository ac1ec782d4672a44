package ledger

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"highpurchase/models"
)

// walletEntry describes one ledger row to append. Amount is signed:
// credits positive, debits negative.
type walletEntry struct {
	Type      models.WalletTxType
	Amount    int64
	Reference string
	Note      string
	ActorID   uint
}

// lockCustomer loads the customer row FOR UPDATE within the caller's
// business scope. Every wallet write starts here so the cached balance
// and the appended row cannot drift apart under concurrency.
func lockCustomer(tx *gorm.DB, businessID, customerID uint) (*models.Customer, error) {
	var cust models.Customer
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND business_id = ?", customerID, businessID).
		Find(&cust).Error
	if err != nil {
		return nil, err
	}
	if cust.ID == 0 {
		return nil, notFound("customer")
	}
	return &cust, nil
}

// appendEntry writes one wallet row and moves the cached balance with
// it in the same transaction. The caller must hold the customer row
// lock. The customer's in-memory balance is advanced so follow-up
// entries in the same transaction chain correctly.
func appendEntry(tx *gorm.DB, cust *models.Customer, e walletEntry) (*models.WalletTransaction, error) {
	before := cust.WalletBalance
	after := before + e.Amount

	err := tx.Model(&models.Customer{}).Where("id = ?", cust.ID).
		Update("wallet_balance", after).Error
	if err != nil {
		return nil, err
	}

	row := models.WalletTransaction{
		BusinessID:    cust.BusinessID,
		CustomerID:    cust.ID,
		Type:          e.Type,
		Amount:        e.Amount,
		Status:        models.WalletTxConfirmed,
		BalanceBefore: before,
		BalanceAfter:  after,
		Reference:     e.Reference,
		Note:          e.Note,
		ActorID:       e.ActorID,
	}
	if err := tx.Create(&row).Error; err != nil {
		return nil, err
	}
	cust.WalletBalance = after
	return &row, nil
}

type DepositRequest struct {
	BusinessID uint
	CustomerID uint
	Amount     int64
	Reference  string
	Note       string
	ActorID    uint
}

// Deposit adds prepaid funds to a customer wallet.
func Deposit(tx *gorm.DB, req DepositRequest) (*models.WalletTransaction, error) {
	if req.Amount <= 0 {
		return nil, validationf("deposit amount must be positive")
	}
	cust, err := lockCustomer(tx, req.BusinessID, req.CustomerID)
	if err != nil {
		return nil, err
	}
	ref := req.Reference
	if ref == "" {
		ref = uuid.NewString()
	}
	return appendEntry(tx, cust, walletEntry{
		Type:      models.WalletTxDeposit,
		Amount:    req.Amount,
		Reference: ref,
		Note:      req.Note,
		ActorID:   req.ActorID,
	})
}

type AdjustRequest struct {
	BusinessID uint
	CustomerID uint
	Amount     int64 // signed
	Reason     string
	ActorID    uint
}

// AdjustWallet posts a manual correction. The signed amount may move
// the balance either way; the reason is mandatory because adjustments
// are the only entries with no purchase or deposit behind them.
func AdjustWallet(tx *gorm.DB, req AdjustRequest) (*models.WalletTransaction, error) {
	if req.Amount == 0 {
		return nil, validationf("adjustment amount cannot be zero")
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, validationf("adjustment reason is required")
	}
	cust, err := lockCustomer(tx, req.BusinessID, req.CustomerID)
	if err != nil {
		return nil, err
	}
	return appendEntry(tx, cust, walletEntry{
		Type:    models.WalletTxAdjustment,
		Amount:  req.Amount,
		Note:    req.Reason,
		ActorID: req.ActorID,
	})
}

// applyWalletFunds consumes prepaid balance toward a purchase. Only a
// positive balance may be spent, and the guard runs under the customer
// row lock so two sales cannot both spend the same cedis.
func applyWalletFunds(tx *gorm.DB, cust *models.Customer, amount int64, purchaseNumber string, actorID uint) error {
	if amount <= 0 {
		return validationf("wallet amount must be positive")
	}
	if cust.WalletBalance < amount {
		return conflictf("wallet balance %d is short of the %d requested", cust.WalletBalance, amount)
	}
	_, err := appendEntry(tx, cust, walletEntry{
		Type:      models.WalletTxPurchase,
		Amount:    -amount,
		Reference: purchaseNumber,
		Note:      "wallet funds applied",
		ActorID:   actorID,
	})
	return err
}

// postDebt records the financed remainder of a purchase as debt. The
// amount is what stays owed after the down payment, so creation-time
// down payments never need a matching credit.
func postDebt(tx *gorm.DB, cust *models.Customer, amount int64, purchaseNumber string, actorID uint) error {
	_, err := appendEntry(tx, cust, walletEntry{
		Type:      models.WalletTxPurchase,
		Amount:    -amount,
		Reference: purchaseNumber,
		Note:      "hire purchase balance",
		ActorID:   actorID,
	})
	return err
}

// creditPayment reflects a confirmed instalment in the wallet, working
// the posted debt back toward zero.
func creditPayment(tx *gorm.DB, cust *models.Customer, amount int64, purchaseNumber string, actorID uint) error {
	_, err := appendEntry(tx, cust, walletEntry{
		Type:      models.WalletTxDeposit,
		Amount:    amount,
		Reference: purchaseNumber,
		Note:      "payment confirmed",
		ActorID:   actorID,
	})
	return err
}

// trueUp posts the wallet delta an item update produced: positive
// amounts refund a shrunk obligation (and any overpaid surplus),
// negative amounts post the extra debt of a grown basket.
func trueUp(tx *gorm.DB, cust *models.Customer, amount int64, purchaseNumber string, actorID uint) error {
	if amount == 0 {
		return nil
	}
	e := walletEntry{Amount: amount, Reference: purchaseNumber, ActorID: actorID}
	if amount > 0 {
		e.Type = models.WalletTxRefund
		e.Note = "items updated, obligation reduced"
	} else {
		e.Type = models.WalletTxPurchase
		e.Note = "items updated, obligation increased"
	}
	_, err := appendEntry(tx, cust, e)
	return err
}
