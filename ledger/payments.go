package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"highpurchase/models"
)

type RecordPaymentInput struct {
	BusinessID  uint
	PurchaseID  uint
	Amount      int64
	Method      models.PaymentMethod
	Note        string
	CollectorID *uint
	// AutoConfirm settles the payment in the same transaction instead
	// of leaving it pending. Callers gate this on verification rights.
	AutoConfirm bool
	ActorID     uint
}

type ConfirmPaymentInput struct {
	BusinessID uint
	PaymentID  uint
	ActorID    uint
}

type RejectPaymentInput struct {
	BusinessID uint
	PaymentID  uint
	Reason     string
	ActorID    uint
}

// PaymentOutcome carries everything the caller needs after a payment
// mutation: the payment itself, the purchase as it now stands, the
// customer, and the waybill plus CompletedNow when this payment
// settled the purchase.
type PaymentOutcome struct {
	Payment      *models.Payment
	Purchase     *models.Purchase
	Customer     *models.Customer
	Waybill      *models.Waybill
	CompletedNow bool
}

// lockPurchase loads a purchase row FOR UPDATE within the caller's
// business scope.
func lockPurchase(tx *gorm.DB, businessID, id uint) (*models.Purchase, error) {
	var p models.Purchase
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND business_id = ?", id, businessID).
		Find(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, notFound("purchase")
	}
	return &p, nil
}

// lockPayment loads a payment row FOR UPDATE within the caller's
// business scope.
func lockPayment(tx *gorm.DB, businessID, id uint) (*models.Payment, error) {
	var pay models.Payment
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND business_id = ?", id, businessID).
		Find(&pay).Error
	if err != nil {
		return nil, err
	}
	if pay.ID == 0 {
		return nil, notFound("payment")
	}
	return &pay, nil
}

// RecordPayment books an instalment against a purchase. Cash, bank and
// mobile-money payments stay pending until someone with verification
// rights confirms them, unless AutoConfirm asks for both steps in one
// transaction; WALLET payments always confirm inline because the funds
// are already held. Overpayments are refused outright rather than
// clamped.
func RecordPayment(tx *gorm.DB, in RecordPaymentInput) (*PaymentOutcome, error) {
	if in.Amount <= 0 {
		return nil, validationf("payment amount must be positive")
	}
	switch in.Method {
	case models.PayCash, models.PayBank, models.PayMobileMoney, models.PayWallet:
	default:
		return nil, validationf("unknown payment method %q", in.Method)
	}

	p, err := lockPurchase(tx, in.BusinessID, in.PurchaseID)
	if err != nil {
		return nil, err
	}
	if p.Status == models.PurchaseCompleted {
		return nil, conflictf("purchase %s is already settled", p.Number)
	}
	if in.Amount > p.OutstandingBalance {
		return nil, conflictf("payment of %d exceeds outstanding balance %d", in.Amount, p.OutstandingBalance)
	}

	pay := &models.Payment{
		Reference:   uuid.NewString(),
		BusinessID:  in.BusinessID,
		PurchaseID:  p.ID,
		CustomerID:  p.CustomerID,
		Amount:      in.Amount,
		Method:      in.Method,
		CollectorID: in.CollectorID,
		Note:        in.Note,
	}
	if err := tx.Create(pay).Error; err != nil {
		return nil, err
	}

	if in.Method == models.PayWallet {
		cust, err := lockCustomer(tx, in.BusinessID, p.CustomerID)
		if err != nil {
			return nil, err
		}
		if err := applyWalletFunds(tx, cust, in.Amount, p.Number, in.ActorID); err != nil {
			return nil, err
		}
		return confirmLocked(tx, pay, p, cust, in.ActorID)
	}

	if in.AutoConfirm {
		cust, err := lockCustomer(tx, in.BusinessID, p.CustomerID)
		if err != nil {
			return nil, err
		}
		return confirmLocked(tx, pay, p, cust, in.ActorID)
	}

	var cust models.Customer
	if err := tx.Where("id = ?", p.CustomerID).Find(&cust).Error; err != nil {
		return nil, err
	}
	return &PaymentOutcome{Payment: pay, Purchase: p, Customer: &cust}, nil
}

// ConfirmPayment verifies a pending payment. The overpayment guard
// runs again here because the purchase may have moved since the
// collector recorded the amount in the field.
func ConfirmPayment(tx *gorm.DB, in ConfirmPaymentInput) (*PaymentOutcome, error) {
	pay, err := lockPayment(tx, in.BusinessID, in.PaymentID)
	if err != nil {
		return nil, err
	}
	if pay.IsConfirmed {
		return nil, conflictf("payment %s is already confirmed", pay.Reference)
	}
	if pay.RejectedAt != nil {
		return nil, conflictf("payment %s was rejected and cannot be confirmed", pay.Reference)
	}

	p, err := lockPurchase(tx, in.BusinessID, pay.PurchaseID)
	if err != nil {
		return nil, err
	}
	if pay.Amount > p.OutstandingBalance {
		return nil, conflictf("payment of %d exceeds outstanding balance %d", pay.Amount, p.OutstandingBalance)
	}

	cust, err := lockCustomer(tx, in.BusinessID, p.CustomerID)
	if err != nil {
		return nil, err
	}
	return confirmLocked(tx, pay, p, cust, in.ActorID)
}

// RejectPayment closes a pending payment without touching the purchase
// or the wallet. The reason lands on the row and in the customer's
// notification.
func RejectPayment(tx *gorm.DB, in RejectPaymentInput) (*models.Payment, error) {
	if strings.TrimSpace(in.Reason) == "" {
		return nil, validationf("a rejection reason is required")
	}
	pay, err := lockPayment(tx, in.BusinessID, in.PaymentID)
	if err != nil {
		return nil, err
	}
	if pay.IsConfirmed {
		return nil, conflictf("payment %s is already confirmed", pay.Reference)
	}
	if pay.RejectedAt != nil {
		return nil, conflictf("payment %s is already rejected", pay.Reference)
	}

	now := time.Now()
	res := tx.Model(&models.Payment{}).
		Where("id = ? AND is_confirmed = ? AND rejected_at IS NULL", pay.ID, false).
		Updates(map[string]any{"rejected_at": now, "rejection_reason": in.Reason})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, conflictf("payment %s was already processed", pay.Reference)
	}
	pay.RejectedAt = &now
	pay.RejectionReason = &in.Reason
	return pay, nil
}

// confirmLocked flips a pending payment to confirmed and rolls the
// purchase and wallet forward, fulfilling the purchase when this
// payment settles it. The caller holds the payment, purchase and
// customer row locks. The conditional update is the idempotency
// fence: two confirmations of the same payment cannot both pass it.
func confirmLocked(tx *gorm.DB, pay *models.Payment, p *models.Purchase, cust *models.Customer, actorID uint) (*PaymentOutcome, error) {
	now := time.Now()
	res := tx.Model(&models.Payment{}).
		Where("id = ? AND is_confirmed = ? AND rejected_at IS NULL", pay.ID, false).
		Updates(map[string]any{
			"is_confirmed":    true,
			"confirmed_at":    now,
			"confirmed_by_id": actorID,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, conflictf("payment %s was already processed", pay.Reference)
	}
	pay.IsConfirmed = true
	pay.ConfirmedAt = &now
	pay.ConfirmedByID = &actorID

	p.AmountPaid += pay.Amount
	p.OutstandingBalance = p.TotalAmount - p.AmountPaid
	if p.OutstandingBalance < 0 {
		p.OutstandingBalance = 0
	}
	completedNow := false
	if p.OutstandingBalance == 0 {
		p.Status = models.PurchaseCompleted
		p.CompletedAt = &now
		completedNow = true
	} else if p.Status == models.PurchasePending {
		p.Status = models.PurchaseActive
	}
	updates := map[string]any{
		"amount_paid":         p.AmountPaid,
		"outstanding_balance": p.OutstandingBalance,
		"status":              p.Status,
		"completed_at":        p.CompletedAt,
	}
	if err := tx.Model(&models.Purchase{}).Where("id = ?", p.ID).Updates(updates).Error; err != nil {
		return nil, err
	}

	if err := creditPayment(tx, cust, pay.Amount, p.Number, actorID); err != nil {
		return nil, err
	}

	out := &PaymentOutcome{Payment: pay, Purchase: p, Customer: cust, CompletedNow: completedNow}
	if completedNow {
		if len(p.Items) == 0 {
			if err := tx.Where("purchase_id = ?", p.ID).Find(&p.Items).Error; err != nil {
				return nil, err
			}
		}
		wb, err := fulfill(tx, p, actorID, now)
		if err != nil {
			return nil, err
		}
		out.Waybill = wb
	}
	return out, nil
}
