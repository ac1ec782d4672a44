package ledger

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"highpurchase/models"
)

type PurchaseItemInput struct {
	ProductID uint
	Quantity  int64
}

type CreatePurchaseInput struct {
	BusinessID uint
	ShopID     uint
	CustomerID uint
	Type       models.PurchaseType
	Items      []PurchaseItemInput

	Installments int
	TenorDays    int

	// Down payment split for financed sales: cash tendered at the
	// counter plus prepaid wallet funds to apply. Cash sales take
	// neither; the full amount settles at creation.
	CashDown   int64
	WalletDown int64

	ActorID uint
}

type UpdateItemsInput struct {
	BusinessID uint
	PurchaseID uint
	Items      []PurchaseItemInput
	ActorID    uint
}

// PurchaseOutcome is what a purchase mutation hands back to the
// caller: the purchase with its item snapshot, the locked customer,
// and the waybill when the mutation completed the purchase.
type PurchaseOutcome struct {
	Purchase *models.Purchase
	Customer *models.Customer
	Waybill  *models.Waybill
}

// snapshotItems resolves input lines against the live catalogue and
// freezes name, SKU and tier price into purchase items. Later price
// changes never touch a recorded sale.
func snapshotItems(tx *gorm.DB, businessID uint, ptype models.PurchaseType, lines []PurchaseItemInput) ([]models.PurchaseItem, error) {
	if len(lines) == 0 {
		return nil, validationf("purchase must contain at least one item")
	}
	seen := make(map[uint]bool, len(lines))
	items := make([]models.PurchaseItem, 0, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, validationf("item quantity must be positive")
		}
		if seen[line.ProductID] {
			return nil, validationf("product %d appears more than once", line.ProductID)
		}
		seen[line.ProductID] = true

		var prod models.Product
		err := tx.Where("id = ? AND business_id = ?", line.ProductID, businessID).Find(&prod).Error
		if err != nil {
			return nil, err
		}
		if prod.ID == 0 {
			return nil, notFound("product")
		}
		if !prod.IsActive {
			return nil, validationf("product %s is no longer sold", prod.Name)
		}
		unit := UnitPriceFor(&prod, ptype)
		items = append(items, models.PurchaseItem{
			ProductID: prod.ID,
			Name:      prod.Name,
			SKU:       prod.SKU,
			Quantity:  line.Quantity,
			UnitPrice: unit,
			LineTotal: unit * line.Quantity,
		})
	}
	return items, nil
}

// CreatePurchase prices, numbers and persists a new sale inside the
// caller's transaction. Cash sales settle, deduct stock and complete
// on the spot; financed sales post the unpaid remainder to the
// customer wallet as debt and wait for instalments. A financed sale
// whose down payment already covers the total completes immediately.
//
// A unique violation on the purchase number means two transactions
// raced the customer's first sequence row; callers retry the whole
// transaction.
func CreatePurchase(tx *gorm.DB, in CreatePurchaseInput) (*PurchaseOutcome, error) {
	switch in.Type {
	case models.PurchaseCash, models.PurchaseLayaway, models.PurchaseCredit:
	default:
		return nil, validationf("unknown purchase type %q", in.Type)
	}
	if in.CashDown < 0 || in.WalletDown < 0 {
		return nil, validationf("down payment amounts cannot be negative")
	}
	if in.Type == models.PurchaseCash && (in.CashDown != 0 || in.WalletDown != 0 || in.Installments != 0 || in.TenorDays != 0) {
		return nil, validationf("cash sales settle in full at the counter; down payment and tenor do not apply")
	}

	cust, err := lockCustomer(tx, in.BusinessID, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if cust.ShopID != in.ShopID {
		return nil, validationf("customer is registered to a different shop")
	}
	if !cust.IsActive {
		return nil, validationf("customer account is inactive")
	}

	items, err := snapshotItems(tx, in.BusinessID, in.Type, in.Items)
	if err != nil {
		return nil, err
	}

	policy, err := ResolvePolicy(tx, in.BusinessID, in.ShopID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	quote, err := BuildQuote(items, policy, in.Type, in.Installments, in.TenorDays, now)
	if err != nil {
		return nil, err
	}

	down := in.CashDown + in.WalletDown
	if down > quote.TotalAmount {
		return nil, validationf("down payment %d exceeds purchase total %d", down, quote.TotalAmount)
	}

	if err := ensureStock(tx, in.BusinessID, in.ShopID, items); err != nil {
		return nil, err
	}

	number, seq, err := nextPurchaseNumber(tx, in.CustomerID)
	if err != nil {
		return nil, err
	}

	p := &models.Purchase{
		Number:         number,
		Seq:            seq,
		BusinessID:     in.BusinessID,
		ShopID:         in.ShopID,
		CustomerID:     in.CustomerID,
		Type:           in.Type,
		Status:         models.PurchasePending,
		Subtotal:       quote.Subtotal,
		InterestAmount: quote.InterestAmount,
		TotalAmount:    quote.TotalAmount,
		Installments:   in.Installments,
		TenorDays:      quote.TenorDays,
		StartDate:      now,
		DueDate:        quote.DueDate,
		DeliveryStatus: models.DeliveryPending,
		Items:          items,
		CreatedByID:    in.ActorID,
	}
	if in.Type != models.PurchaseCash && policy != nil {
		p.InterestType = policy.InterestType
		p.InterestRate = policy.InterestRate
		p.GraceDays = policy.GraceDays
	}

	if in.Type == models.PurchaseCash {
		p.AmountPaid = quote.TotalAmount
		p.OutstandingBalance = 0
		p.Status = models.PurchaseCompleted
		p.CompletedAt = &now
	} else {
		p.AmountPaid = down
		p.DownPayment = down
		p.OutstandingBalance = quote.TotalAmount - down
		switch {
		case p.OutstandingBalance == 0:
			p.Status = models.PurchaseCompleted
			p.CompletedAt = &now
		case down > 0:
			p.Status = models.PurchaseActive
		}
	}

	if err := tx.Create(p).Error; err != nil {
		return nil, err
	}

	if in.Type == models.PurchaseCash {
		pay := models.Payment{
			Reference:     uuid.NewString(),
			BusinessID:    in.BusinessID,
			PurchaseID:    p.ID,
			CustomerID:    in.CustomerID,
			Amount:        quote.TotalAmount,
			Method:        models.PayCash,
			IsConfirmed:   true,
			ConfirmedAt:   &now,
			ConfirmedByID: &in.ActorID,
			Note:          "cash sale",
		}
		if err := tx.Create(&pay).Error; err != nil {
			return nil, err
		}
		p.Payments = append(p.Payments, pay)
	} else {
		// Down payment components become confirmed payment rows at
		// birth. They never credit the wallet: the debt posted below
		// is already net of the down payment.
		if in.WalletDown > 0 {
			if err := applyWalletFunds(tx, cust, in.WalletDown, number, in.ActorID); err != nil {
				return nil, err
			}
			pay := models.Payment{
				Reference:     uuid.NewString(),
				BusinessID:    in.BusinessID,
				PurchaseID:    p.ID,
				CustomerID:    in.CustomerID,
				Amount:        in.WalletDown,
				Method:        models.PayWallet,
				IsConfirmed:   true,
				ConfirmedAt:   &now,
				ConfirmedByID: &in.ActorID,
				Note:          "down payment",
			}
			if err := tx.Create(&pay).Error; err != nil {
				return nil, err
			}
			p.Payments = append(p.Payments, pay)
		}
		if in.CashDown > 0 {
			pay := models.Payment{
				Reference:     uuid.NewString(),
				BusinessID:    in.BusinessID,
				PurchaseID:    p.ID,
				CustomerID:    in.CustomerID,
				Amount:        in.CashDown,
				Method:        models.PayCash,
				IsConfirmed:   true,
				ConfirmedAt:   &now,
				ConfirmedByID: &in.ActorID,
				Note:          "down payment",
			}
			if err := tx.Create(&pay).Error; err != nil {
				return nil, err
			}
			p.Payments = append(p.Payments, pay)
		}
		if p.OutstandingBalance > 0 {
			if err := postDebt(tx, cust, p.OutstandingBalance, number, in.ActorID); err != nil {
				return nil, err
			}
		}
	}

	out := &PurchaseOutcome{Purchase: p, Customer: cust}
	if p.Status == models.PurchaseCompleted {
		wb, err := fulfill(tx, p, in.ActorID, now)
		if err != nil {
			return nil, err
		}
		out.Waybill = wb
	}
	return out, nil
}

// UpdatePurchaseItems swaps the basket of a not-yet-completed purchase
// and re-prices it against the policy in force today, refreshing the
// snapshotted terms. Payments already made are never disturbed: the
// outstanding balance is recomputed from the new total, the wallet is
// trued up by the difference, and any amount paid beyond the new total
// comes back as a refund credit.
func UpdatePurchaseItems(tx *gorm.DB, in UpdateItemsInput) (*PurchaseOutcome, error) {
	p, err := lockPurchase(tx, in.BusinessID, in.PurchaseID)
	if err != nil {
		return nil, err
	}
	if p.Status == models.PurchaseCompleted {
		return nil, conflictf("purchase %s is completed and can no longer be edited", p.Number)
	}

	cust, err := lockCustomer(tx, p.BusinessID, p.CustomerID)
	if err != nil {
		return nil, err
	}

	items, err := snapshotItems(tx, p.BusinessID, p.Type, in.Items)
	if err != nil {
		return nil, err
	}

	policy, err := ResolvePolicy(tx, p.BusinessID, p.ShopID)
	if err != nil {
		return nil, err
	}
	quote, err := BuildQuote(items, policy, p.Type, p.Installments, p.TenorDays, p.StartDate)
	if err != nil {
		return nil, err
	}

	if err := ensureStock(tx, p.BusinessID, p.ShopID, items); err != nil {
		return nil, err
	}

	oldOutstanding := p.OutstandingBalance
	newOutstanding := quote.TotalAmount - p.AmountPaid
	var surplus int64
	if newOutstanding < 0 {
		surplus = -newOutstanding
		newOutstanding = 0
	}

	// The wallet carries -oldOutstanding for this purchase; move it to
	// -newOutstanding and hand back any overpaid surplus.
	if err := trueUp(tx, cust, oldOutstanding-newOutstanding+surplus, p.Number, in.ActorID); err != nil {
		return nil, err
	}

	if err := tx.Where("purchase_id = ?", p.ID).Delete(&models.PurchaseItem{}).Error; err != nil {
		return nil, err
	}
	for i := range items {
		items[i].PurchaseID = p.ID
	}
	if err := tx.Create(&items).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	completedNow := false
	p.Subtotal = quote.Subtotal
	p.InterestAmount = quote.InterestAmount
	p.TotalAmount = quote.TotalAmount
	p.OutstandingBalance = newOutstanding
	if policy != nil && p.Type != models.PurchaseCash {
		p.InterestType = policy.InterestType
		p.InterestRate = policy.InterestRate
		p.GraceDays = policy.GraceDays
	}
	switch {
	case newOutstanding == 0:
		p.Status = models.PurchaseCompleted
		p.CompletedAt = &now
		completedNow = true
	case p.AmountPaid > 0:
		p.Status = models.PurchaseActive
	default:
		p.Status = models.PurchasePending
	}

	updates := map[string]any{
		"subtotal":            p.Subtotal,
		"interest_amount":     p.InterestAmount,
		"total_amount":        p.TotalAmount,
		"outstanding_balance": p.OutstandingBalance,
		"status":              p.Status,
		"interest_type":       p.InterestType,
		"interest_rate":       p.InterestRate,
		"grace_days":          p.GraceDays,
		"completed_at":        p.CompletedAt,
	}
	if err := tx.Model(&models.Purchase{}).Where("id = ?", p.ID).Updates(updates).Error; err != nil {
		return nil, err
	}

	p.Items = items
	out := &PurchaseOutcome{Purchase: p, Customer: cust}
	if completedNow {
		wb, err := fulfill(tx, p, in.ActorID, now)
		if err != nil {
			return nil, err
		}
		out.Waybill = wb
	}
	return out, nil
}
