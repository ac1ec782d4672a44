package ledger

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"highpurchase/models"
)

// Quote is the priced form of a basket before anything is persisted.
// All amounts are pesewas. Months is the billing-month count the
// monthly interest model settled on, zero for cash and flat quotes.
type Quote struct {
	Subtotal       int64
	InterestAmount int64
	TotalAmount    int64
	TenorDays      int
	Months         int
	DueDate        time.Time
}

var oneHundred = decimal.NewFromInt(100)

// UnitPriceFor picks the tier price a purchase type pays for a product.
func UnitPriceFor(p *models.Product, t models.PurchaseType) int64 {
	switch t {
	case models.PurchaseLayaway:
		return p.LayawayPrice
	case models.PurchaseCredit:
		return p.CreditPrice
	default:
		return p.CashPrice
	}
}

// ValidateTierPrices enforces cash <= layaway <= credit on product
// writes. Interest stacks on top of the tier price, so an inverted
// ladder would charge cash buyers more than financed ones.
func ValidateTierPrices(cash, layaway, credit int64) error {
	if cash <= 0 || layaway <= 0 || credit <= 0 {
		return validationf("tier prices must be positive")
	}
	if cash > layaway || layaway > credit {
		return validationf("tier prices must satisfy cash <= layaway <= credit")
	}
	return nil
}

// BuildQuote prices a basket of snapshotted items for the given
// purchase type. Cash quotes carry no interest and fall due at once.
// Financed quotes need an active policy; a missing policy rejects the
// purchase rather than silently lending for free.
func BuildQuote(items []models.PurchaseItem, policy *models.FinancingPolicy, ptype models.PurchaseType, installments, tenorDays int, start time.Time) (Quote, error) {
	var subtotal int64
	for _, it := range items {
		if it.Quantity <= 0 {
			return Quote{}, validationf("item quantity must be positive")
		}
		if it.UnitPrice <= 0 {
			return Quote{}, validationf("item unit price must be positive")
		}
		subtotal += it.UnitPrice * it.Quantity
	}
	if subtotal <= 0 {
		return Quote{}, validationf("purchase must contain at least one item")
	}

	if ptype == models.PurchaseCash {
		return Quote{
			Subtotal:    subtotal,
			TotalAmount: subtotal,
			DueDate:     start,
		}, nil
	}

	if policy == nil {
		return Quote{}, validationf("no active financing policy covers this shop")
	}
	if installments < 0 || tenorDays < 0 {
		return Quote{}, validationf("installments and tenor days cannot be negative")
	}
	if tenorDays == 0 {
		tenorDays = policy.MaxTenorDays
	}
	if tenorDays > policy.MaxTenorDays {
		return Quote{}, validationf("tenor of %d days exceeds policy maximum of %d", tenorDays, policy.MaxTenorDays)
	}

	interest := decimal.NewFromInt(subtotal).Mul(policy.InterestRate).Div(oneHundred)
	months := 0
	if policy.InterestType == models.InterestMonthly {
		months = billingMonths(installments, tenorDays)
		interest = interest.Mul(decimal.NewFromInt(int64(months)))
	}
	interestAmount := interest.Round(0).IntPart()

	return Quote{
		Subtotal:       subtotal,
		InterestAmount: interestAmount,
		TotalAmount:    subtotal + interestAmount,
		TenorDays:      tenorDays,
		Months:         months,
		DueDate:        start.AddDate(0, 0, tenorDays),
	}, nil
}

// PreviewQuote prices a basket without persisting anything, so the
// counter can show terms before the sale is committed.
func PreviewQuote(db *gorm.DB, businessID, shopID uint, ptype models.PurchaseType, lines []PurchaseItemInput, installments, tenorDays int) (Quote, []models.PurchaseItem, error) {
	items, err := snapshotItems(db, businessID, ptype, lines)
	if err != nil {
		return Quote{}, nil, err
	}
	policy, err := ResolvePolicy(db, businessID, shopID)
	if err != nil {
		return Quote{}, nil, err
	}
	q, err := BuildQuote(items, policy, ptype, installments, tenorDays, time.Now())
	if err != nil {
		return Quote{}, nil, err
	}
	return q, items, nil
}

// billingMonths maps an instalment plan to whole billing months:
// four weekly instalments make a month, otherwise thirty tenor days
// do. Never less than one month once interest accrues monthly.
func billingMonths(installments, tenorDays int) int {
	var months int
	if installments > 0 {
		months = (installments + 3) / 4
	} else {
		months = (tenorDays + 29) / 30
	}
	if months < 1 {
		months = 1
	}
	return months
}
