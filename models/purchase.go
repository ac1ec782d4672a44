package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PurchaseType string

const (
	PurchaseCash    PurchaseType = "CASH"    // paid and delivered at the counter
	PurchaseLayaway PurchaseType = "LAYAWAY" // instalments first, goods on completion
	PurchaseCredit  PurchaseType = "CREDIT"  // goods now, instalments after
)

type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "PENDING"
	PurchaseActive    PurchaseStatus = "ACTIVE"
	PurchaseOverdue   PurchaseStatus = "OVERDUE" // derived, never stored
	PurchaseCompleted PurchaseStatus = "COMPLETED"
)

type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "PENDING"
	DeliveryScheduled DeliveryStatus = "SCHEDULED"
	DeliveryInTransit DeliveryStatus = "IN_TRANSIT"
	DeliveryDelivered DeliveryStatus = "DELIVERED"
)

// Purchase is one financed (or cash) sale. Monetary fields are pesewas.
// The stored Status is PENDING/ACTIVE/COMPLETED; OVERDUE is derived
// from DueDate + GraceDays while a balance remains (EffectiveStatus).
//
// Invariants kept by the ledger package:
//
//	TotalAmount        == Subtotal + InterestAmount
//	OutstandingBalance == max(0, TotalAmount - AmountPaid)
//	Status == COMPLETED iff OutstandingBalance == 0
type Purchase struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Number string `gorm:"uniqueIndex;size:40;not null" json:"number"` // HP-<customer>-<seq>
	Seq    uint   `gorm:"not null" json:"seq"`                        // sequential per customer

	BusinessID uint `gorm:"index;not null" json:"business_id"`
	ShopID     uint `gorm:"index;not null" json:"shop_id"`
	CustomerID uint `gorm:"index;not null" json:"customer_id"`

	Customer Customer `json:"customer,omitempty"`

	Type   PurchaseType   `gorm:"size:10;not null" json:"type"`
	Status PurchaseStatus `gorm:"size:12;not null;index" json:"status"`

	Subtotal           int64 `gorm:"not null" json:"subtotal"`
	InterestAmount     int64 `gorm:"not null;default:0" json:"interest_amount"`
	TotalAmount        int64 `gorm:"not null" json:"total_amount"`
	AmountPaid         int64 `gorm:"not null;default:0" json:"amount_paid"`
	OutstandingBalance int64 `gorm:"not null" json:"outstanding_balance"`
	DownPayment        int64 `gorm:"not null;default:0" json:"down_payment"`

	Installments int `gorm:"not null;default:0" json:"installments"`
	TenorDays    int `gorm:"not null;default:0" json:"tenor_days"`

	// financing terms snapshotted at the last pricing run
	InterestType InterestType    `gorm:"size:12" json:"interest_type,omitempty"`
	InterestRate decimal.Decimal `gorm:"type:decimal(6,3);not null;default:0" json:"interest_rate"`
	GraceDays    int             `gorm:"not null;default:0" json:"grace_days"`

	StartDate time.Time `gorm:"not null" json:"start_date"`
	DueDate   time.Time `gorm:"not null;index" json:"due_date"`

	DeliveryStatus DeliveryStatus `gorm:"size:12;not null" json:"delivery_status"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`

	Items    []PurchaseItem `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	Payments []Payment      `json:"payments,omitempty"`

	CreatedByID uint      `gorm:"index" json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PurchaseItem is a product snapshot taken at sale (or item-update)
// time. It never changes when the catalogue does.
type PurchaseItem struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	PurchaseID uint `gorm:"index;not null" json:"purchase_id"`
	ProductID  uint `gorm:"not null" json:"product_id"`

	Name      string `gorm:"size:200;not null" json:"name"`
	SKU       string `gorm:"size:100;not null" json:"sku"`
	Quantity  int64  `gorm:"not null" json:"quantity"`
	UnitPrice int64  `gorm:"not null" json:"unit_price"`
	LineTotal int64  `gorm:"not null" json:"line_total"`
}

// EffectiveStatus folds the derived OVERDUE state over the stored one.
func (p *Purchase) EffectiveStatus(now time.Time) PurchaseStatus {
	if p.Status != PurchaseCompleted && p.OutstandingBalance > 0 && p.PastGrace(now) {
		return PurchaseOverdue
	}
	return p.Status
}

// PastGrace reports whether now is beyond the due date plus the
// snapshotted grace window.
func (p *Purchase) PastGrace(now time.Time) bool {
	return now.After(p.DueDate.AddDate(0, 0, p.GraceDays))
}
