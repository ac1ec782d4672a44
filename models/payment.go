package models

import "time"

type PaymentMethod string

const (
	PayCash        PaymentMethod = "CASH"
	PayBank        PaymentMethod = "BANK"
	PayMobileMoney PaymentMethod = "MOBILE_MONEY"
	PayWallet      PaymentMethod = "WALLET"
)

// Payment is one money-movement attempt against a purchase. It starts
// RECORDED (a collector took money in the field) and moves exactly once
// to confirmed or rejected. Only confirmation touches the purchase and
// the wallet; WALLET-method payments confirm inline at creation since
// the funds are already held.
type Payment struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Reference string `gorm:"uniqueIndex;size:64;not null" json:"reference"`

	BusinessID uint `gorm:"index;not null" json:"business_id"`
	PurchaseID uint `gorm:"index;not null" json:"purchase_id"`
	CustomerID uint `gorm:"index;not null" json:"customer_id"`

	Purchase *Purchase `json:"purchase,omitempty"`
	Customer *Customer `json:"customer,omitempty"`

	Amount int64         `gorm:"not null" json:"amount"`
	Method PaymentMethod `gorm:"size:16;not null" json:"method"`

	IsConfirmed   bool       `gorm:"not null;default:false" json:"is_confirmed"`
	ConfirmedAt   *time.Time `json:"confirmed_at,omitempty"`
	ConfirmedByID *uint      `json:"confirmed_by_id,omitempty"`

	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectionReason *string    `gorm:"size:255" json:"rejection_reason,omitempty"`

	CollectorID *uint  `gorm:"index" json:"collector_id,omitempty"`
	Note        string `gorm:"size:255" json:"note,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Pending reports whether the payment still awaits a verification
// decision.
func (p *Payment) Pending() bool {
	return !p.IsConfirmed && p.RejectedAt == nil
}
