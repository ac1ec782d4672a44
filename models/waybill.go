package models

import "time"

// Waybill authorises delivery of a completed non-cash purchase. The
// unique index on PurchaseID is the exactly-once guard: retried
// confirmations can never issue a second waybill for the same sale.
type Waybill struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Number string `gorm:"uniqueIndex;size:40;not null" json:"number"`

	PurchaseID uint `gorm:"uniqueIndex;not null" json:"purchase_id"`
	BusinessID uint `gorm:"index;not null" json:"business_id"`
	ShopID     uint `gorm:"index;not null" json:"shop_id"`
	CustomerID uint `gorm:"index;not null" json:"customer_id"`

	Purchase Purchase `json:"purchase,omitempty"`

	IssuedAt    time.Time  `gorm:"not null" json:"issued_at"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	ReceivedBy  string     `gorm:"size:180" json:"received_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
