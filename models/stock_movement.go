package models

import "time"

// StockMovement is the append-only trail behind every stock change:
// manual adjustments, cash-sale deductions and fulfillment deductions.
// ShopID 0 marks movements against the business-wide pool.
type StockMovement struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	ShopID    uint `gorm:"index;not null" json:"shop_id"`
	ProductID uint `gorm:"index;not null" json:"product_id"`

	OldQty int64 `gorm:"not null" json:"old_qty"`
	NewQty int64 `gorm:"not null" json:"new_qty"`
	Delta  int64 `gorm:"not null" json:"delta"`

	Reason    string `gorm:"size:120;not null" json:"reason"`    // e.g. "fulfillment", "manual adjustment"
	Reference string `gorm:"size:64" json:"reference,omitempty"` // purchase number, waybill number, ...
	ActorID   uint   `gorm:"index" json:"actor_id"`

	CreatedAt time.Time `json:"created_at"`
}
