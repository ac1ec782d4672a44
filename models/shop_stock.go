package models

import "time"

// ShopStock is the shop-scoped stock row. When a shop carries one for a
// product, it is the only quantity that sales and fulfillment may touch
// for that shop.
type ShopStock struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	ShopID    uint `gorm:"index;not null;uniqueIndex:ux_shop_stock,priority:1" json:"shop_id"`
	ProductID uint `gorm:"index;not null;uniqueIndex:ux_shop_stock,priority:2" json:"product_id"`

	Product Product `json:"product,omitempty"`

	Quantity     int64 `gorm:"not null;default:0" json:"quantity"`
	ReorderLevel int64 `gorm:"not null;default:0" json:"reorder_level"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
