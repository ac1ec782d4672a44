package models

import "time"

// Product prices are tiered by purchase type, in pesewas. The write
// path enforces CashPrice <= LayawayPrice <= CreditPrice.
// StockQuantity is the business-wide pool, used only for shops that
// carry no ShopStock row of their own.
type Product struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	BusinessID uint `gorm:"index;not null;uniqueIndex:ux_product_sku,priority:1" json:"business_id"`

	Name     string `gorm:"size:200;not null" json:"name"`
	SKU      string `gorm:"size:100;not null;uniqueIndex:ux_product_sku,priority:2" json:"sku"`
	Category string `gorm:"size:120" json:"category,omitempty"`

	CashPrice    int64 `gorm:"not null" json:"cash_price"`
	LayawayPrice int64 `gorm:"not null" json:"layaway_price"`
	CreditPrice  int64 `gorm:"not null" json:"credit_price"`

	StockQuantity int64 `gorm:"not null;default:0" json:"stock_quantity"`
	LowStockLevel int64 `gorm:"not null;default:0" json:"low_stock_level"`

	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
