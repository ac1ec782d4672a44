package models

import "time"

// Customer buys on hire purchase from one shop. WalletBalance is a
// signed cache in pesewas: positive means prepaid credit, negative
// means outstanding financed debt. It is only ever written in the same
// transaction that appends the matching WalletTransaction row.
type Customer struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	BusinessID uint `gorm:"index;not null;uniqueIndex:ux_customer_phone,priority:1" json:"business_id"`
	ShopID     uint `gorm:"index;not null" json:"shop_id"`

	FullName    string `gorm:"size:180;not null" json:"full_name"`
	Phone       string `gorm:"size:60;not null;uniqueIndex:ux_customer_phone,priority:2" json:"phone"`
	Email       string `gorm:"size:180" json:"email,omitempty"`
	GhanaCardID string `gorm:"size:60" json:"ghana_card_id,omitempty"`
	Address     string `gorm:"size:255" json:"address,omitempty"`
	AvatarURL   string `gorm:"size:255" json:"avatar_url,omitempty"`

	WalletBalance int64 `gorm:"not null;default:0" json:"wallet_balance"`

	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
