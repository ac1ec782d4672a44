package models

import "time"

// Shop is a branch/outlet of a business. Stock, customers and purchases
// are scoped to a shop.
type Shop struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	BusinessID uint     `gorm:"index;not null" json:"business_id"`
	Business   Business `json:"-"`

	Name     string `gorm:"size:180;not null" json:"name"`
	Location string `gorm:"size:255" json:"location,omitempty"`
	Phone    string `gorm:"size:60" json:"phone,omitempty"`

	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
