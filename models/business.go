package models

import "time"

// Business is the tenant root. Every shop, staff member, customer,
// product and purchase hangs off exactly one business.
type Business struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"size:180;not null" json:"name"`
	Slug    string `gorm:"uniqueIndex;size:80;not null" json:"slug"`
	Email   string `gorm:"size:180" json:"email,omitempty"`
	Phone   string `gorm:"size:60" json:"phone,omitempty"`
	Address string `gorm:"size:255" json:"address,omitempty"`
	LogoURL string `gorm:"size:255" json:"logo_url,omitempty"`

	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
