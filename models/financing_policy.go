package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type InterestType string

const (
	InterestFlat    InterestType = "FLAT"    // one-time charge on the subtotal
	InterestMonthly InterestType = "MONTHLY" // charge per month of tenor
)

// FinancingPolicy holds the terms a shop (ShopID set) or its business
// (ShopID nil) extends to financed purchases. Resolution order is shop
// policy first, business policy as fallback; only CASH sales may
// proceed without any policy. At most one policy per scope is active.
type FinancingPolicy struct {
	ID         uint  `gorm:"primaryKey" json:"id"`
	BusinessID uint  `gorm:"index;not null" json:"business_id"`
	ShopID     *uint `gorm:"index" json:"shop_id,omitempty"`

	InterestType InterestType    `gorm:"size:12;not null" json:"interest_type"`
	InterestRate decimal.Decimal `gorm:"type:decimal(6,3);not null" json:"interest_rate"` // percent

	GraceDays    int `gorm:"not null;default:0" json:"grace_days"`
	MaxTenorDays int `gorm:"not null" json:"max_tenor_days"`

	LateFeeFixed int64           `gorm:"not null;default:0" json:"late_fee_fixed"`
	LateFeeRate  decimal.Decimal `gorm:"type:decimal(6,3);not null;default:0" json:"late_fee_rate"` // percent of outstanding

	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
