package models

import "time"

// CustomerSequence is the dedicated counter behind per-customer
// purchase numbering. The row is incremented under a row lock inside
// the creating transaction, so concurrent sales for one customer
// cannot mint the same number the way count()-derived schemes do.
type CustomerSequence struct {
	CustomerID uint      `gorm:"primaryKey;autoIncrement:false" json:"customer_id"`
	LastSeq    uint      `gorm:"not null;default:0" json:"last_seq"`
	UpdatedAt  time.Time `json:"updated_at"`
}
