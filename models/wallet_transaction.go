package models

import "time"

type WalletTxType string

const (
	WalletTxDeposit    WalletTxType = "DEPOSIT"    // prepaid funds in, or payment credited
	WalletTxPurchase   WalletTxType = "PURCHASE"   // debt posted or balance applied to a purchase
	WalletTxRefund     WalletTxType = "REFUND"     // obligation reduced after an item update
	WalletTxAdjustment WalletTxType = "ADJUSTMENT" // manual correction with a reason
)

type WalletTxStatus string

const WalletTxConfirmed WalletTxStatus = "CONFIRMED"

// WalletTransaction is one append-only ledger row for a customer
// wallet. Amount is signed: credits positive, debits negative, so that
// BalanceAfter - BalanceBefore == Amount holds row by row. The
// customer's cached WalletBalance always equals the newest row's
// BalanceAfter; both are written in the same transaction.
type WalletTransaction struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	BusinessID uint `gorm:"index;not null" json:"business_id"`
	CustomerID uint `gorm:"index;not null" json:"customer_id"`

	Type   WalletTxType   `gorm:"size:12;not null" json:"type"`
	Amount int64          `gorm:"not null" json:"amount"`
	Status WalletTxStatus `gorm:"size:12;not null" json:"status"`

	BalanceBefore int64 `gorm:"not null" json:"balance_before"`
	BalanceAfter  int64 `gorm:"not null" json:"balance_after"`

	Reference string `gorm:"size:64" json:"reference,omitempty"` // purchase number, deposit ref, ...
	Note      string `gorm:"size:255" json:"note,omitempty"`
	ActorID   uint   `gorm:"index" json:"actor_id"`

	CreatedAt time.Time `json:"created_at"`
}
