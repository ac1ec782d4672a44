package docs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"highpurchase/models"
)

func TestReceiptRender(t *testing.T) {
	confirmed := time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)
	r := BuildReceipt(
		&models.Business{Name: "Adom Traders"},
		&models.Shop{Name: "Osu Branch"},
		&models.Customer{FullName: "Kofi Boateng"},
		&models.Purchase{Number: "HP-7-0001", AmountPaid: 500, OutstandingBalance: 600},
		&models.Payment{Reference: "rcpt-123", Method: models.PayCash, Amount: 500, ConfirmedAt: &confirmed},
	)

	assert.Equal(t, confirmed, r.IssuedAt)

	out := r.Render()
	assert.Contains(t, out, "Adom Traders - Osu Branch")
	assert.Contains(t, out, "RECEIPT rcpt-123")
	assert.Contains(t, out, "Date: 14 Mar 2025 10:30")
	assert.Contains(t, out, "Customer: Kofi Boateng")
	assert.Contains(t, out, "Purchase: HP-7-0001")
	assert.Contains(t, out, "Paid: GHS 5.00 (CASH)")
	assert.Contains(t, out, "Total paid to date: GHS 5.00")
	assert.Contains(t, out, "Outstanding: GHS 6.00")
}

func TestWaybillRender(t *testing.T) {
	issued := time.Date(2025, 3, 14, 16, 0, 0, 0, time.UTC)
	w := BuildWaybill(
		&models.Business{Name: "Adom Traders"},
		&models.Shop{Name: "Osu Branch"},
		&models.Customer{FullName: "Kofi Boateng", Address: "12 Oxford St, Osu"},
		&models.Purchase{
			Number: "HP-7-0002",
			Items: []models.PurchaseItem{
				{Name: "Standing Fan", SKU: "FAN-01", Quantity: 2},
				{Name: "Gas Cooker", SKU: "GC-01", Quantity: 1},
			},
		},
		&models.Waybill{Number: "WB-900", IssuedAt: issued},
	)

	out := w.Render()
	assert.Contains(t, out, "WAYBILL WB-900")
	assert.Contains(t, out, "Deliver to: Kofi Boateng, 12 Oxford St, Osu")
	assert.Contains(t, out, "2 x Standing Fan (FAN-01)")
	assert.Contains(t, out, "1 x Gas Cooker (GC-01)")
}

func TestWaybillRenderWithoutAddress(t *testing.T) {
	w := WaybillDoc{Number: "WB-901", CustomerName: "Ama Serwaa", IssuedAt: time.Now()}
	out := w.Render()
	assert.Contains(t, out, "Deliver to: Ama Serwaa\n")
}
