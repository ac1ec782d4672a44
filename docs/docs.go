// Package docs renders the paper artefacts of a sale: payment
// receipts and delivery waybills, as plain text blocks suitable for
// SMS bodies and thermal printers.
package docs

import (
	"fmt"
	"strings"
	"time"

	"highpurchase/models"
	"highpurchase/utils"
)

type Receipt struct {
	Number         string
	BusinessName   string
	ShopName       string
	PurchaseNumber string
	CustomerName   string
	Method         models.PaymentMethod
	Amount         int64
	AmountPaid     int64
	Outstanding    int64
	IssuedAt       time.Time
}

func BuildReceipt(business *models.Business, shop *models.Shop, cust *models.Customer, p *models.Purchase, pay *models.Payment) Receipt {
	issued := time.Now()
	if pay.ConfirmedAt != nil {
		issued = *pay.ConfirmedAt
	}
	return Receipt{
		Number:         pay.Reference,
		BusinessName:   business.Name,
		ShopName:       shop.Name,
		PurchaseNumber: p.Number,
		CustomerName:   cust.FullName,
		Method:         pay.Method,
		Amount:         pay.Amount,
		AmountPaid:     p.AmountPaid,
		Outstanding:    p.OutstandingBalance,
		IssuedAt:       issued,
	}
}

func (r Receipt) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s - %s\n", r.BusinessName, r.ShopName)
	fmt.Fprintf(&b, "RECEIPT %s\n", r.Number)
	fmt.Fprintf(&b, "Date: %s\n", r.IssuedAt.Format("02 Jan 2006 15:04"))
	fmt.Fprintf(&b, "Customer: %s\n", r.CustomerName)
	fmt.Fprintf(&b, "Purchase: %s\n", r.PurchaseNumber)
	fmt.Fprintf(&b, "Paid: %s (%s)\n", utils.Cedis(r.Amount), r.Method)
	fmt.Fprintf(&b, "Total paid to date: %s\n", utils.Cedis(r.AmountPaid))
	fmt.Fprintf(&b, "Outstanding: %s\n", utils.Cedis(r.Outstanding))
	return b.String()
}

type WaybillDoc struct {
	Number         string
	BusinessName   string
	ShopName       string
	PurchaseNumber string
	CustomerName   string
	Address        string
	Items          []models.PurchaseItem
	IssuedAt       time.Time
}

func BuildWaybill(business *models.Business, shop *models.Shop, cust *models.Customer, p *models.Purchase, wb *models.Waybill) WaybillDoc {
	return WaybillDoc{
		Number:         wb.Number,
		BusinessName:   business.Name,
		ShopName:       shop.Name,
		PurchaseNumber: p.Number,
		CustomerName:   cust.FullName,
		Address:        cust.Address,
		Items:          p.Items,
		IssuedAt:       wb.IssuedAt,
	}
}

func (w WaybillDoc) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s - %s\n", w.BusinessName, w.ShopName)
	fmt.Fprintf(&b, "WAYBILL %s\n", w.Number)
	fmt.Fprintf(&b, "Issued: %s\n", w.IssuedAt.Format("02 Jan 2006 15:04"))
	fmt.Fprintf(&b, "Purchase: %s\n", w.PurchaseNumber)
	fmt.Fprintf(&b, "Deliver to: %s", w.CustomerName)
	if w.Address != "" {
		fmt.Fprintf(&b, ", %s", w.Address)
	}
	b.WriteString("\n")
	for _, it := range w.Items {
		fmt.Fprintf(&b, "  %d x %s (%s)\n", it.Quantity, it.Name, it.SKU)
	}
	return b.String()
}
