// Package notify delivers customer-facing messages after the books
// have committed. Delivery is fire-and-forget: a failed SMS never
// rolls back a payment, it only shows up in the log.
package notify

import (
	"fmt"

	"go.uber.org/zap"

	"highpurchase/models"
	"highpurchase/utils"
)

type Message struct {
	CustomerID uint
	Phone      string
	Subject    string
	Body       string
}

type Dispatcher interface {
	Send(msg Message)
}

var active Dispatcher

// Use installs the process-wide dispatcher. Before Use is called,
// Send drops messages silently, which keeps tests quiet.
func Use(d Dispatcher) { active = d }

func Send(msg Message) {
	if active == nil {
		return
	}
	active.Send(msg)
}

// LogDispatcher writes every message to the structured log. A real
// SMS or email gateway replaces it behind the same interface.
type LogDispatcher struct {
	log *zap.SugaredLogger
}

func NewLogDispatcher(log *zap.SugaredLogger) *LogDispatcher {
	return &LogDispatcher{log: log}
}

func (d *LogDispatcher) Send(msg Message) {
	d.log.Infow("notification dispatched",
		"customer_id", msg.CustomerID,
		"phone", msg.Phone,
		"subject", msg.Subject,
		"body", msg.Body,
	)
}

func PurchaseCreated(cust *models.Customer, p *models.Purchase) Message {
	body := fmt.Sprintf("Hello %s, your purchase %s of %s has been recorded.",
		cust.FullName, p.Number, utils.Cedis(p.TotalAmount))
	if p.OutstandingBalance > 0 {
		body += fmt.Sprintf(" Outstanding balance: %s, due by %s.",
			utils.Cedis(p.OutstandingBalance), p.DueDate.Format("02 Jan 2006"))
	}
	return Message{CustomerID: cust.ID, Phone: cust.Phone, Subject: "Purchase " + p.Number, Body: body}
}

func PaymentPending(cust *models.Customer, p *models.Purchase, amount int64) Message {
	return Message{
		CustomerID: cust.ID,
		Phone:      cust.Phone,
		Subject:    "Payment received",
		Body: fmt.Sprintf("Hello %s, we received your payment of %s towards %s. It is pending verification.",
			cust.FullName, utils.Cedis(amount), p.Number),
	}
}

func PaymentConfirmed(cust *models.Customer, p *models.Purchase, pay *models.Payment) Message {
	body := fmt.Sprintf("Hello %s, your payment of %s towards %s is confirmed.",
		cust.FullName, utils.Cedis(pay.Amount), p.Number)
	if p.Status == models.PurchaseCompleted {
		body += " Your purchase is fully paid."
	} else {
		body += fmt.Sprintf(" Outstanding balance: %s.", utils.Cedis(p.OutstandingBalance))
	}
	return Message{CustomerID: cust.ID, Phone: cust.Phone, Subject: "Payment confirmed", Body: body}
}

func PaymentRejected(cust *models.Customer, p *models.Purchase, pay *models.Payment, reason string) Message {
	return Message{
		CustomerID: cust.ID,
		Phone:      cust.Phone,
		Subject:    "Payment rejected",
		Body: fmt.Sprintf("Hello %s, your payment of %s towards %s could not be verified: %s. Please contact your shop.",
			cust.FullName, utils.Cedis(pay.Amount), p.Number, reason),
	}
}

func DeliveryScheduled(cust *models.Customer, p *models.Purchase, wb *models.Waybill) Message {
	return Message{
		CustomerID: cust.ID,
		Phone:      cust.Phone,
		Subject:    "Delivery scheduled",
		Body: fmt.Sprintf("Hello %s, purchase %s is fully paid. Waybill %s has been issued and delivery will be arranged.",
			cust.FullName, p.Number, wb.Number),
	}
}

func DepositReceived(cust *models.Customer, amount, balance int64) Message {
	return Message{
		CustomerID: cust.ID,
		Phone:      cust.Phone,
		Subject:    "Wallet deposit",
		Body: fmt.Sprintf("Hello %s, your wallet deposit of %s is confirmed. New balance: %s.",
			cust.FullName, utils.Cedis(amount), utils.Cedis(balance)),
	}
}
