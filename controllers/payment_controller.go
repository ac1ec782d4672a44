package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"highpurchase/config"
	"highpurchase/docs"
	"highpurchase/ledger"
	"highpurchase/middlewares"
	"highpurchase/models"
	"highpurchase/notify"
	"highpurchase/utils"
)

type RecordPaymentBody struct {
	Amount      int64                `json:"amount" binding:"required,gt=0"`
	Method      models.PaymentMethod `json:"method" binding:"required"`
	Note        string               `json:"note"`
	AutoConfirm bool                 `json:"auto_confirm"`
}

// receiptFor loads the business and shop rows a receipt needs. Called
// after commit; a lookup failure degrades to an empty receipt rather
// than failing the request.
func receiptFor(out *ledger.PaymentOutcome) (docs.Receipt, string) {
	var business models.Business
	var shop models.Shop
	config.DB.First(&business, out.Purchase.BusinessID)
	config.DB.First(&shop, out.Purchase.ShopID)
	r := docs.BuildReceipt(&business, &shop, out.Customer, out.Purchase, out.Payment)
	return r, r.Render()
}

// RecordPayment books an instalment against a purchase. Cash and
// mobile-money land pending until a manager confirms; wallet payments
// draw cleared funds, so they confirm in the same transaction. A
// caller who could confirm the payment anyway may pass auto_confirm
// to book and settle in one step.
func RecordPayment(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	purchaseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in RecordPaymentBody
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}
	if in.AutoConfirm && !middlewares.HasPerm(staff.ID, "CONFIRM_PAYMENT") {
		utils.Error(c, http.StatusForbidden, "auto-confirm needs the CONFIRM_PAYMENT permission", nil)
		return
	}

	collectorID := staff.ID
	var out *ledger.PaymentOutcome
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = ledger.RecordPayment(tx, ledger.RecordPaymentInput{
			BusinessID:  staff.BusinessID,
			PurchaseID:  purchaseID,
			Amount:      in.Amount,
			Method:      in.Method,
			Note:        in.Note,
			CollectorID: &collectorID,
			AutoConfirm: in.AutoConfirm,
			ActorID:     staff.ID,
		})
		return err
	})
	if err != nil {
		respondLedgerError(c, "could not record payment", err)
		return
	}

	resp := gin.H{"message": "payment recorded", "data": out.Payment, "purchase": out.Purchase}
	if out.Payment.IsConfirmed {
		_, rendered := receiptFor(out)
		resp["receipt"] = rendered
		notify.Send(notify.PaymentConfirmed(out.Customer, out.Purchase, out.Payment))
		if out.CompletedNow && out.Waybill != nil {
			resp["waybill"] = out.Waybill
			notify.Send(notify.DeliveryScheduled(out.Customer, out.Purchase, out.Waybill))
		}
	} else {
		notify.Send(notify.PaymentPending(out.Customer, out.Purchase, out.Payment.Amount))
	}
	c.JSON(http.StatusCreated, resp)
}

// ConfirmPayment settles a pending payment: the wallet credit, the
// purchase balance and any fulfillment all move in one transaction.
func ConfirmPayment(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	paymentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var out *ledger.PaymentOutcome
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = ledger.ConfirmPayment(tx, ledger.ConfirmPaymentInput{
			BusinessID: staff.BusinessID,
			PaymentID:  paymentID,
			ActorID:    staff.ID,
		})
		return err
	})
	if err != nil {
		respondLedgerError(c, "could not confirm payment", err)
		return
	}

	_, rendered := receiptFor(out)
	notify.Send(notify.PaymentConfirmed(out.Customer, out.Purchase, out.Payment))
	resp := gin.H{
		"message":  "payment confirmed",
		"data":     out.Payment,
		"purchase": out.Purchase,
		"receipt":  rendered,
	}
	if out.CompletedNow && out.Waybill != nil {
		resp["waybill"] = out.Waybill
		notify.Send(notify.DeliveryScheduled(out.Customer, out.Purchase, out.Waybill))
	}
	c.JSON(http.StatusOK, resp)
}

type RejectPaymentBody struct {
	Reason string `json:"reason" binding:"required"`
}

func RejectPayment(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	paymentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in RejectPaymentBody
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	var pay *models.Payment
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		pay, err = ledger.RejectPayment(tx, ledger.RejectPaymentInput{
			BusinessID: staff.BusinessID,
			PaymentID:  paymentID,
			Reason:     in.Reason,
			ActorID:    staff.ID,
		})
		return err
	})
	if err != nil {
		respondLedgerError(c, "could not reject payment", err)
		return
	}

	var p models.Purchase
	var cust models.Customer
	config.DB.First(&p, pay.PurchaseID)
	config.DB.First(&cust, pay.CustomerID)
	notify.Send(notify.PaymentRejected(&cust, &p, pay, in.Reason))
	utils.Success(c, "payment rejected", pay)
}

// ListPayments serves the confirmation queue and payment history.
// status defaults to pending, the tab managers live in.
func ListPayments(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	q := config.DB.Preload("Purchase").Preload("Customer").
		Where("payments.business_id = ?", staff.BusinessID)
	switch strings.ToLower(strings.TrimSpace(c.DefaultQuery("status", "pending"))) {
	case "pending":
		q = q.Where("is_confirmed = false AND rejected_at IS NULL")
	case "confirmed":
		q = q.Where("is_confirmed = true")
	case "rejected":
		q = q.Where("rejected_at IS NOT NULL")
	case "all":
	default:
		utils.Error(c, http.StatusBadRequest, "unknown status filter", nil)
		return
	}
	if shopID := getUintQPtr(c, "shop_id"); shopID != nil {
		q = q.Joins("JOIN purchases ON purchases.id = payments.purchase_id").
			Where("purchases.shop_id = ?", *shopID)
	}
	if purchaseID := getUintQPtr(c, "purchase_id"); purchaseID != nil {
		q = q.Where("payments.purchase_id = ?", *purchaseID)
	}

	page := getIntQ(c, "page", 1)
	size := getIntQ(c, "page_size", 50)
	var rows []models.Payment
	if err := q.Order("payments.id DESC").
		Offset((page - 1) * size).Limit(size).
		Find(&rows).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "could not list payments", err)
		return
	}
	utils.Success(c, "payments", rows)
}

// GetReceipt re-renders the receipt for a confirmed payment.
func GetReceipt(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	paymentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var pay models.Payment
	err = config.DB.Preload("Purchase").Preload("Customer").
		Where("id = ? AND business_id = ?", paymentID, staff.BusinessID).
		First(&pay).Error
	if err != nil {
		utils.Error(c, http.StatusNotFound, "payment not found", err)
		return
	}
	if !pay.IsConfirmed {
		utils.Error(c, http.StatusConflict, "payment is not confirmed", nil)
		return
	}

	var business models.Business
	var shop models.Shop
	config.DB.First(&business, pay.BusinessID)
	config.DB.First(&shop, pay.Purchase.ShopID)
	r := docs.BuildReceipt(&business, &shop, pay.Customer, pay.Purchase, &pay)
	c.JSON(http.StatusOK, gin.H{"message": "receipt", "data": r, "rendered": r.Render()})
}
