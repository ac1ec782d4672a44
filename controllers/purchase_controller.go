package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"highpurchase/config"
	"highpurchase/ledger"
	"highpurchase/models"
	"highpurchase/notify"
	"highpurchase/utils"
)

type PurchaseItemLine struct {
	ProductID uint  `json:"product_id" binding:"required"`
	Quantity  int64 `json:"quantity" binding:"required,gt=0"`
}

type QuoteInput struct {
	ShopID       uint                `json:"shop_id" binding:"required"`
	Type         models.PurchaseType `json:"type" binding:"required"`
	Items        []PurchaseItemLine  `json:"items" binding:"required,min=1"`
	Installments int                 `json:"installments"`
	TenorDays    int                 `json:"tenor_days"`
}

func toLedgerLines(lines []PurchaseItemLine) []ledger.PurchaseItemInput {
	out := make([]ledger.PurchaseItemInput, 0, len(lines))
	for _, l := range lines {
		out = append(out, ledger.PurchaseItemInput{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return out
}

// QuotePurchase prices a basket without committing anything, so staff
// can show the customer the terms first.
func QuotePurchase(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	var in QuoteInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}
	if !canAccessShop(staff, in.ShopID) {
		utils.Error(c, http.StatusNotFound, "shop not found", nil)
		return
	}

	quote, items, err := ledger.PreviewQuote(config.DB, staff.BusinessID, in.ShopID, in.Type, toLedgerLines(in.Items), in.Installments, in.TenorDays)
	if err != nil {
		respondLedgerError(c, "could not build quote", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "quote", "data": quote, "items": items})
}

type CreatePurchaseInput struct {
	ShopID       uint                `json:"shop_id" binding:"required"`
	CustomerID   uint                `json:"customer_id" binding:"required"`
	Type         models.PurchaseType `json:"type" binding:"required"`
	Items        []PurchaseItemLine  `json:"items" binding:"required,min=1"`
	Installments int                 `json:"installments"`
	TenorDays    int                 `json:"tenor_days"`
	CashDown     int64               `json:"cash_down"`
	WalletDown   int64               `json:"wallet_down"`
}

// CreatePurchase books a sale. The transaction retries on unique
// violations: two first purchases for the same customer can race the
// sequence row, and the rerun lands on the now-existing counter.
func CreatePurchase(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	var in CreatePurchaseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}
	if !canAccessShop(staff, in.ShopID) {
		utils.Error(c, http.StatusNotFound, "shop not found", nil)
		return
	}

	const maxRetries = 3
	var (
		out     *ledger.PurchaseOutcome
		lastErr error
	)
	for attempt := 0; attempt < maxRetries; attempt++ {
		lastErr = config.DB.Transaction(func(tx *gorm.DB) error {
			var err error
			out, err = ledger.CreatePurchase(tx, ledger.CreatePurchaseInput{
				BusinessID:   staff.BusinessID,
				ShopID:       in.ShopID,
				CustomerID:   in.CustomerID,
				Type:         in.Type,
				Items:        toLedgerLines(in.Items),
				Installments: in.Installments,
				TenorDays:    in.TenorDays,
				CashDown:     in.CashDown,
				WalletDown:   in.WalletDown,
				ActorID:      staff.ID,
			})
			return err
		})
		if lastErr == nil {
			break
		}
		if ledger.IsUniqueViolation(lastErr) {
			continue
		}
		break
	}
	if lastErr != nil {
		respondLedgerError(c, "could not create purchase", lastErr)
		return
	}

	notify.Send(notify.PurchaseCreated(out.Customer, out.Purchase))
	if out.Waybill != nil {
		notify.Send(notify.DeliveryScheduled(out.Customer, out.Purchase, out.Waybill))
	}

	resp := gin.H{"message": "purchase created", "data": out.Purchase}
	if out.Waybill != nil {
		resp["waybill"] = out.Waybill
	}
	c.JSON(http.StatusCreated, resp)
}

// overdueCond matches purchases whose grace window has lapsed with a
// balance still open. Kept in SQL so list filters can paginate.
const overdueCond = "status <> 'COMPLETED' AND outstanding_balance > 0 AND due_date + make_interval(days => grace_days) < ?"

func ListPurchases(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	now := time.Now()
	q := config.DB.Preload("Customer").Preload("Items").
		Where("purchases.business_id = ?", staff.BusinessID)
	if shopID := getUintQPtr(c, "shop_id"); shopID != nil {
		q = q.Where("shop_id = ?", *shopID)
	}
	if custID := getUintQPtr(c, "customer_id"); custID != nil {
		q = q.Where("customer_id = ?", *custID)
	}
	if ptype := strings.ToUpper(strings.TrimSpace(c.Query("type"))); ptype != "" {
		q = q.Where("type = ?", ptype)
	}

	status := strings.ToUpper(strings.TrimSpace(c.Query("status")))
	switch status {
	case "":
	case string(models.PurchaseOverdue):
		q = q.Where(overdueCond, now)
	case string(models.PurchasePending), string(models.PurchaseActive):
		q = q.Where("status = ?", status).Where("NOT ("+overdueCond+")", now)
	case string(models.PurchaseCompleted):
		q = q.Where("status = ?", status)
	default:
		utils.Error(c, http.StatusBadRequest, "unknown status filter", nil)
		return
	}

	page := getIntQ(c, "page", 1)
	size := getIntQ(c, "page_size", 50)
	var rows []models.Purchase
	if err := q.Order("id DESC").
		Offset((page - 1) * size).Limit(size).
		Find(&rows).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "could not list purchases", err)
		return
	}

	// fold the derived OVERDUE state in for display
	for i := range rows {
		rows[i].Status = rows[i].EffectiveStatus(now)
	}
	utils.Success(c, "purchases", rows)
}

func GetPurchase(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	purchaseID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var p models.Purchase
	err = config.DB.Preload("Customer").Preload("Items").Preload("Payments").
		Where("id = ? AND business_id = ?", purchaseID, staff.BusinessID).
		First(&p).Error
	if err != nil {
		utils.Error(c, http.StatusNotFound, "purchase not found", err)
		return
	}
	p.Status = p.EffectiveStatus(time.Now())

	var wb models.Waybill
	config.DB.Where("purchase_id = ?", p.ID).Find(&wb)

	resp := gin.H{"message": "purchase", "data": p}
	if wb.ID != 0 {
		resp["waybill"] = wb
	}
	c.JSON(http.StatusOK, resp)
}

type UpdateItemsInput struct {
	Items []PurchaseItemLine `json:"items" binding:"required,min=1"`
}

// UpdatePurchaseItems swaps the basket of an open purchase and
// re-prices it under today's policy. Completion by shrinkage triggers
// fulfillment exactly as a settling payment would.
func UpdatePurchaseItems(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	purchaseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in UpdateItemsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	var out *ledger.PurchaseOutcome
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = ledger.UpdatePurchaseItems(tx, ledger.UpdateItemsInput{
			BusinessID: staff.BusinessID,
			PurchaseID: purchaseID,
			Items:      toLedgerLines(in.Items),
			ActorID:    staff.ID,
		})
		return err
	})
	if err != nil {
		respondLedgerError(c, "could not update purchase items", err)
		return
	}

	if out.Waybill != nil {
		notify.Send(notify.DeliveryScheduled(out.Customer, out.Purchase, out.Waybill))
	}

	resp := gin.H{"message": "purchase items updated", "data": out.Purchase}
	if out.Waybill != nil {
		resp["waybill"] = out.Waybill
	}
	c.JSON(http.StatusOK, resp)
}
