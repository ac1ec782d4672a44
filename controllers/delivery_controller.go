package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"highpurchase/config"
	"highpurchase/docs"
	"highpurchase/ledger"
	"highpurchase/models"
	"highpurchase/utils"
)

func ListWaybills(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	q := config.DB.Preload("Purchase").Preload("Purchase.Customer").
		Where("waybills.business_id = ?", staff.BusinessID)
	if shopID := getUintQPtr(c, "shop_id"); shopID != nil {
		q = q.Where("shop_id = ?", *shopID)
	}
	switch strings.ToLower(strings.TrimSpace(c.Query("delivered"))) {
	case "true":
		q = q.Where("delivered_at IS NOT NULL")
	case "false":
		q = q.Where("delivered_at IS NULL")
	}

	page := getIntQ(c, "page", 1)
	size := getIntQ(c, "page_size", 50)
	var rows []models.Waybill
	if err := q.Order("waybills.id DESC").
		Offset((page - 1) * size).Limit(size).
		Find(&rows).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "could not list waybills", err)
		return
	}
	utils.Success(c, "waybills", rows)
}

func GetWaybill(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	waybillID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var wb models.Waybill
	err = config.DB.Preload("Purchase").Preload("Purchase.Items").Preload("Purchase.Customer").
		Where("id = ? AND business_id = ?", waybillID, staff.BusinessID).
		First(&wb).Error
	if err != nil {
		utils.Error(c, http.StatusNotFound, "waybill not found", err)
		return
	}

	var business models.Business
	var shop models.Shop
	config.DB.First(&business, wb.BusinessID)
	config.DB.First(&shop, wb.ShopID)
	doc := docs.BuildWaybill(&business, &shop, &wb.Purchase.Customer, &wb.Purchase, &wb)
	c.JSON(http.StatusOK, gin.H{"message": "waybill", "data": wb, "rendered": doc.Render()})
}

type UpdateDeliveryInput struct {
	Status     models.DeliveryStatus `json:"status" binding:"required"`
	ReceivedBy string                `json:"received_by"`
}

// deliveryNext maps each delivery state to the one state it may move
// to. Dispatch walks forward only; there is no undo once goods leave.
var deliveryNext = map[models.DeliveryStatus]models.DeliveryStatus{
	models.DeliveryScheduled: models.DeliveryInTransit,
	models.DeliveryInTransit: models.DeliveryDelivered,
}

// UpdateDelivery advances a waybill through dispatch. Marking
// DELIVERED stamps the waybill and requires the receiver's name.
func UpdateDelivery(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	waybillID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in UpdateDeliveryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	var wb models.Waybill
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Purchase").
			Where("id = ? AND business_id = ?", waybillID, staff.BusinessID).
			First(&wb).Error; err != nil {
			return err
		}
		current := wb.Purchase.DeliveryStatus
		if deliveryNext[current] != in.Status {
			return &ledger.ConflictError{Msg: fmt.Sprintf("delivery cannot move from %s to %s", current, in.Status)}
		}

		updates := map[string]any{"delivery_status": in.Status}
		if err := tx.Model(&models.Purchase{}).
			Where("id = ?", wb.PurchaseID).
			Updates(updates).Error; err != nil {
			return err
		}
		wb.Purchase.DeliveryStatus = in.Status

		if in.Status == models.DeliveryDelivered {
			if strings.TrimSpace(in.ReceivedBy) == "" {
				return &ledger.ValidationError{Msg: "received_by is required when marking delivered"}
			}
			now := time.Now()
			wb.DeliveredAt = &now
			wb.ReceivedBy = strings.TrimSpace(in.ReceivedBy)
			if err := tx.Model(&wb).Updates(map[string]any{
				"delivered_at": now,
				"received_by":  wb.ReceivedBy,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		respondLedgerError(c, "could not update delivery", err)
		return
	}
	utils.Success(c, "delivery updated", wb)
}
