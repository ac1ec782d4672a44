package ledger

import (
	"time"

	"gorm.io/gorm"

	"highpurchase/models"
	"highpurchase/utils"
)

// fulfill reacts to a purchase that has just become COMPLETED: deduct
// the sold stock, and for financed sales issue the one and only
// waybill and schedule delivery. Cash sales hand goods over at the
// counter, so they deduct and go straight to DELIVERED with no
// waybill. Callers reach here exactly once per purchase because every
// completion path runs under the purchase row lock with an idempotency
// guard; the unique index on waybills.purchase_id backs that up.
func fulfill(tx *gorm.DB, p *models.Purchase, actorID uint, now time.Time) (*models.Waybill, error) {
	if err := deductStock(tx, p, "fulfillment", actorID); err != nil {
		return nil, err
	}

	if p.Type == models.PurchaseCash {
		p.DeliveryStatus = models.DeliveryDelivered
		err := tx.Model(&models.Purchase{}).Where("id = ?", p.ID).
			Update("delivery_status", models.DeliveryDelivered).Error
		return nil, err
	}

	var existing models.Waybill
	if err := tx.Where("purchase_id = ?", p.ID).Find(&existing).Error; err != nil {
		return nil, err
	}
	if existing.ID != 0 {
		return nil, conflictf("waybill %s already issued for purchase %s", existing.Number, p.Number)
	}

	wb := models.Waybill{
		Number:     utils.WaybillNumber(),
		PurchaseID: p.ID,
		BusinessID: p.BusinessID,
		ShopID:     p.ShopID,
		CustomerID: p.CustomerID,
		IssuedAt:   now,
	}
	if err := tx.Create(&wb).Error; err != nil {
		if IsUniqueViolation(err) {
			return nil, conflictf("waybill already issued for purchase %s", p.Number)
		}
		return nil, err
	}

	p.DeliveryStatus = models.DeliveryScheduled
	err := tx.Model(&models.Purchase{}).Where("id = ?", p.ID).
		Update("delivery_status", models.DeliveryScheduled).Error
	if err != nil {
		return nil, err
	}
	return &wb, nil
}
