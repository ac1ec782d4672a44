package ledger

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"highpurchase/models"
)

// Stock rules: when a shop carries its own ShopStock row for a product,
// that row is the only quantity sales may touch there; otherwise the
// product's business-wide StockQuantity serves as the pool. Checks and
// deductions lock the row they read and decrement conditionally, so a
// burst of confirmations can never drive a quantity below zero.

// lockAvailable locks the governing stock row for a product at a shop
// and returns the quantity it holds plus which scope answered.
func lockAvailable(tx *gorm.DB, businessID, shopID, productID uint) (int64, string, error) {
	var ss models.ShopStock
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("shop_id = ? AND product_id = ?", shopID, productID).
		Find(&ss).Error
	if err != nil {
		return 0, "", err
	}
	if ss.ID != 0 {
		return ss.Quantity, "shop", nil
	}

	var prod models.Product
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND business_id = ?", productID, businessID).
		Find(&prod).Error
	if err != nil {
		return 0, "", err
	}
	if prod.ID == 0 {
		return 0, "", notFound("product")
	}
	return prod.StockQuantity, "store", nil
}

// ensureStock verifies under row locks that the shop can satisfy every
// line. A shortfall here refuses the sale as a conflict; nothing has
// been promised yet.
func ensureStock(tx *gorm.DB, businessID, shopID uint, items []models.PurchaseItem) error {
	for _, it := range items {
		avail, scope, err := lockAvailable(tx, businessID, shopID, it.ProductID)
		if err != nil {
			return err
		}
		if avail < it.Quantity {
			return conflictf("insufficient stock for %s: need %d, %s has %d", it.Name, it.Quantity, scope, avail)
		}
	}
	return nil
}

// deductStock removes sold quantities and writes one movement row per
// line. The decrement is conditional on the remaining quantity; a
// zero-row update means the books went short between promise and
// fulfillment, which aborts as an integrity failure rather than
// clamping at zero.
func deductStock(tx *gorm.DB, p *models.Purchase, reason string, actorID uint) error {
	for _, it := range p.Items {
		var ss models.ShopStock
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("shop_id = ? AND product_id = ?", p.ShopID, it.ProductID).
			Find(&ss).Error
		if err != nil {
			return err
		}

		if ss.ID != 0 {
			res := tx.Model(&models.ShopStock{}).
				Where("id = ? AND quantity >= ?", ss.ID, it.Quantity).
				Update("quantity", gorm.Expr("quantity - ?", it.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return integrityf("stock of %s went short while fulfilling %s", it.Name, p.Number)
			}
			mv := models.StockMovement{
				ShopID:    p.ShopID,
				ProductID: it.ProductID,
				OldQty:    ss.Quantity,
				NewQty:    ss.Quantity - it.Quantity,
				Delta:     -it.Quantity,
				Reason:    reason,
				Reference: p.Number,
				ActorID:   actorID,
			}
			if err := tx.Create(&mv).Error; err != nil {
				return err
			}
			continue
		}

		var prod models.Product
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND business_id = ?", it.ProductID, p.BusinessID).
			Find(&prod).Error
		if err != nil {
			return err
		}
		if prod.ID == 0 {
			return notFound("product")
		}
		res := tx.Model(&models.Product{}).
			Where("id = ? AND stock_quantity >= ?", prod.ID, it.Quantity).
			Update("stock_quantity", gorm.Expr("stock_quantity - ?", it.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return integrityf("stock of %s went short while fulfilling %s", it.Name, p.Number)
		}
		mv := models.StockMovement{
			ShopID:    0, // business pool
			ProductID: it.ProductID,
			OldQty:    prod.StockQuantity,
			NewQty:    prod.StockQuantity - it.Quantity,
			Delta:     -it.Quantity,
			Reason:    reason,
			Reference: p.Number,
			ActorID:   actorID,
		}
		if err := tx.Create(&mv).Error; err != nil {
			return err
		}
	}
	return nil
}
