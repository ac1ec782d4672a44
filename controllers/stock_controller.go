package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"highpurchase/config"
	"highpurchase/models"
	"highpurchase/utils"
)

type SetStockInput struct {
	ProductID    uint   `json:"product_id" binding:"required"`
	Quantity     int64  `json:"quantity"`
	ReorderLevel *int64 `json:"reorder_level"`
	Reason       string `json:"reason" binding:"required"`
}

// SetShopStock sets the absolute quantity a shop holds for a product,
// creating the shop row if the shop previously sold from the business
// pool. The movement trail records the delta with the given reason.
func SetShopStock(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	shopID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if !canAccessShop(staff, shopID) {
		utils.Error(c, http.StatusNotFound, "shop not found", nil)
		return
	}

	var in SetStockInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}
	if in.Quantity < 0 {
		utils.Error(c, http.StatusBadRequest, "quantity cannot be negative", nil)
		return
	}

	var prod models.Product
	if err := config.DB.Where("id = ? AND business_id = ?", in.ProductID, staff.BusinessID).
		First(&prod).Error; err != nil {
		utils.Error(c, http.StatusNotFound, "product not found", err)
		return
	}

	var row models.ShopStock
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("shop_id = ? AND product_id = ?", shopID, in.ProductID).
			Find(&row).Error; err != nil {
			return err
		}

		oldQty := row.Quantity
		if row.ID == 0 {
			row = models.ShopStock{ShopID: shopID, ProductID: in.ProductID, Quantity: in.Quantity}
			if in.ReorderLevel != nil {
				row.ReorderLevel = *in.ReorderLevel
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		} else {
			updates := map[string]any{"quantity": in.Quantity}
			if in.ReorderLevel != nil {
				updates["reorder_level"] = *in.ReorderLevel
			}
			if err := tx.Model(&models.ShopStock{}).Where("id = ?", row.ID).
				Updates(updates).Error; err != nil {
				return err
			}
			row.Quantity = in.Quantity
		}

		if in.Quantity == oldQty {
			return nil
		}
		mv := models.StockMovement{
			ShopID:    shopID,
			ProductID: in.ProductID,
			OldQty:    oldQty,
			NewQty:    in.Quantity,
			Delta:     in.Quantity - oldQty,
			Reason:    in.Reason,
			ActorID:   staff.ID,
		}
		return tx.Create(&mv).Error
	})
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "could not set stock", err)
		return
	}
	utils.Success(c, "stock set", row)
}

type SetPoolStockInput struct {
	Quantity int64  `json:"quantity"`
	Reason   string `json:"reason" binding:"required"`
}

// SetProductPoolStock sets the business-wide stock pool a product
// falls back to when a shop carries no row of its own.
func SetProductPoolStock(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	prodID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in SetPoolStockInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}
	if in.Quantity < 0 {
		utils.Error(c, http.StatusBadRequest, "quantity cannot be negative", nil)
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		var prod models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND business_id = ?", prodID, staff.BusinessID).
			First(&prod).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Product{}).Where("id = ?", prod.ID).
			Update("stock_quantity", in.Quantity).Error; err != nil {
			return err
		}
		if in.Quantity == prod.StockQuantity {
			return nil
		}
		mv := models.StockMovement{
			ShopID:    0, // business pool
			ProductID: prod.ID,
			OldQty:    prod.StockQuantity,
			NewQty:    in.Quantity,
			Delta:     in.Quantity - prod.StockQuantity,
			Reason:    in.Reason,
			ActorID:   staff.ID,
		}
		return tx.Create(&mv).Error
	})
	if err != nil {
		respondLedgerError(c, "could not set pool stock", err)
		return
	}
	utils.Success(c, "pool stock set", gin.H{"product_id": prodID, "quantity": in.Quantity})
}

// ListShopStock shows what a shop holds, flagging rows at or below
// their reorder level.
func ListShopStock(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	shopID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if !canAccessShop(staff, shopID) {
		utils.Error(c, http.StatusNotFound, "shop not found", nil)
		return
	}

	q := config.DB.Preload("Product").Where("shop_id = ?", shopID)
	if c.Query("low") == "true" {
		q = q.Where("quantity <= reorder_level")
	}
	var rows []models.ShopStock
	if err := q.Order("id ASC").Find(&rows).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "could not list stock", err)
		return
	}
	utils.Success(c, "shop stock", rows)
}

func ListStockMovements(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	shopID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if !canAccessShop(staff, shopID) {
		utils.Error(c, http.StatusNotFound, "shop not found", nil)
		return
	}

	q := config.DB.Where("shop_id = ?", shopID)
	if productID := getUintQPtr(c, "product_id"); productID != nil {
		q = q.Where("product_id = ?", *productID)
	}
	page := getIntQ(c, "page", 1)
	size := getIntQ(c, "page_size", 50)
	var rows []models.StockMovement
	if err := q.Order("id DESC").
		Offset((page - 1) * size).Limit(size).
		Find(&rows).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "could not list movements", err)
		return
	}
	utils.Success(c, "stock movements", rows)
}
