package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"highpurchase/config"
	"highpurchase/ledger"
	"highpurchase/models"
	"highpurchase/utils"
)

type ProductInput struct {
	Name          string `json:"name" binding:"required"`
	SKU           string `json:"sku" binding:"required"`
	Category      string `json:"category"`
	CashPrice     int64  `json:"cash_price" binding:"required,gt=0"`
	LayawayPrice  int64  `json:"layaway_price" binding:"required,gt=0"`
	CreditPrice   int64  `json:"credit_price" binding:"required,gt=0"`
	StockQuantity int64  `json:"stock_quantity"`
	LowStockLevel int64  `json:"low_stock_level"`
}

func CreateProduct(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	var in ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}
	if err := ledger.ValidateTierPrices(in.CashPrice, in.LayawayPrice, in.CreditPrice); err != nil {
		respondLedgerError(c, "invalid tier prices", err)
		return
	}
	if in.StockQuantity < 0 || in.LowStockLevel < 0 {
		utils.Error(c, http.StatusBadRequest, "stock levels cannot be negative", nil)
		return
	}

	prod := models.Product{
		BusinessID:    staff.BusinessID,
		Name:          in.Name,
		SKU:           strings.TrimSpace(in.SKU),
		Category:      in.Category,
		CashPrice:     in.CashPrice,
		LayawayPrice:  in.LayawayPrice,
		CreditPrice:   in.CreditPrice,
		StockQuantity: in.StockQuantity,
		LowStockLevel: in.LowStockLevel,
		IsActive:      true,
	}
	if err := config.DB.Create(&prod).Error; err != nil {
		if ledger.IsUniqueViolation(err) {
			utils.Error(c, http.StatusConflict, "SKU already exists for this business", err)
			return
		}
		utils.Error(c, http.StatusInternalServerError, "could not create product", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "product created", "data": prod})
}

func ListProducts(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	q := config.DB.Where("business_id = ?", staff.BusinessID)
	if search := strings.TrimSpace(c.Query("q")); search != "" {
		like := "%" + search + "%"
		q = q.Where("name ILIKE ? OR sku ILIKE ? OR category ILIKE ?", like, like, like)
	}
	if c.Query("active") == "true" {
		q = q.Where("is_active = true")
	}

	page := getIntQ(c, "page", 1)
	size := getIntQ(c, "page_size", 50)
	var rows []models.Product
	if err := q.Order("name ASC").
		Offset((page - 1) * size).Limit(size).
		Find(&rows).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "could not list products", err)
		return
	}
	utils.Success(c, "products", rows)
}

func GetProduct(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	prodID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var prod models.Product
	if err := config.DB.Where("id = ? AND business_id = ?", prodID, staff.BusinessID).
		First(&prod).Error; err != nil {
		utils.Error(c, http.StatusNotFound, "product not found", err)
		return
	}
	var stocks []models.ShopStock
	config.DB.Where("product_id = ?", prod.ID).Find(&stocks)
	c.JSON(http.StatusOK, gin.H{"message": "product", "data": prod, "shop_stocks": stocks})
}

// UpdateProduct changes catalogue fields. Tier prices are validated as
// a trio against the values that would result, so a partial update can
// never leave the ladder inverted. Existing purchases keep their
// snapshotted prices.
func UpdateProduct(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	prodID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var in struct {
		Name          *string `json:"name"`
		Category      *string `json:"category"`
		CashPrice     *int64  `json:"cash_price"`
		LayawayPrice  *int64  `json:"layaway_price"`
		CreditPrice   *int64  `json:"credit_price"`
		LowStockLevel *int64  `json:"low_stock_level"`
		IsActive      *bool   `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	var prod models.Product
	if err := config.DB.Where("id = ? AND business_id = ?", prodID, staff.BusinessID).
		First(&prod).Error; err != nil {
		utils.Error(c, http.StatusNotFound, "product not found", err)
		return
	}

	cash, layaway, credit := prod.CashPrice, prod.LayawayPrice, prod.CreditPrice
	if in.CashPrice != nil {
		cash = *in.CashPrice
	}
	if in.LayawayPrice != nil {
		layaway = *in.LayawayPrice
	}
	if in.CreditPrice != nil {
		credit = *in.CreditPrice
	}
	if err := ledger.ValidateTierPrices(cash, layaway, credit); err != nil {
		respondLedgerError(c, "invalid tier prices", err)
		return
	}

	updates := map[string]any{
		"cash_price":    cash,
		"layaway_price": layaway,
		"credit_price":  credit,
	}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Category != nil {
		updates["category"] = *in.Category
	}
	if in.LowStockLevel != nil {
		updates["low_stock_level"] = *in.LowStockLevel
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if err := config.DB.Model(&prod).Updates(updates).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "could not update product", err)
		return
	}
	utils.Success(c, "product updated", prod)
}
