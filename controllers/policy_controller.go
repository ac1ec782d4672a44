package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"highpurchase/config"
	"highpurchase/ledger"
	"highpurchase/models"
	"highpurchase/utils"
)

type PolicyInput struct {
	ShopID       *uint               `json:"shop_id"` // nil = business-wide
	InterestType models.InterestType `json:"interest_type" binding:"required"`
	InterestRate decimal.Decimal     `json:"interest_rate"`
	GraceDays    int                 `json:"grace_days"`
	MaxTenorDays int                 `json:"max_tenor_days" binding:"required,gt=0"`
	LateFeeFixed int64               `json:"late_fee_fixed"`
	LateFeeRate  decimal.Decimal     `json:"late_fee_rate"`
}

// CreatePolicy activates new financing terms for a shop or the whole
// business. The previous active policy of the same scope is retired in
// the same transaction, so exactly one stays in force per scope.
// Running purchases keep the terms snapshotted at their creation.
func CreatePolicy(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	var in PolicyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}
	if in.InterestType != models.InterestFlat && in.InterestType != models.InterestMonthly {
		utils.Error(c, http.StatusBadRequest, "interest_type must be FLAT or MONTHLY", nil)
		return
	}
	if in.InterestRate.IsNegative() || in.LateFeeRate.IsNegative() {
		utils.Error(c, http.StatusBadRequest, "rates cannot be negative", nil)
		return
	}
	if in.GraceDays < 0 || in.LateFeeFixed < 0 {
		utils.Error(c, http.StatusBadRequest, "grace days and late fees cannot be negative", nil)
		return
	}
	if in.ShopID != nil && !canAccessShop(staff, *in.ShopID) {
		utils.Error(c, http.StatusNotFound, "shop not found", nil)
		return
	}

	policy := models.FinancingPolicy{
		BusinessID:   staff.BusinessID,
		ShopID:       in.ShopID,
		InterestType: in.InterestType,
		InterestRate: in.InterestRate,
		GraceDays:    in.GraceDays,
		MaxTenorDays: in.MaxTenorDays,
		LateFeeFixed: in.LateFeeFixed,
		LateFeeRate:  in.LateFeeRate,
		IsActive:     true,
	}
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		retire := tx.Model(&models.FinancingPolicy{}).
			Where("business_id = ? AND is_active = true", staff.BusinessID)
		if in.ShopID == nil {
			retire = retire.Where("shop_id IS NULL")
		} else {
			retire = retire.Where("shop_id = ?", *in.ShopID)
		}
		if err := retire.Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Create(&policy).Error
	})
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "could not create policy", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "policy activated", "data": policy})
}

func ListPolicies(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	q := config.DB.Where("business_id = ?", staff.BusinessID)
	if shopID := getUintQPtr(c, "shop_id"); shopID != nil {
		q = q.Where("shop_id = ?", *shopID)
	}
	if c.Query("active") == "true" {
		q = q.Where("is_active = true")
	}
	var rows []models.FinancingPolicy
	if err := q.Order("id DESC").Find(&rows).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "could not list policies", err)
		return
	}
	utils.Success(c, "policies", rows)
}

// EffectivePolicy previews which terms a sale at the shop would be
// priced under, after shop-over-business resolution.
func EffectivePolicy(c *gin.Context) {
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

	policy, err := ledger.ResolvePolicy(config.DB, staff.BusinessID, shopID)
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "could not resolve policy", err)
		return
	}
	if policy == nil {
		utils.Error(c, http.StatusNotFound, "no active policy covers this shop", nil)
		return
	}
	utils.Success(c, "effective policy", policy)
}

func DeactivatePolicy(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	policyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	res := config.DB.Model(&models.FinancingPolicy{}).
		Where("id = ? AND business_id = ?", policyID, staff.BusinessID).
		Update("is_active", false)
	if res.Error != nil {
		utils.Error(c, http.StatusInternalServerError, "could not deactivate policy", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(c, http.StatusNotFound, "policy not found", nil)
		return
	}
	utils.Success(c, "policy deactivated", nil)
}
