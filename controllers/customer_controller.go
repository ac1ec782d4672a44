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

type CustomerInput struct {
	ShopID      uint   `json:"shop_id" binding:"required"`
	FullName    string `json:"full_name" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	Email       string `json:"email"`
	GhanaCardID string `json:"ghana_card_id"`
	Address     string `json:"address"`
	AvatarURL   string `json:"avatar_url"`
}

func CreateCustomer(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	var in CustomerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}
	if !canAccessShop(staff, in.ShopID) {
		utils.Error(c, http.StatusNotFound, "shop not found", nil)
		return
	}

	avatar := in.AvatarURL
	if avatar == "" {
		avatar = utils.DefaultAvatar(in.FullName)
	}
	cust := models.Customer{
		BusinessID:  staff.BusinessID,
		ShopID:      in.ShopID,
		FullName:    in.FullName,
		Phone:       strings.TrimSpace(in.Phone),
		Email:       in.Email,
		GhanaCardID: in.GhanaCardID,
		Address:     in.Address,
		AvatarURL:   avatar,
		IsActive:    true,
	}
	if err := config.DB.Create(&cust).Error; err != nil {
		if ledger.IsUniqueViolation(err) {
			utils.Error(c, http.StatusConflict, "phone number already registered for this business", err)
			return
		}
		utils.Error(c, http.StatusInternalServerError, "could not create customer", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "customer created", "data": cust})
}

func ListCustomers(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	q := config.DB.Where("business_id = ?", staff.BusinessID)
	if shopID := getUintQPtr(c, "shop_id"); shopID != nil {
		q = q.Where("shop_id = ?", *shopID)
	}
	if search := strings.TrimSpace(c.Query("q")); search != "" {
		like := "%" + search + "%"
		q = q.Where("full_name ILIKE ? OR phone LIKE ?", like, like)
	}

	page := getIntQ(c, "page", 1)
	size := getIntQ(c, "page_size", 50)
	var rows []models.Customer
	if err := q.Order("full_name ASC").
		Offset((page - 1) * size).Limit(size).
		Find(&rows).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "could not list customers", err)
		return
	}
	utils.Success(c, "customers", rows)
}

func GetCustomer(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	custID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var cust models.Customer
	if err := config.DB.Where("id = ? AND business_id = ?", custID, staff.BusinessID).
		First(&cust).Error; err != nil {
		utils.Error(c, http.StatusNotFound, "customer not found", err)
		return
	}

	var open []models.Purchase
	config.DB.Where("customer_id = ? AND status <> ?", cust.ID, models.PurchaseCompleted).
		Order("due_date ASC").Find(&open)

	c.JSON(http.StatusOK, gin.H{
		"message":        "customer",
		"data":           cust,
		"open_purchases": open,
	})
}

func UpdateCustomer(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	custID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var in struct {
		FullName    *string `json:"full_name"`
		Phone       *string `json:"phone"`
		Email       *string `json:"email"`
		GhanaCardID *string `json:"ghana_card_id"`
		Address     *string `json:"address"`
		AvatarURL   *string `json:"avatar_url"`
		IsActive    *bool   `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	var cust models.Customer
	if err := config.DB.Where("id = ? AND business_id = ?", custID, staff.BusinessID).
		First(&cust).Error; err != nil {
		utils.Error(c, http.StatusNotFound, "customer not found", err)
		return
	}

	updates := map[string]any{}
	if in.FullName != nil {
		updates["full_name"] = *in.FullName
	}
	if in.Phone != nil {
		updates["phone"] = strings.TrimSpace(*in.Phone)
	}
	if in.Email != nil {
		updates["email"] = *in.Email
	}
	if in.GhanaCardID != nil {
		updates["ghana_card_id"] = *in.GhanaCardID
	}
	if in.Address != nil {
		updates["address"] = *in.Address
	}
	if in.AvatarURL != nil {
		updates["avatar_url"] = *in.AvatarURL
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if len(updates) > 0 {
		if err := config.DB.Model(&cust).Updates(updates).Error; err != nil {
			if ledger.IsUniqueViolation(err) {
				utils.Error(c, http.StatusConflict, "phone number already registered for this business", err)
				return
			}
			utils.Error(c, http.StatusInternalServerError, "could not update customer", err)
			return
		}
	}
	utils.Success(c, "customer updated", cust)
}
