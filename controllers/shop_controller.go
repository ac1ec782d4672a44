package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"highpurchase/config"
	"highpurchase/models"
	"highpurchase/utils"
)

type ShopInput struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location"`
	Phone    string `json:"phone"`
}

func CreateShop(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	var in ShopInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	shop := models.Shop{
		BusinessID: staff.BusinessID,
		Name:       in.Name,
		Location:   in.Location,
		Phone:      in.Phone,
		IsActive:   true,
	}
	if err := config.DB.Create(&shop).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "could not create shop", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "shop created", "data": shop})
}

func ListShops(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	var shops []models.Shop
	if err := config.DB.Where("business_id = ?", staff.BusinessID).
		Order("id ASC").Find(&shops).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "could not list shops", err)
		return
	}
	utils.Success(c, "shops", shops)
}

func UpdateShop(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	shopID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var in struct {
		Name     *string `json:"name"`
		Location *string `json:"location"`
		Phone    *string `json:"phone"`
		IsActive *bool   `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	var shop models.Shop
	if err := config.DB.Where("id = ? AND business_id = ?", shopID, staff.BusinessID).
		First(&shop).Error; err != nil {
		utils.Error(c, http.StatusNotFound, "shop not found", err)
		return
	}

	updates := map[string]any{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Location != nil {
		updates["location"] = *in.Location
	}
	if in.Phone != nil {
		updates["phone"] = *in.Phone
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if len(updates) > 0 {
		if err := config.DB.Model(&shop).Updates(updates).Error; err != nil {
			utils.Error(c, http.StatusInternalServerError, "could not update shop", err)
			return
		}
	}
	utils.Success(c, "shop updated", shop)
}
