package controllers

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"highpurchase/config"
	"highpurchase/ledger"
	"highpurchase/models"
	"highpurchase/utils"
)

type RegisterBusinessInput struct {
	BusinessName string `json:"business_name" binding:"required"`
	Slug         string `json:"slug" binding:"required"`
	ShopName     string `json:"shop_name" binding:"required"`
	FullName     string `json:"full_name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Phone        string `json:"phone"`
	Password     string `json:"password" binding:"required,min=8"`
}

// RegisterBusiness opens a tenant in one transaction: the business,
// its first shop, the owner account and the OWNER membership. Owners
// receive every grant in the permission catalogue. Deployments that
// onboard tenants manually set ALLOW_REGISTRATION=false.
func RegisterBusiness(c *gin.Context) {
	if v := os.Getenv("ALLOW_REGISTRATION"); v == "false" || v == "0" {
		utils.Error(c, http.StatusForbidden, "business registration is disabled", nil)
		return
	}
	var in RegisterBusinessInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "could not hash password", err)
		return
	}

	var staff models.Staff
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		business := models.Business{
			Name:     in.BusinessName,
			Slug:     strings.ToLower(strings.TrimSpace(in.Slug)),
			Email:    in.Email,
			Phone:    in.Phone,
			IsActive: true,
		}
		if err := tx.Create(&business).Error; err != nil {
			return err
		}
		shop := models.Shop{BusinessID: business.ID, Name: in.ShopName, IsActive: true}
		if err := tx.Create(&shop).Error; err != nil {
			return err
		}
		staff = models.Staff{
			BusinessID:   business.ID,
			FullName:     in.FullName,
			Email:        strings.ToLower(strings.TrimSpace(in.Email)),
			Phone:        in.Phone,
			PasswordHash: string(hash),
			IsActive:     true,
		}
		if err := tx.Create(&staff).Error; err != nil {
			return err
		}
		membership := models.ShopMembership{StaffID: staff.ID, ShopID: shop.ID, Role: models.RoleOwner}
		if err := tx.Create(&membership).Error; err != nil {
			return err
		}

		var perms []models.Permission
		if err := tx.Find(&perms).Error; err != nil {
			return err
		}
		now := time.Now()
		for _, p := range perms {
			grant := models.StaffPermission{StaffID: staff.ID, PermissionID: p.ID, GrantedAt: now}
			if err := tx.Create(&grant).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if ledger.IsUniqueViolation(err) {
			utils.Error(c, http.StatusConflict, "business slug or email already taken", err)
			return
		}
		utils.Error(c, http.StatusInternalServerError, "could not register business", err)
		return
	}

	token, _ := utils.GenerateToken(staff.ID, staff.FullName)
	c.JSON(http.StatusCreated, gin.H{"message": "business registered", "token": token, "data": staff})
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Login(c *gin.Context) {
	var in LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	var staff models.Staff
	err := config.DB.Where("email = ? AND is_active = true", strings.ToLower(strings.TrimSpace(in.Email))).
		First(&staff).Error
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(in.Password)) != nil {
		utils.Error(c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}

	now := time.Now()
	config.DB.Model(&models.Staff{}).Where("id = ?", staff.ID).Update("last_login_at", now)

	token, err := utils.GenerateToken(staff.ID, staff.FullName)
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "could not issue token", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "token": token, "data": staff})
}

func Profile(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	var full models.Staff
	if err := config.DB.Preload("Memberships").First(&full, staff.ID).Error; err != nil {
		utils.Error(c, http.StatusNotFound, "staff not found", err)
		return
	}

	var codes []string
	config.DB.Model(&models.StaffPermission{}).
		Joins("JOIN permissions ON permissions.id = staff_permissions.permission_id").
		Where("staff_permissions.staff_id = ?", staff.ID).
		Pluck("permissions.code", &codes)

	c.JSON(http.StatusOK, gin.H{"message": "profile", "data": full, "permissions": codes})
}

type UpdateProfileInput struct {
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone"`
}

func UpdateProfile(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	var in UpdateProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}
	if err := config.DB.Model(&models.Staff{}).Where("id = ?", staff.ID).
		Updates(map[string]any{"full_name": in.FullName, "phone": in.Phone}).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "could not update profile", err)
		return
	}
	utils.Success(c, "profile updated", nil)
}

type ChangePasswordInput struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

func ChangePassword(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	var in ChangePasswordInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(in.OldPassword)) != nil {
		utils.Error(c, http.StatusUnauthorized, "old password does not match", nil)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "could not hash password", err)
		return
	}
	if err := config.DB.Model(&models.Staff{}).Where("id = ?", staff.ID).
		Update("password_hash", string(hash)).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "could not change password", err)
		return
	}
	utils.Success(c, "password changed", nil)
}
