package controllers

import (
	"net/http"
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

type CreateStaffInput struct {
	FullName        string                `json:"full_name" binding:"required"`
	Email           string                `json:"email" binding:"required,email"`
	Phone           string                `json:"phone"`
	Password        string                `json:"password" binding:"required,min=8"`
	Role            models.MembershipRole `json:"role" binding:"required"`
	ShopIDs         []uint                `json:"shop_ids" binding:"required,min=1"`
	PermissionCodes []string              `json:"permission_codes"`
}

// CreateStaff registers a manager or collector, assigns their shops
// and grants the listed permissions in one transaction.
func CreateStaff(c *gin.Context) {
	actor, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	var in CreateStaffInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}
	if in.Role != models.RoleManager && in.Role != models.RoleCollector {
		utils.Error(c, http.StatusBadRequest, "role must be MANAGER or COLLECTOR", nil)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "could not hash password", err)
		return
	}

	var staff models.Staff
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		// every shop must belong to the actor's business
		var cnt int64
		if err := tx.Model(&models.Shop{}).
			Where("id IN ? AND business_id = ?", in.ShopIDs, actor.BusinessID).
			Count(&cnt).Error; err != nil {
			return err
		}
		if cnt != int64(len(in.ShopIDs)) {
			return &ledger.NotFoundError{Resource: "shop"}
		}

		staff = models.Staff{
			BusinessID:   actor.BusinessID,
			FullName:     in.FullName,
			Email:        strings.ToLower(strings.TrimSpace(in.Email)),
			Phone:        in.Phone,
			PasswordHash: string(hash),
			IsActive:     true,
		}
		if err := tx.Create(&staff).Error; err != nil {
			return err
		}
		for _, shopID := range in.ShopIDs {
			m := models.ShopMembership{StaffID: staff.ID, ShopID: shopID, Role: in.Role}
			if err := tx.Create(&m).Error; err != nil {
				return err
			}
		}
		return grantPermissions(tx, staff.ID, in.PermissionCodes)
	})
	if err != nil {
		if ledger.IsUniqueViolation(err) {
			utils.Error(c, http.StatusConflict, "email already registered", err)
			return
		}
		respondLedgerError(c, "could not create staff", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "staff created", "data": staff})
}

func ListStaff(c *gin.Context) {
	actor, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	var rows []models.Staff
	if err := config.DB.Preload("Memberships").
		Where("business_id = ?", actor.BusinessID).
		Order("id ASC").Find(&rows).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "could not list staff", err)
		return
	}
	utils.Success(c, "staff", rows)
}

type SetPermissionsInput struct {
	PermissionCodes []string `json:"permission_codes"`
}

// SetStaffPermissions replaces a staff member's grants with the given
// codes. An empty list strips everything.
func SetStaffPermissions(c *gin.Context) {
	actor, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	staffID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in SetPermissionsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	var target models.Staff
	if err := config.DB.Where("id = ? AND business_id = ?", staffID, actor.BusinessID).
		First(&target).Error; err != nil {
		utils.Error(c, http.StatusNotFound, "staff not found", err)
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("staff_id = ?", target.ID).
			Delete(&models.StaffPermission{}).Error; err != nil {
			return err
		}
		return grantPermissions(tx, target.ID, in.PermissionCodes)
	})
	if err != nil {
		respondLedgerError(c, "could not set permissions", err)
		return
	}
	utils.Success(c, "permissions saved", gin.H{"applied": len(in.PermissionCodes)})
}

func grantPermissions(tx *gorm.DB, staffID uint, codes []string) error {
	if len(codes) == 0 {
		return nil
	}
	var perms []models.Permission
	if err := tx.Where("code IN ?", codes).Find(&perms).Error; err != nil {
		return err
	}
	now := time.Now()
	for _, p := range perms {
		grant := models.StaffPermission{StaffID: staffID, PermissionID: p.ID, GrantedAt: now}
		if err := tx.Create(&grant).Error; err != nil {
			return err
		}
	}
	return nil
}

func ListPermissions(c *gin.Context) {
	var perms []models.Permission
	if err := config.DB.Order("code ASC").Find(&perms).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "could not list permissions", err)
		return
	}
	utils.Success(c, "permissions", perms)
}

func DeactivateStaff(c *gin.Context) {
	actor, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	staffID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if staffID == actor.ID {
		utils.Error(c, http.StatusBadRequest, "you cannot deactivate your own account", nil)
		return
	}

	res := config.DB.Model(&models.Staff{}).
		Where("id = ? AND business_id = ?", staffID, actor.BusinessID).
		Update("is_active", false)
	if res.Error != nil {
		utils.Error(c, http.StatusInternalServerError, "could not deactivate staff", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(c, http.StatusNotFound, "staff not found", nil)
		return
	}
	utils.Success(c, "staff deactivated", nil)
}
