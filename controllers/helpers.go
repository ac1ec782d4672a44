package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"highpurchase/config"
	"highpurchase/ledger"
	"highpurchase/models"
	"highpurchase/utils"
)

func currentStaff(c *gin.Context) (*models.Staff, error) {
	v, ok := c.Get("staff")
	if !ok {
		return nil, errors.New("staff missing from context")
	}
	s, ok := v.(*models.Staff)
	if !ok || s.ID == 0 {
		return nil, errors.New("staff missing from context")
	}
	return s, nil
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.Error(c, http.StatusBadRequest, "invalid "+name, nil)
		return 0, false
	}
	return uint(id), true
}

// canAccessShop reports whether the staff member may act on a shop.
// An OWNER membership anywhere in the business opens every shop;
// everyone else needs a membership on the shop itself.
func canAccessShop(staff *models.Staff, shopID uint) bool {
	var shop models.Shop
	if err := config.DB.Where("id = ? AND business_id = ?", shopID, staff.BusinessID).
		Find(&shop).Error; err != nil || shop.ID == 0 {
		return false
	}
	var cnt int64
	config.DB.Model(&models.ShopMembership{}).
		Where("staff_id = ? AND (shop_id = ? OR role = ?)", staff.ID, shopID, models.RoleOwner).
		Count(&cnt)
	return cnt > 0
}

// respondLedgerError maps the ledger error taxonomy onto HTTP status
// codes. Integrity failures additionally land in the log with stack
// context, since they mean the books disagree with themselves.
func respondLedgerError(c *gin.Context, action string, err error) {
	var (
		ve *ledger.ValidationError
		nf *ledger.NotFoundError
		ce *ledger.ConflictError
		ie *ledger.IntegrityError
	)
	switch {
	case errors.As(err, &ve):
		utils.Error(c, http.StatusBadRequest, action, err)
	case errors.As(err, &nf):
		utils.Error(c, http.StatusNotFound, action, err)
	case errors.As(err, &ce):
		utils.Error(c, http.StatusConflict, action, err)
	case errors.As(err, &ie):
		config.Log.Errorw("ledger integrity failure", "error", err)
		utils.Error(c, http.StatusInternalServerError, action, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.Error(c, http.StatusNotFound, action, err)
	default:
		utils.Error(c, http.StatusInternalServerError, action, err)
	}
}

func getIntQ(c *gin.Context, key string, def int) int {
	v, _ := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(def)))
	if v <= 0 {
		return def
	}
	return v
}

func getUintQPtr(c *gin.Context, key string) *uint {
	if v := c.Query(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil && n > 0 {
			u := uint(n)
			return &u
		}
	}
	return nil
}
