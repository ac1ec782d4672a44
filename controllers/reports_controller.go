package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"highpurchase/config"
	"highpurchase/service"
	"highpurchase/utils"
)

// parseDateQ reads a YYYY-MM-DD query param, falling back to def.
func parseDateQ(c *gin.Context, key string, def time.Time) (time.Time, bool) {
	v := c.Query(key)
	if v == "" {
		return def, true
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid "+key+" date, want YYYY-MM-DD", err)
		return time.Time{}, false
	}
	return t, true
}

// CollectionsReport covers the last 30 days unless from/to narrow it.
// The to date is inclusive of its whole day.
func CollectionsReport(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	now := time.Now()
	from, ok := parseDateQ(c, "from", now.AddDate(0, 0, -30))
	if !ok {
		return
	}
	to, ok := parseDateQ(c, "to", now)
	if !ok {
		return
	}
	if c.Query("to") != "" {
		to = to.AddDate(0, 0, 1)
	}
	if !to.After(from) {
		utils.Error(c, http.StatusBadRequest, "to must fall after from", nil)
		return
	}

	svc := service.NewService(config.DB)
	rep, err := svc.Collections(c.Request.Context(), service.CollectionsFilter{
		BusinessID: staff.BusinessID,
		ShopID:     getUintQPtr(c, "shop_id"),
		From:       from,
		To:         to,
	})
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "could not build collections report", err)
		return
	}
	utils.Success(c, "collections report", rep)
}

func AgingReport(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	svc := service.NewService(config.DB)
	rep, err := svc.Aging(c.Request.Context(), staff.BusinessID, getUintQPtr(c, "shop_id"), time.Now())
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "could not build aging report", err)
		return
	}
	utils.Success(c, "aging report", rep)
}

func RiskReport(c *gin.Context) {
	staff, err := currentStaff(c)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	svc := service.NewService(config.DB)
	rows, err := svc.RiskScores(c.Request.Context(), staff.BusinessID, getUintQPtr(c, "shop_id"), time.Now())
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "could not build risk report", err)
		return
	}
	utils.Success(c, "risk report", rows)
}
