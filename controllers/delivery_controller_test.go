package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"highpurchase/config"
	"highpurchase/middlewares"
	"highpurchase/models"
	"highpurchase/utils"
)

// httpEnv swaps a throwaway sqlite database in for config.DB and
// mounts handlers under the same middleware chain the router uses, so
// requests walk token verification and permission grants for real.
type httpEnv struct {
	Router   *gin.Engine
	Business models.Business
	Shop     models.Shop
	Staff    models.Staff
	Customer models.Customer
	Token    string
}

func newHTTPEnv(t *testing.T, perms ...string) *httpEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.InitLogger()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "api.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Business{},
		&models.Shop{},
		&models.Staff{},
		&models.Permission{},
		&models.StaffPermission{},
		&models.Customer{},
		&models.Purchase{},
		&models.PurchaseItem{},
		&models.Payment{},
		&models.Waybill{},
	))
	config.DB = db

	env := &httpEnv{}
	env.Business = models.Business{Name: "Adom Traders", Slug: "adom-traders", IsActive: true}
	require.NoError(t, db.Create(&env.Business).Error)

	env.Shop = models.Shop{BusinessID: env.Business.ID, Name: "Osu Branch", IsActive: true}
	require.NoError(t, db.Create(&env.Shop).Error)

	env.Staff = models.Staff{BusinessID: env.Business.ID, FullName: "Ama Mensah", Email: "ama@adom.example", IsActive: true}
	require.NoError(t, db.Create(&env.Staff).Error)

	env.Customer = models.Customer{
		BusinessID: env.Business.ID,
		ShopID:     env.Shop.ID,
		FullName:   "Kofi Boateng",
		Phone:      "+233200000001",
		Address:    "12 Oxford St, Osu",
		IsActive:   true,
	}
	require.NoError(t, db.Create(&env.Customer).Error)

	for _, code := range perms {
		perm := models.Permission{Code: code, Name: code}
		require.NoError(t, db.Create(&perm).Error)
		require.NoError(t, db.Create(&models.StaffPermission{StaffID: env.Staff.ID, PermissionID: perm.ID}).Error)
	}

	token, err := utils.GenerateToken(env.Staff.ID, env.Staff.FullName)
	require.NoError(t, err)
	env.Token = token

	r := gin.New()
	waybills := r.Group("/api/waybills", middlewares.StaffAuth(), middlewares.RequirePerm("MANAGE_DELIVERIES"))
	waybills.GET("/:id", GetWaybill)
	env.Router = r
	return env
}

func (e *httpEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+e.Token)
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

func TestGetWaybillRendersDocument(t *testing.T) {
	env := newHTTPEnv(t, "MANAGE_DELIVERIES")

	p := models.Purchase{
		Number:         "HP-1-0001",
		Seq:            1,
		BusinessID:     env.Business.ID,
		ShopID:         env.Shop.ID,
		CustomerID:     env.Customer.ID,
		Type:           models.PurchaseCredit,
		Status:         models.PurchaseCompleted,
		Subtotal:       1000,
		TotalAmount:    1100,
		AmountPaid:     1100,
		StartDate:      time.Now(),
		DueDate:        time.Now(),
		DeliveryStatus: models.DeliveryScheduled,
		Items: []models.PurchaseItem{
			{ProductID: 1, Name: "Standing Fan", SKU: "FAN-01", Quantity: 2, UnitPrice: 500, LineTotal: 1000},
		},
	}
	require.NoError(t, config.DB.Create(&p).Error)

	wb := models.Waybill{
		Number:     "WB-900",
		PurchaseID: p.ID,
		BusinessID: env.Business.ID,
		ShopID:     env.Shop.ID,
		CustomerID: env.Customer.ID,
		IssuedAt:   time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC),
	}
	require.NoError(t, config.DB.Create(&wb).Error)

	w := env.get(t, fmt.Sprintf("/api/waybills/%d", wb.ID))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Rendered string `json:"rendered"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Rendered, "Adom Traders - Osu Branch")
	assert.Contains(t, resp.Rendered, "WAYBILL WB-900")
	assert.Contains(t, resp.Rendered, "Purchase: HP-1-0001")
	assert.Contains(t, resp.Rendered, "Deliver to: Kofi Boateng, 12 Oxford St, Osu")
	assert.Contains(t, resp.Rendered, "2 x Standing Fan (FAN-01)")

	w = env.get(t, "/api/waybills/999")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetWaybillNeedsGrant(t *testing.T) {
	env := newHTTPEnv(t)

	w := env.get(t, "/api/waybills/1")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
